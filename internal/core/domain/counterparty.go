package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CounterpartyKind distinguishes individual from corporate counterparties.
type CounterpartyKind string

const (
	Individual CounterpartyKind = "Bireysel"
	Corporate  CounterpartyKind = "Kurumsal"
)

// Counterparty is a customer or supplier with a running balance. The balance
// is the signed sum of its ledger entries; see SignedLedgerAmount for the
// convention.
type Counterparty struct {
	CounterpartyID string           `json:"counterpartyID"`
	Name           string           `json:"name"`
	Title          string           `json:"title,omitempty"`
	TaxNo          string           `json:"taxNo,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Email          string           `json:"email,omitempty"`
	Address        string           `json:"address,omitempty"`
	City           string           `json:"city,omitempty"`
	Kind           CounterpartyKind `json:"kind"`
	AuditFields
}

// LedgerMovementType classifies a ledger entry. Wire values match the legacy
// data set.
type LedgerMovementType string

const (
	SaleInvoice     LedgerMovementType = "satis_faturasi"
	PurchaseInvoice LedgerMovementType = "alis_faturasi"
	Collection      LedgerMovementType = "tahsilat"
	Payment         LedgerMovementType = "odeme"
	Refund          LedgerMovementType = "iade"
)

// LedgerEntry is one debit/credit movement against a counterparty's running
// balance. Entries derived from an invoice carry SourceInvoiceID and hold the
// invoice number in DocumentNo; at most one such entry exists per invoice.
type LedgerEntry struct {
	EntryID         string             `json:"entryID"`
	CounterpartyID  string             `json:"counterpartyID"`
	MovementType    LedgerMovementType `json:"movementType"`
	Amount          decimal.Decimal    `json:"amount"` // > 0
	Description     string             `json:"description"`
	DocumentNo      string             `json:"documentNo"`
	SourceInvoiceID *string            `json:"sourceInvoiceID,omitempty"`
	EntryDate       time.Time          `json:"entryDate"`
	PaymentMethod   string             `json:"paymentMethod,omitempty"`
	AuditFields
}

// StatementLine is one row of a counterparty statement: the entry plus the
// debit/credit split and the running balance after it.
type StatementLine struct {
	Entry   LedgerEntry     `json:"entry"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}
