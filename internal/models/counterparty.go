package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CounterpartyKind mirrors domain.CounterpartyKind at the persistence layer.
type CounterpartyKind string

const (
	Individual CounterpartyKind = "Bireysel"
	Corporate  CounterpartyKind = "Kurumsal"
)

// Counterparty is the counterparties table row.
type Counterparty struct {
	CounterpartyID string           `json:"counterpartyID"`
	Name           string           `json:"name"`
	Title          string           `json:"title"`
	TaxNo          string           `json:"taxNo"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	Address        string           `json:"address"`
	City           string           `json:"city"`
	Kind           CounterpartyKind `json:"kind"`
	AuditFields
}

// LedgerMovementType mirrors domain.LedgerMovementType at the persistence layer.
type LedgerMovementType string

const (
	SaleInvoice     LedgerMovementType = "satis_faturasi"
	PurchaseInvoice LedgerMovementType = "alis_faturasi"
	Collection      LedgerMovementType = "tahsilat"
	Payment         LedgerMovementType = "odeme"
	Refund          LedgerMovementType = "iade"
)

// LedgerEntry is the ledger_entries table row.
type LedgerEntry struct {
	EntryID         string             `json:"entryID"`
	CounterpartyID  string             `json:"counterpartyID"`
	MovementType    LedgerMovementType `json:"movementType"`
	Amount          decimal.Decimal    `json:"amount"`
	Description     string             `json:"description"`
	DocumentNo      string             `json:"documentNo"`
	SourceInvoiceID *string            `json:"sourceInvoiceID"`
	EntryDate       time.Time          `json:"entryDate"`
	PaymentMethod   string             `json:"paymentMethod"`
	AuditFields
}
