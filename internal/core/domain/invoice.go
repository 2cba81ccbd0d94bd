package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes sale invoices from purchase invoices.
type InvoiceType string

const (
	Sale     InvoiceType = "Satis"
	Purchase InvoiceType = "Alis"
)

// InvoiceStatus controls whether an invoice carries an open receivable.
// An OpenAccount invoice keeps exactly one ledger entry against its
// counterparty; a SettledFromCash invoice keeps none.
type InvoiceStatus string

const (
	OpenAccount     InvoiceStatus = "AcikHesap"
	SettledFromCash InvoiceStatus = "KasadanKapanacak"
)

// Invoice is a sale or purchase document header. The four monetary totals are
// derived from the line items and never edited directly; InvoiceNo is assigned
// once at creation and immutable afterwards.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"` // Primary key (UUID)
	InvoiceNo      string          `json:"invoiceNo"` // Unique human-readable number, e.g. SATIS-20260115-003
	CounterpartyID *string         `json:"counterpartyID"`
	InvoiceDate    time.Time       `json:"invoiceDate"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	Type           InvoiceType     `json:"type"`
	Status         InvoiceStatus   `json:"status"`
	DiscountPct    decimal.Decimal `json:"discountPct"` // [0,100]
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxTotal       decimal.Decimal `json:"taxTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	Note           string          `json:"note"`
	Version        int64           `json:"version"` // Optimistic concurrency stamp
	AuditFields

	// Lines are loaded on demand, not with every header fetch.
	Lines []InvoiceLine `json:"lines,omitempty"`
}

// InvoiceLine is one product/quantity/price row on an invoice. ProductName is
// snapshotted at creation so the line survives later product deletion;
// ProductID may then be nil.
type InvoiceLine struct {
	LineID      string          `json:"lineID"`
	InvoiceID   string          `json:"invoiceID"`
	ProductID   *string         `json:"productID"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`   // > 0
	UnitPrice   decimal.Decimal `json:"unitPrice"`  // >= 0, tax-exclusive
	TaxRatePct  int             `json:"taxRatePct"` // [0,100]
	TaxAmount   decimal.Decimal `json:"taxAmount"`  // derived
	LineTotal   decimal.Decimal `json:"lineTotal"`  // derived, tax-exclusive
	SeqNo       int             `json:"seqNo"`
}

// InvoiceTotals groups the four derived header amounts.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxTotal       decimal.Decimal `json:"taxTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}
