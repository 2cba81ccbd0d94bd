package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType mirrors domain.InvoiceType at the persistence layer.
type InvoiceType string

const (
	Sale     InvoiceType = "Satis"
	Purchase InvoiceType = "Alis"
)

// InvoiceStatus mirrors domain.InvoiceStatus at the persistence layer.
type InvoiceStatus string

const (
	OpenAccount     InvoiceStatus = "AcikHesap"
	SettledFromCash InvoiceStatus = "KasadanKapanacak"
)

// Invoice is the invoices table row.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`
	InvoiceNo      string          `json:"invoiceNo"`
	CounterpartyID *string         `json:"counterpartyID"`
	InvoiceDate    time.Time       `json:"invoiceDate"`
	DueDate        *time.Time      `json:"dueDate"`
	Type           InvoiceType     `json:"type"`
	Status         InvoiceStatus   `json:"status"`
	DiscountPct    decimal.Decimal `json:"discountPct"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxTotal       decimal.Decimal `json:"taxTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	Note           string          `json:"note"`
	Version        int64           `json:"version"`
	AuditFields
}

// InvoiceLine is the invoice_lines table row.
type InvoiceLine struct {
	LineID      string          `json:"lineID"`
	InvoiceID   string          `json:"invoiceID"`
	ProductID   *string         `json:"productID"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRatePct  int             `json:"taxRatePct"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	SeqNo       int             `json:"seqNo"`
}
