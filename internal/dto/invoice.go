package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// CreateInvoiceRequest carries the user-editable header fields of a new
// invoice. Totals are always derived and never accepted from the caller.
type CreateInvoiceRequest struct {
	Type           domain.InvoiceType   `json:"type" binding:"required,oneof=Satis Alis"`
	CounterpartyID *string              `json:"counterpartyID"`
	Date           time.Time            `json:"date" binding:"required"`
	DueDate        *time.Time           `json:"dueDate"`
	Status         domain.InvoiceStatus `json:"status" binding:"omitempty,oneof=AcikHesap KasadanKapanacak"`
	DiscountPct    decimal.Decimal      `json:"discountPct"`
	Note           string               `json:"note"`
}

// LineItemRequest carries the user-editable fields of one invoice line.
// TaxRatePct zero means "not supplied"; the default rate is applied.
type LineItemRequest struct {
	ProductID   *string         `json:"productID"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRatePct  int             `json:"taxRatePct" binding:"gte=0,lte=100"`
	SeqNo       *int            `json:"seqNo"`
}

// CreateInvoiceWithLinesRequest is the atomic end-to-end creation payload:
// header plus all lines, persisted and reconciled in one transaction.
type CreateInvoiceWithLinesRequest struct {
	CreateInvoiceRequest
	Lines []LineItemRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest carries header updates. Nil fields are left untouched;
// the invoice number is immutable and deliberately absent. Version is the
// optimistic-concurrency stamp the caller read.
type UpdateInvoiceRequest struct {
	CounterpartyID *string               `json:"counterpartyID"`
	Date           *time.Time            `json:"date"`
	DueDate        *time.Time            `json:"dueDate"`
	Status         *domain.InvoiceStatus `json:"status" binding:"omitempty,oneof=AcikHesap KasadanKapanacak"`
	DiscountPct    *decimal.Decimal      `json:"discountPct"`
	Note           *string               `json:"note"`
	Version        int64                 `json:"version" binding:"required,gt=0"`
}

// ListInvoicesParams holds filters for the invoice list endpoint.
type ListInvoicesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Search    string  `form:"search"` // matches invoice no or counterparty name
	Status    string  `form:"status"`
	Type      string  `form:"type"`
}

// InvoiceLineResponse is the API shape of one invoice line.
type InvoiceLineResponse struct {
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

// InvoiceResponse is the API shape of an invoice header with recomputed
// totals, optionally including its lines.
type InvoiceResponse struct {
	InvoiceID      string                `json:"invoiceID"`
	InvoiceNo      string                `json:"invoiceNo"`
	CounterpartyID *string               `json:"counterpartyID"`
	Date           time.Time             `json:"date"`
	DueDate        *time.Time            `json:"dueDate,omitempty"`
	Type           string                `json:"type"`
	Status         string                `json:"status"`
	DiscountPct    decimal.Decimal       `json:"discountPct"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxTotal       decimal.Decimal       `json:"taxTotal"`
	DiscountAmount decimal.Decimal       `json:"discountAmount"`
	GrandTotal     decimal.Decimal       `json:"grandTotal"`
	Note           string                `json:"note,omitempty"`
	Version        int64                 `json:"version"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
	Lines          []InvoiceLineResponse `json:"lines,omitempty"`
}

// ListInvoicesResponse is a page of invoices plus the cursor for the next page.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToInvoiceLineResponse converts a domain line to its API shape.
func ToInvoiceLineResponse(l *domain.InvoiceLine) InvoiceLineResponse {
	return InvoiceLineResponse{
		LineID:      l.LineID,
		InvoiceID:   l.InvoiceID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		TaxRatePct:  l.TaxRatePct,
		TaxAmount:   l.TaxAmount,
		LineTotal:   l.LineTotal,
		SeqNo:       l.SeqNo,
	}
}

// ToInvoiceResponse converts a domain invoice to its API shape.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		InvoiceID:      inv.InvoiceID,
		InvoiceNo:      inv.InvoiceNo,
		CounterpartyID: inv.CounterpartyID,
		Date:           inv.InvoiceDate,
		DueDate:        inv.DueDate,
		Type:           string(inv.Type),
		Status:         string(inv.Status),
		DiscountPct:    inv.DiscountPct,
		Subtotal:       inv.Subtotal,
		TaxTotal:       inv.TaxTotal,
		DiscountAmount: inv.DiscountAmount,
		GrandTotal:     inv.GrandTotal,
		Note:           inv.Note,
		Version:        inv.Version,
		CreatedAt:      inv.CreatedAt,
		CreatedBy:      inv.CreatedBy,
	}
	if len(inv.Lines) > 0 {
		resp.Lines = make([]InvoiceLineResponse, len(inv.Lines))
		for i := range inv.Lines {
			resp.Lines[i] = ToInvoiceLineResponse(&inv.Lines[i])
		}
	}
	return resp
}
