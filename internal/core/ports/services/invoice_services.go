package services

import (
	"context"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/dto"
)

// InvoiceReaderSvc defines read operations for invoice data
type InvoiceReaderSvc interface {
	// GetInvoiceByID retrieves an invoice header with its lines.
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoice headers.
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)
}

// InvoiceWriterSvc defines write operations for invoice headers
type InvoiceWriterSvc interface {
	// CreateInvoice persists a new empty invoice header and assigns its number.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)

	// CreateInvoiceWithLines persists a header and all its lines atomically,
	// running the full reconciliation cascade once.
	CreateInvoiceWithLines(ctx context.Context, req dto.CreateInvoiceWithLinesRequest, creatorUserID string) (*domain.Invoice, error)

	// UpdateInvoice updates header fields and re-runs the cascade.
	UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, requestingUserID string) (*domain.Invoice, error)

	// DeleteInvoice removes an invoice with no lines along with its derived
	// rows. Invoices that still have lines are rejected.
	DeleteInvoice(ctx context.Context, invoiceID string, requestingUserID string) error

	// CopyInvoice duplicates an invoice and its lines under a fresh number.
	CopyInvoice(ctx context.Context, invoiceID string, creatorUserID string) (*domain.Invoice, error)
}

// InvoiceLineSvc defines line item operations; each re-runs the cascade
type InvoiceLineSvc interface {
	// AddLineItem appends a line to an invoice.
	AddLineItem(ctx context.Context, invoiceID string, req dto.LineItemRequest, requestingUserID string) (*domain.Invoice, error)

	// UpdateLineItem replaces the editable fields of a line.
	UpdateLineItem(ctx context.Context, invoiceID string, lineID string, req dto.LineItemRequest, requestingUserID string) (*domain.Invoice, error)

	// RemoveLineItem deletes a line from an invoice.
	RemoveLineItem(ctx context.Context, invoiceID string, lineID string, requestingUserID string) (*domain.Invoice, error)
}

// InvoiceSettlementSvc defines status transitions between open account and cash
type InvoiceSettlementSvc interface {
	// SettleInvoice switches an invoice to cash settlement, removing its ledger entry.
	SettleInvoice(ctx context.Context, invoiceID string, requestingUserID string) (*domain.Invoice, error)

	// ReopenInvoice switches an invoice back to open account, recreating its ledger entry.
	ReopenInvoice(ctx context.Context, invoiceID string, requestingUserID string) (*domain.Invoice, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
// This is a facade for clients that need access to all operations
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
	InvoiceLineSvc
	InvoiceSettlementSvc
}
