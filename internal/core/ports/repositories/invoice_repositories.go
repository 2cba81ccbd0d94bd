package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// InvoiceFilter narrows the invoice list query. Zero values mean "no filter".
type InvoiceFilter struct {
	Type   string
	Status string
	Search string // matches invoice no or counterparty name
}

// InvoiceReader defines read operations for invoice headers
type InvoiceReader interface {
	// FindInvoiceByID retrieves a specific invoice header by its unique identifier.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoiceByNo retrieves an invoice header by its human-readable number.
	FindInvoiceByNo(ctx context.Context, invoiceNo string) (*domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoice headers using token-based pagination.
	// It returns the invoices, a token for the next page, and an error.
	ListInvoices(ctx context.Context, limit int, nextToken *string, filter InvoiceFilter) ([]domain.Invoice, *string, error)
}

// InvoiceWriter defines write operations for invoice headers
type InvoiceWriter interface {
	// SaveInvoiceInTx persists a new invoice header within a transaction.
	SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error

	// UpdateInvoiceInTx updates an invoice header within a transaction and bumps
	// its version. It returns apperrors.ErrConflict when the stored version no
	// longer matches invoice.Version.
	UpdateInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error

	// DeleteInvoiceInTx removes an invoice header within a transaction.
	DeleteInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) error
}

// InvoiceTransactionSupport defines operations that support the reconciliation cascade
type InvoiceTransactionSupport interface {
	// FindInvoiceByIDForUpdate selects an invoice header and locks it for update within a transaction.
	FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error)

	// AllocateInvoiceSeq atomically claims the next per-prefix-per-day sequence number.
	AllocateInvoiceSeq(ctx context.Context, tx pgx.Tx, prefix string, dateKey string) (int, error)
}

// InvoiceLineReader defines read operations for invoice lines
type InvoiceLineReader interface {
	// FindLineByID retrieves a specific invoice line by its unique identifier.
	FindLineByID(ctx context.Context, lineID string) (*domain.InvoiceLine, error)

	// FindLinesByInvoiceID retrieves all lines of an invoice ordered by sequence number.
	FindLinesByInvoiceID(ctx context.Context, invoiceID string) ([]domain.InvoiceLine, error)

	// FindLinesByInvoiceIDInTx retrieves all lines of an invoice within a transaction.
	FindLinesByInvoiceIDInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoiceLine, error)

	// CountLinesByInvoiceID returns the number of lines on an invoice.
	CountLinesByInvoiceID(ctx context.Context, invoiceID string) (int, error)
}

// InvoiceLineWriter defines write operations for invoice lines
type InvoiceLineWriter interface {
	// SaveLinesInTx persists invoice lines within a transaction.
	SaveLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.InvoiceLine) error

	// UpdateLineInTx updates an existing invoice line within a transaction.
	UpdateLineInTx(ctx context.Context, tx pgx.Tx, line domain.InvoiceLine) error

	// DeleteLineInTx removes an invoice line within a transaction.
	DeleteLineInTx(ctx context.Context, tx pgx.Tx, lineID string) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
// This is a facade for clients that need access to all operations
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	InvoiceTransactionSupport
	InvoiceLineReader
	InvoiceLineWriter
}

// InvoiceRepositoryWithTx extends InvoiceRepositoryFacade with transaction capabilities
type InvoiceRepositoryWithTx interface {
	InvoiceRepositoryFacade
	TransactionManager
}
