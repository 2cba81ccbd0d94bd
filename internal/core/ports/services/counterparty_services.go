package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/dto"
)

// CounterpartyReaderSvc defines read operations for counterparty data
type CounterpartyReaderSvc interface {
	// GetCounterpartyByID retrieves a specific counterparty.
	GetCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)

	// ListCounterparties retrieves a paginated list of counterparties.
	ListCounterparties(ctx context.Context, params dto.ListCounterpartiesParams) (*dto.ListCounterpartiesResponse, error)
}

// CounterpartyWriterSvc defines write operations for counterparty data
type CounterpartyWriterSvc interface {
	// CreateCounterparty persists a new counterparty.
	CreateCounterparty(ctx context.Context, req dto.CreateCounterpartyRequest, creatorUserID string) (*domain.Counterparty, error)

	// UpdateCounterparty updates an existing counterparty's details.
	UpdateCounterparty(ctx context.Context, counterpartyID string, req dto.UpdateCounterpartyRequest, requestingUserID string) (*domain.Counterparty, error)

	// DeleteCounterparty removes a counterparty and its ledger history.
	DeleteCounterparty(ctx context.Context, counterpartyID string, requestingUserID string) error
}

// LedgerSvc defines manual ledger operations and balance reporting
type LedgerSvc interface {
	// RecordReceipt persists a manual collection, payment or refund entry.
	RecordReceipt(ctx context.Context, counterpartyID string, req dto.ReceiptRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// DeleteReceipt removes a manual entry. Entries bound to an invoice are rejected.
	DeleteReceipt(ctx context.Context, entryID string, requestingUserID string) error

	// GetBalance returns the signed open balance of a counterparty.
	GetBalance(ctx context.Context, counterpartyID string) (decimal.Decimal, error)

	// GetStatement returns the chronological statement with running balances.
	GetStatement(ctx context.Context, counterpartyID string) ([]domain.StatementLine, error)

	// ListEntries retrieves a paginated list of ledger entries for a counterparty.
	ListEntries(ctx context.Context, counterpartyID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// LedgerSyncSvc is the ledger leg of the invoice reconciliation cascade.
// The sync methods return the IDs of counterparties whose cached balances
// went stale; the caller invalidates them with InvalidateBalances after its
// transaction commits, so a concurrent read cannot re-cache pre-commit data.
type LedgerSyncSvc interface {
	// SyncLedgerForInvoice upserts or removes the invoice's single ledger
	// entry according to its status, counterparty and grand total, within the
	// caller's transaction.
	SyncLedgerForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, actorUserID string) ([]string, error)

	// RemoveLedgerForInvoice deletes the invoice's ledger entry regardless of
	// status, within the caller's transaction. Used when the invoice itself
	// is being deleted.
	RemoveLedgerForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) ([]string, error)

	// InvalidateBalances drops the cached balance and statement of each
	// counterparty. Call it after the transaction that made them stale
	// has committed.
	InvalidateBalances(ctx context.Context, counterpartyIDs []string)
}

// CounterpartySvcFacade combines all counterparty-related service interfaces
// This is a facade for clients that need access to all operations
type CounterpartySvcFacade interface {
	CounterpartyReaderSvc
	CounterpartyWriterSvc
	LedgerSvc
	LedgerSyncSvc
}
