package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// CounterpartyReader defines read operations for counterparty data
type CounterpartyReader interface {
	// FindCounterpartyByID retrieves a specific counterparty by its unique identifier.
	FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)

	// ListCounterparties retrieves a paginated list of counterparties using token-based pagination.
	ListCounterparties(ctx context.Context, limit int, nextToken *string, search string, kind string) ([]domain.Counterparty, *string, error)
}

// CounterpartyWriter defines write operations for counterparty data
type CounterpartyWriter interface {
	// SaveCounterparty persists a new counterparty.
	SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error

	// UpdateCounterparty updates an existing counterparty's details.
	UpdateCounterparty(ctx context.Context, counterparty domain.Counterparty) error

	// DeleteCounterparty removes a counterparty and its ledger entries.
	DeleteCounterparty(ctx context.Context, counterpartyID string) error
}

// LedgerReader defines read operations for ledger entries
type LedgerReader interface {
	// FindEntryByID retrieves a specific ledger entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// FindEntryByInvoiceIDInTx retrieves the single ledger entry an invoice
	// produced, or nil when none exists.
	FindEntryByInvoiceIDInTx(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.LedgerEntry, error)

	// ListEntriesByCounterparty retrieves a paginated list of entries for a counterparty.
	ListEntriesByCounterparty(ctx context.Context, counterpartyID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// FindAllEntriesByCounterparty retrieves every entry of a counterparty in
	// chronological order, for balance and statement computation.
	FindAllEntriesByCounterparty(ctx context.Context, counterpartyID string) ([]domain.LedgerEntry, error)
}

// LedgerWriter defines write operations for ledger entries
type LedgerWriter interface {
	// SaveEntry persists a single manual entry.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// SaveEntryInTx persists an entry within a transaction.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error

	// UpdateEntryInTx updates an existing entry within a transaction.
	UpdateEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error

	// DeleteEntry removes a single entry.
	DeleteEntry(ctx context.Context, entryID string) error

	// DeleteEntriesForInvoiceInTx removes the entries of an invoice within a transaction.
	DeleteEntriesForInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) error
}

// CounterpartyRepositoryFacade combines all counterparty and ledger repository interfaces
// This is a facade for clients that need access to all operations
type CounterpartyRepositoryFacade interface {
	CounterpartyReader
	CounterpartyWriter
	LedgerReader
	LedgerWriter
}

// CounterpartyRepositoryWithTx extends CounterpartyRepositoryFacade with transaction capabilities
type CounterpartyRepositoryWithTx interface {
	CounterpartyRepositoryFacade
	TransactionManager
}
