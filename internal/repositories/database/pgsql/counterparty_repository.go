package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	"github.com/stoktakip/erp_backend/internal/models"
	"github.com/stoktakip/erp_backend/internal/utils/mapping"
	"github.com/stoktakip/erp_backend/internal/utils/pagination"
)

type PgxCounterpartyRepository struct {
	BaseRepository
}

// newPgxCounterpartyRepository creates a new repository for counterparty and ledger data.
func newPgxCounterpartyRepository(pool *pgxpool.Pool) portsrepo.CounterpartyRepositoryFacade {
	return &PgxCounterpartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCounterpartyRepository implements portsrepo.CounterpartyRepositoryFacade
var _ portsrepo.CounterpartyRepositoryFacade = (*PgxCounterpartyRepository)(nil)

const counterpartyColumns = `
	counterparty_id, name, title, tax_no, phone, email, address, city, kind,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanCounterparty(row pgx.Row) (models.Counterparty, error) {
	var m models.Counterparty
	err := row.Scan(
		&m.CounterpartyID,
		&m.Name,
		&m.Title,
		&m.TaxNo,
		&m.Phone,
		&m.Email,
		&m.Address,
		&m.City,
		&m.Kind,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindCounterpartyByID retrieves a specific counterparty by its unique identifier.
func (r *PgxCounterpartyRepository) FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	query := `SELECT ` + counterpartyColumns + ` FROM counterparties WHERE counterparty_id = $1;`

	m, err := scanCounterparty(r.Pool.QueryRow(ctx, query, counterpartyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find counterparty by ID "+counterpartyID, err)
	}

	domainCounterparty := mapping.ToDomainCounterparty(m)
	return &domainCounterparty, nil
}

// ListCounterparties retrieves a paginated list of counterparties using
// token-based pagination, ordered by name.
func (r *PgxCounterpartyRepository) ListCounterparties(ctx context.Context, limit int, nextToken *string, search string, kind string) ([]domain.Counterparty, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + counterpartyColumns + ` FROM counterparties WHERE 1=1`
	args := []interface{}{}

	if kind != "" {
		args = append(args, kind)
		baseQuery += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		baseQuery += ` AND (name ILIKE $` + n + ` OR title ILIKE $` + n + ` OR tax_no ILIKE $` + n + `)`
	}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, fields[0], fields[1])
		baseQuery += ` AND (name, counterparty_id) > ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY name, counterparty_id LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query counterparties", err)
	}
	defer rows.Close()

	modelCounterparties := make([]models.Counterparty, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanCounterparty(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan counterparty row", scanErr)
		}
		modelCounterparties = append(modelCounterparties, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating counterparty rows", err)
	}

	var nextTokenVal *string
	results := modelCounterparties
	if len(modelCounterparties) > limit {
		last := modelCounterparties[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.Name, last.CounterpartyID)
		nextTokenVal = &newToken
		results = modelCounterparties[:limit]
	}

	domainCounterparties := make([]domain.Counterparty, len(results))
	for i, m := range results {
		domainCounterparties[i] = mapping.ToDomainCounterparty(m)
	}
	return domainCounterparties, nextTokenVal, nil
}

// SaveCounterparty persists a new counterparty.
func (r *PgxCounterpartyRepository) SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	m := mapping.ToModelCounterparty(counterparty)
	query := `
		INSERT INTO counterparties (` + counterpartyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CounterpartyID,
		m.Name,
		m.Title,
		m.TaxNo,
		m.Phone,
		m.Email,
		m.Address,
		m.City,
		m.Kind,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert counterparty "+m.CounterpartyID, err)
	}
	return nil
}

// UpdateCounterparty updates an existing counterparty's details.
func (r *PgxCounterpartyRepository) UpdateCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	m := mapping.ToModelCounterparty(counterparty)
	query := `
		UPDATE counterparties
		SET name = $2,
		    title = $3,
		    tax_no = $4,
		    phone = $5,
		    email = $6,
		    address = $7,
		    city = $8,
		    kind = $9,
		    last_updated_at = $10,
		    last_updated_by = $11
		WHERE counterparty_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.CounterpartyID,
		m.Name,
		m.Title,
		m.TaxNo,
		m.Phone,
		m.Email,
		m.Address,
		m.City,
		m.Kind,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update counterparty "+m.CounterpartyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("counterparty " + m.CounterpartyID + " not found for update")
	}
	return nil
}

// DeleteCounterparty removes a counterparty. Its ledger entries go with it
// through the FK cascade; invoices keep their counterparty_id as NULL.
func (r *PgxCounterpartyRepository) DeleteCounterparty(ctx context.Context, counterpartyID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM counterparties WHERE counterparty_id = $1;`, counterpartyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete counterparty "+counterpartyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("counterparty " + counterpartyID + " not found for delete")
	}
	return nil
}

const ledgerEntryColumns = `
	entry_id, counterparty_id, movement_type, amount, description, document_no,
	source_invoice_id, entry_date, payment_method,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanLedgerEntry(row pgx.Row) (models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.CounterpartyID,
		&m.MovementType,
		&m.Amount,
		&m.Description,
		&m.DocumentNo,
		&m.SourceInvoiceID,
		&m.EntryDate,
		&m.PaymentMethod,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindEntryByID retrieves a specific ledger entry by its unique identifier.
func (r *PgxCounterpartyRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE entry_id = $1;`

	m, err := scanLedgerEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger entry "+entryID, err)
	}

	domainEntry := mapping.ToDomainLedgerEntry(m)
	return &domainEntry, nil
}

// FindEntryByInvoiceIDInTx retrieves the single ledger entry an invoice
// produced, or nil when none exists.
func (r *PgxCounterpartyRepository) FindEntryByInvoiceIDInTx(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE source_invoice_id = $1;`

	m, err := scanLedgerEntry(tx.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger entry for invoice "+invoiceID, err)
	}

	domainEntry := mapping.ToDomainLedgerEntry(m)
	return &domainEntry, nil
}

// ListEntriesByCounterparty retrieves a paginated list of entries for a
// counterparty, newest first.
func (r *PgxCounterpartyRepository) ListEntriesByCounterparty(ctx context.Context, counterpartyID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE counterparty_id = $1`
	args := []interface{}{counterpartyID}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastEntryDate, lastCreatedAt)
		baseQuery += ` AND (entry_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY entry_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger entries for counterparty "+counterpartyID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.LedgerEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanLedgerEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger entry row", scanErr)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		newToken := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	return mapping.ToDomainLedgerEntrySlice(results), nextTokenVal, nil
}

// FindAllEntriesByCounterparty retrieves every entry of a counterparty in
// chronological order, for balance and statement computation.
func (r *PgxCounterpartyRepository) FindAllEntriesByCounterparty(ctx context.Context, counterpartyID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE counterparty_id = $1 ORDER BY entry_date, created_at, entry_id;`

	rows, err := r.Pool.Query(ctx, query, counterpartyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query all ledger entries for counterparty "+counterpartyID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, scanErr := scanLedgerEntry(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row", scanErr)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

const insertLedgerEntrySQL = `
	INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

func ledgerEntryInsertArgs(m models.LedgerEntry) []interface{} {
	return []interface{}{
		m.EntryID,
		m.CounterpartyID,
		m.MovementType,
		m.Amount,
		m.Description,
		m.DocumentNo,
		m.SourceInvoiceID,
		m.EntryDate,
		m.PaymentMethod,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// SaveEntry persists a single manual entry.
func (r *PgxCounterpartyRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	if _, err := r.Pool.Exec(ctx, insertLedgerEntrySQL, ledgerEntryInsertArgs(m)...); err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entry "+m.EntryID, err)
	}
	return nil
}

// SaveEntryInTx persists an entry within a transaction.
func (r *PgxCounterpartyRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	if _, err := tx.Exec(ctx, insertLedgerEntrySQL, ledgerEntryInsertArgs(m)...); err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entry "+m.EntryID, err)
	}
	return nil
}

// UpdateEntryInTx updates an existing entry within a transaction.
func (r *PgxCounterpartyRepository) UpdateEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	query := `
		UPDATE ledger_entries
		SET counterparty_id = $2,
		    movement_type = $3,
		    amount = $4,
		    description = $5,
		    document_no = $6,
		    entry_date = $7,
		    payment_method = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE entry_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.EntryID,
		m.CounterpartyID,
		m.MovementType,
		m.Amount,
		m.Description,
		m.DocumentNo,
		m.EntryDate,
		m.PaymentMethod,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update ledger entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger entry " + m.EntryID + " not found for update")
	}
	return nil
}

// DeleteEntry removes a single entry.
func (r *PgxCounterpartyRepository) DeleteEntry(ctx context.Context, entryID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM ledger_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete ledger entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger entry " + entryID + " not found for delete")
	}
	return nil
}

// DeleteEntriesForInvoiceInTx removes the entries of an invoice within a
// transaction. Zero deleted rows is not an error, the invoice may simply have
// no ledger leg.
func (r *PgxCounterpartyRepository) DeleteEntriesForInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM ledger_entries WHERE source_invoice_id = $1;`, invoiceID); err != nil {
		return apperrors.NewAppError(500, "failed to delete ledger entries for invoice "+invoiceID, err)
	}
	return nil
}
