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

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice and line data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryWithTx {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryWithTx
var _ portsrepo.InvoiceRepositoryWithTx = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `
	invoice_id, invoice_no, counterparty_id, invoice_date, due_date, type, status,
	discount_pct, subtotal, tax_total, discount_amount, grand_total, note, version,
	created_at, created_by, last_updated_at, last_updated_by
`

// scanInvoice scans one invoice row in invoiceColumns order.
func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.InvoiceNo,
		&m.CounterpartyID,
		&m.InvoiceDate,
		&m.DueDate,
		&m.Type,
		&m.Status,
		&m.DiscountPct,
		&m.Subtotal,
		&m.TaxTotal,
		&m.DiscountAmount,
		&m.GrandTotal,
		&m.Note,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindInvoiceByID retrieves an invoice header by its ID.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`

	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice by ID "+invoiceID, err)
	}

	domainInvoice := mapping.ToDomainInvoice(m)
	return &domainInvoice, nil
}

// FindInvoiceByNo retrieves an invoice header by its human-readable number.
func (r *PgxInvoiceRepository) FindInvoiceByNo(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_no = $1;`

	m, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice by no "+invoiceNo, err)
	}

	domainInvoice := mapping.ToDomainInvoice(m)
	return &domainInvoice, nil
}

// FindInvoiceByIDForUpdate selects an invoice header and locks its row within a transaction.
func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1 FOR UPDATE;`

	m, err := scanInvoice(tx.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock invoice "+invoiceID, err)
	}

	domainInvoice := mapping.ToDomainInvoice(m)
	return &domainInvoice, nil
}

// ListInvoices retrieves a paginated list of invoice headers using token-based pagination.
// The search term matches the invoice number and the counterparty name.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, limit int, nextToken *string, filter portsrepo.InvoiceFilter) ([]domain.Invoice, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT i.invoice_id, i.invoice_no, i.counterparty_id, i.invoice_date, i.due_date, i.type, i.status,
		       i.discount_pct, i.subtotal, i.tax_total, i.discount_amount, i.grand_total, i.note, i.version,
		       i.created_at, i.created_by, i.last_updated_at, i.last_updated_by
		FROM invoices i
		LEFT JOIN counterparties c ON i.counterparty_id = c.counterparty_id
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Type != "" {
		args = append(args, filter.Type)
		baseQuery += ` AND i.type = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		baseQuery += ` AND i.status = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		baseQuery += ` AND (i.invoice_no ILIKE $` + n + ` OR c.name ILIKE $` + n + `)`
	}

	// Stable ordering: invoice_date DESC with created_at DESC as tie-breaker.
	orderByClause := `ORDER BY i.invoice_date DESC, i.created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		baseQuery += ` AND (i.invoice_date, i.created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query invoices", err)
	}
	defer rows.Close()

	modelInvoices := make([]models.Invoice, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanInvoice(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan invoice row", scanErr)
		}
		modelInvoices = append(modelInvoices, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}

	var nextTokenVal *string
	results := modelInvoices
	if len(modelInvoices) > limit {
		last := modelInvoices[limit-1]
		newToken := pagination.EncodeToken(last.InvoiceDate, last.CreatedAt)
		nextTokenVal = &newToken
		results = modelInvoices[:limit]
	}

	domainInvoices := make([]domain.Invoice, len(results))
	for i, m := range results {
		domainInvoices[i] = mapping.ToDomainInvoice(m)
	}
	return domainInvoices, nextTokenVal, nil
}

// SaveInvoiceInTx persists a new invoice header within a transaction.
func (r *PgxInvoiceRepository) SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.InvoiceID,
		m.InvoiceNo,
		m.CounterpartyID,
		m.InvoiceDate,
		m.DueDate,
		m.Type,
		m.Status,
		m.DiscountPct,
		m.Subtotal,
		m.TaxTotal,
		m.DiscountAmount,
		m.GrandTotal,
		m.Note,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert invoice "+m.InvoiceID, err)
	}
	return nil
}

// UpdateInvoiceInTx updates an invoice header within a transaction, guarded by
// its version. A zero row count means the row is gone or someone else bumped
// the version first.
func (r *PgxInvoiceRepository) UpdateInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	query := `
		UPDATE invoices
		SET counterparty_id = $2,
		    invoice_date = $3,
		    due_date = $4,
		    status = $5,
		    discount_pct = $6,
		    subtotal = $7,
		    tax_total = $8,
		    discount_amount = $9,
		    grand_total = $10,
		    note = $11,
		    version = version + 1,
		    last_updated_at = $12,
		    last_updated_by = $13
		WHERE invoice_id = $1 AND version = $14;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.InvoiceID,
		m.CounterpartyID,
		m.InvoiceDate,
		m.DueDate,
		m.Status,
		m.DiscountPct,
		m.Subtotal,
		m.TaxTotal,
		m.DiscountAmount,
		m.GrandTotal,
		m.Note,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice "+m.InvoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// DeleteInvoiceInTx removes an invoice header within a transaction.
func (r *PgxInvoiceRepository) DeleteInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE invoice_id = $1;`, invoiceID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete invoice "+invoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice " + invoiceID + " not found for delete")
	}
	return nil
}

// AllocateInvoiceSeq atomically claims the next sequence number for a prefix
// and date. The upsert keeps one counter row per prefix per day; the counter
// only grows, so deleting the latest invoice never frees its number.
func (r *PgxInvoiceRepository) AllocateInvoiceSeq(ctx context.Context, tx pgx.Tx, prefix string, dateKey string) (int, error) {
	query := `
		INSERT INTO invoice_sequences (prefix, date_key, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, date_key)
		DO UPDATE SET last_seq = invoice_sequences.last_seq + 1
		RETURNING last_seq;
	`
	var seq int
	if err := tx.QueryRow(ctx, query, prefix, dateKey).Scan(&seq); err != nil {
		return 0, apperrors.NewAppError(500, "failed to allocate invoice sequence for "+prefix+"-"+dateKey, err)
	}
	return seq, nil
}

const invoiceLineColumns = `
	line_id, invoice_id, product_id, product_name, quantity, unit_price,
	tax_rate_pct, tax_amount, line_total, seq_no
`

// scanInvoiceLine scans one line row in invoiceLineColumns order.
func scanInvoiceLine(row pgx.Row) (models.InvoiceLine, error) {
	var m models.InvoiceLine
	err := row.Scan(
		&m.LineID,
		&m.InvoiceID,
		&m.ProductID,
		&m.ProductName,
		&m.Quantity,
		&m.UnitPrice,
		&m.TaxRatePct,
		&m.TaxAmount,
		&m.LineTotal,
		&m.SeqNo,
	)
	return m, err
}

// FindLineByID retrieves an invoice line by its ID.
func (r *PgxInvoiceRepository) FindLineByID(ctx context.Context, lineID string) (*domain.InvoiceLine, error) {
	query := `SELECT ` + invoiceLineColumns + ` FROM invoice_lines WHERE line_id = $1;`

	m, err := scanInvoiceLine(r.Pool.QueryRow(ctx, query, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice line "+lineID, err)
	}

	domainLine := mapping.ToDomainInvoiceLine(m)
	return &domainLine, nil
}

func (r *PgxInvoiceRepository) findLines(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, invoiceID string) ([]domain.InvoiceLine, error) {
	query := `SELECT ` + invoiceLineColumns + ` FROM invoice_lines WHERE invoice_id = $1 ORDER BY seq_no, line_id;`

	rows, err := q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for invoice "+invoiceID, err)
	}
	defer rows.Close()

	lines := []models.InvoiceLine{}
	for rows.Next() {
		m, scanErr := scanInvoiceLine(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for invoice "+invoiceID, scanErr)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for invoice "+invoiceID, err)
	}
	return mapping.ToDomainInvoiceLineSlice(lines), nil
}

// FindLinesByInvoiceID retrieves all lines of an invoice ordered by sequence number.
func (r *PgxInvoiceRepository) FindLinesByInvoiceID(ctx context.Context, invoiceID string) ([]domain.InvoiceLine, error) {
	return r.findLines(ctx, r.Pool, invoiceID)
}

// FindLinesByInvoiceIDInTx retrieves all lines of an invoice within a transaction.
func (r *PgxInvoiceRepository) FindLinesByInvoiceIDInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoiceLine, error) {
	return r.findLines(ctx, tx, invoiceID)
}

// CountLinesByInvoiceID returns the number of lines on an invoice.
func (r *PgxInvoiceRepository) CountLinesByInvoiceID(ctx context.Context, invoiceID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_lines WHERE invoice_id = $1;`, invoiceID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count lines for invoice "+invoiceID, err)
	}
	return count, nil
}

// SaveLinesInTx persists invoice lines within a transaction using a batch.
func (r *PgxInvoiceRepository) SaveLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO invoice_lines (` + invoiceLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range lines {
		m := mapping.ToModelInvoiceLine(line)
		batch.Queue(query,
			m.LineID,
			m.InvoiceID,
			m.ProductID,
			m.ProductName,
			m.Quantity,
			m.UnitPrice,
			m.TaxRatePct,
			m.TaxAmount,
			m.LineTotal,
			m.SeqNo,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line insert batch", err)
	}
	return nil
}

// UpdateLineInTx updates an existing invoice line within a transaction.
func (r *PgxInvoiceRepository) UpdateLineInTx(ctx context.Context, tx pgx.Tx, line domain.InvoiceLine) error {
	m := mapping.ToModelInvoiceLine(line)
	query := `
		UPDATE invoice_lines
		SET product_id = $2,
		    product_name = $3,
		    quantity = $4,
		    unit_price = $5,
		    tax_rate_pct = $6,
		    tax_amount = $7,
		    line_total = $8,
		    seq_no = $9
		WHERE line_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.LineID,
		m.ProductID,
		m.ProductName,
		m.Quantity,
		m.UnitPrice,
		m.TaxRatePct,
		m.TaxAmount,
		m.LineTotal,
		m.SeqNo,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice line "+m.LineID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice line " + m.LineID + " not found for update")
	}
	return nil
}

// DeleteLineInTx removes an invoice line within a transaction.
func (r *PgxInvoiceRepository) DeleteLineInTx(ctx context.Context, tx pgx.Tx, lineID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE line_id = $1;`, lineID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete invoice line "+lineID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice line " + lineID + " not found for delete")
	}
	return nil
}
