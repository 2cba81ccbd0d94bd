package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	"github.com/stoktakip/erp_backend/internal/models"
	"github.com/stoktakip/erp_backend/internal/utils/mapping"
	"github.com/stoktakip/erp_backend/internal/utils/pagination"
)

type PgxStockRepository struct {
	BaseRepository
}

// newPgxStockRepository creates a new repository for product and movement data.
func newPgxStockRepository(pool *pgxpool.Pool) portsrepo.StockRepositoryWithTx {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxStockRepository implements portsrepo.StockRepositoryWithTx
var _ portsrepo.StockRepositoryWithTx = (*PgxStockRepository)(nil)

const productColumns = `
	product_id, name, barcode, price, purchase_price, stock_qty, unit, description,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanProduct(row pgx.Row) (models.Product, error) {
	var m models.Product
	err := row.Scan(
		&m.ProductID,
		&m.Name,
		&m.Barcode,
		&m.Price,
		&m.PurchasePrice,
		&m.StockQty,
		&m.Unit,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindProductByID retrieves a specific product by its unique identifier.
func (r *PgxStockRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`

	m, err := scanProduct(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find product by ID "+productID, err)
	}

	domainProduct := mapping.ToDomainProduct(m)
	return &domainProduct, nil
}

func (r *PgxStockRepository) findProductsByIDs(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, productIDs []string, forUpdate bool) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = ANY($1) ORDER BY product_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	query += `;`

	rows, err := q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query products by IDs", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan product row", scanErr)
		}
		result[m.ProductID] = mapping.ToDomainProduct(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating product rows", err)
	}
	return result, nil
}

// FindProductsByIDs retrieves multiple products by their IDs. Missing IDs are
// simply absent from the returned map.
func (r *PgxStockRepository) FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	return r.findProductsByIDs(ctx, r.Pool, productIDs, false)
}

// FindProductsByIDsForUpdate selects products and locks them within a
// transaction. Locking in product_id order keeps concurrent reconciliations
// from deadlocking each other.
func (r *PgxStockRepository) FindProductsByIDsForUpdate(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]domain.Product, error) {
	return r.findProductsByIDs(ctx, tx, productIDs, true)
}

// ListProducts retrieves a paginated list of products using token-based
// pagination, ordered by name.
func (r *PgxStockRepository) ListProducts(ctx context.Context, limit int, nextToken *string, search string) ([]domain.Product, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}

	if search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		baseQuery += ` AND (name ILIKE $` + n + ` OR barcode ILIKE $` + n + `)`
	}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, fields[0], fields[1])
		baseQuery += ` AND (name, product_id) > ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY name, product_id LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query products", err)
	}
	defer rows.Close()

	modelProducts := make([]models.Product, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan product row", scanErr)
		}
		modelProducts = append(modelProducts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating product rows", err)
	}

	var nextTokenVal *string
	results := modelProducts
	if len(modelProducts) > limit {
		last := modelProducts[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.Name, last.ProductID)
		nextTokenVal = &newToken
		results = modelProducts[:limit]
	}

	domainProducts := make([]domain.Product, len(results))
	for i, m := range results {
		domainProducts[i] = mapping.ToDomainProduct(m)
	}
	return domainProducts, nextTokenVal, nil
}

// SaveProduct persists a new product.
func (r *PgxStockRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ProductID,
		m.Name,
		m.Barcode,
		m.Price,
		m.PurchasePrice,
		m.StockQty,
		m.Unit,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert product "+m.ProductID, err)
	}
	return nil
}

// UpdateProduct updates an existing product's details. Stock quantity is not
// touched here, it only moves through movements.
func (r *PgxStockRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		UPDATE products
		SET name = $2,
		    barcode = $3,
		    price = $4,
		    purchase_price = $5,
		    unit = $6,
		    description = $7,
		    last_updated_at = $8,
		    last_updated_by = $9
		WHERE product_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.ProductID,
		m.Name,
		m.Barcode,
		m.Price,
		m.PurchasePrice,
		m.Unit,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update product "+m.ProductID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("product " + m.ProductID + " not found for update")
	}
	return nil
}

// DeleteProduct removes a product. Referencing invoice lines and movements
// keep their snapshot data, the FK sets their product_id to NULL.
func (r *PgxStockRepository) DeleteProduct(ctx context.Context, productID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM products WHERE product_id = $1;`, productID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete product "+productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("product " + productID + " not found for delete")
	}
	return nil
}

// AdjustStockQtyInTx applies signed quantity deltas to multiple products
// within a transaction. Callers lock the affected rows first via
// FindProductsByIDsForUpdate.
func (r *PgxStockRepository) AdjustStockQtyInTx(ctx context.Context, tx pgx.Tx, qtyChanges map[string]int64, userID string, now time.Time) error {
	if len(qtyChanges) == 0 {
		return nil
	}

	query := `
		UPDATE products
		SET stock_qty = stock_qty + $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE product_id = $1;
	`
	batch := &pgx.Batch{}
	for productID, delta := range qtyChanges {
		if delta == 0 {
			continue
		}
		batch.Queue(query, productID, delta, now, userID)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute stock adjustment batch", err)
	}
	return nil
}

const movementColumns = `
	movement_id, product_id, direction, quantity, description, source_invoice_id,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanMovement(row pgx.Row) (models.StockMovement, error) {
	var m models.StockMovement
	err := row.Scan(
		&m.MovementID,
		&m.ProductID,
		&m.Direction,
		&m.Quantity,
		&m.Description,
		&m.SourceInvoiceID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindMovementsByInvoiceID retrieves the movements an invoice produced.
func (r *PgxStockRepository) FindMovementsByInvoiceID(ctx context.Context, invoiceID string) ([]domain.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE source_invoice_id = $1 ORDER BY created_at, movement_id;`

	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query movements for invoice "+invoiceID, err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		m, scanErr := scanMovement(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan movement row", scanErr)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating movement rows", err)
	}
	return mapping.ToDomainStockMovementSlice(movements), nil
}

// ListMovementsByProduct retrieves a paginated list of movements for a
// product, newest first.
func (r *PgxStockRepository) ListMovementsByProduct(ctx context.Context, productID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1`
	args := []interface{}{productID}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastCreatedAt, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		args = append(args, lastCreatedAt, fields[1])
		baseQuery += ` AND (created_at, movement_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY created_at DESC, movement_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query movements for product "+productID, err)
	}
	defer rows.Close()

	modelMovements := make([]models.StockMovement, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanMovement(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan movement row", scanErr)
		}
		modelMovements = append(modelMovements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating movement rows", err)
	}

	var nextTokenVal *string
	results := modelMovements
	if len(modelMovements) > limit {
		last := modelMovements[limit-1]
		newToken := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.MovementID)
		nextTokenVal = &newToken
		results = modelMovements[:limit]
	}

	return mapping.ToDomainStockMovementSlice(results), nextTokenVal, nil
}

// SaveMovement persists a single manual movement.
func (r *PgxStockRepository) SaveMovement(ctx context.Context, movement domain.StockMovement) error {
	m := mapping.ToModelStockMovement(movement)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`,
		m.MovementID,
		m.ProductID,
		m.Direction,
		m.Quantity,
		m.Description,
		m.SourceInvoiceID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert stock movement "+m.MovementID, err)
	}
	return nil
}

// SaveMovementsInTx persists movements within a transaction using a batch.
func (r *PgxStockRepository) SaveMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, movement := range movements {
		m := mapping.ToModelStockMovement(movement)
		batch.Queue(query,
			m.MovementID,
			m.ProductID,
			m.Direction,
			m.Quantity,
			m.Description,
			m.SourceInvoiceID,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute movement insert batch", err)
	}
	return nil
}

// DeleteMovementsForInvoiceInTx removes all movements of an invoice within a
// transaction and returns the deleted rows so their stock effect can be
// reversed by the caller.
func (r *PgxStockRepository) DeleteMovementsForInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.StockMovement, error) {
	query := `DELETE FROM stock_movements WHERE source_invoice_id = $1 RETURNING ` + movementColumns + `;`

	rows, err := tx.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete movements for invoice "+invoiceID, err)
	}
	defer rows.Close()

	deleted := []models.StockMovement{}
	for rows.Next() {
		m, scanErr := scanMovement(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan deleted movement row", scanErr)
		}
		deleted = append(deleted, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating deleted movement rows", err)
	}
	return mapping.ToDomainStockMovementSlice(deleted), nil
}
