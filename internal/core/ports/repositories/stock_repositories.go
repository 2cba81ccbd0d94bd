package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// ProductReader defines read operations for product data
type ProductReader interface {
	// FindProductByID retrieves a specific product by its unique identifier.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// FindProductsByIDs retrieves multiple products by their IDs.
	FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error)

	// ListProducts retrieves a paginated list of products using token-based pagination.
	ListProducts(ctx context.Context, limit int, nextToken *string, search string) ([]domain.Product, *string, error)
}

// ProductWriter defines write operations for product data
type ProductWriter interface {
	// SaveProduct persists a new product.
	SaveProduct(ctx context.Context, product domain.Product) error

	// UpdateProduct updates an existing product's details.
	UpdateProduct(ctx context.Context, product domain.Product) error

	// DeleteProduct removes a product. Invoice lines and movements that
	// reference it keep their snapshot data with a nil product ID.
	DeleteProduct(ctx context.Context, productID string) error
}

// ProductTransactionSupport defines operations that support stock reconciliation
type ProductTransactionSupport interface {
	// FindProductsByIDsForUpdate selects products and locks them for update within a transaction.
	FindProductsByIDsForUpdate(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]domain.Product, error)

	// AdjustStockQtyInTx applies signed quantity deltas to multiple products within a transaction.
	AdjustStockQtyInTx(ctx context.Context, tx pgx.Tx, qtyChanges map[string]int64, userID string, now time.Time) error
}

// MovementReader defines read operations for stock movement data
type MovementReader interface {
	// FindMovementsByInvoiceID retrieves the movements an invoice produced.
	FindMovementsByInvoiceID(ctx context.Context, invoiceID string) ([]domain.StockMovement, error)

	// ListMovementsByProduct retrieves a paginated list of movements for a product.
	ListMovementsByProduct(ctx context.Context, productID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error)
}

// MovementWriter defines write operations for stock movement data
type MovementWriter interface {
	// SaveMovement persists a single manual movement.
	SaveMovement(ctx context.Context, movement domain.StockMovement) error

	// SaveMovementsInTx persists movements within a transaction.
	SaveMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error

	// DeleteMovementsForInvoiceInTx removes all movements of an invoice within a
	// transaction and returns the deleted rows so their stock effect can be reversed.
	DeleteMovementsForInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.StockMovement, error)
}

// StockRepositoryFacade combines all product and movement repository interfaces
// This is a facade for clients that need access to all operations
type StockRepositoryFacade interface {
	ProductReader
	ProductWriter
	ProductTransactionSupport
	MovementReader
	MovementWriter
}

// StockRepositoryWithTx extends StockRepositoryFacade with transaction capabilities
type StockRepositoryWithTx interface {
	StockRepositoryFacade
	TransactionManager
}
