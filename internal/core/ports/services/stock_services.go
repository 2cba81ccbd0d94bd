package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/dto"
)

// ProductReaderSvc defines read operations for product data
type ProductReaderSvc interface {
	// GetProductByID retrieves a specific product.
	GetProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// ListProducts retrieves a paginated list of products.
	ListProducts(ctx context.Context, params dto.ListProductsParams) (*dto.ListProductsResponse, error)
}

// ProductWriterSvc defines write operations for product data
type ProductWriterSvc interface {
	// CreateProduct persists a new product.
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, creatorUserID string) (*domain.Product, error)

	// UpdateProduct updates an existing product's details.
	UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, requestingUserID string) (*domain.Product, error)

	// DeleteProduct removes a product, leaving historical rows with nil product IDs.
	DeleteProduct(ctx context.Context, productID string, requestingUserID string) error
}

// MovementSvc defines stock movement operations
type MovementSvc interface {
	// RecordMovement persists a manual stock adjustment and applies its quantity effect.
	RecordMovement(ctx context.Context, req dto.CreateStockMovementRequest, creatorUserID string) (*domain.StockMovement, error)

	// ListMovementsByProduct retrieves a paginated list of movements for a product.
	ListMovementsByProduct(ctx context.Context, productID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error)
}

// StockSyncSvc is the stock leg of the invoice reconciliation cascade.
type StockSyncSvc interface {
	// SyncMovementsForInvoice replaces the invoice's movements with one
	// movement per product-bound line and adjusts product quantities, all
	// within the caller's transaction.
	SyncMovementsForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, lines []domain.InvoiceLine, actorUserID string) error
}

// StockSvcFacade combines all stock-related service interfaces
// This is a facade for clients that need access to all operations
type StockSvcFacade interface {
	ProductReaderSvc
	ProductWriterSvc
	MovementSvc
	StockSyncSvc
}
