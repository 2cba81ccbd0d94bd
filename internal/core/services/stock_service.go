package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
)

// stockService provides product CRUD, manual movements and the stock leg of
// the invoice reconciliation cascade.
type stockService struct {
	stockRepo portsrepo.StockRepositoryWithTx
}

// NewStockService creates a new StockService.
func NewStockService(stockRepo portsrepo.StockRepositoryWithTx) portssvc.StockSvcFacade {
	return &stockService{stockRepo: stockRepo}
}

// Ensure stockService implements the portssvc.StockSvcFacade interface
var _ portssvc.StockSvcFacade = (*stockService)(nil)

// movementDirectionFor maps an invoice type to the direction of the stock
// movements it produces: a sale takes goods out, a purchase brings them in.
func movementDirectionFor(invoiceType domain.InvoiceType) (domain.MovementDirection, error) {
	switch invoiceType {
	case domain.Sale:
		return domain.StockOut, nil
	case domain.Purchase:
		return domain.StockIn, nil
	default:
		return "", fmt.Errorf("unknown invoice type '%s'", invoiceType)
	}
}

// movementQtyEffect returns the signed effect of a movement on its product's
// stock quantity.
func movementQtyEffect(m domain.StockMovement) int64 {
	if m.Direction == domain.StockIn {
		return m.Quantity
	}
	return -m.Quantity
}

func (s *stockService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, creatorUserID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Price.IsNegative() || req.PurchasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: product prices must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ProductID:     uuid.NewString(),
		Name:          req.Name,
		Barcode:       req.Barcode,
		Price:         req.Price,
		PurchasePrice: req.PurchasePrice,
		Unit:          req.Unit,
		Description:   req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.stockRepo.SaveProduct(ctx, product); err != nil {
		logger.Error("Failed to save product", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	logger.Info("Product created successfully", slog.String("product_id", product.ProductID))
	return &product, nil
}

func (s *stockService) GetProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.stockRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	return product, nil
}

func (s *stockService) ListProducts(ctx context.Context, params dto.ListProductsParams) (*dto.ListProductsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	products, nextToken, err := s.stockRepo.ListProducts(ctx, limit, params.NextToken, params.Search)
	if err != nil {
		logger.Error("Failed to list products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	responses := make([]dto.ProductResponse, len(products))
	for i := range products {
		responses[i] = dto.ToProductResponse(&products[i])
	}
	return &dto.ListProductsResponse{Products: responses, NextToken: nextToken}, nil
}

func (s *stockService) UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, requestingUserID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	product, err := s.stockRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		product.Name = *req.Name
		updated = true
	}
	if req.Barcode != nil {
		product.Barcode = req.Barcode
		updated = true
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product price must not be negative", apperrors.ErrValidation)
		}
		product.Price = *req.Price
		updated = true
	}
	if req.PurchasePrice != nil {
		if req.PurchasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: purchase price must not be negative", apperrors.ErrValidation)
		}
		product.PurchasePrice = *req.PurchasePrice
		updated = true
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
		updated = true
	}
	if req.Description != nil {
		product.Description = *req.Description
		updated = true
	}
	if !updated {
		return product, nil
	}

	product.LastUpdatedAt = time.Now().UTC()
	product.LastUpdatedBy = requestingUserID

	if err := s.stockRepo.UpdateProduct(ctx, *product); err != nil {
		logger.Error("Failed to update product", slog.String("error", err.Error()), slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *stockService) DeleteProduct(ctx context.Context, productID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.stockRepo.FindProductByID(ctx, productID); err != nil {
		return err
	}
	if err := s.stockRepo.DeleteProduct(ctx, productID); err != nil {
		logger.Error("Failed to delete product", slog.String("error", err.Error()), slog.String("product_id", productID))
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("Product deleted", slog.String("product_id", productID), slog.String("user_id", requestingUserID))
	return nil
}

// RecordMovement persists a manual stock adjustment and applies its quantity
// effect to the product, atomically.
func (s *stockService) RecordMovement(ctx context.Context, req dto.CreateStockMovementRequest, creatorUserID string) (*domain.StockMovement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Direction != domain.StockIn && req.Direction != domain.StockOut {
		return nil, fmt.Errorf("%w: unknown movement direction '%s'", apperrors.ErrValidation, req.Direction)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: movement quantity must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	productID := req.ProductID
	movement := domain.StockMovement{
		MovementID:  uuid.NewString(),
		ProductID:   &productID,
		Direction:   req.Direction,
		Quantity:    req.Quantity,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	tx, err := s.stockRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := s.stockRepo.Rollback(ctx, tx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error("Failed to rollback transaction", slog.String("error", err.Error()))
		}
	}()

	products, err := s.stockRepo.FindProductsByIDsForUpdate(ctx, tx, []string{req.ProductID})
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	if _, found := products[req.ProductID]; !found {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, req.ProductID)
	}

	if err := s.stockRepo.SaveMovementsInTx(ctx, tx, []domain.StockMovement{movement}); err != nil {
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}
	qtyChanges := map[string]int64{req.ProductID: movementQtyEffect(movement)}
	if err := s.stockRepo.AdjustStockQtyInTx(ctx, tx, qtyChanges, creatorUserID, now); err != nil {
		return nil, fmt.Errorf("failed to adjust stock quantity: %w", err)
	}

	if err := s.stockRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info("Stock movement recorded", slog.String("movement_id", movement.MovementID), slog.String("product_id", req.ProductID))
	return &movement, nil
}

func (s *stockService) ListMovementsByProduct(ctx context.Context, productID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.stockRepo.ListMovementsByProduct(ctx, productID, limit, nextToken)
}

// SyncMovementsForInvoice makes the stored movements of an invoice equal to
// one movement per product-bound line, replacing whatever was there before.
// Deleted movements have their stock effect reversed and new ones applied, so
// running the sync twice with the same lines is a no-op on quantities.
func (s *stockService) SyncMovementsForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, lines []domain.InvoiceLine, actorUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	direction, err := movementDirectionFor(invoice.Type)
	if err != nil {
		return err
	}
	if invoice.InvoiceNo == "" {
		return fmt.Errorf("%w: invoice %s has no number assigned, cannot sync stock movements", apperrors.ErrConfiguration, invoice.InvoiceID)
	}

	removed, err := s.stockRepo.DeleteMovementsForInvoiceInTx(ctx, tx, invoice.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to delete prior movements for invoice %s: %w", invoice.InvoiceID, err)
	}

	qtyChanges := make(map[string]int64)
	for _, m := range removed {
		if m.ProductID == nil {
			continue
		}
		qtyChanges[*m.ProductID] -= movementQtyEffect(m)
	}

	now := time.Now().UTC()
	movements := make([]domain.StockMovement, 0, len(lines))
	for _, line := range lines {
		// Service-only lines carry no product and produce no movement.
		if line.ProductID == nil {
			continue
		}
		movement := domain.StockMovement{
			MovementID:      uuid.NewString(),
			ProductID:       line.ProductID,
			Direction:       direction,
			Quantity:        line.Quantity,
			Description:     fmt.Sprintf("Fatura: %s", invoice.InvoiceNo),
			SourceInvoiceID: &invoice.InvoiceID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorUserID,
			},
		}
		movements = append(movements, movement)
		qtyChanges[*line.ProductID] += movementQtyEffect(movement)
	}

	if len(movements) > 0 {
		productIDs := make([]string, 0, len(movements))
		for _, m := range movements {
			productIDs = append(productIDs, *m.ProductID)
		}
		if _, err := s.stockRepo.FindProductsByIDsForUpdate(ctx, tx, productIDs); err != nil {
			return fmt.Errorf("failed to lock products for invoice %s: %w", invoice.InvoiceID, err)
		}
		if err := s.stockRepo.SaveMovementsInTx(ctx, tx, movements); err != nil {
			return fmt.Errorf("failed to save movements for invoice %s: %w", invoice.InvoiceID, err)
		}
	}

	// Drop zero deltas so the quantity update touches only changed products.
	for id, delta := range qtyChanges {
		if delta == 0 {
			delete(qtyChanges, id)
		}
	}
	if len(qtyChanges) > 0 {
		if err := s.stockRepo.AdjustStockQtyInTx(ctx, tx, qtyChanges, actorUserID, now); err != nil {
			return fmt.Errorf("failed to adjust stock quantities for invoice %s: %w", invoice.InvoiceID, err)
		}
	}

	logger.Debug("Stock movements synced for invoice",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.Int("removed", len(removed)),
		slog.Int("created", len(movements)),
	)
	return nil
}
