package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// CreateProductRequest carries the fields of a new product.
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Barcode       *string         `json:"barcode"`
	Price         decimal.Decimal `json:"price"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Unit          string          `json:"unit"`
	Description   string          `json:"description"`
}

// UpdateProductRequest carries product updates. Nil fields stay unchanged.
// Stock quantity is never set directly; it moves only through movements.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Barcode       *string          `json:"barcode"`
	Price         *decimal.Decimal `json:"price"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	Unit          *string          `json:"unit"`
	Description   *string          `json:"description"`
}

// CreateStockMovementRequest records a manual stock adjustment outside the
// invoice cascade.
type CreateStockMovementRequest struct {
	ProductID   string                   `json:"productID" binding:"required"`
	Direction   domain.MovementDirection `json:"direction" binding:"required"`
	Quantity    int64                    `json:"quantity" binding:"required,gt=0"`
	Description string                   `json:"description"`
}

// ListProductsParams holds filters for the product list endpoint.
type ListProductsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Search    string  `form:"search"` // matches name or barcode
}

// ProductResponse is the API shape of a product.
type ProductResponse struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	Barcode       *string         `json:"barcode,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	StockQty      int64           `json:"stockQty"`
	Unit          string          `json:"unit,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListProductsResponse is a page of products plus the next cursor.
type ListProductsResponse struct {
	Products  []ProductResponse `json:"products"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// StockMovementResponse is the API shape of one stock movement.
type StockMovementResponse struct {
	MovementID      string    `json:"movementID"`
	ProductID       *string   `json:"productID"`
	Direction       string    `json:"direction"`
	Quantity        int64     `json:"quantity"`
	Description     string    `json:"description,omitempty"`
	SourceInvoiceID *string   `json:"sourceInvoiceID,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToProductResponse converts a domain product to its API shape.
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ProductID:     p.ProductID,
		Name:          p.Name,
		Barcode:       p.Barcode,
		Price:         p.Price,
		PurchasePrice: p.PurchasePrice,
		StockQty:      p.StockQty,
		Unit:          p.Unit,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
	}
}

// ToStockMovementResponse converts a domain stock movement to its API shape.
func ToStockMovementResponse(m *domain.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		MovementID:      m.MovementID,
		ProductID:       m.ProductID,
		Direction:       string(m.Direction),
		Quantity:        m.Quantity,
		Description:     m.Description,
		SourceInvoiceID: m.SourceInvoiceID,
		CreatedAt:       m.CreatedAt,
	}
}
