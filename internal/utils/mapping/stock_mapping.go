package mapping

import (
	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/models"
)

// ToModelProduct converts a domain Product to a model Product.
func ToModelProduct(d domain.Product) models.Product {
	return models.Product{
		ProductID:     d.ProductID,
		Name:          d.Name,
		Barcode:       d.Barcode,
		Price:         d.Price,
		PurchasePrice: d.PurchasePrice,
		StockQty:      d.StockQty,
		Unit:          d.Unit,
		Description:   d.Description,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProduct converts a model Product to a domain Product.
func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID:     m.ProductID,
		Name:          m.Name,
		Barcode:       m.Barcode,
		Price:         m.Price,
		PurchasePrice: m.PurchasePrice,
		StockQty:      m.StockQty,
		Unit:          m.Unit,
		Description:   m.Description,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStockMovement converts a domain StockMovement to a model StockMovement.
func ToModelStockMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:      d.MovementID,
		ProductID:       d.ProductID,
		Direction:       models.MovementDirection(d.Direction),
		Quantity:        d.Quantity,
		Description:     d.Description,
		SourceInvoiceID: d.SourceInvoiceID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockMovement converts a model StockMovement to a domain StockMovement.
func ToDomainStockMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:      m.MovementID,
		ProductID:       m.ProductID,
		Direction:       domain.MovementDirection(m.Direction),
		Quantity:        m.Quantity,
		Description:     m.Description,
		SourceInvoiceID: m.SourceInvoiceID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStockMovementSlice converts model movements to domain movements.
func ToDomainStockMovementSlice(ms []models.StockMovement) []domain.StockMovement {
	ds := make([]domain.StockMovement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStockMovement(m)
	}
	return ds
}
