package domain

import (
	"github.com/shopspring/decimal"
)

// MovementDirection is the in/out direction of a stock movement. The wire
// values match the legacy data set.
type MovementDirection string

const (
	StockIn  MovementDirection = "giriş"
	StockOut MovementDirection = "çıkış"
)

// Product is an inventory item. StockQty is maintained transactionally by the
// stock movement sync; it is never recomputed from scratch on read.
type Product struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	Barcode       *string         `json:"barcode,omitempty"`
	Price         decimal.Decimal `json:"price"` // sale price, tax inclusive in the legacy data
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	StockQty      int64           `json:"stockQty"`
	Unit          string          `json:"unit"`
	Description   string          `json:"description"`
	AuditFields
}

// StockMovement is one inventory in/out event. Movements derived from an
// invoice carry SourceInvoiceID; ProductID may be nil for inert history rows
// whose product was deleted later.
type StockMovement struct {
	MovementID      string            `json:"movementID"`
	ProductID       *string           `json:"productID"`
	Direction       MovementDirection `json:"direction"`
	Quantity        int64             `json:"quantity"` // > 0
	Description     string            `json:"description"`
	SourceInvoiceID *string           `json:"sourceInvoiceID,omitempty"`
	AuditFields
}
