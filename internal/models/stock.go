package models

import (
	"github.com/shopspring/decimal"
)

// MovementDirection mirrors domain.MovementDirection at the persistence layer.
type MovementDirection string

const (
	StockIn  MovementDirection = "giriş"
	StockOut MovementDirection = "çıkış"
)

// Product is the products table row.
type Product struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	Barcode       *string         `json:"barcode"`
	Price         decimal.Decimal `json:"price"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	StockQty      int64           `json:"stockQty"`
	Unit          string          `json:"unit"`
	Description   string          `json:"description"`
	AuditFields
}

// StockMovement is the stock_movements table row.
type StockMovement struct {
	MovementID      string            `json:"movementID"`
	ProductID       *string           `json:"productID"`
	Direction       MovementDirection `json:"direction"`
	Quantity        int64             `json:"quantity"`
	Description     string            `json:"description"`
	SourceInvoiceID *string           `json:"sourceInvoiceID"`
	AuditFields
}
