package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// CreateCounterpartyRequest carries the fields of a new customer or supplier.
type CreateCounterpartyRequest struct {
	Name    string                  `json:"name" binding:"required"`
	Title   string                  `json:"title"`
	Kind    domain.CounterpartyKind `json:"kind" binding:"required,oneof=Bireysel Kurumsal"`
	TaxNo   string                  `json:"taxNo" binding:"omitempty,taxno"`
	Phone   string                  `json:"phone"`
	Email   string                  `json:"email" binding:"omitempty,email"`
	Address string                  `json:"address"`
	City    string                  `json:"city"`
}

// UpdateCounterpartyRequest carries counterparty updates. Nil fields stay
// unchanged.
type UpdateCounterpartyRequest struct {
	Name    *string                  `json:"name"`
	Title   *string                  `json:"title"`
	Kind    *domain.CounterpartyKind `json:"kind" binding:"omitempty,oneof=Bireysel Kurumsal"`
	TaxNo   *string                  `json:"taxNo" binding:"omitempty,taxno"`
	Phone   *string                  `json:"phone"`
	Email   *string                  `json:"email" binding:"omitempty,email"`
	Address *string                  `json:"address"`
	City    *string                  `json:"city"`
}

// ReceiptRequest records a manual ledger movement against a counterparty:
// a collection, payment or refund entered outside the invoice cascade.
type ReceiptRequest struct {
	MovementType  domain.LedgerMovementType `json:"movementType" binding:"required,oneof=tahsilat odeme iade"`
	Amount        decimal.Decimal           `json:"amount" binding:"required"`
	EntryDate     time.Time                 `json:"entryDate" binding:"required"`
	Description   string                    `json:"description"`
	DocumentNo    string                    `json:"documentNo"`
	PaymentMethod string                    `json:"paymentMethod"`
}

// ListCounterpartiesParams holds filters for the counterparty list endpoint.
type ListCounterpartiesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Search    string  `form:"search"` // matches name, title or tax no
	Kind      string  `form:"kind"`
}

// CounterpartyResponse is the API shape of a counterparty.
type CounterpartyResponse struct {
	CounterpartyID string    `json:"counterpartyID"`
	Name           string    `json:"name"`
	Title          string    `json:"title,omitempty"`
	Kind           string    `json:"kind"`
	TaxNo          string    `json:"taxNo,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListCounterpartiesResponse is a page of counterparties plus the next cursor.
type ListCounterpartiesResponse struct {
	Counterparties []CounterpartyResponse `json:"counterparties"`
	NextToken      *string                `json:"nextToken,omitempty"`
}

// LedgerEntryResponse is the API shape of one ledger movement.
type LedgerEntryResponse struct {
	EntryID         string          `json:"entryID"`
	CounterpartyID  string          `json:"counterpartyID"`
	MovementType    string          `json:"movementType"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	DocumentNo      string          `json:"documentNo,omitempty"`
	SourceInvoiceID *string         `json:"sourceInvoiceID,omitempty"`
	EntryDate       time.Time       `json:"entryDate"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// BalanceResponse is the net open balance of a counterparty. Positive means
// the counterparty owes us.
type BalanceResponse struct {
	CounterpartyID string          `json:"counterpartyID"`
	Balance        decimal.Decimal `json:"balance"`
	AsOf           time.Time       `json:"asOf"`
}

// StatementLineResponse is one row of a counterparty statement with the
// running balance after the movement.
type StatementLineResponse struct {
	Entry   LedgerEntryResponse `json:"entry"`
	Debit   decimal.Decimal     `json:"debit"`
	Credit  decimal.Decimal     `json:"credit"`
	Balance decimal.Decimal     `json:"balance"`
}

// StatementResponse is the full chronological statement of a counterparty.
type StatementResponse struct {
	CounterpartyID string                  `json:"counterpartyID"`
	Lines          []StatementLineResponse `json:"lines"`
	ClosingBalance decimal.Decimal         `json:"closingBalance"`
}

// ToCounterpartyResponse converts a domain counterparty to its API shape.
func ToCounterpartyResponse(c *domain.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		CounterpartyID: c.CounterpartyID,
		Name:           c.Name,
		Title:          c.Title,
		Kind:           string(c.Kind),
		TaxNo:          c.TaxNo,
		Phone:          c.Phone,
		Email:          c.Email,
		Address:        c.Address,
		City:           c.City,
		CreatedAt:      c.CreatedAt,
	}
}

// ToLedgerEntryResponse converts a domain ledger entry to its API shape.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:         e.EntryID,
		CounterpartyID:  e.CounterpartyID,
		MovementType:    string(e.MovementType),
		Amount:          e.Amount,
		Description:     e.Description,
		DocumentNo:      e.DocumentNo,
		SourceInvoiceID: e.SourceInvoiceID,
		EntryDate:       e.EntryDate,
		PaymentMethod:   e.PaymentMethod,
		CreatedAt:       e.CreatedAt,
	}
}

// ToStatementLineResponse converts a domain statement line to its API shape.
func ToStatementLineResponse(l *domain.StatementLine) StatementLineResponse {
	return StatementLineResponse{
		Entry:   ToLedgerEntryResponse(&l.Entry),
		Debit:   l.Debit,
		Credit:  l.Credit,
		Balance: l.Balance,
	}
}
