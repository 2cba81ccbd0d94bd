package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// DefaultTaxRatePct is substituted when a line arrives with no tax rate.
const DefaultTaxRatePct = 20

var hundred = decimal.NewFromInt(100)

// Round2 rounds half-up to 2 decimal places. Rounding is applied at every
// intermediate step so line-level and invoice-level totals cannot drift.
// decimal.Round is half-away-from-zero, which is half-up for the non-negative
// amounts handled here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmounts holds the derived amounts of a single invoice line.
type LineAmounts struct {
	LineTotal  decimal.Decimal // unit price x quantity, tax-exclusive
	TaxAmount  decimal.Decimal
	TaxRatePct int // the rate actually applied (default substituted)
}

// CalculateLineAmounts computes one line's total and tax from quantity, unit
// price and tax rate. A zero tax rate means "not supplied" and the default
// rate is applied, matching the legacy data where every row carried 20%.
func CalculateLineAmounts(quantity int64, unitPrice decimal.Decimal, taxRatePct int) (LineAmounts, error) {
	if quantity <= 0 {
		return LineAmounts{}, fmt.Errorf("%w: quantity must be positive, got %d", apperrors.ErrValidation, quantity)
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, fmt.Errorf("%w: unit price must not be negative, got %s", apperrors.ErrValidation, unitPrice)
	}
	if taxRatePct < 0 || taxRatePct > 100 {
		return LineAmounts{}, fmt.Errorf("%w: tax rate must be within [0,100], got %d", apperrors.ErrValidation, taxRatePct)
	}
	if taxRatePct == 0 {
		taxRatePct = DefaultTaxRatePct
	}

	lineTotal := Round2(unitPrice.Mul(decimal.NewFromInt(quantity)))
	taxAmount := Round2(lineTotal.Mul(decimal.NewFromInt(int64(taxRatePct))).Div(hundred))

	return LineAmounts{
		LineTotal:  lineTotal,
		TaxAmount:  taxAmount,
		TaxRatePct: taxRatePct,
	}, nil
}

// CalculateInvoiceTotals aggregates the line items of an invoice into the
// four derived header amounts. Safe to call with zero lines.
func CalculateInvoiceTotals(lines []domain.InvoiceLine, discountPct decimal.Decimal) (domain.InvoiceTotals, error) {
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return domain.InvoiceTotals{}, fmt.Errorf("%w: discount must be within [0,100], got %s", apperrors.ErrValidation, discountPct)
	}

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
		taxTotal = taxTotal.Add(line.TaxAmount)
	}

	gross := subtotal.Add(taxTotal)
	discountAmount := decimal.Zero
	if discountPct.IsPositive() {
		discountAmount = Round2(gross.Mul(discountPct).Div(hundred))
	}

	return domain.InvoiceTotals{
		Subtotal:       subtotal,
		TaxTotal:       taxTotal,
		DiscountAmount: discountAmount,
		GrandTotal:     gross.Sub(discountAmount),
	}, nil
}

// SignedLedgerAmount applies the statement sign convention to a ledger entry
// amount: sale invoices and payments increase the counterparty's debt to the
// business, purchase invoices, collections and refunds decrease it.
func SignedLedgerAmount(entry domain.LedgerEntry) (decimal.Decimal, error) {
	switch entry.MovementType {
	case domain.SaleInvoice, domain.Payment:
		return entry.Amount, nil
	case domain.PurchaseInvoice, domain.Collection, domain.Refund:
		return entry.Amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown ledger movement type '%s' for entry %s", entry.MovementType, entry.EntryID)
	}
}
