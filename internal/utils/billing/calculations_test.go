package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/utils/billing"
)

func TestCalculateLineAmounts_Basic(t *testing.T) {
	amounts, err := billing.CalculateLineAmounts(2, decimal.NewFromInt(100), 20)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(200).Equal(amounts.LineTotal), "line total should be 200, got %s", amounts.LineTotal)
	assert.True(t, decimal.NewFromInt(40).Equal(amounts.TaxAmount), "tax should be 40, got %s", amounts.TaxAmount)
	assert.Equal(t, 20, amounts.TaxRatePct)
}

func TestCalculateLineAmounts_DefaultTaxRate(t *testing.T) {
	// Zero means "not supplied" and the default rate kicks in.
	amounts, err := billing.CalculateLineAmounts(1, decimal.NewFromInt(50), 0)
	require.NoError(t, err)

	assert.Equal(t, billing.DefaultTaxRatePct, amounts.TaxRatePct)
	assert.True(t, decimal.NewFromInt(10).Equal(amounts.TaxAmount), "tax should be 10, got %s", amounts.TaxAmount)
}

func TestCalculateLineAmounts_Rounding(t *testing.T) {
	// 3 x 10.99 = 32.97, 18% tax = 5.9346 -> 5.93
	amounts, err := billing.CalculateLineAmounts(3, decimal.RequireFromString("10.99"), 18)
	require.NoError(t, err)

	assert.Equal(t, "32.97", amounts.LineTotal.StringFixed(2))
	assert.Equal(t, "5.93", amounts.TaxAmount.StringFixed(2))
}

func TestCalculateLineAmounts_Validation(t *testing.T) {
	_, err := billing.CalculateLineAmounts(0, decimal.NewFromInt(10), 20)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = billing.CalculateLineAmounts(-3, decimal.NewFromInt(10), 20)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = billing.CalculateLineAmounts(1, decimal.NewFromInt(-10), 20)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = billing.CalculateLineAmounts(1, decimal.NewFromInt(10), 101)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func mustLine(t *testing.T, qty int64, unitPrice string, ratePct int) domain.InvoiceLine {
	t.Helper()
	amounts, err := billing.CalculateLineAmounts(qty, decimal.RequireFromString(unitPrice), ratePct)
	require.NoError(t, err)
	return domain.InvoiceLine{
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(unitPrice),
		TaxRatePct: amounts.TaxRatePct,
		TaxAmount:  amounts.TaxAmount,
		LineTotal:  amounts.LineTotal,
	}
}

func TestCalculateInvoiceTotals_NoDiscount(t *testing.T) {
	lines := []domain.InvoiceLine{
		mustLine(t, 2, "100", 20),
		mustLine(t, 1, "50", 20),
	}

	totals, err := billing.CalculateInvoiceTotals(lines, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "250.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "50.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "0.00", totals.DiscountAmount.StringFixed(2))
	assert.Equal(t, "300.00", totals.GrandTotal.StringFixed(2))
}

func TestCalculateInvoiceTotals_WithDiscount(t *testing.T) {
	lines := []domain.InvoiceLine{
		mustLine(t, 2, "100", 20),
	}

	// Gross 240, 10% discount = 24, grand total 216.
	totals, err := billing.CalculateInvoiceTotals(lines, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.Equal(t, "200.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "40.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "24.00", totals.DiscountAmount.StringFixed(2))
	assert.Equal(t, "216.00", totals.GrandTotal.StringFixed(2))
}

func TestCalculateInvoiceTotals_EmptyLines(t *testing.T) {
	totals, err := billing.CalculateInvoiceTotals(nil, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestCalculateInvoiceTotals_InvalidDiscount(t *testing.T) {
	_, err := billing.CalculateInvoiceTotals(nil, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = billing.CalculateInvoiceTotals(nil, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSignedLedgerAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)

	cases := []struct {
		movementType domain.LedgerMovementType
		want         string
	}{
		{domain.SaleInvoice, "100.00"},
		{domain.Payment, "100.00"},
		{domain.PurchaseInvoice, "-100.00"},
		{domain.Collection, "-100.00"},
		{domain.Refund, "-100.00"},
	}
	for _, tc := range cases {
		signed, err := billing.SignedLedgerAmount(domain.LedgerEntry{MovementType: tc.movementType, Amount: amount})
		require.NoError(t, err, "movement type %s", tc.movementType)
		assert.Equal(t, tc.want, signed.StringFixed(2), "movement type %s", tc.movementType)
	}

	_, err := billing.SignedLedgerAmount(domain.LedgerEntry{MovementType: "bilinmeyen", Amount: amount})
	assert.Error(t, err)
}
