package service

import (
	"megashop/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// TaxRate is applied to the subtotal before discount
	TaxRate = decimal.RequireFromString("0.10")

	// FreeShippingThreshold is the subtotal above which shipping is free
	FreeShippingThreshold = decimal.NewFromInt(5000)

	// FlatShipping is charged at or below the threshold
	FlatShipping = decimal.NewFromInt(100)
)

var hundred = decimal.NewFromInt(100)

// amountPlaces matches the NUMERIC(12,2) order columns
const amountPlaces = 2

// Totals are the derived amounts of an order
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// CalculateTotals derives order amounts from cart lines and an optional
// discount percentage (0 for none). Tax and discount are rounded half away
// from zero to cents, the way Postgres stores them, and the total is summed
// from the rounded parts.
func CalculateTotals(lines []*domain.CartLine, discountPercent int) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	tax := subtotal.Mul(TaxRate).Round(amountPlaces)

	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if discountPercent > 0 {
		discount = subtotal.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred).Round(amountPlaces)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}
