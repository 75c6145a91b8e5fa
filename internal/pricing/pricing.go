// Package pricing derives order totals from resolved cart line items.
package pricing

import (
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	DefaultShippingFee = decimal.RequireFromString("9.99")
	DefaultTaxRate     = decimal.RequireFromString("0.20")
)

// Rules holds the fixed business rules. The zero value is not usable; use DefaultRules.
type Rules struct {
	ShippingFee decimal.Decimal
	TaxRate     decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		ShippingFee: DefaultShippingFee,
		TaxRate:     DefaultTaxRate,
	}
}

// Summarize is a pure function of items. Each component is rounded to cents
// and total is the sum of the rounded components, so
// total == subtotal + shipping + tax holds exactly.
func (r Rules) Summarize(items []domain.LineItem) domain.OrderSummary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = r.ShippingFee.Round(2)
	}

	tax := subtotal.Mul(r.TaxRate).Round(2)

	return domain.OrderSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
