// Package pricing - Linear slider discount
package pricing

import "github.com/shopspring/decimal"

// LinearDiscount computes price at (100 - pct) / 100. The profitability
// calculator takes the percentage straight from the caller; it is not a
// banded lookup and must not go through Table.
func LinearDiscount(price, discountPercent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return price.Mul(hundred.Sub(discountPercent)).Div(hundred)
}
