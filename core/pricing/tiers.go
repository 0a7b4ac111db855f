// Package pricing - Volume pricing rules
// Two independent rules live here: the banded tier table used by partner
// commission projections, and the linear slider discount used by the
// profitability calculator. They encode different business policies and
// deliberately share no code.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"partnerops/internal/errors"
)

// BaseRetailPrice is the retail price of one seat for a 6-month billing cycle.
var BaseRetailPrice = decimal.RequireFromString("79.00")

// Tier is one volume discount band. A tier applies to every unit in the
// purchase once the count reaches MinUnits (lower bound inclusive).
type Tier struct {
	// MinUnits is the smallest unit count that qualifies for this band
	MinUnits int `json:"min_units"`

	// DiscountPercent is the discount applied to the base price, in [0,100]
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// Table maps a unit count to a discounted per-unit price.
type Table struct {
	// BasePrice is the undiscounted per-unit price
	BasePrice decimal.Decimal `json:"base_price"`

	// Tiers are the discount bands, held in descending MinUnits order
	Tiers []Tier `json:"tiers"`
}

// Result is a resolved price band.
type Result struct {
	// PricePerUnit is the discounted per-unit price
	PricePerUnit decimal.Decimal `json:"price_per_unit"`

	// DiscountPercent is the applied discount; zero when no band matched
	DiscountPercent decimal.Decimal `json:"discount_percent"`

	// Label is a human-readable band description
	Label string `json:"label"`
}

// NewTable builds a table from bands in any order.
func NewTable(basePrice decimal.Decimal, tiers []Tier) Table {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinUnits > sorted[j].MinUnits
	})
	return Table{BasePrice: basePrice, Tiers: sorted}
}

// DefaultPartnerTable returns the volume bands for bulk organization
// purchases: 12+ seats 10% off, 121+ seats 15% off, 200+ seats 20% off.
func DefaultPartnerTable() Table {
	return DefaultPartnerTableFor(BaseRetailPrice)
}

// DefaultPartnerTableFor returns the standard bands over a custom base price.
func DefaultPartnerTableFor(basePrice decimal.Decimal) Table {
	return NewTable(basePrice, []Tier{
		{MinUnits: 12, DiscountPercent: decimal.NewFromInt(10)},
		{MinUnits: 121, DiscountPercent: decimal.NewFromInt(15)},
		{MinUnits: 200, DiscountPercent: decimal.NewFromInt(20)},
	})
}

// Resolve returns the price band for a unit count. Bands are checked from the
// highest threshold down, so larger counts always resolve to deeper (or equal)
// discounts.
func (t Table) Resolve(unitCount int) (Result, error) {
	if unitCount < 0 {
		return Result{}, errors.Inputf("unit count must be >= 0, got %d", unitCount)
	}

	hundred := decimal.NewFromInt(100)
	for _, tier := range t.Tiers {
		if unitCount >= tier.MinUnits {
			return Result{
				PricePerUnit:    t.BasePrice.Mul(hundred.Sub(tier.DiscountPercent)).Div(hundred),
				DiscountPercent: tier.DiscountPercent,
				Label:           fmt.Sprintf("%s%% volume discount", tier.DiscountPercent.String()),
			}, nil
		}
	}

	return Result{
		PricePerUnit:    t.BasePrice,
		DiscountPercent: decimal.Zero,
		Label:           "retail price",
	}, nil
}
