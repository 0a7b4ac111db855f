// Package commission - Partner commission projections
// Computes a partner's earnings for one semiannual billing cycle plus an
// annualized projection. All arithmetic is pure; the calculator holds only
// policy constants.
package commission

import (
	"github.com/shopspring/decimal"

	"partnerops/core/pricing"
	"partnerops/internal/errors"
)

// Mode selects how the referred seats were signed up.
type Mode string

const (
	// ModeIndividual covers one-at-a-time consumer signups. Individual
	// referrals are never bulk: no volume discount and no bonus band,
	// regardless of count.
	ModeIndividual Mode = "individual"

	// ModeTeam covers team and organization signups.
	ModeTeam Mode = "team"
)

// Policy defaults. These encode current business policy; change them on a
// Calculator instance, not here.
var (
	// DefaultBaseRate is the commission rate on the first BonusThreshold units
	DefaultBaseRate = decimal.RequireFromString("0.10")

	// DefaultBonusRate is the commission rate on units beyond the threshold
	DefaultBonusRate = decimal.RequireFromString("0.15")
)

const (
	// DefaultBonusThreshold is the unit count above which the bonus rate applies
	DefaultBonusThreshold = 100

	// DefaultRenewalsPerYear annualizes a semiannual payment. This models two
	// renewal cycles per year; it is a projection, not a guarantee.
	DefaultRenewalsPerYear = 2
)

// Input describes one commission scenario.
type Input struct {
	// Mode is the signup mode
	Mode Mode `json:"mode"`

	// UserCount is the number of referred seats
	UserCount int `json:"user_count"`

	// IsBulkPurchase applies the volume-discounted tier price to the whole
	// block. Only meaningful in team mode; incremental team signups pay
	// retail price per seat no matter the cumulative count.
	IsBulkPurchase bool `json:"is_bulk_purchase"`
}

// Breakdown splits a commission payment by rate band.
type Breakdown struct {
	// BaseAmount is the commission on units at the base rate
	BaseAmount decimal.Decimal `json:"base_amount"`

	// BonusAmount is the commission on units at the bonus rate
	BonusAmount decimal.Decimal `json:"bonus_amount"`

	// HasBonus reports whether the bonus band was reached
	HasBonus bool `json:"has_bonus"`
}

// Result is a computed commission projection.
type Result struct {
	// TotalPerPayment is the commission for one 6-month billing cycle
	TotalPerPayment decimal.Decimal `json:"total_per_payment"`

	// AnnualizedTotal projects RenewalsPerYear payments. Projection only.
	AnnualizedTotal decimal.Decimal `json:"annualized_total"`

	// Breakdown splits the payment by rate band
	Breakdown Breakdown `json:"breakdown"`

	// PricePerUnit is the per-seat price the commission was computed on
	PricePerUnit decimal.Decimal `json:"price_per_unit"`

	// TierLabel describes the applied price band
	TierLabel string `json:"tier_label"`
}

// Calculator computes commission projections against a pricing table.
type Calculator struct {
	// Tiers prices bulk purchases
	Tiers pricing.Table

	// BaseRate applies to the first BonusThreshold units
	BaseRate decimal.Decimal

	// BonusRate applies to units beyond BonusThreshold in team mode
	BonusRate decimal.Decimal

	// BonusThreshold is the unit count where the bonus band starts
	BonusThreshold int

	// RenewalsPerYear annualizes a single payment
	RenewalsPerYear int
}

// NewCalculator returns a calculator with current policy defaults.
func NewCalculator() Calculator {
	return NewCalculatorFor(pricing.BaseRetailPrice)
}

// NewCalculatorFor returns a default calculator over a custom base price.
func NewCalculatorFor(basePrice decimal.Decimal) Calculator {
	return Calculator{
		Tiers:           pricing.DefaultPartnerTableFor(basePrice),
		BaseRate:        DefaultBaseRate,
		BonusRate:       DefaultBonusRate,
		BonusThreshold:  DefaultBonusThreshold,
		RenewalsPerYear: DefaultRenewalsPerYear,
	}
}

// Compute resolves the per-unit price for the scenario and applies the
// commission bands.
func (c Calculator) Compute(in Input) (Result, error) {
	if in.UserCount < 0 {
		return Result{}, errors.Inputf("user count must be >= 0, got %d", in.UserCount)
	}

	switch in.Mode {
	case ModeIndividual:
		return c.computeIndividual(in.UserCount), nil
	case ModeTeam:
		return c.computeTeam(in.UserCount, in.IsBulkPurchase)
	default:
		return Result{}, errors.Inputf("unknown mode %q (use %q or %q)", in.Mode, ModeIndividual, ModeTeam)
	}
}

// computeIndividual pays the flat base rate on every unit at retail price.
func (c Calculator) computeIndividual(userCount int) Result {
	count := decimal.NewFromInt(int64(userCount))
	base := count.Mul(c.Tiers.BasePrice).Mul(c.BaseRate)

	return c.finish(Result{
		Breakdown: Breakdown{
			BaseAmount:  base,
			BonusAmount: decimal.Zero,
			HasBonus:    false,
		},
		PricePerUnit: c.Tiers.BasePrice,
		TierLabel:    "retail price",
	})
}

// computeTeam pays the base rate on the first BonusThreshold units and the
// bonus rate beyond it. Bulk purchases are priced by the tier table; an
// incremental team pays retail per seat yet still earns the bonus band once
// the count crosses the threshold. That combination is current policy.
func (c Calculator) computeTeam(userCount int, bulk bool) (Result, error) {
	pricePerUnit := c.Tiers.BasePrice
	tierLabel := "retail price"

	if bulk {
		band, err := c.Tiers.Resolve(userCount)
		if err != nil {
			return Result{}, err
		}
		pricePerUnit = band.PricePerUnit
		tierLabel = band.Label
	}

	baseUnits := userCount
	bonusUnits := 0
	if userCount > c.BonusThreshold {
		baseUnits = c.BonusThreshold
		bonusUnits = userCount - c.BonusThreshold
	}

	base := decimal.NewFromInt(int64(baseUnits)).Mul(pricePerUnit).Mul(c.BaseRate)
	bonus := decimal.NewFromInt(int64(bonusUnits)).Mul(pricePerUnit).Mul(c.BonusRate)

	return c.finish(Result{
		Breakdown: Breakdown{
			BaseAmount:  base,
			BonusAmount: bonus,
			HasBonus:    bonusUnits > 0,
		},
		PricePerUnit: pricePerUnit,
		TierLabel:    tierLabel,
	}), nil
}

func (c Calculator) finish(r Result) Result {
	r.TotalPerPayment = r.Breakdown.BaseAmount.Add(r.Breakdown.BonusAmount)
	r.AnnualizedTotal = r.TotalPerPayment.Mul(decimal.NewFromInt(int64(c.RenewalsPerYear)))
	return r
}

// UsersFromTeams resolves a seat count from a team-based input.
func UsersFromTeams(numTeams, usersPerTeam int) (int, error) {
	if numTeams < 0 || usersPerTeam < 0 {
		return 0, errors.Inputf("team counts must be >= 0, got %d teams x %d users", numTeams, usersPerTeam)
	}
	return numTeams * usersPerTeam, nil
}
