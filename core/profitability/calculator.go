// Package profitability - Annual subscription economics
// Computes annual revenue, costs, and profit for a fleet of seats under the
// admin cost model. Pricing here is the linear slider discount, never the
// banded partner table.
package profitability

import (
	"github.com/shopspring/decimal"

	"partnerops/core/pricing"
	"partnerops/internal/errors"
)

const (
	// MonthsPerYear rolls monthly figures up to annual ones
	MonthsPerYear = 12

	// DefaultTransactionsPerUserPerYear is the billing transaction count used
	// for per-transaction processing fees
	DefaultTransactionsPerUserPerYear = 12
)

// LineItem is one named cost entry.
type LineItem struct {
	// Name identifies the line item (e.g. a vendor subscription)
	Name string `json:"name"`

	// Amount is the cost of the item; monthly or annual per the owning field
	Amount decimal.Decimal `json:"amount"`
}

// CostModel is the input to a profitability computation.
type CostModel struct {
	// PricePerSeat is the monthly retail price of one seat
	PricePerSeat decimal.Decimal `json:"price_per_seat"`

	// CostPerSeat is the monthly variable cost of serving one seat
	CostPerSeat decimal.Decimal `json:"cost_per_seat"`

	// NumUsers is the seat count; resolve teams × usersPerTeam before calling
	NumUsers int `json:"num_users"`

	// VolumeDiscountPercent is the linear discount slider value, in [0,100]
	VolumeDiscountPercent decimal.Decimal `json:"volume_discount_percent"`

	// PartnerCommissionPercent is the partner's cut of gross revenue, in [0,100]
	PartnerCommissionPercent decimal.Decimal `json:"partner_commission_percent"`

	// MonthlyFixedCosts are named monthly subscription line items
	MonthlyFixedCosts []LineItem `json:"monthly_fixed_costs,omitempty"`

	// PerUserAnnualCosts are named annual per-user line items
	PerUserAnnualCosts []LineItem `json:"per_user_annual_costs,omitempty"`

	// AnnualFixedCostExtra is an annual-only line item outside the ×12 rollup
	AnnualFixedCostExtra decimal.Decimal `json:"annual_fixed_cost_extra"`

	// PerTransactionCost is the processing fee per billing transaction
	PerTransactionCost decimal.Decimal `json:"per_transaction_cost"`

	// TransactionsPerUserPerYear overrides the default of 12 when positive
	TransactionsPerUserPerYear int `json:"transactions_per_user_per_year,omitempty"`
}

// Result is the computed annual economics.
type Result struct {
	// GrossRevenueAnnual is discounted seat price × users × 12
	GrossRevenueAnnual decimal.Decimal `json:"gross_revenue_annual"`

	// PartnerPayoutAnnual is the partner's commission on gross revenue
	PartnerPayoutAnnual decimal.Decimal `json:"partner_payout_annual"`

	// VariableCostsAnnual is per-seat serving cost × users × 12
	VariableCostsAnnual decimal.Decimal `json:"variable_costs_annual"`

	// HardCostsAnnual is fixed + per-user + transaction costs
	HardCostsAnnual decimal.Decimal `json:"hard_costs_annual"`

	// NetProfitAnnual = gross − payout − variable − hard
	NetProfitAnnual decimal.Decimal `json:"net_profit_annual"`

	// ProfitMarginPercent is net/gross × 100; zero when gross is zero
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`

	// ProfitPerUser is net/users; zero when there are no users
	ProfitPerUser decimal.Decimal `json:"profit_per_user"`

	// DiscountedPricePerSeat is the effective monthly seat price
	DiscountedPricePerSeat decimal.Decimal `json:"discounted_price_per_seat"`
}

// Compute validates the model and runs the annual rollup. Validation happens
// before any arithmetic; a result is never partially computed.
func Compute(m CostModel) (Result, error) {
	if err := validate(m); err != nil {
		return Result{}, err
	}

	users := decimal.NewFromInt(int64(m.NumUsers))
	months := decimal.NewFromInt(MonthsPerYear)
	hundred := decimal.NewFromInt(100)

	discounted := pricing.LinearDiscount(m.PricePerSeat, m.VolumeDiscountPercent)
	gross := discounted.Mul(users).Mul(months)
	payout := gross.Mul(m.PartnerCommissionPercent).Div(hundred)
	variable := m.CostPerSeat.Mul(users).Mul(months)

	monthlyFixed := sumLineItems(m.MonthlyFixedCosts)
	fixedAnnual := monthlyFixed.Mul(months).Add(m.AnnualFixedCostExtra)
	perUserAnnual := sumLineItems(m.PerUserAnnualCosts).Mul(users)

	txPerYear := m.TransactionsPerUserPerYear
	if txPerYear <= 0 {
		txPerYear = DefaultTransactionsPerUserPerYear
	}
	txAnnual := m.PerTransactionCost.Mul(users).Mul(decimal.NewFromInt(int64(txPerYear)))

	hard := fixedAnnual.Add(perUserAnnual).Add(txAnnual)
	net := gross.Sub(payout).Sub(variable).Sub(hard)

	margin := decimal.Zero
	if gross.IsPositive() {
		margin = net.Div(gross).Mul(hundred)
	}
	perUser := decimal.Zero
	if m.NumUsers > 0 {
		perUser = net.Div(users)
	}

	return Result{
		GrossRevenueAnnual:     gross,
		PartnerPayoutAnnual:    payout,
		VariableCostsAnnual:    variable,
		HardCostsAnnual:        hard,
		NetProfitAnnual:        net,
		ProfitMarginPercent:    margin,
		ProfitPerUser:          perUser,
		DiscountedPricePerSeat: discounted,
	}, nil
}

func validate(m CostModel) error {
	if m.NumUsers < 0 {
		return errors.Inputf("num users must be >= 0, got %d", m.NumUsers)
	}
	for name, v := range map[string]decimal.Decimal{
		"price per seat":          m.PricePerSeat,
		"cost per seat":           m.CostPerSeat,
		"annual fixed cost extra": m.AnnualFixedCostExtra,
		"per transaction cost":    m.PerTransactionCost,
	} {
		if v.IsNegative() {
			return errors.Inputf("%s must be >= 0, got %s", name, v.String())
		}
	}
	for name, pct := range map[string]decimal.Decimal{
		"volume discount percent":    m.VolumeDiscountPercent,
		"partner commission percent": m.PartnerCommissionPercent,
	} {
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return errors.Inputf("%s must be in [0,100], got %s", name, pct.String())
		}
	}
	for _, item := range append(append([]LineItem{}, m.MonthlyFixedCosts...), m.PerUserAnnualCosts...) {
		if item.Amount.IsNegative() {
			return errors.Inputf("cost line item %q must be >= 0, got %s", item.Name, item.Amount.String())
		}
	}
	return nil
}

func sumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
