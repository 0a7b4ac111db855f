// Package api - API types for the calculation endpoints
// These types define the contract for /calculate/*.
// The API is stateless, idempotent, and deterministic.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRequest is the input to POST /calculate/commission.
// Supply user_count directly, or num_teams and users_per_team to derive it.
type CommissionRequest struct {
	// Mode is "individual" or "team"
	Mode string `json:"mode"`

	// UserCount is the referred seat count
	UserCount *int `json:"user_count,omitempty"`

	// NumTeams and UsersPerTeam derive the seat count when UserCount is absent
	NumTeams     int `json:"num_teams,omitempty"`
	UsersPerTeam int `json:"users_per_team,omitempty"`

	// IsBulkPurchase prices the block by the volume tier table (team mode only)
	IsBulkPurchase bool `json:"is_bulk_purchase,omitempty"`

	// BasePrice overrides the default retail price (optional)
	BasePrice *decimal.Decimal `json:"base_price,omitempty"`
}

// CommissionResponse is the output of POST /calculate/commission
type CommissionResponse struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	UserCount    int        `json:"user_count"`
	PricePerUnit *CostValue `json:"price_per_unit"`
	TierLabel    string     `json:"tier_label"`

	TotalPerPayment *CostValue `json:"total_per_payment"`

	// AnnualizedTotal models two semiannual renewals; projection, not a guarantee
	AnnualizedTotal *CostValue `json:"annualized_total"`

	Breakdown CommissionBreakdown `json:"breakdown"`

	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// CommissionBreakdown splits a payment by rate band
type CommissionBreakdown struct {
	BaseAmount  *CostValue `json:"base_amount"`
	BonusAmount *CostValue `json:"bonus_amount"`
	HasBonus    bool       `json:"has_bonus"`
}

// LineItem is one named cost entry in a profitability request
type LineItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ProfitabilityRequest is the input to POST /calculate/profitability.
// Supply num_users directly, or num_teams and users_per_team to derive it.
type ProfitabilityRequest struct {
	PricePerSeat decimal.Decimal `json:"price_per_seat"`
	CostPerSeat  decimal.Decimal `json:"cost_per_seat"`

	NumUsers     *int `json:"num_users,omitempty"`
	NumTeams     int  `json:"num_teams,omitempty"`
	UsersPerTeam int  `json:"users_per_team,omitempty"`

	VolumeDiscountPercent    decimal.Decimal `json:"volume_discount_percent"`
	PartnerCommissionPercent decimal.Decimal `json:"partner_commission_percent"`

	MonthlyFixedCosts    []LineItem      `json:"monthly_fixed_costs,omitempty"`
	PerUserAnnualCosts   []LineItem      `json:"per_user_annual_costs,omitempty"`
	AnnualFixedCostExtra decimal.Decimal `json:"annual_fixed_cost_extra"`
	PerTransactionCost   decimal.Decimal `json:"per_transaction_cost"`
}

// ProfitabilityResponse is the output of POST /calculate/profitability
type ProfitabilityResponse struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`

	NumUsers               int        `json:"num_users"`
	DiscountedPricePerSeat *CostValue `json:"discounted_price_per_seat"`

	GrossRevenueAnnual  *CostValue `json:"gross_revenue_annual"`
	PartnerPayoutAnnual *CostValue `json:"partner_payout_annual"`
	VariableCostsAnnual *CostValue `json:"variable_costs_annual"`
	HardCostsAnnual     *CostValue `json:"hard_costs_annual"`
	NetProfitAnnual     *CostValue `json:"net_profit_annual"`

	ProfitMarginPercent string     `json:"profit_margin_percent"`
	ProfitPerUser       *CostValue `json:"profit_per_user"`

	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// CostValue represents a money amount with currency
type CostValue struct {
	Amount   string `json:"amount"` // Decimal string for precision
	Currency string `json:"currency"`
}

// ResponseMetadata tracks how a response was produced
type ResponseMetadata struct {
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// ErrorBody is the error envelope for non-2xx responses
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail provides error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func money(d decimal.Decimal, currency string) *CostValue {
	return &CostValue{Amount: d.String(), Currency: currency}
}
