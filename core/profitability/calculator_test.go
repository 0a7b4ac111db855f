// Package profitability - Annual rollup tests
package profitability

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustEqual(t *testing.T, got decimal.Decimal, want string, what string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: got %s, want %s", what, got.String(), want)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestBaselineScenario is the admin calculator's reference case: 15 teams of
// 14 at $119/seat, 10% discount, 10% partner commission, no hard costs.
func TestBaselineScenario(t *testing.T) {
	result, err := Compute(CostModel{
		PricePerSeat:             dec("119"),
		CostPerSeat:              dec("15"),
		NumUsers:                 15 * 14,
		VolumeDiscountPercent:    dec("10"),
		PartnerCommissionPercent: dec("10"),
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	mustEqual(t, result.DiscountedPricePerSeat, "107.10", "discounted seat price")
	mustEqual(t, result.GrossRevenueAnnual, "269892.00", "gross revenue")
	mustEqual(t, result.PartnerPayoutAnnual, "26989.200", "partner payout")
	mustEqual(t, result.VariableCostsAnnual, "37800", "variable costs")
	mustEqual(t, result.HardCostsAnnual, "0", "hard costs")
	mustEqual(t, result.NetProfitAnnual, "205102.80", "net profit")
}

/// TestHardCostRollup verifies the three hard cost components: monthly fixed
// ×12 plus annual extra, per-user annual × users, and per-transaction × users
// × 12 transactions.
func TestHardCostRollup(t *testing.T) {
	result, err := Compute(CostModel{
		PricePerSeat: dec("79"),
		NumUsers:     100,
		MonthlyFixedCosts: []LineItem{
			{Name: "hosting", Amount: dec("250")},
			{Name: "email", Amount: dec("50")},
		},
		AnnualFixedCostExtra: dec("99"),
		PerUserAnnualCosts: []LineItem{
			{Name: "push notifications", Amount: dec("1.20")},
		},
		PerTransactionCost: dec("0.30"),
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	// (250+50)×12 + 99 = 3699; 1.20×100 = 120; 0.30×100×12 = 360
	mustEqual(t, result.HardCostsAnnual, "4179.00", "hard costs")
}

// TestProfitIdentity proves net = gross − payout − variable − hard exactly.
func TestProfitIdentity(t *testing.T) {
	models := []CostModel{
		{PricePerSeat: dec("79"), CostPerSeat: dec("11.50"), NumUsers: 37,
			VolumeDiscountPercent: dec("7.5"), PartnerCommissionPercent: dec("12")},
		{PricePerSeat: dec("119"), CostPerSeat: dec("15"), NumUsers: 210,
			VolumeDiscountPercent: dec("10"), PartnerCommissionPercent: dec("10"),
			MonthlyFixedCosts:  []LineItem{{Name: "infra", Amount: dec("420.42")}},
			PerUserAnnualCosts: []LineItem{{Name: "sms", Amount: dec("2.34")}},
			PerTransactionCost: dec("0.25")},
		{PricePerSeat: dec("0"), NumUsers: 0},
	}

	for _, m := range models {
		result, err := Compute(m)
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		identity := result.GrossRevenueAnnual.
			Sub(result.PartnerPayoutAnnual).
			Sub(result.VariableCostsAnnual).
			Sub(result.HardCostsAnnual)
		if !identity.Equal(result.NetProfitAnnual) {
			t.Errorf("identity broken: %s != %s", identity, result.NetProfitAnnual)
		}
	}
}

// TestZeroGuards verifies margin and per-user profit are zero, not NaN or a
// division panic, when gross revenue or the user count is zero.
func TestZeroGuards(t *testing.T) {
	result, err := Compute(CostModel{
		PricePerSeat:      dec("0"),
		NumUsers:          0,
		MonthlyFixedCosts: []LineItem{{Name: "hosting", Amount: dec("100")}},
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	mustEqual(t, result.ProfitMarginPercent, "0", "margin with zero gross")
	mustEqual(t, result.ProfitPerUser, "0", "per-user profit with zero users")
	// Fixed costs still accrue: net is negative.
	mustEqual(t, result.NetProfitAnnual, "-1200", "net profit")
}

// TestValidation verifies out-of-range inputs fail before any arithmetic.
func TestValidation(t *testing.T) {
	cases := []struct {
		name  string
		model CostModel
	}{
		{"negative users", CostModel{NumUsers: -1}},
		{"negative price", CostModel{PricePerSeat: dec("-79")}},
		{"discount over 100", CostModel{VolumeDiscountPercent: dec("101")}},
		{"negative commission", CostModel{PartnerCommissionPercent: dec("-1")}},
		{"negative line item", CostModel{
			MonthlyFixedCosts: []LineItem{{Name: "hosting", Amount: dec("-5")}},
		}},
	}

	for _, tc := range cases {
		if _, err := Compute(tc.model); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

// TestTransactionCountOverride verifies the per-transaction rollup honors a
// custom transactions-per-user figure.
func TestTransactionCountOverride(t *testing.T) {
	result, err := Compute(CostModel{
		NumUsers:                   10,
		PerTransactionCost:         dec("1"),
		TransactionsPerUserPerYear: 2,
	})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	mustEqual(t, result.HardCostsAnnual, "20", "hard costs with 2 tx/user/year")
}
