// Package cmd - profitability command
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"partnerops/core/profitability"
	"partnerops/internal/config"
)

var (
	profitPrice       string
	profitCost        string
	profitUsers       int
	profitTeams       int
	profitTeamSize    int
	profitDiscount    string
	profitCommission  string
	monthlyFixed      []string
	perUserAnnual     []string
	annualExtra       string
	perTransaction    string
	profitabilityJSON bool
)

// profitabilityCmd represents the profitability command
var profitabilityCmd = &cobra.Command{
	Use:   "profitability",
	Short: "Compute the annual profitability of a partner deal",
	Long: `Roll up annual gross revenue, partner payout, variable costs and
hard costs into net profit, margin and profit per user.

Repeating cost flags take name=amount pairs:

Examples:
  partnerops profitability --teams 15 --team-size 14 --price 119 --discount 10 --commission 10
  partnerops profitability --users 500 --price 119 --cost 15 \
    --monthly-fixed hosting=250 --monthly-fixed email=50 \
    --per-user-annual push=1.20 --per-transaction 0.30`,
	RunE: runProfitability,
}

func init() {
	profitabilityCmd.Flags().StringVarP(&profitPrice, "price", "p", "", "list price per seat per month (required)")
	profitabilityCmd.Flags().StringVar(&profitCost, "cost", "0", "variable cost per seat per month")
	profitabilityCmd.Flags().IntVarP(&profitUsers, "users", "u", 0, "total user count")
	profitabilityCmd.Flags().IntVar(&profitTeams, "teams", 0, "number of teams (alternative to --users)")
	profitabilityCmd.Flags().IntVar(&profitTeamSize, "team-size", 0, "users per team (with --teams)")
	profitabilityCmd.Flags().StringVarP(&profitDiscount, "discount", "d", "0", "volume discount percent")
	profitabilityCmd.Flags().StringVarP(&profitCommission, "commission", "c", "0", "partner commission percent")
	profitabilityCmd.Flags().StringArrayVar(&monthlyFixed, "monthly-fixed", nil, "monthly fixed cost as name=amount (repeatable)")
	profitabilityCmd.Flags().StringArrayVar(&perUserAnnual, "per-user-annual", nil, "per-user annual cost as name=amount (repeatable)")
	profitabilityCmd.Flags().StringVar(&annualExtra, "annual-extra", "0", "extra annual fixed cost")
	profitabilityCmd.Flags().StringVar(&perTransaction, "per-transaction", "0", "cost per payment transaction")
	profitabilityCmd.Flags().BoolVar(&profitabilityJSON, "json", false, "emit JSON instead of text")

	profitabilityCmd.MarkFlagRequired("price")
}

func runProfitability(cmd *cobra.Command, args []string) error {
	users := profitUsers
	if users == 0 && profitTeams > 0 {
		users = profitTeams * profitTeamSize
	}

	price, err := parseDecimalFlag("price", profitPrice)
	if err != nil {
		return err
	}
	cost, err := parseDecimalFlag("cost", profitCost)
	if err != nil {
		return err
	}
	discount, err := parseDecimalFlag("discount", profitDiscount)
	if err != nil {
		return err
	}
	commissionPct, err := parseDecimalFlag("commission", profitCommission)
	if err != nil {
		return err
	}
	extra, err := parseDecimalFlag("annual-extra", annualExtra)
	if err != nil {
		return err
	}
	perTxn, err := parseDecimalFlag("per-transaction", perTransaction)
	if err != nil {
		return err
	}
	monthly, err := parseLineItems("monthly-fixed", monthlyFixed)
	if err != nil {
		return err
	}
	perUser, err := parseLineItems("per-user-annual", perUserAnnual)
	if err != nil {
		return err
	}

	result, err := profitability.Compute(profitability.CostModel{
		PricePerSeat:             price,
		CostPerSeat:              cost,
		NumUsers:                 users,
		VolumeDiscountPercent:    discount,
		PartnerCommissionPercent: commissionPct,
		MonthlyFixedCosts:        monthly,
		PerUserAnnualCosts:       perUser,
		AnnualFixedCostExtra:     extra,
		PerTransactionCost:       perTxn,
	})
	if err != nil {
		return err
	}

	if profitabilityJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	currency := config.Get().Pricing.Currency
	fmt.Printf("Annual profitability for %d users\n", users)
	fmt.Printf("  Discounted seat price: %s %s\n", currency, result.DiscountedPricePerSeat)
	fmt.Printf("  Gross revenue:         %s %s\n", currency, result.GrossRevenueAnnual)
	fmt.Printf("  Partner payout:        %s %s\n", currency, result.PartnerPayoutAnnual)
	fmt.Printf("  Variable costs:        %s %s\n", currency, result.VariableCostsAnnual)
	fmt.Printf("  Hard costs:            %s %s\n", currency, result.HardCostsAnnual)
	fmt.Printf("  Net profit:            %s %s\n", currency, result.NetProfitAnnual)
	fmt.Printf("  Margin:                %s%%\n", result.ProfitMarginPercent.Round(2))
	fmt.Printf("  Profit per user:       %s %s\n", currency, result.ProfitPerUser)
	return nil
}

func parseDecimalFlag(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return d, nil
}

func parseLineItems(flag string, pairs []string) ([]profitability.LineItem, error) {
	items := make([]profitability.LineItem, 0, len(pairs))
	for _, pair := range pairs {
		name, amount, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --%s %q, expected name=amount", flag, pair)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s amount %q: %w", flag, amount, err)
		}
		items = append(items, profitability.LineItem{Name: name, Amount: d})
	}
	return items, nil
}
