// Package cmd - commission command
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"partnerops/core/commission"
	"partnerops/internal/config"
)

var (
	commissionMode  string
	commissionUsers int
	commissionTeams int
	teamSize        int
	bulkPurchase    bool
	basePriceFlag   string
	commissionJSON  bool
)

// commissionCmd represents the commission command
var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Compute a partner's commission for a referral",
	Long: `Compute the commission a partner earns on a referred purchase.

Individual referrals pay a flat rate at retail price. Team referrals
split the payment into rate bands, and bulk team purchases are priced
by the volume tier table first.

Examples:
  partnerops commission --mode individual --users 15
  partnerops commission --mode team --users 200 --bulk
  partnerops commission --mode team --teams 15 --team-size 14`,
	RunE: runCommission,
}

func init() {
	commissionCmd.Flags().StringVarP(&commissionMode, "mode", "m", "team", "referral mode (individual, team)")
	commissionCmd.Flags().IntVarP(&commissionUsers, "users", "u", 0, "referred seat count")
	commissionCmd.Flags().IntVar(&commissionTeams, "teams", 0, "number of teams (alternative to --users)")
	commissionCmd.Flags().IntVar(&teamSize, "team-size", 0, "users per team (with --teams)")
	commissionCmd.Flags().BoolVar(&bulkPurchase, "bulk", false, "price the block by the volume tier table")
	commissionCmd.Flags().StringVar(&basePriceFlag, "price", "", "override the retail price per seat")
	commissionCmd.Flags().BoolVar(&commissionJSON, "json", false, "emit JSON instead of text")
}

func runCommission(cmd *cobra.Command, args []string) error {
	userCount := commissionUsers
	if userCount == 0 && commissionTeams > 0 {
		var err error
		userCount, err = commission.UsersFromTeams(commissionTeams, teamSize)
		if err != nil {
			return err
		}
	}

	calc := commission.NewCalculator()
	if basePriceFlag != "" {
		price, err := decimal.NewFromString(basePriceFlag)
		if err != nil {
			return fmt.Errorf("invalid --price %q: %w", basePriceFlag, err)
		}
		if price.IsNegative() {
			return fmt.Errorf("--price must be >= 0")
		}
		calc = commission.NewCalculatorFor(price)
	}

	result, err := calc.Compute(commission.Input{
		Mode:           commission.Mode(commissionMode),
		UserCount:      userCount,
		IsBulkPurchase: bulkPurchase,
	})
	if err != nil {
		return err
	}

	if commissionJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	currency := config.Get().Pricing.Currency
	fmt.Printf("Commission for %d seats (%s mode)\n", userCount, commissionMode)
	fmt.Printf("  Price per seat:   %s %s (%s)\n", currency, result.PricePerUnit, result.TierLabel)
	fmt.Printf("  Base commission:  %s %s\n", currency, result.Breakdown.BaseAmount)
	if result.Breakdown.HasBonus {
		fmt.Printf("  Bonus commission: %s %s\n", currency, result.Breakdown.BonusAmount)
	}
	fmt.Printf("  Per payment:      %s %s\n", currency, result.TotalPerPayment)
	fmt.Printf("  Per year:         %s %s\n", currency, result.AnnualizedTotal)
	return nil
}
