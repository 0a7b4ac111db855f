// Package cmd provides the CLI commands for partnerops.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partnerops/internal/config"
	"partnerops/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "partnerops",
	Short: "Partner pricing, commission and profitability calculators",
	Long: `partnerops computes volume-discounted seat pricing, partner
commission payouts and the annual profitability of a partner deal.

All money math is exact decimal arithmetic. The same calculators back
the HTTP API, so CLI output matches what the server reports.

Examples:
  partnerops commission --mode team --users 200 --bulk
  partnerops commission --mode individual --users 15
  partnerops profitability --teams 15 --team-size 14 --price 119 --discount 10 --commission 10`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(commissionCmd)
	rootCmd.AddCommand(profitabilityCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("partnerops version 1.0.0")
	},
}
