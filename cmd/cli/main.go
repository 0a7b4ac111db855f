// Package main is the entry point for the partnerops CLI.
package main

import (
	"os"

	"partnerops/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
