package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportqa",
	Short: "Quality assurance for generated business reports",
	Long: `reportqa checks generated business-report text for numeric and logical
consistency, then runs an iterative critique/revise loop against the
Anthropic API to raise section quality.

Core capabilities:
- Validates percentage tables, growth rates, and cross-section figures
- Checks metrics against per-sector benchmark ranges
- Critiques each section and revises the ones that score low
- Records run history for later inspection`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
