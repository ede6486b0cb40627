package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raporgen/reportqa/internal/config"
	"github.com/raporgen/reportqa/internal/report"
	"github.com/raporgen/reportqa/internal/validate"
	"github.com/raporgen/reportqa/pkg/models"
)

var (
	validateSector     string
	validateBenchmarks string
)

var validateCmd = &cobra.Command{
	Use:   "validate <report-file>",
	Short: "Check a report for numeric and logical consistency",
	Long: `Validate scans a report for percentage tables that do not add up,
implausible growth rates, metrics outside sector benchmark ranges, stale or
far-future years, and figures that contradict each other across sections.

Report files are markdown split on "## " headings, or YAML with a sections
list. The exit code is non-zero when errors are found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sections, err := report.Load(args[0])
		if err != nil {
			return err
		}

		validator, sector, err := buildValidator(cfg)
		if err != nil {
			return err
		}

		result, err := validator.Validate(sections, sector)
		if err != nil {
			return err
		}

		printValidation(result)

		if !result.IsValid {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSector, "sector", "", "Benchmark sector (e_ticaret, saas, perakende, uretim, hizmet)")
	validateCmd.Flags().StringVar(&validateBenchmarks, "benchmarks", "", "Path to a YAML benchmark table override")
}

// buildValidator assembles the validator from config plus command flags.
func buildValidator(cfg *config.Config) (*validate.Validator, string, error) {
	vcfg := validate.DefaultConfig()
	if cfg.Validation.SumTolerance > 0 {
		vcfg.SumTolerance = cfg.Validation.SumTolerance
	}
	if cfg.Validation.GrowthWarnCeiling > 0 {
		vcfg.GrowthWarnCeiling = cfg.Validation.GrowthWarnCeiling
	}
	if cfg.Validation.GrowthErrorCeiling > 0 {
		vcfg.GrowthErrorCeiling = cfg.Validation.GrowthErrorCeiling
	}

	benchmarksPath := cfg.Validation.BenchmarksPath
	if validateBenchmarks != "" {
		benchmarksPath = validateBenchmarks
	}
	if benchmarksPath != "" {
		benchmarks, err := validate.LoadBenchmarks(benchmarksPath)
		if err != nil {
			return nil, "", fmt.Errorf("load benchmarks: %w", err)
		}
		vcfg.Benchmarks = benchmarks
	}

	sector := cfg.Validation.Sector
	if validateSector != "" {
		sector = validateSector
	}

	return validate.New(vcfg), sector, nil
}

// printValidation renders a validation result with severity coloring.
func printValidation(result *models.ValidationResult) {
	if result.IsValid {
		color.Green("✓ consistent (score %d)", result.Score)
	} else {
		color.Red("✗ inconsistent (score %d)", result.Score)
	}
	fmt.Println(result.Summary)

	for _, issue := range result.Issues {
		line := fmt.Sprintf("  [%s] %s: %s", issue.Severity, issue.Category, issue.Message)
		switch issue.Severity {
		case models.SeverityError:
			color.Red("%s", line)
		case models.SeverityWarning:
			color.Yellow("%s", line)
		default:
			color.Cyan("%s", line)
		}
		if issue.Suggestion != "" {
			fmt.Printf("      %s\n", issue.Suggestion)
		}
	}
}
