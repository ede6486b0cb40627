package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/raporgen/reportqa/internal/config"
	"github.com/raporgen/reportqa/internal/pipeline"
	"github.com/raporgen/reportqa/internal/reflect"
	"github.com/raporgen/reportqa/internal/report"
	"github.com/raporgen/reportqa/internal/state"
	"github.com/raporgen/reportqa/pkg/models"
)

var (
	reviewSector    string
	reviewWorkers   int
	reviewOutput    string
	reviewThreshold int
	reviewNoHistory bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <report-file>",
	Short: "Validate a report, then critique and revise weak sections",
	Long: `Review runs the full QA pipeline: the consistency checks of validate,
then a critique pass per section against the Anthropic API. Sections scoring
below the threshold (or with concrete issues) are revised; everything else
is kept as written.

The revised report is written to --output, or stdout when omitted.`,
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

		// Consistency first: cheap, deterministic, no API traffic.
		validateSector = reviewSector
		validateBenchmarks = ""
		validator, sector, err := buildValidator(cfg)
		if err != nil {
			return err
		}
		result, err := validator.Validate(sections, sector)
		if err != nil {
			return err
		}
		printValidation(result)
		fmt.Println()

		collab, err := newCollaborator(cfg)
		if err != nil {
			return err
		}

		threshold := cfg.Reflection.ScoreThreshold
		if reviewThreshold > 0 {
			threshold = reviewThreshold
		}
		reflector := reflect.New(collab, reflect.Config{
			ScoreThreshold:    threshold,
			CritiqueMaxTokens: cfg.Reflection.CritiqueMaxTokens,
			ReviseMaxTokens:   cfg.Reflection.ReviseMaxTokens,
		})

		workers := cfg.Pipeline.MaxWorkers
		if reviewWorkers > 0 {
			workers = reviewWorkers
		}
		p := pipeline.New(reflector, pipeline.Config{MaxWorkers: workers})

		outcomes, summary, err := p.Batch(cmd.Context(), sections)
		if err != nil {
			return fmt.Errorf("review run %s cut short: %w", summary.RunID, err)
		}

		color.Green("run %s: %d/%d sections improved, average score %.1f",
			summary.RunID, summary.ImprovedCount, summary.TotalSections, summary.AverageScore)
		for _, line := range summary.Lines {
			fmt.Printf("  %s\n", line)
		}

		revised := make([]models.Section, 0, len(outcomes))
		for _, o := range outcomes {
			revised = append(revised, models.Section{ID: o.SectionID, Text: o.RevisedContent})
		}

		if err := writeReport(report.Join(revised), reviewOutput); err != nil {
			return err
		}

		if !reviewNoHistory && cfg.History.Path != "off" {
			recordHistory(cfg, sector, summary, result.Score)
		}

		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewSector, "sector", "", "Benchmark sector for the validation pass")
	reviewCmd.Flags().IntVar(&reviewWorkers, "workers", 0, "Concurrent collaborator calls (default from config)")
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "Write the revised report to this file instead of stdout")
	reviewCmd.Flags().IntVar(&reviewThreshold, "threshold", 0, "Critique score below which a section is revised")
	reviewCmd.Flags().BoolVar(&reviewNoHistory, "no-history", false, "Skip recording this run")
}

// writeReport writes the revised report to a file or stdout.
func writeReport(content, path string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write revised report: %w", err)
	}
	fmt.Printf("revised report written to %s\n", path)
	return nil
}

// recordHistory stores the finished run. Failures only log; history is not
// worth failing a run over.
func recordHistory(cfg *config.Config, sector string, summary *models.RunSummary, validationScore int) {
	db, err := state.Open(config.GetHistoryPath(cfg))
	if err != nil {
		log.Printf("[history] open failed: %v", err)
		return
	}
	defer db.Close()

	err = db.RecordRun(&state.Run{
		ID:              summary.RunID,
		Sector:          sector,
		SectionCount:    summary.TotalSections,
		ImprovedCount:   summary.ImprovedCount,
		AverageScore:    summary.AverageScore,
		ValidationScore: validationScore,
	})
	if err != nil {
		log.Printf("[history] record failed: %v", err)
	}
}
