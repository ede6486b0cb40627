// Package validate implements rule-based numeric and logical consistency
// checking over generated report sections.
package validate

import (
	"fmt"
	"time"

	"github.com/raporgen/reportqa/pkg/models"
)

// Config holds the tolerances and ceilings used by the validator.
// Plausible ranges are sector- and report-type-dependent, so none of these
// are hard law; callers tune them per engagement.
type Config struct {
	// SumTolerance is the allowed deviation of a percentage-table sum from 100.
	SumTolerance float64
	// SumErrorDeviation is the deviation above which a sum mismatch escalates
	// from warning to error.
	SumErrorDeviation float64
	// AbsurdSumCeiling is the sum above which a table is assumed not to be a
	// percentage breakdown at all and is left alone.
	AbsurdSumCeiling float64
	// GrowthWarnCeiling is the growth rate above which a warning is emitted.
	GrowthWarnCeiling float64
	// GrowthErrorCeiling is the growth rate above which the issue escalates
	// to an error.
	GrowthErrorCeiling float64
	// RelativeTolerance is the allowed relative difference between two
	// mentions of the same metric.
	RelativeTolerance float64
	// MoneySpreadRatio is the max/min ratio of monetary values above which a
	// magnitude inconsistency is flagged.
	MoneySpreadRatio float64
	// OutdatedYear marks data years older than this as stale.
	OutdatedYear int
	// MaxProjectionYears bounds how far into the future projections may reach.
	MaxProjectionYears int
	// CurrentYear anchors the year checks. Zero means the wall-clock year.
	CurrentYear int
	// Benchmarks is the sector benchmark table. Nil means the built-in table.
	Benchmarks Benchmarks
}

// DefaultConfig returns the standard validator configuration.
func DefaultConfig() Config {
	return Config{
		SumTolerance:       5,
		SumErrorDeviation:  30,
		AbsurdSumCeiling:   500,
		GrowthWarnCeiling:  200,
		GrowthErrorCeiling: 1000,
		RelativeTolerance:  0.25,
		MoneySpreadRatio:   10000,
		OutdatedYear:       2015,
		MaxProjectionYears: 10,
		Benchmarks:         DefaultBenchmarks(),
	}
}

// Score penalties per severity.
const (
	errorPenalty   = 15
	warningPenalty = 5
)

// InputError indicates a structurally invalid section mapping. It is fatal
// to the single Validate call that received it.
type InputError struct {
	Reason string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return "invalid validation input: " + e.Reason
}

// Validator scans report sections for numeric and logical inconsistencies.
// A Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	cfg Config
}

// New creates a Validator. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.SumTolerance == 0 {
		cfg.SumTolerance = def.SumTolerance
	}
	if cfg.SumErrorDeviation == 0 {
		cfg.SumErrorDeviation = def.SumErrorDeviation
	}
	if cfg.AbsurdSumCeiling == 0 {
		cfg.AbsurdSumCeiling = def.AbsurdSumCeiling
	}
	if cfg.GrowthWarnCeiling == 0 {
		cfg.GrowthWarnCeiling = def.GrowthWarnCeiling
	}
	if cfg.GrowthErrorCeiling == 0 {
		cfg.GrowthErrorCeiling = def.GrowthErrorCeiling
	}
	if cfg.RelativeTolerance == 0 {
		cfg.RelativeTolerance = def.RelativeTolerance
	}
	if cfg.MoneySpreadRatio == 0 {
		cfg.MoneySpreadRatio = def.MoneySpreadRatio
	}
	if cfg.OutdatedYear == 0 {
		cfg.OutdatedYear = def.OutdatedYear
	}
	if cfg.MaxProjectionYears == 0 {
		cfg.MaxProjectionYears = def.MaxProjectionYears
	}
	if cfg.Benchmarks == nil {
		cfg.Benchmarks = def.Benchmarks
	}
	return &Validator{cfg: cfg}
}

// Validate scans all sections and returns an aggregated result.
// An empty section list is valid: absence of data is not a defect.
// Validate never fails on well-formed input; only a structurally invalid
// section mapping returns an *InputError.
func (v *Validator) Validate(sections []models.Section, sector string) (*models.ValidationResult, error) {
	if err := checkInput(sections); err != nil {
		return nil, err
	}

	var issues []models.ValidationIssue
	ranges := v.cfg.Benchmarks.Sector(sector)

	for _, sec := range sections {
		if sec.Text == "" {
			continue
		}
		issues = append(issues, v.scanTables(sec)...)
		issues = append(issues, v.scanPercentages(sec)...)
		issues = append(issues, v.scanGrowthRates(sec)...)
		issues = append(issues, v.scanBenchmarks(sec, sector, ranges)...)
		issues = append(issues, v.scanYears(sec)...)
	}

	issues = append(issues, v.checkCrossMentions(sections)...)
	issues = append(issues, v.checkMoneySpread(sections)...)

	return v.aggregate(issues), nil
}

// checkInput rejects structurally invalid section mappings.
func checkInput(sections []models.Section) error {
	seen := make(map[string]struct{}, len(sections))
	for i, sec := range sections {
		if sec.ID == "" {
			return &InputError{Reason: fmt.Sprintf("section at index %d has empty id", i)}
		}
		if _, dup := seen[sec.ID]; dup {
			return &InputError{Reason: fmt.Sprintf("duplicate section id %q", sec.ID)}
		}
		seen[sec.ID] = struct{}{}
	}
	return nil
}

// aggregate computes the score and summary from the collected issues.
func (v *Validator) aggregate(issues []models.ValidationIssue) *models.ValidationResult {
	result := &models.ValidationResult{Issues: issues}

	score := 100 - errorPenalty*result.ErrorCount() - warningPenalty*result.WarningCount()
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	result.Score = score
	result.IsValid = result.ErrorCount() == 0
	result.Summary = result.FormatSummary()

	return result
}

// currentYear returns the configured anchor year or the wall-clock year.
func (v *Validator) currentYear() int {
	if v.cfg.CurrentYear != 0 {
		return v.cfg.CurrentYear
	}
	return time.Now().Year()
}
