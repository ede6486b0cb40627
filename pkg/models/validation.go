// Package models defines the value types shared across the report QA pipeline.
package models

import (
	"fmt"
	"strings"
)

// Severity classifies the impact of a validation issue.
// Errors invalidate a report; warnings and info entries only affect the score.
type Severity int

const (
	// SeverityInfo indicates informational feedback with no score impact.
	SeverityInfo Severity = iota
	// SeverityWarning indicates a plausibility concern worth reviewing.
	SeverityWarning
	// SeverityError indicates a numeric or logical defect in the report.
	SeverityError
)

// String returns a human-readable severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Category identifies which consistency rule produced an issue.
type Category string

const (
	// CategoryPercentageSum flags a percentage table whose values do not sum to 100.
	CategoryPercentageSum Category = "percentage_sum"
	// CategoryPercentageError flags an individual percentage outside the valid range.
	CategoryPercentageError Category = "percentage_error"
	// CategoryGrowthRate flags an implausible growth rate.
	CategoryGrowthRate Category = "growth_rate"
	// CategoryValueInconsistency flags the same metric reported with materially different values.
	CategoryValueInconsistency Category = "value_inconsistency"
	// CategoryLogicError flags logically incompatible values within the report.
	CategoryLogicError Category = "logic_error"
	// CategoryOutdatedData flags references to stale data years.
	CategoryOutdatedData Category = "outdated_data"
	// CategoryFutureProjection flags projections too far into the future.
	CategoryFutureProjection Category = "future_projection"
	// CategorySectorBenchmark flags a metric outside its sector's plausible range.
	CategorySectorBenchmark Category = "sector_benchmark"
)

// Section is a named unit of report content, validated and reflected
// independently. Sections form an ordered sequence; Go maps do not preserve
// insertion order, so the pipeline passes them as a slice.
type Section struct {
	// ID is the section identifier, e.g. "market_analysis".
	ID string
	// Text is the raw markdown-flavored section body.
	Text string
}

// ValidationIssue describes a single problem found during validation.
// Issues are immutable and created only by the validator.
type ValidationIssue struct {
	Severity Severity
	Category Category
	// Message is the human-readable description of the problem.
	Message string
	// Location is the ID of the section the issue was found in.
	Location string
	// CurrentValue is the offending value as found in the text, if applicable.
	CurrentValue string
	// ExpectedValue is the value or range the rule expected, if applicable.
	ExpectedValue string
	// Suggestion is an optional remediation hint.
	Suggestion string
}

// ValidationResult is the outcome of validating one report.
type ValidationResult struct {
	// IsValid is true when no error-severity issues were found.
	IsValid bool
	// Score is the quality score in [0,100].
	Score int
	// Issues holds all detected issues in detection order.
	Issues []ValidationIssue
	// Summary is a human-readable digest of the result.
	Summary string
}

// ErrorCount returns the number of error-severity issues.
func (r *ValidationResult) ErrorCount() int {
	return r.countBySeverity(SeverityError)
}

// WarningCount returns the number of warning-severity issues.
func (r *ValidationResult) WarningCount() int {
	return r.countBySeverity(SeverityWarning)
}

// InfoCount returns the number of info-severity issues.
func (r *ValidationResult) InfoCount() int {
	return r.countBySeverity(SeverityInfo)
}

func (r *ValidationResult) countBySeverity(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// LeadingMessages returns up to max issue messages, highest severity first.
func (r *ValidationResult) LeadingMessages(max int) []string {
	var msgs []string
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		for _, issue := range r.Issues {
			if issue.Severity != sev {
				continue
			}
			msgs = append(msgs, fmt.Sprintf("[%s] %s", issue.Category, issue.Message))
			if len(msgs) >= max {
				return msgs
			}
		}
	}
	return msgs
}

// FormatSummary renders the standard summary block for a result.
func (r *ValidationResult) FormatSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "score %d/100, %d errors, %d warnings, %d info",
		r.Score, r.ErrorCount(), r.WarningCount(), r.InfoCount())
	for _, msg := range r.LeadingMessages(2) {
		b.WriteString("\n  - ")
		b.WriteString(msg)
	}
	return b.String()
}
