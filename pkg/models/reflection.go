package models

import (
	"fmt"
	"strings"
)

// Critique is the structured judgment returned by the generative-text
// collaborator for one section. It is produced per call and never persisted.
type Critique struct {
	// Score is the quality score in [0,100].
	Score int
	// Issues lists concrete problems the collaborator found.
	Issues []string
	// Suggestions lists improvement suggestions.
	Suggestions []string
	// Summary is a one-to-two sentence overall assessment.
	Summary string
}

// NeedsRevision reports whether the critique calls for a revision pass
// given the configured score threshold.
func (c *Critique) NeedsRevision(threshold int) bool {
	return c.Score < threshold || len(c.Issues) > 0
}

// ReflectionOutcome is the result of the critique/revise loop for one section.
type ReflectionOutcome struct {
	// SectionID identifies the section this outcome belongs to.
	SectionID string
	// OriginalContent is the section text before revision.
	OriginalContent string
	// IssuesFound lists the issues reported by the critique step.
	IssuesFound []string
	// Suggestions lists the suggestions reported by the critique step.
	Suggestions []string
	// RevisedContent is the section text after revision. Equals
	// OriginalContent when no revision was made or the revision failed.
	RevisedContent string
	// QualityScore is the critique score in [0,100].
	QualityScore int
	// ImprovementMade is true only when a revision call was attempted and
	// produced replacement content.
	ImprovementMade bool
}

// RunSummary aggregates a pipeline batch over all sections.
type RunSummary struct {
	// RunID is a short unique identifier for the batch.
	RunID string
	// TotalSections is the number of sections processed.
	TotalSections int
	// ImprovedCount is the number of sections with a revision applied.
	ImprovedCount int
	// AverageScore is the mean quality score across sections.
	AverageScore float64
	// Lines holds one status line per section, in input order.
	Lines []string
}

// Format renders the run summary as a human-readable block.
func (s *RunSummary) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d sections, %d improved, average score %.0f/100",
		s.RunID, s.TotalSections, s.ImprovedCount, s.AverageScore)
	for _, line := range s.Lines {
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return b.String()
}
