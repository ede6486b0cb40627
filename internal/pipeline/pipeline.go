// Package pipeline fans report sections out to the reflection loop with a
// bounded worker pool and assembles a per-run summary.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/raporgen/reportqa/internal/reflect"
	"github.com/raporgen/reportqa/pkg/models"
)

// Config tunes the batch run.
type Config struct {
	// MaxWorkers bounds concurrent collaborator calls.
	MaxWorkers int
}

// DefaultMaxWorkers is the collaborator concurrency used when Config leaves
// MaxWorkers unset.
const DefaultMaxWorkers = 3

// Pipeline runs the critique/revise loop over a batch of sections.
type Pipeline struct {
	reflector *reflect.Reflector
	workers   int
}

// New creates a Pipeline around a reflector.
func New(reflector *reflect.Reflector, cfg Config) *Pipeline {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	return &Pipeline{reflector: reflector, workers: workers}
}

// Batch reflects every section concurrently and returns the outcomes in
// input order. Cancellation keeps outcomes already produced; sections never
// dispatched come back with their content unchanged. The returned error is
// the context's error when the run was cut short, nil otherwise.
func (p *Pipeline) Batch(ctx context.Context, sections []models.Section) ([]models.ReflectionOutcome, *models.RunSummary, error) {
	runID := uuid.New().String()[:8]
	log.Printf("[pipeline] run %s: %d section(s), %d worker(s)", runID, len(sections), p.workers)

	outcomes := make([]models.ReflectionOutcome, len(sections))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, section := range sections {
		// Skip dispatching once the run is cancelled; the section keeps
		// its original content.
		if ctx.Err() != nil {
			outcomes[i] = unchangedOutcome(section)
			continue
		}
		select {
		case <-ctx.Done():
			outcomes[i] = unchangedOutcome(section)
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, section models.Section) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = p.reflector.ReflectSection(ctx, section)
		}(i, section)
	}

	wg.Wait()

	summary := summarize(runID, outcomes)
	log.Printf("[pipeline] run %s: %d/%d section(s) improved, average score %.1f",
		runID, summary.ImprovedCount, summary.TotalSections, summary.AverageScore)

	return outcomes, summary, ctx.Err()
}

// unchangedOutcome is the placeholder for a section the run never reached.
func unchangedOutcome(section models.Section) models.ReflectionOutcome {
	return models.ReflectionOutcome{
		SectionID:       section.ID,
		OriginalContent: section.Text,
		RevisedContent:  section.Text,
		QualityScore:    reflect.DefaultScore,
	}
}

// summarize builds the run summary from completed outcomes.
func summarize(runID string, outcomes []models.ReflectionOutcome) *models.RunSummary {
	summary := &models.RunSummary{
		RunID:         runID,
		TotalSections: len(outcomes),
	}

	total := 0
	for _, out := range outcomes {
		total += out.QualityScore
		if out.ImprovementMade {
			summary.ImprovedCount++
		}
		summary.Lines = append(summary.Lines, statusLine(out))
	}
	if len(outcomes) > 0 {
		summary.AverageScore = float64(total) / float64(len(outcomes))
	}

	return summary
}

// statusLine renders the one-line status for a section. Improved sections
// carry up to two of the critique's leading issues.
func statusLine(out models.ReflectionOutcome) string {
	if !out.ImprovementMade {
		return fmt.Sprintf("%s: score %d, kept as written", out.SectionID, out.QualityScore)
	}
	issues := out.IssuesFound
	if len(issues) > 2 {
		issues = issues[:2]
	}
	detail := "no specific issues"
	if len(issues) > 0 {
		detail = strings.Join(issues, "; ")
	}
	return fmt.Sprintf("%s: score %d, revised (%s)", out.SectionID, out.QualityScore, detail)
}
