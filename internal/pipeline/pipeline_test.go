package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raporgen/reportqa/internal/reflect"
	"github.com/raporgen/reportqa/pkg/models"
)

// countingCollaborator answers critiques with a fixed score and tracks
// concurrent calls.
type countingCollaborator struct {
	score int

	mu       sync.Mutex
	inFlight int
	peak     int
}

func (c *countingCollaborator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()

	if strings.Contains(prompt, "CURRENT CONTENT") {
		return "revised", nil
	}
	return fmt.Sprintf("SCORE: %d\n\nISSUES:\n\nSUGGESTIONS:\n\nSUMMARY: ok", c.score), nil
}

func sectionsN(n int) []models.Section {
	sections := make([]models.Section, n)
	for i := range sections {
		sections[i] = models.Section{
			ID:   fmt.Sprintf("section-%02d", i),
			Text: fmt.Sprintf("content %d", i),
		}
	}
	return sections
}

func TestBatchPreservesInputOrder(t *testing.T) {
	collab := &countingCollaborator{score: 95}
	p := New(reflect.New(collab, reflect.Config{}), Config{MaxWorkers: 4})

	sections := sectionsN(12)
	outcomes, summary, err := p.Batch(context.Background(), sections)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(outcomes) != len(sections) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(sections))
	}
	for i, out := range outcomes {
		if out.SectionID != sections[i].ID {
			t.Errorf("outcomes[%d].SectionID = %q, want %q", i, out.SectionID, sections[i].ID)
		}
	}
	if summary.TotalSections != 12 {
		t.Errorf("TotalSections = %d, want 12", summary.TotalSections)
	}
	if summary.RunID == "" {
		t.Error("RunID should not be empty")
	}
}

func TestBatchBoundsConcurrency(t *testing.T) {
	collab := &countingCollaborator{score: 95}
	p := New(reflect.New(collab, reflect.Config{}), Config{MaxWorkers: 2})

	if _, _, err := p.Batch(context.Background(), sectionsN(10)); err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if collab.peak > 2 {
		t.Errorf("peak concurrent calls = %d, want <= 2", collab.peak)
	}
}

func TestBatchSummaryCountsImprovements(t *testing.T) {
	// Score below threshold forces a revision pass on every section.
	collab := &countingCollaborator{score: 50}
	p := New(reflect.New(collab, reflect.Config{}), Config{})

	outcomes, summary, err := p.Batch(context.Background(), sectionsN(3))
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if summary.ImprovedCount != 3 {
		t.Errorf("ImprovedCount = %d, want 3", summary.ImprovedCount)
	}
	if summary.AverageScore != 50 {
		t.Errorf("AverageScore = %v, want 50", summary.AverageScore)
	}
	if len(summary.Lines) != 3 {
		t.Errorf("Lines = %d entries, want 3", len(summary.Lines))
	}
	for _, out := range outcomes {
		if out.RevisedContent != "revised" {
			t.Errorf("RevisedContent = %q, want %q", out.RevisedContent, "revised")
		}
	}
}

func TestBatchCanceledBeforeDispatch(t *testing.T) {
	collab := &countingCollaborator{score: 50}
	p := New(reflect.New(collab, reflect.Config{}), Config{MaxWorkers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sections := sectionsN(4)
	outcomes, _, err := p.Batch(ctx, sections)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4 (one per section even when cancelled)", len(outcomes))
	}
	for i, out := range outcomes {
		if out.RevisedContent != sections[i].Text {
			t.Errorf("outcomes[%d] content changed after cancellation", i)
		}
		if out.ImprovementMade {
			t.Errorf("outcomes[%d].ImprovementMade = true after cancellation", i)
		}
	}
}

func TestBatchEmptyInput(t *testing.T) {
	collab := &countingCollaborator{score: 95}
	p := New(reflect.New(collab, reflect.Config{}), Config{})

	outcomes, summary, err := p.Batch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0", len(outcomes))
	}
	if summary.AverageScore != 0 {
		t.Errorf("AverageScore = %v, want 0 for empty run", summary.AverageScore)
	}
}
