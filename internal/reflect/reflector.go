// Package reflect implements the critique/revise quality loop. A section of
// report text is sent to a generative collaborator for critique, and when the
// critique scores below the acceptance threshold the section is sent back for
// a revision pass. The loop degrades gracefully: any collaborator failure
// leaves the original content untouched.
package reflect

import (
	"context"
	"log"
	"strings"

	"github.com/raporgen/reportqa/pkg/models"
)

// Collaborator produces free-form text for a prompt. Implementations are
// expected to handle their own retry policy; a returned error means the
// request is not worth repeating.
type Collaborator interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Config tunes the reflection loop.
type Config struct {
	// ScoreThreshold is the minimum critique score that passes without a
	// revision pass.
	ScoreThreshold int
	// CritiqueMaxTokens caps the critique reply.
	CritiqueMaxTokens int
	// ReviseMaxTokens caps the revision reply. Revisions carry the full
	// rewritten section, so this is sized larger than the critique cap.
	ReviseMaxTokens int
}

// DefaultConfig returns the standard reflection tuning.
func DefaultConfig() Config {
	return Config{
		ScoreThreshold:    85,
		CritiqueMaxTokens: 1500,
		ReviseMaxTokens:   3000,
	}
}

// Reflector drives the critique/revise loop for report sections.
type Reflector struct {
	collab Collaborator
	cfg    Config
}

// New creates a Reflector. Zero config fields fall back to defaults.
func New(collab Collaborator, cfg Config) *Reflector {
	def := DefaultConfig()
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = def.ScoreThreshold
	}
	if cfg.CritiqueMaxTokens <= 0 {
		cfg.CritiqueMaxTokens = def.CritiqueMaxTokens
	}
	if cfg.ReviseMaxTokens <= 0 {
		cfg.ReviseMaxTokens = def.ReviseMaxTokens
	}
	return &Reflector{collab: collab, cfg: cfg}
}

// ReflectSection critiques one section and revises it when the critique calls
// for it. The returned outcome always carries usable content: on any failure
// along the way the original text is kept and ImprovementMade stays false.
func (r *Reflector) ReflectSection(ctx context.Context, section models.Section) models.ReflectionOutcome {
	outcome := models.ReflectionOutcome{
		SectionID:       section.ID,
		OriginalContent: section.Text,
		RevisedContent:  section.Text,
		QualityScore:    DefaultScore,
	}

	reply, err := r.collab.Complete(ctx, buildCritiquePrompt(section.ID, section.Text), r.cfg.CritiqueMaxTokens)
	if err != nil {
		log.Printf("[reflect] critique failed for section %q, keeping original: %v", section.ID, err)
		return outcome
	}

	crit := ParseCritique(reply)
	outcome.QualityScore = crit.Score
	outcome.IssuesFound = crit.Issues
	outcome.Suggestions = crit.Suggestions

	if !crit.NeedsRevision(r.cfg.ScoreThreshold) {
		log.Printf("[reflect] section %q passed critique with score %d", section.ID, crit.Score)
		return outcome
	}

	log.Printf("[reflect] section %q scored %d with %d issue(s), revising", section.ID, crit.Score, len(crit.Issues))

	revised, err := r.collab.Complete(ctx, buildRevisePrompt(section.ID, section.Text, crit.Issues, crit.Suggestions), r.cfg.ReviseMaxTokens)
	if err != nil {
		log.Printf("[reflect] revision failed for section %q, keeping original: %v", section.ID, err)
		return outcome
	}

	revised = stripReviseLabel(revised)
	if strings.TrimSpace(revised) == "" {
		log.Printf("[reflect] empty revision for section %q, keeping original", section.ID)
		return outcome
	}

	outcome.RevisedContent = revised
	outcome.ImprovementMade = true
	return outcome
}
