package reflect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raporgen/reportqa/pkg/models"
)

// scriptedCollaborator returns queued replies in order. A nil entry in errs
// means the matching reply succeeds.
type scriptedCollaborator struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (s *scriptedCollaborator) Complete(_ context.Context, prompt string, _ int) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if i >= len(s.replies) {
		return "", errors.New("unexpected call")
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.replies[i], err
}

func TestReflectSectionPassesWithoutRevision(t *testing.T) {
	collab := &scriptedCollaborator{
		replies: []string{"SCORE: 92\n\nISSUES:\n\nSUGGESTIONS:\n\nSUMMARY: Reads well."},
	}
	r := New(collab, Config{})

	out := r.ReflectSection(context.Background(), models.Section{ID: "ozet", Text: "Original text."})

	if collab.calls != 1 {
		t.Errorf("collaborator calls = %d, want 1 (no revision for passing score)", collab.calls)
	}
	if out.ImprovementMade {
		t.Error("ImprovementMade = true, want false")
	}
	if out.RevisedContent != "Original text." {
		t.Errorf("RevisedContent = %q, want original", out.RevisedContent)
	}
	if out.QualityScore != 92 {
		t.Errorf("QualityScore = %d, want 92", out.QualityScore)
	}
}

func TestReflectSectionRevisesLowScore(t *testing.T) {
	collab := &scriptedCollaborator{
		replies: []string{
			"SCORE: 60\n\nISSUES:\n- thin analysis\n\nSUGGESTIONS:\n- add sector context\n\nSUMMARY: Needs work.",
			"REVISED CONTENT:\nMuch improved text.",
		},
	}
	r := New(collab, Config{})

	out := r.ReflectSection(context.Background(), models.Section{ID: "pazar", Text: "Weak text."})

	if collab.calls != 2 {
		t.Fatalf("collaborator calls = %d, want 2", collab.calls)
	}
	if !out.ImprovementMade {
		t.Error("ImprovementMade = false, want true")
	}
	if out.RevisedContent != "Much improved text." {
		t.Errorf("RevisedContent = %q, want revised text without label", out.RevisedContent)
	}
	if out.OriginalContent != "Weak text." {
		t.Errorf("OriginalContent = %q", out.OriginalContent)
	}
	if len(out.IssuesFound) != 1 || out.IssuesFound[0] != "thin analysis" {
		t.Errorf("IssuesFound = %v", out.IssuesFound)
	}
	// The revision prompt must carry the critique findings.
	if !strings.Contains(collab.prompts[1], "thin analysis") || !strings.Contains(collab.prompts[1], "add sector context") {
		t.Error("revision prompt missing critique issues or suggestions")
	}
}

func TestReflectSectionHighScoreWithIssuesStillRevises(t *testing.T) {
	collab := &scriptedCollaborator{
		replies: []string{
			"SCORE: 90\n\nISSUES:\n- one numeric contradiction\n\nSUGGESTIONS:\n\nSUMMARY: Mostly fine.",
			"Fixed text.",
		},
	}
	r := New(collab, Config{})

	out := r.ReflectSection(context.Background(), models.Section{ID: "finans", Text: "Text."})

	if collab.calls != 2 {
		t.Fatalf("collaborator calls = %d, want 2 (issues force revision)", collab.calls)
	}
	if !out.ImprovementMade {
		t.Error("ImprovementMade = false, want true")
	}
}

func TestReflectSectionCritiqueFailureKeepsOriginal(t *testing.T) {
	collab := &scriptedCollaborator{
		replies: []string{""},
		errs:    []error{errors.New("api unreachable")},
	}
	r := New(collab, Config{})

	out := r.ReflectSection(context.Background(), models.Section{ID: "riskler", Text: "Risk text."})

	if collab.calls != 1 {
		t.Errorf("collaborator calls = %d, want 1 (no revision after failed critique)", collab.calls)
	}
	if out.ImprovementMade {
		t.Error("ImprovementMade = true, want false")
	}
	if out.RevisedContent != "Risk text." {
		t.Errorf("RevisedContent = %q, want original", out.RevisedContent)
	}
	if out.QualityScore != DefaultScore {
		t.Errorf("QualityScore = %d, want neutral default %d", out.QualityScore, DefaultScore)
	}
}

func TestReflectSectionRevisionFailureKeepsOriginal(t *testing.T) {
	tests := []struct {
		name        string
		reviseReply string
		reviseErr   error
	}{
		{"revision call errors", "", errors.New("rate limited")},
		{"revision reply empty", "   ", nil},
		{"revision reply only label", "REVISED CONTENT:", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collab := &scriptedCollaborator{
				replies: []string{
					"SCORE: 40\n\nISSUES:\n- bad\n\nSUGGESTIONS:\n- fix\n\nSUMMARY: Poor.",
					tt.reviseReply,
				},
				errs: []error{nil, tt.reviseErr},
			}
			r := New(collab, Config{})

			out := r.ReflectSection(context.Background(), models.Section{ID: "s", Text: "Keep me."})

			if out.ImprovementMade {
				t.Error("ImprovementMade = true, want false")
			}
			if out.RevisedContent != "Keep me." {
				t.Errorf("RevisedContent = %q, want original", out.RevisedContent)
			}
			if out.QualityScore != 40 {
				t.Errorf("QualityScore = %d, want critique score 40", out.QualityScore)
			}
		})
	}
}

func TestReflectSectionGarbledCritiqueNeutralDefault(t *testing.T) {
	collab := &scriptedCollaborator{
		replies: []string{
			"I think this section is pretty good overall.",
			"Rewritten.",
		},
	}
	r := New(collab, Config{})

	out := r.ReflectSection(context.Background(), models.Section{ID: "s", Text: "T."})

	// Default score 75 sits below the 85 threshold, so a revision runs.
	if collab.calls != 2 {
		t.Fatalf("collaborator calls = %d, want 2", collab.calls)
	}
	if out.QualityScore != DefaultScore {
		t.Errorf("QualityScore = %d, want %d", out.QualityScore, DefaultScore)
	}
	if !out.ImprovementMade {
		t.Error("ImprovementMade = false, want true")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(nil, Config{})
	if r.cfg.ScoreThreshold != 85 {
		t.Errorf("ScoreThreshold = %d, want 85", r.cfg.ScoreThreshold)
	}
	if r.cfg.CritiqueMaxTokens != 1500 || r.cfg.ReviseMaxTokens != 3000 {
		t.Errorf("token caps = %d/%d, want 1500/3000", r.cfg.CritiqueMaxTokens, r.cfg.ReviseMaxTokens)
	}
}
