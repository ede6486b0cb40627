package reflect

import (
	"testing"
)

func TestParseCritiqueWellFormed(t *testing.T) {
	reply := `SCORE: 72

ISSUES:
- Growth figures contradict the revenue table
- The churn rate is stated twice with different values

SUGGESTIONS:
- Reconcile the revenue table with the narrative
- Keep a single churn figure

SUMMARY: Solid structure but the numbers need reconciliation.`

	crit := ParseCritique(reply)
	if crit.Score != 72 {
		t.Errorf("Score = %d, want 72", crit.Score)
	}
	if len(crit.Issues) != 2 {
		t.Fatalf("Issues = %v, want 2 entries", crit.Issues)
	}
	if crit.Issues[0] != "Growth figures contradict the revenue table" {
		t.Errorf("Issues[0] = %q", crit.Issues[0])
	}
	if len(crit.Suggestions) != 2 {
		t.Fatalf("Suggestions = %v, want 2 entries", crit.Suggestions)
	}
	if crit.Summary != "Solid structure but the numbers need reconciliation." {
		t.Errorf("Summary = %q", crit.Summary)
	}
}

func TestParseCritiqueMalformed(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantScore int
	}{
		{
			name:      "free prose without blocks",
			reply:     "The section reads well overall, maybe tighten the intro.",
			wantScore: DefaultScore,
		},
		{
			name:      "empty reply",
			reply:     "",
			wantScore: DefaultScore,
		},
		{
			name:      "score only",
			reply:     "SCORE: 91",
			wantScore: 91,
		},
		{
			name:      "score above range clamped",
			reply:     "SCORE: 120",
			wantScore: 100,
		},
		{
			name:      "score with equals sign",
			reply:     "score = 64\nISSUES:\n- vague claims",
			wantScore: 64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crit := ParseCritique(tt.reply)
			if crit.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", crit.Score, tt.wantScore)
			}
		})
	}
}

func TestParseCritiqueBulletsOutsideBlocksIgnored(t *testing.T) {
	reply := `- stray bullet before any header
SCORE: 80
ISSUES:
- real issue
SUMMARY: fine
- stray bullet after summary`

	crit := ParseCritique(reply)
	if len(crit.Issues) != 1 || crit.Issues[0] != "real issue" {
		t.Errorf("Issues = %v, want only the in-block bullet", crit.Issues)
	}
	if len(crit.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want empty", crit.Suggestions)
	}
}

func TestStripReviseLabel(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"label restated", "REVISED CONTENT:\nBetter text here.", "Better text here."},
		{"no label", "Better text here.", "Better text here."},
		{"label with surrounding whitespace", "  REVISED CONTENT:  Better text.  ", "Better text."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripReviseLabel(tt.reply); got != tt.want {
				t.Errorf("stripReviseLabel(%q) = %q, want %q", tt.reply, got, tt.want)
			}
		})
	}
}
