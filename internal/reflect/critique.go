package reflect

import (
	"regexp"
	"strings"

	"github.com/raporgen/reportqa/pkg/models"
)

// DefaultScore is assumed when a critique reply carries no parsable score.
// Neutral: below the revision threshold but not alarming.
const DefaultScore = 75

var scoreRe = regexp.MustCompile(`(?im)^\s*SCORE\s*[:=]?\s*(\d{1,3})`)

// ParseCritique extracts a structured critique from a collaborator reply.
// The reply is expected to follow the SCORE/ISSUES/SUGGESTIONS/SUMMARY
// format, but replies drift; the parser salvages whatever blocks it can and
// falls back to a neutral default score. It never fails outright.
func ParseCritique(reply string) models.Critique {
	crit := models.Critique{Score: DefaultScore}

	if m := scoreRe.FindStringSubmatch(reply); m != nil {
		crit.Score = clampScore(atoiLoose(m[1]))
	}

	const (
		blockNone = iota
		blockIssues
		blockSuggestions
	)
	block := blockNone

	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "ISSUES"):
			block = blockIssues
			continue
		case strings.HasPrefix(upper, "SUGGESTIONS"):
			block = blockSuggestions
			continue
		case strings.HasPrefix(upper, "SUMMARY"):
			block = blockNone
			if _, rest, ok := strings.Cut(trimmed, ":"); ok {
				crit.Summary = strings.TrimSpace(rest)
			}
			continue
		case strings.HasPrefix(upper, "SCORE"):
			block = blockNone
			continue
		}

		item, ok := bulletItem(trimmed)
		if !ok {
			continue
		}
		switch block {
		case blockIssues:
			crit.Issues = append(crit.Issues, item)
		case blockSuggestions:
			crit.Suggestions = append(crit.Suggestions, item)
		}
	}

	return crit
}

// bulletItem strips a leading list marker and reports whether the line was a
// non-empty bullet.
func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			item := strings.TrimSpace(strings.TrimPrefix(line, marker))
			return item, item != ""
		}
	}
	return "", false
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// atoiLoose converts a digit-only string; the regex guarantees at most three
// digits so overflow is not a concern.
func atoiLoose(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
