package reflect

import (
	"fmt"
	"strings"
)

// critiquePrompt is the template for the critique step. The reply format is
// a private wire contract between this package and ParseCritique; the four
// blocks must stay in sync with the parser.
const critiquePrompt = `You are an experienced editor and quality-control reviewer. Evaluate the "%s" section of a business report.

## CONTENT
%s

## EVALUATION CRITERIA
1. Accuracy and consistency (0-25): are the numbers consistent, are there logic errors or contradictory statements?
2. Depth and originality (0-25): is the analysis superficial or thorough, does it show sector knowledge?
3. Professionalism (0-25): is the language and corporate tone appropriate, are there spelling mistakes?
4. Structure and flow (0-25): is the ordering logical, are transitions smooth, are paragraphs balanced?

## OUTPUT FORMAT
Reply in exactly this format:

SCORE: [number between 0 and 100]

ISSUES:
- [issue 1]
- [issue 2]
...

SUGGESTIONS:
- [suggestion 1]
- [suggestion 2]
...

SUMMARY: [one to two sentence overall assessment]`

// revisePrompt is the template for the revision step.
const revisePrompt = `You are a professional report editor. Improve the "%s" section below.

## CURRENT CONTENT
%s

## DETECTED ISSUES
%s

## IMPROVEMENT SUGGESTIONS
%s

## INSTRUCTIONS
1. Fix the detected issues
2. Apply the suggestions
3. Preserve the substance and length of the content
4. Preserve the professional, corporate tone
5. Do not change any numeric values, only make them consistent
6. Write only the revised content, no explanations

REVISED CONTENT:`

// reviseLabel is the instruction label some replies restate at the front of
// the rewritten text.
const reviseLabel = "REVISED CONTENT:"

// buildCritiquePrompt fills the critique template for a section.
func buildCritiquePrompt(sectionID, content string) string {
	return fmt.Sprintf(critiquePrompt, sectionID, content)
}

// buildRevisePrompt fills the revision template for a section.
func buildRevisePrompt(sectionID, content string, issues, suggestions []string) string {
	return fmt.Sprintf(revisePrompt, sectionID, content,
		bulletList(issues, "no specific issues detected"),
		bulletList(suggestions, "no specific suggestions"))
}

// bulletList renders items as a dash list, or a placeholder when empty.
func bulletList(items []string, placeholder string) string {
	if len(items) == 0 {
		return placeholder
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

// stripReviseLabel removes a restated instruction label from the front of a
// revision reply.
func stripReviseLabel(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, reviseLabel) {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, reviseLabel))
	}
	return trimmed
}
