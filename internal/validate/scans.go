package validate

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/raporgen/reportqa/internal/numparse"
	"github.com/raporgen/reportqa/pkg/models"
)

var (
	// separatorRowRe matches a markdown table separator row such as
	// "|---|:---:|---|".
	separatorRowRe = regexp.MustCompile(`^\s*\|?\s*:?-{2,}:?\s*(\|\s*:?-{2,}:?\s*)+\|?\s*$`)

	// percentTokenRe matches a cell that looks like a percentage value.
	percentTokenRe = regexp.MustCompile(`^\s*%?\s*[\d.,]+\s*%?\s*$`)

	// shareContextRe matches market-share or margin labels followed by a value.
	shareContextRe = regexp.MustCompile(`(?i)(pazar\s*pay[ıi]|market\s*share|marj[ıi]?|margin)[^%\d]{0,20}%?\s*([\d.,]+)\s*%?`)

	// growthRe matches growth-rate mentions in free text, both Turkish and
	// English keyword forms.
	growthRe = regexp.MustCompile(`(?i)(büyüme|art[ıi]ş|düşüş|growth|increase|decrease)[^%\d]{0,20}%?\s*([\d.,]+)\s*%?`)

	// yearRe matches four-digit years in this century.
	yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

	// moneyRe matches monetary amounts with an optional magnitude word and a
	// currency marker.
	moneyRe = regexp.MustCompile(`(?i)([\d.,]+)\s*(bin|milyon|milyar|thousand|million|billion)?\s*(TL|USD|EUR|\$|€|₺)`)
)

// metricMentionRes matches benchmark metric labels followed by a value.
var metricMentionRes = map[string]*regexp.Regexp{
	"gross_margin": regexp.MustCompile(`(?i)(?:brüt\s*(?:kar\s*)?marj[ıi]?|gross\s*margin)[^%\d]{0,10}%?\s*([\d.,]+)`),
	"net_margin":   regexp.MustCompile(`(?i)(?:net\s*(?:kar\s*)?marj[ıi]?|net\s*margin)[^%\d]{0,10}%?\s*([\d.,]+)`),
	"growth_rate":  regexp.MustCompile(`(?i)(?:(?:y[ıi]ll[ıi]k\s*)?büyüme\s*oran[ıi]|growth\s*rate)[^%\d]{0,10}%?\s*([\d.,]+)`),
	"churn_rate":   regexp.MustCompile(`(?i)(?:churn(?:\s*rate)?|kay[ıi]p\s*oran[ıi])[^%\d]{0,10}%?\s*([\d.,]+)`),
}

// crossMetricRes matches metrics that must agree across sections. Values are
// compared after magnitude normalization.
var crossMetricRes = map[string]*regexp.Regexp{
	"pazar_buyuklugu":  regexp.MustCompile(`(?i)(?:pazar\s*büyüklüğü|market\s*size)[:\s]*([\d.,]+\s*(?:bin|milyon|milyar|thousand|million|billion)?)`),
	"hedef_gelir":      regexp.MustCompile(`(?i)(?:hedef\s*(?:gelir|ciro)|target\s*revenue)[:\s]*([\d.,]+\s*(?:bin|milyon|milyar|thousand|million|billion)?)`),
	"yatirim_ihtiyaci": regexp.MustCompile(`(?i)(?:yat[ıi]r[ıi]m\s*(?:ihtiyac[ıi]|tutar[ıi])|investment\s*need)[:\s]*([\d.,]+\s*(?:bin|milyon|milyar|thousand|million|billion)?)`),
	"hedef_musteri":    regexp.MustCompile(`(?i)(?:hedef\s*müşteri|target\s*customers?)[:\s]*([\d.,]+\s*(?:bin|milyon|milyar|thousand|million|billion)?)`),
}

// sortedKeys returns map keys in a fixed order so issue detection order is
// deterministic across runs.
func sortedKeys(m map[string]*regexp.Regexp) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scanTables finds pipe-delimited percentage tables and checks that their
// value column sums to roughly 100.
func (v *Validator) scanTables(sec models.Section) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, block := range tableBlocks(sec.Text) {
		sum, ok := percentColumnSum(block)
		if !ok {
			continue
		}

		deviation := math.Abs(sum - 100)
		if deviation <= v.cfg.SumTolerance || sum > v.cfg.AbsurdSumCeiling {
			continue
		}

		severity := models.SeverityWarning
		if deviation > v.cfg.SumErrorDeviation {
			severity = models.SeverityError
		}
		issues = append(issues, models.ValidationIssue{
			Severity:      severity,
			Category:      models.CategoryPercentageSum,
			Message:       fmt.Sprintf("percentage column sums to %s instead of 100", formatValue(sum)),
			Location:      sec.ID,
			CurrentValue:  formatValue(sum),
			ExpectedValue: "100",
			Suggestion:    "check the table values; shares should add up to 100",
		})
	}

	return issues
}

// tableBlocks extracts pipe-table blocks: a header row, a separator row and
// one or more data rows.
func tableBlocks(text string) [][]string {
	var blocks [][]string
	var current []string

	flush := func() {
		if len(current) >= 3 && separatorRowRe.MatchString(current[1]) {
			blocks = append(blocks, current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") {
			current = append(current, trimmed)
			continue
		}
		flush()
	}
	flush()

	return blocks
}

// percentColumnSum locates the candidate percentage column of a table block
// and returns the sum of its parsed values. The second return is false when
// the table has no such column.
func percentColumnSum(block []string) (float64, bool) {
	header := splitRow(block[0])
	data := make([][]string, 0, len(block)-2)
	for _, row := range block[2:] {
		cells := splitRow(row)
		if len(cells) != len(header) {
			log.Printf("[validate] skipping ragged table row: %q", row)
			continue
		}
		data = append(data, cells)
	}
	if len(data) == 0 {
		return 0, false
	}

	for col := range header {
		if !isPercentColumn(header[col], data, col) {
			continue
		}
		sum := 0.0
		counted := 0
		for _, cells := range data {
			val, err := numparse.Parse(cells[col])
			if err != nil {
				log.Printf("[validate] skipping unparseable table cell %q: %v", cells[col], err)
				continue
			}
			sum += val
			counted++
		}
		if counted >= 2 {
			return sum, true
		}
	}

	return 0, false
}

// isPercentColumn reports whether a column consists of percentage-like
// tokens. The column qualifies when every cell looks numeric and either a
// cell or the header carries a percent marker.
func isPercentColumn(header string, data [][]string, col int) bool {
	marked := strings.Contains(header, "%") ||
		strings.Contains(strings.ToLower(header), "pay") ||
		strings.Contains(strings.ToLower(header), "share")

	for _, cells := range data {
		cell := cells[col]
		if !percentTokenRe.MatchString(cell) {
			return false
		}
		if strings.Contains(cell, "%") {
			marked = true
		}
	}
	return marked
}

// splitRow splits a pipe-table row into trimmed cells.
func splitRow(row string) []string {
	row = strings.Trim(strings.TrimSpace(row), "|")
	parts := strings.Split(row, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// scanPercentages flags individual share or margin percentages above 100.
func (v *Validator) scanPercentages(sec models.Section) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, m := range shareContextRe.FindAllStringSubmatch(sec.Text, -1) {
		val, err := numparse.Parse(m[2])
		if err != nil {
			log.Printf("[validate] skipping unparseable percentage %q in %s: %v", m[2], sec.ID, err)
			continue
		}
		if val > 100 {
			issues = append(issues, models.ValidationIssue{
				Severity:      models.SeverityWarning,
				Category:      models.CategoryPercentageError,
				Message:       fmt.Sprintf("share or margin of %s%% exceeds 100%%", formatValue(val)),
				Location:      sec.ID,
				CurrentValue:  formatValue(val),
				ExpectedValue: "0-100",
				Suggestion:    "a share or margin cannot exceed 100 percent",
			})
		}
	}

	return issues
}

// scanGrowthRates flags implausible growth rates mentioned in free text.
func (v *Validator) scanGrowthRates(sec models.Section) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, m := range growthRe.FindAllStringSubmatch(sec.Text, -1) {
		val, err := numparse.Parse(m[2])
		if err != nil {
			log.Printf("[validate] skipping unparseable growth rate %q in %s: %v", m[2], sec.ID, err)
			continue
		}
		if val <= v.cfg.GrowthWarnCeiling {
			continue
		}

		issue := models.ValidationIssue{
			Severity:      models.SeverityWarning,
			Category:      models.CategoryGrowthRate,
			Message:       fmt.Sprintf("very high growth rate: %s%%", formatValue(val)),
			Location:      sec.ID,
			CurrentValue:  formatValue(val),
			ExpectedValue: fmt.Sprintf("<= %s%%", formatValue(v.cfg.GrowthWarnCeiling)),
			Suggestion:    "verify this growth rate against the source data",
		}
		if val > v.cfg.GrowthErrorCeiling {
			issue.Severity = models.SeverityError
			issue.Message = fmt.Sprintf("implausible growth rate: %s%%", formatValue(val))
			issue.Suggestion = "this growth rate is almost certainly wrong; correct it"
		}
		issues = append(issues, issue)
	}

	return issues
}

// scanBenchmarks checks metric mentions against the sector benchmark ranges.
func (v *Validator) scanBenchmarks(sec models.Section, sector string, ranges map[string]Range) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, metric := range sortedKeys(metricMentionRes) {
		re := metricMentionRes[metric]
		rng, ok := ranges[metric]
		if !ok {
			continue
		}
		for _, m := range re.FindAllStringSubmatch(sec.Text, -1) {
			val, err := numparse.Parse(m[1])
			if err != nil {
				log.Printf("[validate] skipping unparseable %s value %q in %s: %v", metric, m[1], sec.ID, err)
				continue
			}
			if rng.Contains(val) {
				continue
			}
			issues = append(issues, models.ValidationIssue{
				Severity:      models.SeverityWarning,
				Category:      models.CategorySectorBenchmark,
				Message:       fmt.Sprintf("%s of %s is outside the %s sector range", metric, formatValue(val), sector),
				Location:      sec.ID,
				CurrentValue:  formatValue(val),
				ExpectedValue: fmt.Sprintf("%s to %s", formatValue(rng.Min), formatValue(rng.Max)),
				Suggestion:    fmt.Sprintf("typical %s values for this sector fall between %s and %s", metric, formatValue(rng.Min), formatValue(rng.Max)),
			})
		}
	}

	return issues
}

// scanYears flags stale data years and projections too far into the future.
func (v *Validator) scanYears(sec models.Section) []models.ValidationIssue {
	var issues []models.ValidationIssue
	now := v.currentYear()
	seen := make(map[int]struct{})

	for _, m := range yearRe.FindAllStringSubmatch(sec.Text, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, dup := seen[year]; dup {
			continue
		}
		seen[year] = struct{}{}

		switch {
		case year < v.cfg.OutdatedYear:
			issues = append(issues, models.ValidationIssue{
				Severity:     models.SeverityInfo,
				Category:     models.CategoryOutdatedData,
				Message:      fmt.Sprintf("references data from %d", year),
				Location:     sec.ID,
				CurrentValue: strconv.Itoa(year),
				Suggestion:   "prefer more recent data",
			})
		case year > now+v.cfg.MaxProjectionYears:
			issues = append(issues, models.ValidationIssue{
				Severity:      models.SeverityWarning,
				Category:      models.CategoryFutureProjection,
				Message:       fmt.Sprintf("projection reaches %d, far beyond the planning horizon", year),
				Location:      sec.ID,
				CurrentValue:  strconv.Itoa(year),
				ExpectedValue: fmt.Sprintf("<= %d", now+v.cfg.MaxProjectionYears),
				Suggestion:    "keep projections within five to seven years",
			})
		}
	}

	return issues
}

// metricMention is a single extracted metric value with its location.
type metricMention struct {
	section string
	value   float64
}

// checkCrossMentions flags the same metric reported with materially
// different values within or across sections.
func (v *Validator) checkCrossMentions(sections []models.Section) []models.ValidationIssue {
	var issues []models.ValidationIssue

	for _, metric := range sortedKeys(crossMetricRes) {
		re := crossMetricRes[metric]
		var mentions []metricMention
		for _, sec := range sections {
			for _, m := range re.FindAllStringSubmatch(sec.Text, -1) {
				val, err := numparse.Parse(m[1])
				if err != nil {
					log.Printf("[validate] skipping unparseable %s mention %q in %s: %v", metric, m[1], sec.ID, err)
					continue
				}
				mentions = append(mentions, metricMention{section: sec.ID, value: val})
			}
		}
		if len(mentions) < 2 {
			continue
		}

		base := mentions[0]
		for _, other := range mentions[1:] {
			if relativeDiff(base.value, other.value) <= v.cfg.RelativeTolerance {
				continue
			}
			issues = append(issues, models.ValidationIssue{
				Severity: models.SeverityWarning,
				Category: models.CategoryValueInconsistency,
				Message: fmt.Sprintf("%s reported as %s in %s but %s in %s",
					metric, formatValue(base.value), base.section, formatValue(other.value), other.section),
				Location:      other.section,
				CurrentValue:  formatValue(other.value),
				ExpectedValue: formatValue(base.value),
				Suggestion:    "align the metric across sections or explain the difference",
			})
			// One issue per metric keeps the report readable.
			break
		}
	}

	return issues
}

// checkMoneySpread flags monetary values whose magnitudes are so far apart
// that a unit or multiplier error is likely.
func (v *Validator) checkMoneySpread(sections []models.Section) []models.ValidationIssue {
	var min, max float64
	var minLoc, maxLoc string

	for _, sec := range sections {
		for _, m := range moneyRe.FindAllStringSubmatch(sec.Text, -1) {
			token := m[1]
			if m[2] != "" {
				token = m[1] + " " + m[2]
			}
			val, err := numparse.Parse(token)
			if err != nil || val <= 0 {
				continue
			}
			if min == 0 || val < min {
				min, minLoc = val, sec.ID
			}
			if val > max {
				max, maxLoc = val, sec.ID
			}
		}
	}

	if min <= 1 || max == 0 || max/min <= v.cfg.MoneySpreadRatio {
		return nil
	}

	return []models.ValidationIssue{{
		Severity: models.SeverityWarning,
		Category: models.CategoryLogicError,
		Message: fmt.Sprintf("monetary values span %s (%s) to %s (%s); a multiplier or currency error is likely",
			formatValue(min), minLoc, formatValue(max), maxLoc),
		Location:     maxLoc,
		CurrentValue: fmt.Sprintf("%s - %s", formatValue(min), formatValue(max)),
		Suggestion:   "check currency units and bin/milyon/milyar multipliers",
	}}
}

// relativeDiff returns |a-b| relative to the larger magnitude.
func relativeDiff(a, b float64) float64 {
	larger := math.Max(math.Abs(a), math.Abs(b))
	if larger == 0 {
		return 0
	}
	return math.Abs(a-b) / larger
}

// formatValue renders a float without trailing zeros.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
