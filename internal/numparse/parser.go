// Package numparse parses locale-ambiguous numeric tokens from report text.
// It disambiguates the comma-decimal convention ("1.234,56") from the
// dot-decimal convention ("1,234.56") and understands Turkish and English
// magnitude suffixes ("2,5 milyon", "3b").
package numparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NumberFormatError indicates a token that could not be parsed as a number.
type NumberFormatError struct {
	// Token is the cleaned token that failed to parse.
	Token string
	// Reason describes why parsing failed.
	Reason string
}

// Error implements the error interface.
func (e *NumberFormatError) Error() string {
	return fmt.Sprintf("unparseable number %q: %s", e.Token, e.Reason)
}

// magnitudes maps Turkish and English magnitude suffixes to multipliers.
var magnitudes = map[string]float64{
	"bin":      1e3,
	"milyon":   1e6,
	"milyar":   1e9,
	"trilyon":  1e12,
	"thousand": 1e3,
	"million":  1e6,
	"billion":  1e9,
	"trillion": 1e12,
	"mn":       1e6,
	"mln":      1e6,
	"mr":       1e9,
	"mlr":      1e9,
	"k":        1e3,
	"m":        1e6,
	"b":        1e9,
	"t":        1e12,
}

var (
	magnitudeRe = regexp.MustCompile(`(?i)^(-?[\d.,]+)\s*(bin|milyon|milyar|trilyon|thousand|million|billion|trillion|mn|mln|mr|mlr|k|m|b|t)$`)
	currencyRe  = regexp.MustCompile(`[₺$€£¥]|TL|USD|EUR`)
)

// Parse converts a numeric token to a float64. It fails with a
// *NumberFormatError when the token cannot be interpreted as a number.
func Parse(token string) (float64, error) {
	cleaned := clean(token)
	if cleaned == "" {
		return 0, &NumberFormatError{Token: token, Reason: "empty token"}
	}

	if m := magnitudeRe.FindStringSubmatch(cleaned); m != nil {
		base, err := parseSeparated(m[1])
		if err != nil {
			return 0, &NumberFormatError{Token: token, Reason: err.Error()}
		}
		return base * magnitudes[strings.ToLower(m[2])], nil
	}

	val, err := parseSeparated(cleaned)
	if err != nil {
		return 0, &NumberFormatError{Token: token, Reason: err.Error()}
	}
	return val, nil
}

// ParseOr converts a numeric token to a float64, returning def when the
// token is unparseable. This is the safe mode used throughout validation.
func ParseOr(token string, def float64) float64 {
	val, err := Parse(token)
	if err != nil {
		return def
	}
	return val
}

// clean strips whitespace, percent signs, currency markers and converts a
// parenthesised value to a negative one.
func clean(token string) string {
	s := strings.TrimSpace(token)
	s = strings.ReplaceAll(s, "%", "")
	s = currencyRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	return strings.TrimSpace(s)
}

// parseSeparated resolves thousands grouping versus decimal marks.
// When both separators appear, the rightmost one is the decimal mark.
// A lone separator is a decimal mark only when followed by 1-2 digits.
func parseSeparated(s string) (float64, error) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastComma >= 0:
		if isDecimalMark(s, ",") {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if !isDecimalMark(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return strconv.ParseFloat(s, 64)
}

// isDecimalMark reports whether the single occurrence of sep in s is
// followed by exactly one or two digits.
func isDecimalMark(s, sep string) bool {
	if strings.Count(s, sep) != 1 {
		return false
	}
	tail := s[strings.Index(s, sep)+1:]
	if len(tail) < 1 || len(tail) > 2 {
		return false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
