// Package report loads report text into ordered sections.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raporgen/reportqa/pkg/models"
)

// yamlReport is the on-disk shape of a YAML report file.
type yamlReport struct {
	Sections []struct {
		ID   string `yaml:"id"`
		Text string `yaml:"text"`
	} `yaml:"sections"`
}

// Load reads a report file into ordered sections. YAML files (.yaml/.yml)
// must carry a `sections` list with id/text pairs; anything else is treated
// as markdown and split on level-2 headings.
func Load(path string) ([]models.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return SplitMarkdown(string(data)), nil
	}
}

func parseYAML(data []byte) ([]models.Section, error) {
	var doc yamlReport
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse report yaml: %w", err)
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("report yaml has no sections")
	}

	sections := make([]models.Section, 0, len(doc.Sections))
	for i, s := range doc.Sections {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("section-%02d", i+1)
		}
		sections = append(sections, models.Section{ID: id, Text: s.Text})
	}
	return sections, nil
}

// SplitMarkdown splits markdown text into sections on "## " headings. Text
// before the first heading becomes a "giris" section. A document without
// headings is one section.
func SplitMarkdown(text string) []models.Section {
	lines := strings.Split(text, "\n")

	var sections []models.Section
	currentID := "giris"
	var current []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(current, "\n"))
		if body != "" {
			sections = append(sections, models.Section{ID: currentID, Text: body})
		}
		current = current[:0]
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			flush()
			currentID = slugify(strings.TrimSpace(strings.TrimPrefix(line, "## ")))
			continue
		}
		current = append(current, line)
	}
	flush()

	return sections
}

// slugify lowercases a heading into a stable section id.
func slugify(heading string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(heading) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r > 127:
			// Keep non-ASCII letters (Turkish headings) as-is.
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Join renders sections back into markdown, using the section ids as
// headings.
func Join(sections []models.Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## ")
		b.WriteString(s.ID)
		b.WriteString("\n\n")
		b.WriteString(s.Text)
	}
	return b.String()
}
