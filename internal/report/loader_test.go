package report

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitMarkdown(t *testing.T) {
	text := `Intro paragraph.

## Pazar Analizi

Market content here.

## Finansal Projeksiyonlar

Financial content.
`
	sections := SplitMarkdown(text)
	if len(sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(sections))
	}
	if sections[0].ID != "giris" || sections[0].Text != "Intro paragraph." {
		t.Errorf("sections[0] = %+v", sections[0])
	}
	if sections[1].ID != "pazar-analizi" {
		t.Errorf("sections[1].ID = %q, want pazar-analizi", sections[1].ID)
	}
	if sections[2].ID != "finansal-projeksiyonlar" {
		t.Errorf("sections[2].ID = %q", sections[2].ID)
	}
}

func TestSplitMarkdownNoHeadings(t *testing.T) {
	sections := SplitMarkdown("Just one block of text.")
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].ID != "giris" {
		t.Errorf("ID = %q, want giris", sections[0].ID)
	}
}

func TestSplitMarkdownEmpty(t *testing.T) {
	if got := SplitMarkdown("   \n\n  "); len(got) != 0 {
		t.Errorf("sections = %v, want none for blank input", got)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	content := `sections:
  - id: ozet
    text: Summary text.
  - text: Anonymous section.
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sections, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].ID != "ozet" || sections[0].Text != "Summary text." {
		t.Errorf("sections[0] = %+v", sections[0])
	}
	if sections[1].ID != "section-02" {
		t.Errorf("sections[1].ID = %q, want generated id", sections[1].ID)
	}
}

func TestLoadYAMLEmptySections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yml")
	if err := os.WriteFile(path, []byte("sections: []\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail for a YAML report without sections")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}

func TestJoinRoundTrip(t *testing.T) {
	sections := SplitMarkdown("## a\n\ntext a\n\n## b\n\ntext b")
	joined := Join(sections)
	again := SplitMarkdown(joined)
	if len(again) != len(sections) {
		t.Fatalf("round trip sections = %d, want %d", len(again), len(sections))
	}
	for i := range sections {
		if again[i] != sections[i] {
			t.Errorf("round trip [%d] = %+v, want %+v", i, again[i], sections[i])
		}
	}
}
