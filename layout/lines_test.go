package layout

import (
	"testing"

	"github.com/tsawler/folio/model"
)

// makeGlyph creates a test glyph with its top-left corner at (x, top)
func makeGlyph(txt string, x, top, width, fontSize float64) Glyph {
	return Glyph{
		Text:     txt,
		BBox:     model.BBox{X0: x, Top: top, X1: x + width, Bottom: top + fontSize},
		FontSize: fontSize,
	}
}

func TestLineBuilder_Empty(t *testing.T) {
	if lines := NewLineBuilder().Build(nil); len(lines) != 0 {
		t.Errorf("Expected 0 lines, got %d", len(lines))
	}
}

func TestLineBuilder_WordsOnOneRow(t *testing.T) {
	glyphs := []Glyph{
		makeGlyph("World", 110, 100.5, 30, 10),
		makeGlyph("Hello", 72, 100, 30, 10),
	}

	lines := NewLineBuilder().Build(glyphs)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Hello World" {
		t.Errorf("Expected 'Hello World', got '%s'", lines[0].Text)
	}
	if lines[0].BBox.X0 != 72 || lines[0].BBox.X1 != 140 {
		t.Errorf("Unexpected bbox %+v", lines[0].BBox)
	}
}

func TestLineBuilder_CharactersWithoutGaps(t *testing.T) {
	var glyphs []Glyph
	for i, ch := range "abc" {
		glyphs = append(glyphs, makeGlyph(string(ch), 72+float64(i)*5, 100, 5, 10))
	}

	lines := NewLineBuilder().Build(glyphs)
	if len(lines) != 1 || lines[0].Text != "abc" {
		t.Errorf("Expected 'abc', got %v", lines)
	}
}

func TestLineBuilder_SeparateRows(t *testing.T) {
	glyphs := []Glyph{
		makeGlyph("Second", 72, 120, 40, 10),
		makeGlyph("First", 72, 100, 40, 10),
	}

	lines := NewLineBuilder().Build(glyphs)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "First" || lines[1].Text != "Second" {
		t.Errorf("Unexpected order: %s, %s", lines[0].Text, lines[1].Text)
	}
}

func TestLineBuilder_ColumnGapSplits(t *testing.T) {
	glyphs := []Glyph{
		makeGlyph("Left", 72, 100, 40, 10),
		makeGlyph("Right", 300, 100, 40, 10),
	}

	lines := NewLineBuilder().Build(glyphs)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "Left" || lines[1].Text != "Right" {
		t.Errorf("Unexpected lines %v", lines)
	}
}

func TestLineBuilder_FontChangeSplits(t *testing.T) {
	glyphs := []Glyph{
		makeGlyph("Big", 72, 100, 40, 18),
		makeGlyph("small", 115, 101, 30, 9),
	}

	lines := NewLineBuilder().Build(glyphs)
	if len(lines) != 2 {
		t.Errorf("Expected 2 lines, got %d", len(lines))
	}
}

func TestLineBuilder_DropsBlankLines(t *testing.T) {
	glyphs := []Glyph{
		makeGlyph("  ", 72, 100, 10, 10),
		makeGlyph("Text", 72, 200, 30, 10),
	}

	lines := NewLineBuilder().Build(glyphs)
	if len(lines) != 1 || lines[0].Text != "Text" {
		t.Errorf("Expected only 'Text', got %v", lines)
	}
}
