package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/folio/model"
)

// Glyph is a positioned run of text as produced by a PDF content stream or
// an OCR engine. It may hold a single character or a whole word.
type Glyph struct {
	Text     string
	BBox     model.BBox
	FontSize float64
}

// LineConfig holds configuration for assembling glyphs into lines
type LineConfig struct {
	// RowTolerance is the largest difference in Top between glyphs of the
	// same row, in points (default: 3)
	RowTolerance float64

	// ColumnGap is the horizontal gap that splits a row into separate lines,
	// in points (default: 30)
	ColumnGap float64

	// WordSpaceFactor is the gap, as a fraction of the font size, above which
	// a space is inserted between glyphs (default: 0.3)
	WordSpaceFactor float64

	// FontSizeChange is the font size difference that splits a row
	// (default: 0.5)
	FontSizeChange float64
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		RowTolerance:    3.0,
		ColumnGap:       30.0,
		WordSpaceFactor: 0.3,
		FontSizeChange:  0.5,
	}
}

// LineBuilder groups glyphs into lines
type LineBuilder struct {
	config LineConfig
}

// NewLineBuilder creates a line builder with default configuration
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{config: DefaultLineConfig()}
}

// NewLineBuilderWithConfig creates a line builder with custom configuration
func NewLineBuilderWithConfig(config LineConfig) *LineBuilder {
	return &LineBuilder{config: config}
}

// Build assembles glyphs into lines ordered top to bottom, left to right.
// Blank lines are dropped.
func (b *LineBuilder) Build(glyphs []Glyph) []model.Line {
	if len(glyphs) == 0 {
		return nil
	}

	// Step 1: Group glyphs into rows by vertical position
	rows := b.groupIntoRows(glyphs)

	// Step 2: Split rows into runs at column gaps and font changes
	var lines []model.Line
	for _, row := range rows {
		for _, run := range b.splitRow(row) {
			if line, ok := b.buildLine(run); ok {
				lines = append(lines, line)
			}
		}
	}

	// Step 3: Reading order
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Top != lines[j].BBox.Top {
			return lines[i].BBox.Top < lines[j].BBox.Top
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})

	return lines
}

// groupIntoRows buckets glyphs whose tops lie within RowTolerance of the
// row's running average
func (b *LineBuilder) groupIntoRows(glyphs []Glyph) [][]Glyph {
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Top != sorted[j].BBox.Top {
			return sorted[i].BBox.Top < sorted[j].BBox.Top
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var rows [][]Glyph
	var current []Glyph
	var sumTop float64

	for _, g := range sorted {
		if len(current) > 0 {
			avgTop := sumTop / float64(len(current))
			if math.Abs(g.BBox.Top-avgTop) > b.config.RowTolerance {
				rows = append(rows, current)
				current = nil
				sumTop = 0
			}
		}
		current = append(current, g)
		sumTop += g.BBox.Top
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].BBox.X0 < row[j].BBox.X0
		})
	}

	return rows
}

// splitRow breaks a left-to-right row wherever a wide gap or a font size
// change separates two glyphs
func (b *LineBuilder) splitRow(row []Glyph) [][]Glyph {
	var runs [][]Glyph
	start := 0
	for i := 1; i < len(row); i++ {
		prev, cur := row[i-1], row[i]
		gap := cur.BBox.X0 - prev.BBox.X1
		if gap > b.config.ColumnGap || math.Abs(cur.FontSize-prev.FontSize) > b.config.FontSizeChange {
			runs = append(runs, row[start:i])
			start = i
		}
	}
	return append(runs, row[start:])
}

// buildLine joins a run of glyphs, inserting spaces at word gaps
func (b *LineBuilder) buildLine(run []Glyph) (model.Line, bool) {
	var sb strings.Builder
	box := run[0].BBox
	fontSize := run[0].FontSize

	for i, g := range run {
		if i > 0 {
			prev := run[i-1]
			box = box.Union(g.BBox)
			fontSize = math.Max(fontSize, g.FontSize)

			gap := g.BBox.X0 - prev.BBox.X1
			if gap > b.config.WordSpaceFactor*g.FontSize &&
				!strings.HasSuffix(prev.Text, " ") && !strings.HasPrefix(g.Text, " ") {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(g.Text)
	}

	text := strings.Join(strings.Fields(sb.String()), " ")
	if text == "" {
		return model.Line{}, false
	}

	return model.Line{Text: text, BBox: box, FontSize: fontSize}, true
}
