package tables

import (
	"testing"

	"github.com/tsawler/folio/layout"
	"github.com/tsawler/folio/model"
)

// Helper to create a 1pt thick horizontal rule
func makeHRule(y, x1, x2 float64) model.BBox {
	return model.BBox{X0: x1, Top: y - 0.5, X1: x2, Bottom: y + 0.5}
}

// Helper to create a 1pt thick vertical rule
func makeVRule(x, y1, y2 float64) model.BBox {
	return model.BBox{X0: x - 0.5, Top: y1, X1: x + 0.5, Bottom: y2}
}

// makeGrid draws a ruled grid with top-left corner at (x, y)
func makeGrid(x, y, cellW, cellH float64, rows, cols int) []model.BBox {
	var rects []model.BBox
	for r := 0; r <= rows; r++ {
		rects = append(rects, makeHRule(y+float64(r)*cellH, x, x+float64(cols)*cellW))
	}
	for c := 0; c <= cols; c++ {
		rects = append(rects, makeVRule(x+float64(c)*cellW, y, y+float64(rows)*cellH))
	}
	return rects
}

func makeCellGlyph(txt string, cx, cy float64) layout.Glyph {
	return layout.Glyph{
		Text:     txt,
		BBox:     model.BBox{X0: cx - 5, Top: cy - 5, X1: cx + 5, Bottom: cy + 5},
		FontSize: 10,
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.AlignmentTolerance != 3.0 {
		t.Errorf("Expected AlignmentTolerance 3.0, got %f", config.AlignmentTolerance)
	}
	if config.MinRows != 2 || config.MinCols != 2 {
		t.Errorf("Expected 2x2 minimum, got %dx%d", config.MinRows, config.MinCols)
	}
}

func TestRuleDetector_Classify(t *testing.T) {
	d := NewRuleDetector()
	rects := []model.BBox{
		makeHRule(100, 0, 200),
		makeVRule(50, 0, 100),
		{X0: 0, Top: 0, X1: 50, Bottom: 50}, // filled box, not a rule
		{X0: 0, Top: 0, X1: 2, Bottom: 2},   // dot
	}

	h, v := d.Classify(rects)
	if len(h) != 1 || len(v) != 1 {
		t.Fatalf("Expected 1 horizontal and 1 vertical, got %d and %d", len(h), len(v))
	}
	if h[0].Start.Y != 100 || v[0].Start.X != 50 {
		t.Errorf("Unexpected segment positions %+v %+v", h[0], v[0])
	}
}

func TestRuleDetector_SimpleGrid(t *testing.T) {
	d := NewRuleDetector()
	rects := makeGrid(0, 100, 100, 50, 2, 2)
	glyphs := []layout.Glyph{
		makeCellGlyph("A", 50, 125),
		makeCellGlyph("B", 150, 125),
		makeCellGlyph("1", 50, 175),
		makeCellGlyph("2", 150, 175),
		makeCellGlyph("outside", 400, 400),
	}

	tables := d.Detect(rects, glyphs)
	if len(tables) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(tables))
	}

	table := tables[0]
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Fatalf("Expected 2x2 table, got %dx%d", table.RowCount(), table.ColCount())
	}
	want := [][]string{{"A", "B"}, {"1", "2"}}
	for r := range want {
		for c := range want[r] {
			if table.Cell(r, c) != want[r][c] {
				t.Errorf("Cell (%d,%d): expected %q, got %q", r, c, want[r][c], table.Cell(r, c))
			}
		}
	}

	wantBox := model.BBox{X0: 0, Top: 100, X1: 200, Bottom: 200}
	if table.BBox != wantBox {
		t.Errorf("Expected bbox %+v, got %+v", wantBox, table.BBox)
	}
}

func TestRuleDetector_Confidence(t *testing.T) {
	d := NewRuleDetector()
	h, v := d.Classify(makeGrid(0, 0, 50, 20, 3, 3))

	grids := d.DetectGrids(h, v)
	if len(grids) != 1 {
		t.Fatalf("Expected 1 grid, got %d", len(grids))
	}
	g := grids[0]
	if !g.HasTopBorder || !g.HasBottomBorder || !g.HasLeftBorder || !g.HasRightBorder {
		t.Error("Expected complete borders")
	}
	if g.Confidence < 0.9 {
		t.Errorf("Expected high confidence for a regular grid, got %f", g.Confidence)
	}
}

func TestRuleDetector_TwoSeparateTables(t *testing.T) {
	d := NewRuleDetector()
	rects := append(makeGrid(50, 400, 80, 30, 2, 3), makeGrid(50, 100, 80, 30, 3, 2)...)

	tables := d.Detect(rects, nil)
	if len(tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(tables))
	}
	if tables[0].BBox.Top != 100 || tables[1].BBox.Top != 400 {
		t.Errorf("Expected tables ordered top to bottom, got %+v and %+v", tables[0].BBox, tables[1].BBox)
	}
	if tables[0].RowCount() != 3 || tables[1].ColCount() != 3 {
		t.Error("Unexpected table dimensions")
	}
}

func TestRuleDetector_NoGridFromParallelRules(t *testing.T) {
	d := NewRuleDetector()
	rects := []model.BBox{
		makeHRule(100, 0, 500),
		makeHRule(200, 0, 500),
	}

	if tables := d.Detect(rects, nil); len(tables) != 0 {
		t.Errorf("Expected no tables, got %d", len(tables))
	}
}

func TestRuleDetector_SingleCellBelowMinimum(t *testing.T) {
	d := NewRuleDetector()

	if tables := d.Detect(makeGrid(0, 0, 200, 100, 1, 1), nil); len(tables) != 0 {
		t.Errorf("Expected boxed region not to be a table, got %d", len(tables))
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if cv := coefficientOfVariation([]float64{10, 10, 10}); cv != 0 {
		t.Errorf("Expected 0 for equal values, got %f", cv)
	}
	if cv := coefficientOfVariation([]float64{5}); cv != 0 {
		t.Errorf("Expected 0 for a single value, got %f", cv)
	}
	if cv := coefficientOfVariation([]float64{10, 30}); cv <= 0 {
		t.Errorf("Expected positive CV, got %f", cv)
	}
}
