package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/folio/layout"
	"github.com/tsawler/folio/model"
)

// Segment is a ruling line in top-down page space
type Segment struct {
	Start, End model.Point
}

func (s Segment) length() float64 {
	return s.Start.Distance(s.End)
}

func (s Segment) bbox() model.BBox {
	return model.NewBBoxFromPoints(s.Start, s.End)
}

// RuleDetector finds ruled tables: grids drawn with thin filled rectangles
// or stroked lines, with the page text placed into their cells.
type RuleDetector struct {
	config Config
	lines  *layout.LineBuilder
}

// NewRuleDetector creates a detector with default configuration
func NewRuleDetector() *RuleDetector {
	return NewRuleDetectorWithConfig(DefaultConfig())
}

// NewRuleDetectorWithConfig creates a detector with custom configuration
func NewRuleDetectorWithConfig(config Config) *RuleDetector {
	return &RuleDetector{config: config, lines: layout.NewLineBuilder()}
}

// GridHypothesis represents a potential table grid detected from rules
type GridHypothesis struct {
	// Bounding box of the grid
	BBox model.BBox

	// Horizontal rule positions (Y coordinates, top to bottom)
	HorizontalLines []float64

	// Vertical rule positions (X coordinates, left to right)
	VerticalLines []float64

	// Confidence score (0-1)
	Confidence float64

	// Number of rows and columns
	Rows int
	Cols int

	// Whether the grid has complete borders
	HasTopBorder    bool
	HasBottomBorder bool
	HasLeftBorder   bool
	HasRightBorder  bool
}

// AlignedLineGroup represents a group of segments aligned on an axis
type AlignedLineGroup struct {
	// Position on the alignment axis (X for vertical rules, Y for horizontal)
	Position float64

	// Segments in this group
	Lines []Segment

	// Span of the segments (min to max on the perpendicular axis)
	MinExtent float64
	MaxExtent float64
}

// Detect finds ruled tables among rects and fills their cells from glyphs.
// Tables are returned top to bottom.
func (d *RuleDetector) Detect(rects []model.BBox, glyphs []layout.Glyph) []*model.Table {
	horizontals, verticals := d.Classify(rects)

	var tables []*model.Table
	for _, h := range d.DetectGrids(horizontals, verticals) {
		if h.Rows < d.config.MinRows || h.Cols < d.config.MinCols || h.Confidence < d.config.MinConfidence {
			continue
		}
		tables = append(tables, d.fill(h, glyphs))
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].BBox.Top != tables[j].BBox.Top {
			return tables[i].BBox.Top < tables[j].BBox.Top
		}
		return tables[i].BBox.X0 < tables[j].BBox.X0
	})
	return tables
}

// Classify turns thin rectangles into horizontal and vertical segments.
// Rectangles that are thick in both directions are not rules.
func (d *RuleDetector) Classify(rects []model.BBox) (horizontals, verticals []Segment) {
	for _, r := range rects {
		w, h := r.Width(), r.Height()
		switch {
		case h <= d.config.MaxRuleThickness && w >= d.config.MinLineLength:
			y := (r.Top + r.Bottom) / 2
			horizontals = append(horizontals, Segment{Start: model.Point{X: r.X0, Y: y}, End: model.Point{X: r.X1, Y: y}})
		case w <= d.config.MaxRuleThickness && h >= d.config.MinLineLength:
			x := (r.X0 + r.X1) / 2
			verticals = append(verticals, Segment{Start: model.Point{X: x, Y: r.Top}, End: model.Point{X: x, Y: r.Bottom}})
		}
	}
	return horizontals, verticals
}

// DetectGrids returns one grid hypothesis per connected cluster of segments
func (d *RuleDetector) DetectGrids(horizontals, verticals []Segment) []*GridHypothesis {
	horizontals = d.filterByLength(horizontals)
	verticals = d.filterByLength(verticals)

	var hypotheses []*GridHypothesis
	for _, cluster := range d.clusters(horizontals, verticals) {
		hGroups := d.groupAlignedLines(cluster.h, true)
		vGroups := d.groupAlignedLines(cluster.v, false)
		if len(hGroups) < 2 || len(vGroups) < 2 {
			continue
		}
		if h := d.findGrid(hGroups, vGroups); h != nil {
			hypotheses = append(hypotheses, h)
		}
	}
	return hypotheses
}

// filterByLength filters segments by minimum length
func (d *RuleDetector) filterByLength(lines []Segment) []Segment {
	result := make([]Segment, 0, len(lines))
	for _, line := range lines {
		if line.length() >= d.config.MinLineLength {
			result = append(result, line)
		}
	}
	return result
}

type segmentCluster struct {
	h, v []Segment
}

// clusters partitions segments into groups that touch each other, so that
// separate tables on one page become separate grids
func (d *RuleDetector) clusters(horizontals, verticals []Segment) []segmentCluster {
	all := append(append([]Segment(nil), horizontals...), verticals...)
	parent := make([]int, len(all))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	tol := d.config.AlignmentTolerance
	for i := range all {
		bi := all[i].bbox().Expand(tol)
		for j := i + 1; j < len(all); j++ {
			if bi.Intersects(all[j].bbox().Expand(tol)) {
				parent[find(i)] = find(j)
			}
		}
	}

	index := make(map[int]int)
	var result []segmentCluster
	for i, s := range all {
		root := find(i)
		k, ok := index[root]
		if !ok {
			k = len(result)
			index[root] = k
			result = append(result, segmentCluster{})
		}
		if i < len(horizontals) {
			result[k].h = append(result[k].h, s)
		} else {
			result[k].v = append(result[k].v, s)
		}
	}
	return result
}

// groupAlignedLines groups segments that are aligned on the same axis
func (d *RuleDetector) groupAlignedLines(lines []Segment, isHorizontal bool) []AlignedLineGroup {
	if len(lines) == 0 {
		return nil
	}

	position := func(s Segment) float64 {
		if isHorizontal {
			return (s.Start.Y + s.End.Y) / 2
		}
		return (s.Start.X + s.End.X) / 2
	}

	sorted := append([]Segment(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return position(sorted[i]) < position(sorted[j])
	})

	var groups []AlignedLineGroup
	current := AlignedLineGroup{Position: position(sorted[0]), Lines: []Segment{sorted[0]}}

	for _, s := range sorted[1:] {
		pos := position(s)
		if pos-current.Position <= d.config.AlignmentTolerance {
			current.Lines = append(current.Lines, s)
			// Running average position
			n := float64(len(current.Lines))
			current.Position = (current.Position*(n-1) + pos) / n
			continue
		}
		finalizeGroup(&current, isHorizontal)
		groups = append(groups, current)
		current = AlignedLineGroup{Position: pos, Lines: []Segment{s}}
	}

	finalizeGroup(&current, isHorizontal)
	return append(groups, current)
}

// finalizeGroup calculates the extent of an aligned group
func finalizeGroup(group *AlignedLineGroup, isHorizontal bool) {
	group.MinExtent = math.MaxFloat64
	group.MaxExtent = -math.MaxFloat64

	for _, line := range group.Lines {
		var minVal, maxVal float64
		if isHorizontal {
			minVal = math.Min(line.Start.X, line.End.X)
			maxVal = math.Max(line.Start.X, line.End.X)
		} else {
			minVal = math.Min(line.Start.Y, line.End.Y)
			maxVal = math.Max(line.Start.Y, line.End.Y)
		}
		group.MinExtent = math.Min(group.MinExtent, minVal)
		group.MaxExtent = math.Max(group.MaxExtent, maxVal)
	}
}

// findGrid builds a grid hypothesis from the aligned groups of one cluster
func (d *RuleDetector) findGrid(hGroups, vGroups []AlignedLineGroup) *GridHypothesis {
	// Left/Right come from vertical rule positions, Top/Bottom from horizontal
	gridLeft := minPosition(vGroups)
	gridRight := maxPosition(vGroups)
	gridTop := minPosition(hGroups)
	gridBottom := maxPosition(hGroups)

	if gridRight <= gridLeft || gridBottom <= gridTop {
		return nil
	}

	relevantH := filterGroupsByExtent(hGroups, gridLeft, gridRight)
	relevantV := filterGroupsByExtent(vGroups, gridTop, gridBottom)
	if len(relevantH) < 2 || len(relevantV) < 2 {
		return nil
	}

	h := &GridHypothesis{
		HorizontalLines: make([]float64, len(relevantH)),
		VerticalLines:   make([]float64, len(relevantV)),
		Rows:            len(relevantH) - 1,
		Cols:            len(relevantV) - 1,
	}
	for i, g := range relevantH {
		h.HorizontalLines[i] = g.Position
	}
	for i, g := range relevantV {
		h.VerticalLines[i] = g.Position
	}
	h.BBox = model.BBox{
		X0:     h.VerticalLines[0],
		Top:    h.HorizontalLines[0],
		X1:     h.VerticalLines[len(h.VerticalLines)-1],
		Bottom: h.HorizontalLines[len(h.HorizontalLines)-1],
	}

	tol := d.config.AlignmentTolerance
	h.HasTopBorder = math.Abs(h.BBox.Top-gridTop) < tol
	h.HasBottomBorder = math.Abs(h.BBox.Bottom-gridBottom) < tol
	h.HasLeftBorder = math.Abs(h.BBox.X0-gridLeft) < tol
	h.HasRightBorder = math.Abs(h.BBox.X1-gridRight) < tol

	h.Confidence = calculateConfidence(h, len(hGroups)+len(vGroups))
	return h
}

// minPosition returns the minimum position across all groups
func minPosition(groups []AlignedLineGroup) float64 {
	min := groups[0].Position
	for _, g := range groups[1:] {
		min = math.Min(min, g.Position)
	}
	return min
}

// maxPosition returns the maximum position across all groups
func maxPosition(groups []AlignedLineGroup) float64 {
	max := groups[0].Position
	for _, g := range groups[1:] {
		max = math.Max(max, g.Position)
	}
	return max
}

// filterGroupsByExtent keeps groups whose segments cover at least half of
// the given extent
func filterGroupsByExtent(groups []AlignedLineGroup, minExtent, maxExtent float64) []AlignedLineGroup {
	var result []AlignedLineGroup
	for _, g := range groups {
		coverage := g.MaxExtent - g.MinExtent
		if coverage < (maxExtent-minExtent)*0.5 {
			continue
		}
		if math.Min(g.MaxExtent, maxExtent) > math.Max(g.MinExtent, minExtent) {
			result = append(result, g)
		}
	}
	return result
}

// calculateConfidence scores a grid hypothesis from its cell count,
// regularity, borders and how many of the grouped rules it uses
func calculateConfidence(h *GridHypothesis, groupCount int) float64 {
	score := 0.0

	cellCount := h.Rows * h.Cols
	if cellCount >= 4 {
		score += 0.2
	}
	if cellCount >= 9 {
		score += 0.1
	}

	score += calculateRegularity(h) * 0.3

	borderScore := 0.0
	for _, b := range []bool{h.HasTopBorder, h.HasBottomBorder, h.HasLeftBorder, h.HasRightBorder} {
		if b {
			borderScore += 0.25
		}
	}
	score += borderScore * 0.2

	used := float64(len(h.HorizontalLines) + len(h.VerticalLines))
	if groupCount > 0 {
		score += math.Min(1.0, used/float64(groupCount)) * 0.2
	}

	return math.Min(1.0, score)
}

// calculateRegularity measures how regular the grid spacing is
func calculateRegularity(h *GridHypothesis) float64 {
	rowScore := 1.0
	if h.Rows > 1 {
		heights := make([]float64, h.Rows)
		for i := range heights {
			heights[i] = h.HorizontalLines[i+1] - h.HorizontalLines[i]
		}
		rowScore = math.Max(0, 1-coefficientOfVariation(heights))
	}

	colScore := 1.0
	if h.Cols > 1 {
		widths := make([]float64, h.Cols)
		for i := range widths {
			widths[i] = h.VerticalLines[i+1] - h.VerticalLines[i]
		}
		colScore = math.Max(0, 1-coefficientOfVariation(widths))
	}

	return (rowScore + colScore) / 2
}

// coefficientOfVariation calculates CV (std dev / mean)
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := 0.0
	for _, v := range values {
		m += v
	}
	m /= float64(len(values))
	if m == 0 {
		return 0
	}

	v := 0.0
	for _, val := range values {
		diff := val - m
		v += diff * diff
	}
	v /= float64(len(values))

	return math.Sqrt(v) / m
}

// fill places glyphs into the grid's cells by their centers
func (d *RuleDetector) fill(h *GridHypothesis, glyphs []layout.Glyph) *model.Table {
	cells := make([][][]layout.Glyph, h.Rows)
	for i := range cells {
		cells[i] = make([][]layout.Glyph, h.Cols)
	}

	for _, g := range glyphs {
		c := g.BBox.Center()
		if !h.BBox.Contains(c) {
			continue
		}
		row := band(h.HorizontalLines, c.Y)
		col := band(h.VerticalLines, c.X)
		if row >= 0 && col >= 0 {
			cells[row][col] = append(cells[row][col], g)
		}
	}

	table := model.NewTable(h.Rows, h.Cols)
	table.BBox = h.BBox
	for r := range cells {
		for c, cell := range cells[r] {
			var parts []string
			for _, line := range d.lines.Build(cell) {
				parts = append(parts, line.Text)
			}
			table.Rows[r][c] = strings.Join(parts, " ")
		}
	}
	return table
}

// band returns i such that edges[i] <= v < edges[i+1], or -1
func band(edges []float64, v float64) int {
	for i := 0; i+1 < len(edges); i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	if n := len(edges); n >= 2 && v == edges[n-1] {
		return n - 2
	}
	return -1
}
