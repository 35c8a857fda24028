package ocr

import (
	"image"
	"sort"
	"strings"
)

// TableConfig holds the thresholds for recovering tables from OCR words.
// Distances are in image pixels.
type TableConfig struct {
	// MinConfidence is the word confidence a table word must exceed
	// (default: 60)
	MinConfidence float64

	// RowTolerance is the largest difference in top edge between words of
	// one row (default: 10)
	RowTolerance int

	// MaxRowGap is the largest vertical gap between consecutive table rows
	// (default: 20)
	MaxRowGap int

	// CellGap is the horizontal gap that separates two cells (default: 40)
	CellGap int

	// MinRows and MinCols bound the smallest table (defaults: 2 and 2)
	MinRows int
	MinCols int
}

// DefaultTableConfig returns the default thresholds
func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinConfidence: 60,
		RowTolerance:  10,
		MaxRowGap:     20,
		CellGap:       40,
		MinRows:       2,
		MinCols:       2,
	}
}

// PixelTable is a table recovered from OCR words
type PixelTable struct {
	Rows [][]string
	Box  image.Rectangle
}

type ocrCell struct {
	text string
	box  image.Rectangle
}

type ocrRow struct {
	top   int
	words []int // indices into the word slice
	cells []ocrCell
	box   image.Rectangle
}

// RecoverTables finds runs of consecutive rows that split into the same
// number of cells. It returns the tables and the words that are not part of
// any table, in their original order.
func RecoverTables(words []Word, config TableConfig) ([]PixelTable, []Word) {
	rows := groupRows(words, config)
	for i := range rows {
		splitCells(&rows[i], words, config)
	}

	used := make([]bool, len(words))
	var tables []PixelTable
	var run []*ocrRow

	closeRun := func() {
		if len(run) >= config.MinRows {
			tables = append(tables, buildTable(run, used))
		}
		run = nil
	}

	for i := range rows {
		row := &rows[i]
		if len(row.cells) < config.MinCols {
			closeRun()
			continue
		}
		if len(run) > 0 {
			prev := run[len(run)-1]
			if len(row.cells) != len(prev.cells) || row.box.Min.Y-prev.box.Max.Y >= config.MaxRowGap {
				closeRun()
			}
		}
		run = append(run, row)
	}
	closeRun()

	rest := make([]Word, 0, len(words))
	for i, w := range words {
		if !used[i] {
			rest = append(rest, w)
		}
	}
	return tables, rest
}

// groupRows buckets confident words by their top edge. A word joins the
// first row whose top lies within RowTolerance.
func groupRows(words []Word, config TableConfig) []ocrRow {
	order := make([]int, 0, len(words))
	for i, w := range words {
		if w.Confidence > config.MinConfidence && strings.TrimSpace(w.Text) != "" {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		wa, wb := words[order[a]].Box, words[order[b]].Box
		if wa.Min.Y != wb.Min.Y {
			return wa.Min.Y < wb.Min.Y
		}
		return wa.Min.X < wb.Min.X
	})

	var rows []ocrRow
	for _, i := range order {
		y := words[i].Box.Min.Y
		matched := false
		for r := range rows {
			if abs(y-rows[r].top) < config.RowTolerance {
				rows[r].words = append(rows[r].words, i)
				matched = true
				break
			}
		}
		if !matched {
			rows = append(rows, ocrRow{top: y, words: []int{i}})
		}
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].top < rows[b].top })
	return rows
}

// splitCells orders a row's words left to right and joins them into cells,
// starting a new cell at every gap wider than CellGap
func splitCells(row *ocrRow, words []Word, config TableConfig) {
	sort.SliceStable(row.words, func(a, b int) bool {
		return words[row.words[a]].Box.Min.X < words[row.words[b]].Box.Min.X
	})

	var current *ocrCell
	for k, i := range row.words {
		w := words[i]
		if k == 0 {
			row.box = w.Box
		} else {
			row.box = row.box.Union(w.Box)
		}
		if current != nil && w.Box.Min.X-current.box.Max.X <= config.CellGap {
			current.text += " " + w.Text
			current.box = current.box.Union(w.Box)
			continue
		}
		row.cells = append(row.cells, ocrCell{text: w.Text, box: w.Box})
		current = &row.cells[len(row.cells)-1]
	}
}

func buildTable(run []*ocrRow, used []bool) PixelTable {
	t := PixelTable{Box: run[0].box}
	for _, row := range run {
		cells := make([]string, len(row.cells))
		for i, c := range row.cells {
			cells[i] = c.text
		}
		t.Rows = append(t.Rows, cells)
		t.Box = t.Box.Union(row.box)
		for _, i := range row.words {
			used[i] = true
		}
	}
	return t
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
