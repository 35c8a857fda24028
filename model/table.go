package model

import "strings"

// Table represents a table as rows of cell strings
type Table struct {
	Rows [][]string `json:"rows"`
	BBox BBox       `json:"bbox"`
}

func (t *Table) Kind() Kind        { return KindTable }
func (t *Table) BoundingBox() BBox { return t.BBox }
func (t *Table) Accept(v Visitor)  { v.VisitTable(t) }
func (t *Table) contentItem()      {}

// NewTable creates a table with the given dimensions and empty cells
func NewTable(rows, cols int) *Table {
	table := &Table{Rows: make([][]string, rows)}
	for i := range table.Rows {
		table.Rows[i] = make([]string, cols)
	}
	return table
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the widest row's column count
func (t *Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// Cell returns the cell at the given row and column (0-indexed), or "" when
// out of range
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// GetText returns the table as tab separated rows
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToMarkdown converts the table to a pipe table. The first row is the header.
// Pipes and newlines inside cells are escaped so they cannot break the table.
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	cols := t.ColCount()
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = escapeCell(row[j])
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(t.Rows[0])

	// Separator
	sb.WriteString("|")
	for j := 0; j < cols; j++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows[1:] {
		writeRow(row)
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
