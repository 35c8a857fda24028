package model

import "strings"

// Kind names a content item variant. The values double as the "type"
// discriminator of the JSON exchange format.
type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
	KindImage Kind = "image"
)

// ContentItem is one element of a page's reading-order content stream.
// The set of implementations is closed: TextBlock, Table and Image.
type ContentItem interface {
	Kind() Kind
	BoundingBox() BBox
	Accept(v Visitor)
	contentItem()
}

// Visitor handles every content kind. Implementations are checked by the
// compiler when a kind is added.
type Visitor interface {
	VisitText(b *TextBlock)
	VisitTable(t *Table)
	VisitImage(i *Image)
}

// Line is a single positioned line of text
type Line struct {
	Text     string  `json:"text"`
	BBox     BBox    `json:"bbox"`
	FontSize float64 `json:"font_size"`
}

// TextBlock is a paragraph: adjacent lines grouped in reading order
type TextBlock struct {
	Lines []Line `json:"lines"`
}

func (b *TextBlock) Kind() Kind       { return KindText }
func (b *TextBlock) Accept(v Visitor) { v.VisitText(b) }
func (b *TextBlock) contentItem()     {}

// BoundingBox returns the union of the line boxes
func (b *TextBlock) BoundingBox() BBox {
	if len(b.Lines) == 0 {
		return BBox{}
	}
	box := b.Lines[0].BBox
	for _, line := range b.Lines[1:] {
		box = box.Union(line.BBox)
	}
	return box
}

// Text joins the line texts with single spaces
func (b *TextBlock) Text() string {
	parts := make([]string, 0, len(b.Lines))
	for _, line := range b.Lines {
		parts = append(parts, line.Text)
	}
	return strings.Join(parts, " ")
}

// LastLine returns the most recently added line
func (b *TextBlock) LastLine() (Line, bool) {
	if len(b.Lines) == 0 {
		return Line{}, false
	}
	return b.Lines[len(b.Lines)-1], true
}

// Image is an image placed on a page
type Image struct {
	Ref  string `json:"ref"`
	BBox BBox   `json:"bbox"`
}

func (i *Image) Kind() Kind        { return KindImage }
func (i *Image) BoundingBox() BBox { return i.BBox }
func (i *Image) Accept(v Visitor)  { v.VisitImage(i) }
func (i *Image) contentItem()      {}

// IsNil reports whether item is nil or a nil pointer of a content kind
func IsNil(item ContentItem) bool {
	switch v := item.(type) {
	case nil:
		return true
	case *TextBlock:
		return v == nil
	case *Table:
		return v == nil
	case *Image:
		return v == nil
	}
	return false
}

// CloneContents returns a copy of items whose blocks, tables and images do not
// share memory with the input. Nil items are dropped.
func CloneContents(items []ContentItem) []ContentItem {
	if items == nil {
		return nil
	}
	c := &cloner{out: make([]ContentItem, 0, len(items))}
	for _, item := range items {
		if IsNil(item) {
			continue
		}
		item.Accept(c)
	}
	return c.out
}

type cloner struct {
	out []ContentItem
}

func (c *cloner) VisitText(b *TextBlock) {
	c.out = append(c.out, &TextBlock{Lines: append([]Line(nil), b.Lines...)})
}

func (c *cloner) VisitTable(t *Table) {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	c.out = append(c.out, &Table{Rows: rows, BBox: t.BBox})
}

func (c *cloner) VisitImage(i *Image) {
	img := *i
	c.out = append(c.out, &img)
}
