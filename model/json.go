package model

import (
	"encoding/json"
	"fmt"
)

// Wire forms. Every content item carries a "type" discriminator so a
// document can be read back without knowing the variants in advance.

type itemJSON struct {
	Type  Kind       `json:"type"`
	BBox  *BBox      `json:"bbox,omitempty"`
	Lines []Line     `json:"lines,omitempty"`
	Rows  [][]string `json:"rows,omitempty"`
	Ref   string     `json:"ref,omitempty"`
}

type pageJSON struct {
	Number   int        `json:"page_number"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Verdict  Verdict    `json:"verification"`
	Contents []itemJSON `json:"contents"`
}

type documentJSON struct {
	ID     string  `json:"id,omitempty"`
	Totals Totals  `json:"totals"`
	Pages  []*Page `json:"pages"`
}

type itemEncoder struct {
	out []itemJSON
}

func (e *itemEncoder) VisitText(b *TextBlock) {
	box := b.BoundingBox()
	e.out = append(e.out, itemJSON{Type: KindText, BBox: &box, Lines: b.Lines})
}

func (e *itemEncoder) VisitTable(t *Table) {
	box := t.BBox
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	e.out = append(e.out, itemJSON{Type: KindTable, BBox: &box, Rows: rows})
}

func (e *itemEncoder) VisitImage(i *Image) {
	box := i.BBox
	e.out = append(e.out, itemJSON{Type: KindImage, BBox: &box, Ref: i.Ref})
}

func decodeItem(raw itemJSON) (ContentItem, error) {
	var box BBox
	if raw.BBox != nil {
		box = *raw.BBox
	}
	switch raw.Type {
	case KindText:
		return &TextBlock{Lines: raw.Lines}, nil
	case KindTable:
		return &Table{Rows: raw.Rows, BBox: box}, nil
	case KindImage:
		return &Image{Ref: raw.Ref, BBox: box}, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", raw.Type)
	}
}

// MarshalJSON encodes the page with discriminated content items
func (p *Page) MarshalJSON() ([]byte, error) {
	enc := &itemEncoder{out: make([]itemJSON, 0, len(p.Contents))}
	for _, item := range p.Contents {
		item.Accept(enc)
	}
	return json.Marshal(pageJSON{
		Number:   p.Number,
		Width:    p.Width,
		Height:   p.Height,
		Verdict:  p.Verdict,
		Contents: enc.out,
	})
}

// UnmarshalJSON decodes a page written by MarshalJSON
func (p *Page) UnmarshalJSON(data []byte) error {
	var raw pageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	contents := make([]ContentItem, 0, len(raw.Contents))
	for i, r := range raw.Contents {
		item, err := decodeItem(r)
		if err != nil {
			return fmt.Errorf("page %d item %d: %w", raw.Number, i, err)
		}
		contents = append(contents, item)
	}
	*p = Page{
		Number:   raw.Number,
		Width:    raw.Width,
		Height:   raw.Height,
		Verdict:  raw.Verdict,
		Contents: contents,
	}
	return nil
}

// MarshalJSON encodes the document, its totals and pages
func (d *Document) MarshalJSON() ([]byte, error) {
	pages := d.Pages
	if pages == nil {
		pages = []*Page{}
	}
	return json.Marshal(documentJSON{ID: d.ID, Totals: d.Totals, Pages: pages})
}

// UnmarshalJSON decodes a document written by MarshalJSON
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document{ID: raw.ID, Totals: raw.Totals, Pages: raw.Pages}
	if d.Pages == nil {
		d.Pages = make([]*Page, 0)
	}
	return nil
}
