package model

import "sort"

// Document is an ordered list of pages plus document-wide totals.
// Totals must equal the sum of the per-page contributions; the aggregate
// package computes and checks them.
type Document struct {
	ID     string
	Pages  []*Page
	Totals Totals
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Pages: make([]*Page, 0),
	}
}

// AddPage appends a page, keeping pages ordered by number
func (d *Document) AddPage(page *Page) {
	d.Pages = append(d.Pages, page)
	if n := len(d.Pages); n > 1 && d.Pages[n-2].Number > page.Number {
		sort.SliceStable(d.Pages, func(i, j int) bool {
			return d.Pages[i].Number < d.Pages[j].Number
		})
	}
}

// GetPage returns a page by number (1-indexed), or nil
func (d *Document) GetPage(number int) *Page {
	i := sort.Search(len(d.Pages), func(i int) bool {
		return d.Pages[i].Number >= number
	})
	if i < len(d.Pages) && d.Pages[i].Number == number {
		return d.Pages[i]
	}
	return nil
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// PagesWithVerdict returns the numbers of pages carrying verdict v, ascending
func (d *Document) PagesWithVerdict(v Verdict) []int {
	var numbers []int
	for _, page := range d.Pages {
		if page.Verdict == v {
			numbers = append(numbers, page.Number)
		}
	}
	return numbers
}
