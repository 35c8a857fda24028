// Package aggregate computes and checks document-wide totals.
//
// Totals are a fold over per-page contributions. Because [model.Totals.Add]
// is associative and commutative, pages can be processed in any order or in
// parallel and summed afterwards.
package aggregate

import (
	"fmt"
	"unicode/utf8"

	"github.com/tsawler/folio/model"
	"golang.org/x/text/unicode/norm"
)

// InconsistencyError reports stored totals that differ from the fold of the
// pages. It is fatal: processing stops.
type InconsistencyError struct {
	Stored     model.Totals
	Recomputed model.Totals
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("aggregate totals inconsistent: stored %+v, recomputed %+v", e.Stored, e.Recomputed)
}

// Contribution returns one page's share of the document totals
func Contribution(page *model.Page) model.Totals {
	c := &counter{totals: model.Totals{Pages: 1}}
	for _, item := range page.Contents {
		item.Accept(c)
	}
	return c.totals
}

// Fold sums the contributions of pages
func Fold(pages []*model.Page) model.Totals {
	var totals model.Totals
	for _, page := range pages {
		totals = totals.Add(Contribution(page))
	}
	return totals
}

// Recompute sets doc.Totals to the fold of its pages
func Recompute(doc *model.Document) {
	doc.Totals = Fold(doc.Pages)
}

// Verify checks that doc.Totals equals the fold of its pages
func Verify(doc *model.Document) error {
	recomputed := Fold(doc.Pages)
	if recomputed != doc.Totals {
		return &InconsistencyError{Stored: doc.Totals, Recomputed: recomputed}
	}
	return nil
}

// CharCount counts characters the way totals do: runes after NFC
// normalisation, so precomposed and decomposed forms count the same.
func CharCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

type counter struct {
	totals model.Totals
}

func (c *counter) VisitText(b *model.TextBlock) {
	for _, line := range b.Lines {
		c.totals.Chars += CharCount(line.Text)
	}
}

func (c *counter) VisitTable(*model.Table) { c.totals.Tables++ }
func (c *counter) VisitImage(*model.Image) { c.totals.Images++ }
