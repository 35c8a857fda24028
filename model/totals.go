package model

// Totals are the document-wide counters. They combine with Add, which is
// associative and commutative, so per-page contributions can be summed in any
// order.
type Totals struct {
	Pages  int `json:"page_count"`
	Chars  int `json:"char_count"`
	Images int `json:"image_count"`
	Tables int `json:"table_count"`
}

// Add returns the sum of two totals
func (t Totals) Add(other Totals) Totals {
	return Totals{
		Pages:  t.Pages + other.Pages,
		Chars:  t.Chars + other.Chars,
		Images: t.Images + other.Images,
		Tables: t.Tables + other.Tables,
	}
}

// Sub removes a contribution previously added with Add
func (t Totals) Sub(other Totals) Totals {
	return Totals{
		Pages:  t.Pages - other.Pages,
		Chars:  t.Chars - other.Chars,
		Images: t.Images - other.Images,
		Tables: t.Tables - other.Tables,
	}
}
