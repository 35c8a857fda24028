package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/folio/model"
)

// MergeConfig holds the paragraph continuation thresholds used by Merger
type MergeConfig struct {
	// FontSizeTolerance is the largest font size difference between two lines
	// of the same paragraph (default: 0.01)
	FontSizeTolerance float64

	// GapFactor bounds the vertical gap between consecutive lines as a
	// multiple of the font size (default: 0.9)
	GapFactor float64

	// MinWidthRatio is the smallest last-line width, relative to the line
	// before it, that still reads as a wrapped line (default: 0.8)
	MinWidthRatio float64

	// MaxWidthRatio is the largest candidate width, relative to the wider
	// of the two previous lines (default: 1.2)
	MaxWidthRatio float64
}

// DefaultMergeConfig returns the default continuation thresholds
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		FontSizeTolerance: 0.01,
		GapFactor:         0.9,
		MinWidthRatio:     0.8,
		MaxWidthRatio:     1.2,
	}
}

// Merger interleaves the independently extracted tables, text lines and
// images of one page into a single reading-order content stream, grouping
// adjacent lines into paragraphs.
type Merger struct {
	config MergeConfig
}

// NewMerger creates a merger with default configuration
func NewMerger() *Merger {
	return &Merger{config: DefaultMergeConfig()}
}

// NewMergerWithConfig creates a merger with custom configuration
func NewMergerWithConfig(config MergeConfig) *Merger {
	return &Merger{config: config}
}

// Config returns the merger's configuration
func (m *Merger) Config() MergeConfig {
	return m.config
}

// Source priority when two heads coincide
const (
	srcTable = iota
	srcText
	srcImage
)

// Merge produces the reading-order content of a page. Inputs are not
// modified. The result depends only on the boxes, font sizes and texts of the
// inputs, never on the order the extractors emitted them in.
func (m *Merger) Merge(tables []*model.Table, lines []model.Line, images []*model.Image) []model.ContentItem {
	tables = sortedTables(tables)
	lines = sortedLines(lines)
	images = sortedImages(images)

	out := make([]model.ContentItem, 0, len(tables)+len(images)+len(lines)/2+1)
	var open *model.TextBlock

	flush := func() {
		if open != nil {
			out = append(out, open)
			open = nil
		}
	}

	var ti, li, ii int
	for ti < len(tables) || li < len(lines) || ii < len(images) {
		var heads [3]*model.BBox
		if ti < len(tables) {
			heads[srcTable] = &tables[ti].BBox
		}
		if li < len(lines) {
			heads[srcText] = &lines[li].BBox
		}
		if ii < len(images) {
			heads[srcImage] = &images[ii].BBox
		}

		switch pickHead(heads) {
		case srcTable:
			flush()
			out = append(out, tables[ti])
			ti++
		case srcText:
			line := lines[li]
			li++
			if open != nil && m.continues(open, line) {
				open.Lines = append(open.Lines, line)
				continue
			}
			flush()
			open = &model.TextBlock{Lines: []model.Line{line}}
		case srcImage:
			flush()
			out = append(out, images[ii])
			ii++
		}
	}
	flush()

	return out
}

// Precedes reports whether a is read before b: a starts higher on the page,
// or both start on the same row and a ends left of where b begins.
func Precedes(a, b model.BBox) bool {
	return a.Top < b.Top || (a.Top == b.Top && a.X1 < b.X0)
}

// pickHead returns the source whose head no other head precedes. Among those,
// the lowest source priority wins. Inverted boxes (X1 < X0) can make every
// head precede another; the first present head by priority is taken then.
func pickHead(heads [3]*model.BBox) int {
	for src, h := range heads {
		if h == nil {
			continue
		}
		preceded := false
		for other, o := range heads {
			if other != src && o != nil && Precedes(*o, *h) {
				preceded = true
				break
			}
		}
		if !preceded {
			return src
		}
	}
	for src, h := range heads {
		if h != nil {
			return src
		}
	}
	return -1
}

// continues reports whether candidate extends the open paragraph
func (m *Merger) continues(block *model.TextBlock, candidate model.Line) bool {
	last, ok := block.LastLine()
	if !ok {
		return false
	}

	if math.Abs(candidate.FontSize-last.FontSize) > m.config.FontSizeTolerance {
		return false
	}

	gap := candidate.BBox.Top - last.BBox.Bottom
	if gap < m.config.GapFactor*last.FontSize {
		return true
	}

	if endsSentence(last.Text) {
		return false
	}

	n := len(block.Lines)
	if n < 2 {
		return true
	}

	w0 := block.Lines[n-2].BBox.Width()
	w1 := last.BBox.Width()
	wc := candidate.BBox.Width()
	return w1 >= m.config.MinWidthRatio*w0 && wc <= m.config.MaxWidthRatio*math.Max(w0, w1)
}

// endsSentence reports whether text ends in terminal punctuation
func endsSentence(text string) bool {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// lessBox orders boxes by (Top, X0, X1, Bottom)
func lessBox(a, b model.BBox) (less, equal bool) {
	switch {
	case a.Top != b.Top:
		return a.Top < b.Top, false
	case a.X0 != b.X0:
		return a.X0 < b.X0, false
	case a.X1 != b.X1:
		return a.X1 < b.X1, false
	case a.Bottom != b.Bottom:
		return a.Bottom < b.Bottom, false
	}
	return false, true
}

func sortedLines(lines []model.Line) []model.Line {
	out := append([]model.Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		if less, equal := lessBox(out[i].BBox, out[j].BBox); !equal {
			return less
		}
		if out[i].Text != out[j].Text {
			return out[i].Text < out[j].Text
		}
		return out[i].FontSize < out[j].FontSize
	})
	return out
}

func sortedTables(tables []*model.Table) []*model.Table {
	out := append([]*model.Table(nil), tables...)
	sort.SliceStable(out, func(i, j int) bool {
		if less, equal := lessBox(out[i].BBox, out[j].BBox); !equal {
			return less
		}
		return out[i].GetText() < out[j].GetText()
	})
	return out
}

func sortedImages(images []*model.Image) []*model.Image {
	out := append([]*model.Image(nil), images...)
	sort.SliceStable(out, func(i, j int) bool {
		if less, equal := lessBox(out[i].BBox, out[j].BBox); !equal {
			return less
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}
