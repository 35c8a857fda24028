// Package layout turns the separately extracted pieces of a page into a
// reading-order content stream.
//
// # Line Assembly
//
// [LineBuilder] groups positioned glyphs (single characters from a PDF
// content stream or whole words from OCR) into lines:
//
//	lines := layout.NewLineBuilder().Build(glyphs)
//
// # Merging
//
// [Merger] interleaves tables, lines and images by position and groups
// consecutive lines into paragraphs:
//
//	merger := layout.NewMerger()
//	contents := merger.Merge(tables, lines, images)
//
// Items are ordered by [Precedes]: higher on the page first, then left to
// right within a row. When the heads of two sources coincide, tables come
// before text and text before images.
//
// A line continues the open paragraph when its font size matches and either
// the vertical gap is below GapFactor times the font size, or the previous
// line does not end a sentence and the line widths look like wrapped text.
// Thresholds are set through [MergeConfig]:
//
//	config := layout.DefaultMergeConfig()
//	config.GapFactor = 1.2
//	merger := layout.NewMergerWithConfig(config)
package layout
