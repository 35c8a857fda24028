// Package pdfsource provides primary page extraction from PDF files.
//
// A [Source] reads one PDF and answers per-page questions about it:
//
//	src, err := pdfsource.Open("report.pdf")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	w, h, _ := src.PageSize(1)
//	lines, _ := src.TextLines(1)
//	tables, _ := src.Tables(1)
//	images, _ := src.Images(1)
//
// # Coordinates
//
// PDF user space has its origin at the bottom-left of the media box. All
// geometry returned by a Source is converted to page space: the origin is
// the top-left corner of the media box and Top grows downward.
//
// # Text and Tables
//
// Glyphs from the page content are grouped into lines with
// [layout.LineBuilder]. Thin filled rectangles are treated as ruling lines
// and handed to [tables.RuleDetector]; glyphs that fall inside a detected
// table become its cells and are removed from the text lines.
//
// # Images
//
// The content stream is interpreted to track the current transformation
// matrix. Each image XObject painted with Do occupies the unit square
// mapped through that matrix. Form XObjects are followed.
//
// # Concurrency
//
// The underlying PDF reader is not safe for concurrent use. A Source
// serialises access to it and caches the analysis of each page, so its
// methods may be called from multiple goroutines.
package pdfsource
