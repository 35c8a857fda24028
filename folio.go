// Package folio provides a fluent API for turning PDF files into verified,
// ordered page content.
//
// Each page is extracted, its text lines, tables and images are merged into
// reading order, and the result is checked for trustworthiness. Pages whose
// extraction cannot be trusted are re-extracted with OCR and replaced.
//
// Basic usage:
//
//	md, warnings, err := folio.Open("document.pdf").Markdown(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", folio.FormatWarnings(warnings))
//	}
//
// With options:
//
//	res, _, err := folio.Open("report.pdf").
//	    Pages(1, 2, 3).
//	    Workers(8).
//	    PageTimeout(30 * time.Second).
//	    Process(ctx)
//
// Per-page problems never abort processing; they are returned as warnings
// and the affected page keeps its last good state.
package folio

import (
	"strings"

	"github.com/tsawler/folio/model"
)

// Source is the primary extraction collaborator: it answers per-page
// questions about a document. Page numbers are 1-based. Implementations
// must be safe for concurrent use.
type Source interface {
	PageCount() int
	PageSize(n int) (width, height float64, err error)
	TextLines(n int) ([]model.Line, error)
	Tables(n int) ([]*model.Table, error)
	Images(n int) ([]*model.Image, error)
}

// Warning is a non-fatal issue raised while processing a page
type Warning = model.Warning

// Open returns a Processor for the PDF file at filename. The file is opened
// by the terminal operation and closed when it returns. Pages that fail
// verification are re-extracted with OCR unless NoFallback is set.
//
// Example:
//
//	res, warnings, err := folio.Open("document.pdf").Process(ctx)
func Open(filename string) *Processor {
	return &Processor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromSource returns a Processor over an already-opened source. The caller
// keeps ownership of src. No fallback extractor is configured; use Fallback
// to add one.
func FromSource(src Source) *Processor {
	return &Processor{
		source:  src,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	count := folio.Must(folio.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustValue wraps a terminal operation returning (T, []Warning, error),
// panicking if the error is non-nil and discarding warnings.
//
// Example:
//
//	md := folio.MustValue(folio.Open("document.pdf").Markdown(ctx))
func MustValue[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// FormatWarnings renders warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
