package folio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/aggregate"
	"github.com/tsawler/folio/layout"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/ocr"
	"github.com/tsawler/folio/overlay"
	"github.com/tsawler/folio/pdfsource"
	"github.com/tsawler/folio/render"
	"github.com/tsawler/folio/verify"
	"golang.org/x/sync/errgroup"
)

// Processor provides a fluent interface for processing a document.
// Each configuration method returns a new Processor, so a configured
// Processor can be shared and extended safely.
type Processor struct {
	// Source
	filename string
	source   Source

	// Configuration
	options processOptions

	// Accumulated error (fail-fast)
	err error
}

// Result is the outcome of processing a document
type Result struct {
	Document *model.Document

	// Flagged lists the pages verification did not trust, ascending
	Flagged []int

	// Applied and Failed split Flagged by fallback outcome. Both are empty
	// when no fallback is configured.
	Applied []int
	Failed  []int
}

// clone creates a shallow copy of the Processor with a deep copy of options
func (p *Processor) clone() *Processor {
	return &Processor{
		filename: p.filename,
		source:   p.source,
		options:  p.options.clone(),
		err:      p.err,
	}
}

// ============================================================================
// Configuration Methods (return new Processor instance)
// ============================================================================

// Pages restricts processing to the given pages (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	res, _, err := folio.Open("doc.pdf").Pages(1, 3, 5).Process(ctx)
func (p *Processor) Pages(pages ...int) *Processor {
	n := p.clone()
	n.options.pages = append(n.options.pages, pages...)
	return n
}

// PageRange restricts processing to a range of pages (1-indexed, inclusive)
func (p *Processor) PageRange(start, end int) *Processor {
	n := p.clone()
	if end < start && n.err == nil {
		n.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return n
	}
	for i := start; i <= end; i++ {
		n.options.pages = append(n.options.pages, i)
	}
	return n
}

// Workers bounds how many pages are processed at once in each phase
func (p *Processor) Workers(workers int) *Processor {
	n := p.clone()
	if workers < 1 && n.err == nil {
		n.err = fmt.Errorf("workers must be at least 1, got %d", workers)
		return n
	}
	n.options.workers = workers
	return n
}

// PageTimeout bounds the time spent on one page in each phase. Zero
// disables the per-page timeout.
func (p *Processor) PageTimeout(d time.Duration) *Processor {
	n := p.clone()
	if d < 0 && n.err == nil {
		n.err = fmt.Errorf("page timeout must not be negative, got %v", d)
		return n
	}
	n.options.pageTimeout = d
	return n
}

// Scorer sets the acceptability scorer used by verification
func (p *Processor) Scorer(s verify.Scorer) *Processor {
	n := p.clone()
	if s == nil && n.err == nil {
		n.err = errors.New("scorer must not be nil")
		return n
	}
	n.options.scorer = s
	return n
}

// Fallback sets the extractor used for pages that fail verification.
// A nil extractor disables fallback.
func (p *Processor) Fallback(e overlay.Extractor) *Processor {
	n := p.clone()
	n.options.fallback = e
	n.options.fallbackSet = true
	return n
}

// NoFallback disables fallback extraction. Flagged pages keep their
// primary extraction and remain needs_fallback.
func (p *Processor) NoFallback() *Processor {
	return p.Fallback(nil)
}

// Logger sets the logger for phase and per-page diagnostics
func (p *Processor) Logger(logger logrus.FieldLogger) *Processor {
	n := p.clone()
	if logger != nil {
		n.options.logger = logger
	}
	return n
}

// MergeConfig sets the paragraph grouping thresholds
func (p *Processor) MergeConfig(config layout.MergeConfig) *Processor {
	n := p.clone()
	n.options.merge = config
	return n
}

// VerifyConfig sets the verification thresholds. Its Workers and
// PageTimeout are replaced by the processor's own settings.
func (p *Processor) VerifyConfig(config verify.Config) *Processor {
	n := p.clone()
	n.options.verify = config
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages in the document
func (p *Processor) PageCount() (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	src, release, err := p.openSource()
	if err != nil {
		return 0, err
	}
	defer release()
	return src.PageCount(), nil
}

// Process runs the full pipeline: extraction and merge, verification,
// fallback for untrusted pages and a final consistency check of the
// document totals.
//
// The error is non-nil only when the source cannot be opened, the page
// selection is invalid, ctx ends before every page was extracted, or the
// document totals are inconsistent. Everything else is a warning.
func (p *Processor) Process(ctx context.Context) (*Result, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	src, release, err := p.openSource()
	if err != nil {
		return nil, nil, err
	}
	defer release()

	numbers, err := p.resolvePages(src)
	if err != nil {
		return nil, nil, err
	}

	o := p.options
	doc := model.NewDocument()
	doc.ID = uuid.NewString()
	log := o.logger.WithField("run", doc.ID)
	log.WithField("pages", len(numbers)).Info("processing started")

	// Phase 1: extraction and merge
	pages, warnings, err := p.extractPages(ctx, src, numbers)
	if err != nil {
		return nil, warnings, err
	}
	for _, page := range pages {
		doc.AddPage(page)
	}
	aggregate.Recompute(doc)

	// Phase 2: verification
	evaluator := verify.NewWithConfig(o.scorer, o.verifyConfig()).WithLogger(log)
	flagged, evalWarnings, evalErr := evaluator.EvaluateDocument(ctx, doc)
	warnings = append(warnings, evalWarnings...)
	if evalErr != nil {
		// pages not yet evaluated stay pending; fallback is skipped
		warnings = append(warnings, model.NewWarning(0, model.StageClassify,
			fmt.Errorf("verification interrupted: %w", evalErr)))
	}
	log.WithField("flagged", flagged).Info("verification finished")

	result := &Result{Document: doc, Flagged: flagged}

	// Phase 3: fallback
	fallback := p.fallback()
	if evalErr == nil && len(flagged) > 0 && fallback != nil {
		report, err := overlay.NewWithConfig(fallback, o.overlayConfig()).
			WithLogger(log).
			Apply(ctx, doc, flagged)
		warnings = append(warnings, report.Warnings...)
		if err != nil {
			return nil, warnings, err
		}
		result.Applied = report.Applied
		result.Failed = report.Failed
		log.WithFields(logrus.Fields{
			"applied": len(report.Applied),
			"failed":  len(report.Failed),
		}).Info("fallback finished")
	}

	if err := aggregate.Verify(doc); err != nil {
		return nil, warnings, err
	}

	log.WithFields(logrus.Fields{
		"chars":  doc.Totals.Chars,
		"images": doc.Totals.Images,
		"tables": doc.Totals.Tables,
	}).Info("processing finished")

	return result, warnings, nil
}

// Markdown processes the document and renders it as markdown
func (p *Processor) Markdown(ctx context.Context) (string, []Warning, error) {
	res, warnings, err := p.Process(ctx)
	if err != nil {
		return "", warnings, err
	}
	return render.Markdown(res.Document), warnings, nil
}

// JSON processes the document and returns its JSON exchange form
func (p *Processor) JSON(ctx context.Context) ([]byte, []Warning, error) {
	res, warnings, err := p.Process(ctx)
	if err != nil {
		return nil, warnings, err
	}
	data, err := json.MarshalIndent(res.Document, "", "  ")
	if err != nil {
		return nil, warnings, fmt.Errorf("encode document: %w", err)
	}
	return data, warnings, nil
}

// ============================================================================
// Pipeline
// ============================================================================

// openSource returns the source to read and a release function that closes
// it when the Processor opened it
func (p *Processor) openSource() (Source, func(), error) {
	if p.source != nil {
		return p.source, func() {}, nil
	}
	if p.filename == "" {
		return nil, nil, errors.New("no filename specified")
	}
	src, err := pdfsource.Open(p.filename)
	if err != nil {
		return nil, nil, err
	}
	src.SetLogger(p.options.logger)
	return src, func() { src.Close() }, nil
}

// fallback returns the configured fallback extractor. Without an explicit
// choice, files opened by name are re-extracted with OCR.
func (p *Processor) fallback() overlay.Extractor {
	if p.options.fallbackSet {
		return p.options.fallback
	}
	if p.filename == "" {
		return nil
	}
	return ocr.NewFallback(ocr.NewPdftoppmRasterizer(p.filename)).WithLogger(p.options.logger)
}

// resolvePages validates the page selection and returns it sorted and
// without duplicates
func (p *Processor) resolvePages(src Source) ([]int, error) {
	count := src.PageCount()

	if len(p.options.pages) == 0 {
		numbers := make([]int, count)
		for i := range numbers {
			numbers[i] = i + 1
		}
		return numbers, nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, n := range p.options.pages {
		if n < 1 || n > count {
			return nil, fmt.Errorf("page %d out of range (1-%d)", n, count)
		}
		if !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers, nil
}

type extracted struct {
	page *model.Page
	err  error
}

// extractPages extracts and merges pages over a bounded pool. A page that
// fails becomes an empty page and a warning.
func (p *Processor) extractPages(ctx context.Context, src Source, numbers []int) ([]*model.Page, []Warning, error) {
	merger := layout.NewMergerWithConfig(p.options.merge)
	results := make([]extracted, len(numbers))

	var g errgroup.Group
	g.SetLimit(max(1, p.options.workers))
	for i, n := range numbers {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			pageCtx, cancel := p.pageContext(ctx)
			defer cancel()
			page, err := extractPage(pageCtx, src, merger, n)
			results[i] = extracted{page: page, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	pages := make([]*model.Page, len(numbers))
	var warnings []Warning
	for i, r := range results {
		pages[i] = r.page
		if r.err != nil {
			eerr := &model.ExtractionError{Page: numbers[i], Err: r.err}
			warnings = append(warnings, model.NewWarning(numbers[i], model.StageExtract, eerr))
			p.options.logger.WithField("page", numbers[i]).WithError(r.err).Warn("page extraction failed")
		}
	}
	return pages, warnings, nil
}

func (p *Processor) pageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.options.pageTimeout > 0 {
		return context.WithTimeout(ctx, p.options.pageTimeout)
	}
	return context.WithCancel(ctx)
}

// extractPage reads one page from src and merges it. It always returns a
// page; on failure the page is empty, keeping its geometry when known.
func extractPage(ctx context.Context, src Source, merger *layout.Merger, n int) (*model.Page, error) {
	sized := make(chan [2]float64, 1)
	done := make(chan extracted, 1)
	go func() {
		page, err := readPage(src, merger, n, sized)
		done <- extracted{page: page, err: err}
	}()

	select {
	case <-ctx.Done():
		select {
		case size := <-sized:
			return model.NewPage(n, size[0], size[1]), ctx.Err()
		default:
			return model.NewPage(n, 0, 0), ctx.Err()
		}
	case r := <-done:
		return r.page, r.err
	}
}

// readPage reads page n and sends its size on sized as soon as it is known
func readPage(src Source, merger *layout.Merger, n int, sized chan<- [2]float64) (*model.Page, error) {
	w, h, err := src.PageSize(n)
	if err != nil {
		return model.NewPage(n, 0, 0), err
	}
	sized <- [2]float64{w, h}
	page := model.NewPage(n, w, h)

	lines, err := src.TextLines(n)
	if err != nil {
		return page, err
	}
	tables, err := src.Tables(n)
	if err != nil {
		return page, err
	}
	images, err := src.Images(n)
	if err != nil {
		return page, err
	}

	page.Contents = merger.Merge(tables, lines, images)
	return page, nil
}
