// Package overlay replaces the contents of pages flagged by verification
// with the output of a fallback extractor.
//
// Replacement is whole-page and atomic: a page either receives the complete
// fallback output and becomes fallback_applied, or is left exactly as it
// was. Document totals are kept in step one page at a time and checked
// against a full recount at the end.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/aggregate"
	"github.com/tsawler/folio/model"
	"golang.org/x/sync/errgroup"
)

// ErrNotFlagged is reported for pages that are not awaiting fallback
var ErrNotFlagged = errors.New("page is not awaiting fallback")

// ErrNilContent is reported when a fallback result holds a nil item
var ErrNilContent = errors.New("fallback returned a nil content item")

// Extractor produces replacement content for one page
type Extractor interface {
	Extract(ctx context.Context, pageNumber int) ([]model.ContentItem, error)
}

// ExtractorFunc adapts a function to the Extractor interface
type ExtractorFunc func(ctx context.Context, pageNumber int) ([]model.ContentItem, error)

// Extract calls f(ctx, pageNumber)
func (f ExtractorFunc) Extract(ctx context.Context, pageNumber int) ([]model.ContentItem, error) {
	return f(ctx, pageNumber)
}

// Config holds overlay concurrency settings
type Config struct {
	// Workers bounds the number of pages extracted at once (default: 4)
	Workers int

	// PageTimeout bounds the extraction of one page (default: 60s)
	PageTimeout time.Duration
}

// DefaultConfig returns the default overlay configuration
func DefaultConfig() Config {
	return Config{
		Workers:     4,
		PageTimeout: 60 * time.Second,
	}
}

// Report lists what happened to each requested page
type Report struct {
	Applied  []int
	Failed   []int
	Skipped  []int
	Warnings []model.Warning
}

// Overlay applies fallback extraction results to a document
type Overlay struct {
	extractor Extractor
	config    Config
	logger    logrus.FieldLogger
}

// New creates an overlay with default configuration
func New(extractor Extractor) *Overlay {
	return NewWithConfig(extractor, DefaultConfig())
}

// NewWithConfig creates an overlay with custom configuration
func NewWithConfig(extractor Extractor, config Config) *Overlay {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Overlay{extractor: extractor, config: config, logger: logger}
}

// WithLogger returns a copy of the overlay logging to logger
func (o *Overlay) WithLogger(logger logrus.FieldLogger) *Overlay {
	c := *o
	c.logger = logger
	return &c
}

type fetchResult struct {
	page  *model.Page
	items []model.ContentItem
	err   error
}

// Apply runs the fallback extractor for the flagged pages and overlays the
// results. Extraction runs concurrently; results are applied serially in
// ascending page order. Per-page failures become warnings. The returned
// error is non-nil only when the document totals no longer match its pages,
// in which case it is an *aggregate.InconsistencyError.
func (o *Overlay) Apply(ctx context.Context, doc *model.Document, flagged []int) (Report, error) {
	var report Report

	numbers := append([]int(nil), flagged...)
	sort.Ints(numbers)

	var targets []*model.Page
	for i, n := range numbers {
		if i > 0 && n == numbers[i-1] {
			continue
		}
		page := doc.GetPage(n)
		var reason error
		switch {
		case page == nil:
			reason = model.ErrPageNotFound
		case page.Verdict != model.VerdictNeedsFallback:
			reason = fmt.Errorf("%w: verdict is %s", ErrNotFlagged, page.Verdict)
		}
		if reason != nil {
			report.Skipped = append(report.Skipped, n)
			report.Warnings = append(report.Warnings,
				model.NewWarning(n, model.StageFallback, &model.FallbackError{Page: n, Err: reason}))
			o.logger.WithField("page", n).WithError(reason).Warn("skipping fallback")
			continue
		}
		targets = append(targets, page)
	}

	results := o.fetch(ctx, targets)

	for _, r := range results {
		log := o.logger.WithField("page", r.page.Number)
		if r.err != nil {
			report.Failed = append(report.Failed, r.page.Number)
			report.Warnings = append(report.Warnings,
				model.NewWarning(r.page.Number, model.StageFallback, &model.FallbackError{Page: r.page.Number, Err: r.err}))
			log.WithError(r.err).Warn("fallback extraction failed, keeping primary content")
			continue
		}
		replace(doc, r.page, r.items)
		report.Applied = append(report.Applied, r.page.Number)
		log.WithField("items", len(r.page.Contents)).Info("fallback applied")
	}

	if err := aggregate.Verify(doc); err != nil {
		return report, err
	}
	return report, nil
}

// fetch extracts every target page over a bounded pool. Extractions are
// launched in ascending page order and each has its own timeout.
func (o *Overlay) fetch(ctx context.Context, targets []*model.Page) []fetchResult {
	results := make([]fetchResult, len(targets))

	var g errgroup.Group
	g.SetLimit(max(1, o.config.Workers))

	for i, page := range targets {
		results[i].page = page
		if err := ctx.Err(); err != nil {
			results[i].err = err
			continue
		}
		g.Go(func() error {
			pageCtx, cancel := o.pageContext(ctx)
			defer cancel()
			items, err := o.extractor.Extract(pageCtx, page.Number)
			if err == nil {
				err = pageCtx.Err()
			}
			if err == nil {
				err = checkContents(items)
			}
			results[i].items, results[i].err = items, err
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Overlay) pageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.config.PageTimeout > 0 {
		return context.WithTimeout(ctx, o.config.PageTimeout)
	}
	return context.WithCancel(ctx)
}

// checkContents rejects results the page could not be rendered from
func checkContents(items []model.ContentItem) error {
	for i, item := range items {
		if model.IsNil(item) {
			return fmt.Errorf("%w at index %d", ErrNilContent, i)
		}
	}
	return nil
}

// replace swaps a page's contents and moves its contribution in the
// document totals
func replace(doc *model.Document, page *model.Page, items []model.ContentItem) {
	before := aggregate.Contribution(page)

	contents := model.CloneContents(items)
	if contents == nil {
		contents = make([]model.ContentItem, 0)
	}
	page.Contents = contents
	page.Verdict = model.VerdictFallbackApplied

	doc.Totals = doc.Totals.Sub(before).Add(aggregate.Contribution(page))
}
