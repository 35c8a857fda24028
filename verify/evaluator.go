// Package verify decides whether the primary extraction of a page can be
// trusted or must be replaced by a fallback extraction.
//
// Three signals are checked in order: an image covering most of the page,
// too little text on the page, and a low mean acceptability score over the
// page's paragraphs. Any signal marks the page needs_fallback.
package verify

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/model"
	"golang.org/x/sync/errgroup"
)

// Config holds evaluator thresholds and concurrency settings
type Config struct {
	// ImageAreaRatio is the share of the page area an image must cover to
	// force a fallback (default: 0.70)
	ImageAreaRatio float64

	// MinCoverage is the smallest share of the page height covered by text
	// lines (default: 0.25)
	MinCoverage float64

	// MinMeanScore is the smallest acceptable mean paragraph score
	// (default: 0.7)
	MinMeanScore float64

	// Workers bounds the number of pages evaluated at once (default: 4)
	Workers int

	// PageTimeout bounds the evaluation of one page (default: 60s)
	PageTimeout time.Duration
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		ImageAreaRatio: 0.70,
		MinCoverage:    0.25,
		MinMeanScore:   0.7,
		Workers:        4,
		PageTimeout:    60 * time.Second,
	}
}

// Signal names a reason for distrusting a page
type Signal int

const (
	SignalNone Signal = iota
	SignalOversizedImage
	SignalSparseText
	SignalLowScore
)

func (s Signal) String() string {
	switch s {
	case SignalOversizedImage:
		return "oversized_image"
	case SignalSparseText:
		return "sparse_text"
	case SignalLowScore:
		return "low_score"
	default:
		return "none"
	}
}

// Assessment is the outcome of evaluating one page
type Assessment struct {
	Page       int
	Verdict    model.Verdict
	Signals    []Signal
	Coverage   float64
	MeanScore  float64
	Paragraphs int

	// ScoreErr is set when the scorer failed; the score signal was then
	// treated as neutral
	ScoreErr *model.ClassificationError
}

// Evaluator classifies pages as complete or needs_fallback
type Evaluator struct {
	scorer Scorer
	config Config
	logger logrus.FieldLogger
}

// New creates an evaluator using scorer and the default configuration
func New(scorer Scorer) *Evaluator {
	return NewWithConfig(scorer, DefaultConfig())
}

// NewWithConfig creates an evaluator with custom configuration
func NewWithConfig(scorer Scorer, config Config) *Evaluator {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Evaluator{scorer: scorer, config: config, logger: logger}
}

// WithLogger returns a copy of the evaluator logging to logger
func (e *Evaluator) WithLogger(logger logrus.FieldLogger) *Evaluator {
	c := *e
	c.logger = logger
	return &c
}

// Evaluate assesses a page without modifying it. The returned error is
// non-nil only when ctx ends before the assessment completes.
func (e *Evaluator) Evaluate(ctx context.Context, page *model.Page) (Assessment, error) {
	a := Assessment{Page: page.Number, Verdict: model.VerdictComplete}
	knownGeometry := page.Width > 0 && page.Height > 0

	// (a) oversized image
	if knownGeometry {
		limit := e.config.ImageAreaRatio * page.Width * page.Height
		for _, img := range page.Images() {
			if img.BBox.Area() >= limit {
				a.Signals = append(a.Signals, SignalOversizedImage)
				a.Verdict = model.VerdictNeedsFallback
				return a, nil
			}
		}
	}

	// (b) sparse text
	if knownGeometry {
		covered := 0.0
		for _, block := range page.TextBlocks() {
			for _, line := range block.Lines {
				covered += line.BBox.Height()
			}
		}
		a.Coverage = covered / page.Height
		if a.Coverage < e.config.MinCoverage {
			a.Signals = append(a.Signals, SignalSparseText)
		}
	} else if len(page.Contents) == 0 {
		// nothing was extracted and the page size is unknown
		a.Signals = append(a.Signals, SignalSparseText)
	}

	// (c) low acceptability
	var paragraphs []string
	for _, block := range page.TextBlocks() {
		if txt := block.Text(); strings.TrimSpace(txt) != "" {
			paragraphs = append(paragraphs, txt)
		}
	}
	a.Paragraphs = len(paragraphs)

	if len(paragraphs) > 0 && e.scorer != nil {
		total := 0.0
		for _, p := range paragraphs {
			score, err := e.scorer.Score(ctx, p)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return a, ctxErr
			}
			if err != nil {
				a.ScoreErr = &model.ClassificationError{Page: page.Number, Err: err}
				break
			}
			total += score
		}
		if a.ScoreErr == nil {
			a.MeanScore = total / float64(len(paragraphs))
			if a.MeanScore < e.config.MinMeanScore {
				a.Signals = append(a.Signals, SignalLowScore)
			}
		}
	}

	if len(a.Signals) > 0 {
		a.Verdict = model.VerdictNeedsFallback
	}
	return a, nil
}

type evalResult struct {
	page       *model.Page
	assessment Assessment
	err        error
}

// EvaluateDocument evaluates every pending page and applies the verdicts
// once all evaluations finished. It returns the ascending numbers of all
// pages needing fallback, including pages flagged by an earlier pass.
// Pages whose evaluation was cancelled or timed out stay pending.
func (e *Evaluator) EvaluateDocument(ctx context.Context, doc *model.Document) ([]int, []model.Warning, error) {
	var pending []*model.Page
	for _, page := range doc.Pages {
		if page.Verdict == model.VerdictPending {
			pending = append(pending, page)
		}
	}

	results := make([]evalResult, len(pending))
	var g errgroup.Group
	g.SetLimit(max(1, e.config.Workers))

	for i, page := range pending {
		if ctx.Err() != nil {
			results[i] = evalResult{page: page, err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			pageCtx, cancel := e.pageContext(ctx)
			defer cancel()
			a, err := e.Evaluate(pageCtx, page)
			results[i] = evalResult{page: page, assessment: a, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var warnings []model.Warning
	for _, r := range results {
		log := e.logger.WithField("page", r.page.Number)
		if r.err != nil {
			cerr := &model.ClassificationError{Page: r.page.Number, Err: r.err}
			warnings = append(warnings, model.NewWarning(r.page.Number, model.StageClassify, cerr))
			log.WithError(r.err).Warn("page evaluation did not finish")
			continue
		}
		if r.assessment.ScoreErr != nil {
			warnings = append(warnings, model.NewWarning(r.page.Number, model.StageClassify, r.assessment.ScoreErr))
			log.WithError(r.assessment.ScoreErr.Err).Warn("scorer failed, score signal ignored")
		}
		if r.page.Verdict.CanTransition(r.assessment.Verdict) {
			r.page.Verdict = r.assessment.Verdict
		}
		log.WithFields(logrus.Fields{
			"verdict":    r.assessment.Verdict.String(),
			"coverage":   r.assessment.Coverage,
			"mean_score": r.assessment.MeanScore,
			"paragraphs": r.assessment.Paragraphs,
			"signals":    r.assessment.Signals,
		}).Debug("page evaluated")
	}

	flagged := doc.PagesWithVerdict(model.VerdictNeedsFallback)
	sort.Ints(flagged)
	flagged = dedupe(flagged)

	return flagged, warnings, ctx.Err()
}

func (e *Evaluator) pageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.PageTimeout > 0 {
		return context.WithTimeout(ctx, e.config.PageTimeout)
	}
	return context.WithCancel(ctx)
}

// dedupe removes adjacent duplicates from a sorted slice
func dedupe(sorted []int) []int {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, n := range sorted[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}
