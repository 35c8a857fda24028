package folio

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/layout"
	"github.com/tsawler/folio/overlay"
	"github.com/tsawler/folio/scorer"
	"github.com/tsawler/folio/verify"
)

// processOptions holds the configuration of a Processor
type processOptions struct {
	// Page selection (1-indexed, nil means all pages)
	pages []int

	// Concurrency
	workers     int
	pageTimeout time.Duration

	// Collaborators
	scorer      verify.Scorer
	fallback    overlay.Extractor
	fallbackSet bool // fallback was chosen explicitly (nil disables it)
	logger      logrus.FieldLogger

	// Thresholds
	merge  layout.MergeConfig
	verify verify.Config
}

// defaultOptions returns the default processing options
func defaultOptions() processOptions {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return processOptions{
		pages:       nil,
		workers:     4,
		pageTimeout: 60 * time.Second,
		scorer:      scorer.NewHeuristic(),
		logger:      logger,
		merge:       layout.DefaultMergeConfig(),
		verify:      verify.DefaultConfig(),
	}
}

// clone creates a deep copy of processOptions
func (o processOptions) clone() processOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}

// verifyConfig returns the evaluator configuration with the processor's
// concurrency settings applied
func (o processOptions) verifyConfig() verify.Config {
	c := o.verify
	c.Workers = o.workers
	c.PageTimeout = o.pageTimeout
	return c
}

func (o processOptions) overlayConfig() overlay.Config {
	return overlay.Config{Workers: o.workers, PageTimeout: o.pageTimeout}
}
