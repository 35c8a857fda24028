// Package app assembles a configured processor for the folio binaries.
package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio"
	"github.com/tsawler/folio/internal/config"
	"github.com/tsawler/folio/ocr"
	"github.com/tsawler/folio/scorer"
	"github.com/tsawler/folio/verify"
)

// NewProcessor returns a processor for the PDF at path configured from cfg.
// The cleanup function releases the scorer and must be called when done.
func NewProcessor(ctx context.Context, cfg *config.Config, path string, logger logrus.FieldLogger) (*folio.Processor, func(), error) {
	s, cleanup, err := NewScorer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	p := folio.Open(path).
		Workers(cfg.Workers).
		PageTimeout(cfg.PageTimeout).
		Scorer(s).
		Fallback(NewFallback(cfg, path, logger)).
		Logger(logger)
	return p, cleanup, nil
}

// NewScorer returns the acceptability scorer named by cfg
func NewScorer(ctx context.Context, cfg *config.Config) (verify.Scorer, func(), error) {
	if cfg.Scorer == config.ScorerGemini {
		g, err := scorer.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	}
	return scorer.NewHeuristic(), func() {}, nil
}

// NewFallback returns the OCR fallback for the PDF at path
func NewFallback(cfg *config.Config, path string, logger logrus.FieldLogger) *ocr.Fallback {
	fc := ocr.DefaultFallbackConfig()
	fc.Languages = cfg.OCRLanguages
	fc.DPI = cfg.OCRDPI
	fc.MaxPixels = cfg.OCRMaxPixels

	raster := &ocr.PdftoppmRasterizer{Path: path, Binary: cfg.Pdftoppm}
	return ocr.NewFallbackWithConfig(raster, fc).WithLogger(logger)
}
