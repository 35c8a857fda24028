package app

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/internal/config"
	"github.com/tsawler/folio/scorer"
)

func testConfig() *config.Config {
	return &config.Config{
		Workers:      2,
		Scorer:       config.ScorerHeuristic,
		OCRLanguages: "deu",
		OCRDPI:       150,
		OCRMaxPixels: 2000,
		Pdftoppm:     "/opt/poppler/pdftoppm",
		LogLevel:     "info",
	}
}

func TestNewScorer_Heuristic(t *testing.T) {
	s, cleanup, err := NewScorer(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	defer cleanup()

	if _, ok := s.(*scorer.Heuristic); !ok {
		t.Errorf("Expected *scorer.Heuristic, got %T", s)
	}
}

func TestNewScorer_GeminiWithoutKey(t *testing.T) {
	cfg := testConfig()
	cfg.Scorer = config.ScorerGemini

	if _, _, err := NewScorer(context.Background(), cfg); err == nil {
		t.Error("Expected error for gemini without an API key")
	}
}

func TestNewFallback(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fc := NewFallback(testConfig(), "doc.pdf", logger).Config()
	if fc.Languages != "deu" || fc.DPI != 150 || fc.MaxPixels != 2000 {
		t.Errorf("Expected configured OCR settings, got %q %d %d", fc.Languages, fc.DPI, fc.MaxPixels)
	}
}

func TestNewProcessor_MissingFile(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p, cleanup, err := NewProcessor(context.Background(), testConfig(), "missing.pdf", logger)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	defer cleanup()

	if _, _, err := p.Process(context.Background()); err == nil {
		t.Error("Expected processing a missing file to fail")
	}
}
