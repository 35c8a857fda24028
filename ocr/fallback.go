package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/layout"
	"github.com/tsawler/folio/model"
)

// Recognizer is the subset of Client used by Fallback. A Recognizer is used
// by one goroutine at a time and closed after each page.
type Recognizer interface {
	RecognizeHOCR(imageData []byte) (string, error)
	SetLanguage(lang string) error
	SetPageSegMode(mode PageSegMode) error
	SetDPI(dpi int) error
	Close() error
}

// RecognizerFactory creates a fresh Recognizer for one page
type RecognizerFactory func() (Recognizer, error)

// DefaultRecognizer creates a Tesseract client
func DefaultRecognizer() (Recognizer, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FallbackConfig holds the OCR fallback settings
type FallbackConfig struct {
	// Languages is the Tesseract language list (default: "eng+fra")
	Languages string

	// PageSegMode is the Tesseract layout mode (default: PSM_SINGLE_BLOCK)
	PageSegMode PageSegMode

	// DPI is the rasterization resolution (default: 300)
	DPI int

	// MaxPixels caps the longer side of the page image (default: 5000)
	MaxPixels int

	// Tables controls table recovery from recognised words
	Tables TableConfig

	// Lines controls how recognised words are joined into lines
	Lines layout.LineConfig

	// Merge controls how lines and tables are merged into content
	Merge layout.MergeConfig
}

// DefaultFallbackConfig returns the default OCR fallback settings
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		Languages:   "eng+fra",
		PageSegMode: PSM_SINGLE_BLOCK,
		DPI:         300,
		MaxPixels:   5000,
		Tables:      DefaultTableConfig(),
		Lines:       layout.DefaultLineConfig(),
		Merge:       layout.DefaultMergeConfig(),
	}
}

// Fallback extracts page content by rasterizing the page and running OCR
// on it. It implements overlay.Extractor.
type Fallback struct {
	raster    Rasterizer
	recognize RecognizerFactory
	config    FallbackConfig
	logger    logrus.FieldLogger
}

// NewFallback creates an OCR fallback with default configuration
func NewFallback(raster Rasterizer) *Fallback {
	return NewFallbackWithConfig(raster, DefaultFallbackConfig())
}

// NewFallbackWithConfig creates an OCR fallback with custom configuration
func NewFallbackWithConfig(raster Rasterizer, config FallbackConfig) *Fallback {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Fallback{
		raster:    raster,
		recognize: DefaultRecognizer,
		config:    config,
		logger:    logger,
	}
}

// WithRecognizer returns a copy of the fallback using factory to create
// recognizers
func (f *Fallback) WithRecognizer(factory RecognizerFactory) *Fallback {
	c := *f
	c.recognize = factory
	return &c
}

// WithLogger returns a copy of the fallback logging to logger
func (f *Fallback) WithLogger(logger logrus.FieldLogger) *Fallback {
	c := *f
	c.logger = logger
	return &c
}

// Config returns the fallback configuration
func (f *Fallback) Config() FallbackConfig {
	return f.config
}

// Extract rasterizes and recognises one page, returning its content in
// reading order. Coordinates are converted to points.
func (f *Fallback) Extract(ctx context.Context, pageNumber int) ([]model.ContentItem, error) {
	if f.raster == nil {
		return nil, errors.New("no rasterizer configured")
	}

	raw, err := f.raster.Rasterize(ctx, pageNumber, f.config.DPI)
	if err != nil {
		return nil, err
	}

	img, scale, err := Preprocess(raw, f.config.MaxPixels)
	if err != nil {
		return nil, err
	}

	hocr, err := f.recognizeHOCR(ctx, img)
	if err != nil {
		return nil, err
	}

	words, err := ParseHOCR(strings.NewReader(hocr))
	if err != nil {
		return nil, err
	}

	pixelTables, rest := RecoverTables(words, f.config.Tables)

	factor := 72.0 / (float64(f.config.DPI) * scale)
	tables := make([]*model.Table, 0, len(pixelTables))
	for _, pt := range pixelTables {
		tables = append(tables, &model.Table{Rows: pt.Rows, BBox: toPoints(pt.Box, factor)})
	}
	lines := layout.NewLineBuilderWithConfig(f.config.Lines).Build(wordGlyphs(rest, factor))

	f.logger.WithFields(logrus.Fields{
		"page":   pageNumber,
		"words":  len(words),
		"tables": len(tables),
		"lines":  len(lines),
		"scale":  scale,
	}).Debug("OCR recognition complete")

	return layout.NewMergerWithConfig(f.config.Merge).Merge(tables, lines, nil), nil
}

type hocrResult struct {
	text string
	err  error
}

// recognizeHOCR runs Tesseract on its own goroutine, which owns the client
// for its lifetime. If ctx is done first the result is abandoned and the
// client is closed once recognition returns.
func (f *Fallback) recognizeHOCR(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan hocrResult, 1)
	go func() {
		text, err := f.runRecognizer(img)
		done <- hocrResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (f *Fallback) runRecognizer(img []byte) (string, error) {
	client, err := f.recognize()
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.SetLanguage(f.config.Languages); err != nil {
		return "", fmt.Errorf("set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(f.config.PageSegMode); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetDPI(f.config.DPI); err != nil {
		return "", fmt.Errorf("set OCR resolution: %w", err)
	}
	return client.RecognizeHOCR(img)
}

// wordGlyphs converts words to glyphs in points. Words of one hOCR line
// share the line's vertical extent and font size so they stay on one row.
func wordGlyphs(words []Word, factor float64) []layout.Glyph {
	type lineInfo struct {
		box  image.Rectangle
		size float64
	}
	lineOf := make(map[string]*lineInfo)
	for _, w := range words {
		if w.Line == "" {
			continue
		}
		if li, ok := lineOf[w.Line]; ok {
			li.box = li.box.Union(w.Box)
			continue
		}
		lineOf[w.Line] = &lineInfo{box: w.Box, size: w.XSize}
	}

	glyphs := make([]layout.Glyph, 0, len(words))
	for _, w := range words {
		box := w.Box
		size := w.XSize
		if li, ok := lineOf[w.Line]; ok {
			box.Min.Y, box.Max.Y = li.box.Min.Y, li.box.Max.Y
			size = li.size
		}
		if size <= 0 {
			size = float64(box.Dy())
		}
		glyphs = append(glyphs, layout.Glyph{
			Text:     w.Text + " ",
			BBox:     toPoints(box, factor),
			FontSize: math.Round(size * factor),
		})
	}
	return glyphs
}

func toPoints(r image.Rectangle, factor float64) model.BBox {
	return model.BBox{
		X0:     float64(r.Min.X) * factor,
		Top:    float64(r.Min.Y) * factor,
		X1:     float64(r.Max.X) * factor,
		Bottom: float64(r.Max.Y) * factor,
	}
}
