package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Rasterizer renders one page of a document to an encoded image
type Rasterizer interface {
	Rasterize(ctx context.Context, page, dpi int) ([]byte, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface
type RasterizerFunc func(ctx context.Context, page, dpi int) ([]byte, error)

// Rasterize calls f(ctx, page, dpi)
func (f RasterizerFunc) Rasterize(ctx context.Context, page, dpi int) ([]byte, error) {
	return f(ctx, page, dpi)
}

// PdftoppmRasterizer renders PDF pages with poppler's pdftoppm
type PdftoppmRasterizer struct {
	// Path is the PDF file to render
	Path string

	// Binary is the pdftoppm executable (default: "pdftoppm")
	Binary string
}

// NewPdftoppmRasterizer creates a rasterizer for the PDF at path
func NewPdftoppmRasterizer(path string) *PdftoppmRasterizer {
	return &PdftoppmRasterizer{Path: path, Binary: "pdftoppm"}
}

// Rasterize renders a single page to PNG inside a temporary directory that
// is removed before returning. The process is killed if ctx is done.
func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, page, dpi int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number %d", page)
	}

	dir, err := os.MkdirTemp("", "folio-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create raster directory: %w", err)
	}
	defer os.RemoveAll(dir)

	binary := r.Binary
	if binary == "" {
		binary = "pdftoppm"
	}

	n := strconv.Itoa(page)
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, binary,
		"-r", strconv.Itoa(dpi),
		"-f", n, "-l", n,
		"-png", "-singlefile",
		r.Path, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rasterize page %d: %w: %s", page, err, bytes.TrimSpace(stderr.Bytes()))
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rasterized page %d: %w", page, err)
	}
	return data, nil
}
