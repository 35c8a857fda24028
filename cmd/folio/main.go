// Command folio converts a PDF into markdown, re-extracting untrusted pages
// with OCR.
//
// Usage:
//
//	folio [flags] <file.pdf>
//
// The markdown is written to <out>/<name>.md and, with -json, the document
// to <out>/<name>.json. Settings not given as flags come from the
// environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/tsawler/folio"
	"github.com/tsawler/folio/internal/app"
	"github.com/tsawler/folio/internal/config"
	"github.com/tsawler/folio/render"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

type options struct {
	input   string
	out     string
	name    string
	json    bool
	pages   []int
	noOCR   bool
	envFile string
}

func parseArgs(args []string, cfg func(...string) *config.Config, stderr io.Writer) (options, *config.Config, error) {
	fs := flag.NewFlagSet("folio", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: folio [flags] <file.pdf>")
		fs.PrintDefaults()
	}

	var o options
	var pages string
	fs.StringVar(&o.out, "out", "", "output directory (default $FOLIO_OUTPUT_DIR or results)")
	fs.StringVar(&o.name, "name", "", "output file name without extension (default: input name)")
	fs.BoolVar(&o.json, "json", false, "also write the document as JSON")
	fs.StringVar(&pages, "pages", "", "comma separated pages to process, e.g. 1,2,5")
	fs.BoolVar(&o.noOCR, "no-ocr", false, "disable the OCR fallback")
	fs.StringVar(&o.envFile, "env", "", "load settings from this file instead of .env")

	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, nil, errors.New("expected exactly one input file")
	}
	o.input = fs.Arg(0)

	var err error
	if o.pages, err = parsePages(pages); err != nil {
		return o, nil, err
	}

	var c *config.Config
	if o.envFile != "" {
		c = cfg(o.envFile)
	} else {
		c = cfg()
	}
	if o.out == "" {
		o.out = c.OutputDir
	}
	if o.name == "" {
		base := filepath.Base(o.input)
		o.name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return o, c, nil
}

// parsePages parses a list such as "1,2,5". An empty list selects all pages.
func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		pages = append(pages, n)
	}
	return pages, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	o, cfg, err := parseArgs(args, config.Load, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "folio: %v\n", err)
		}
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "folio: %v\n", err)
		return exitUsage
	}

	logger := cfg.Logger()
	logger.SetOutput(stderr)

	p, cleanup, err := app.NewProcessor(ctx, cfg, o.input, logger)
	if err != nil {
		logger.WithError(err).Error("setup failed")
		return exitError
	}
	defer cleanup()

	if len(o.pages) > 0 {
		p = p.Pages(o.pages...)
	}
	if o.noOCR {
		p = p.NoFallback()
	}

	res, warnings, err := p.Process(ctx)
	for _, w := range warnings {
		logger.WithField("page", w.Page).WithField("stage", w.Stage).Warn(w.Message)
	}
	if err != nil {
		logger.WithError(err).Error("processing failed")
		return exitError
	}

	if err := writeOutputs(o, res); err != nil {
		logger.WithError(err).Error("writing results failed")
		return exitError
	}

	logger.WithField("file", filepath.Join(o.out, o.name+".md")).
		WithField("flagged", res.Flagged).
		Info("done")
	return exitOK
}

func writeOutputs(o options, res *folio.Result) error {
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	mdPath := filepath.Join(o.out, o.name+".md")
	if err := os.WriteFile(mdPath, []byte(render.Markdown(res.Document)), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	if o.json {
		data, err := res.Document.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		if err := os.WriteFile(filepath.Join(o.out, o.name+".json"), data, 0o644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}
	return nil
}
