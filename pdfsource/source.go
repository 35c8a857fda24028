package pdfsource

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/folio/layout"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/tables"
)

// maxFormDepth bounds the nesting of form XObjects that are followed
const maxFormDepth = 8

// Config holds the analysis settings of a Source
type Config struct {
	Lines  layout.LineConfig
	Tables tables.Config
}

// DefaultConfig returns the default analysis settings
func DefaultConfig() Config {
	return Config{
		Lines:  layout.DefaultLineConfig(),
		Tables: tables.DefaultConfig(),
	}
}

// Source extracts page content from a PDF
type Source struct {
	mu     sync.Mutex
	file   *os.File
	reader *pdf.Reader
	pages  int
	lines  *layout.LineBuilder
	rules  *tables.RuleDetector
	cache  map[int]*analysis
	logger logrus.FieldLogger
}

type analysis struct {
	width, height float64
	lines         []model.Line
	tables        []*model.Table
	images        []*model.Image
	err           error
}

// Open opens the PDF file at path
func Open(path string) (*Source, error) {
	return OpenWithConfig(path, DefaultConfig())
}

// OpenWithConfig opens the PDF file at path with custom analysis settings
func OpenWithConfig(path string, config Config) (*Source, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	s, err := newSource(r, config)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.file = f
	return s, nil
}

// NewSource reads a PDF of the given size from r
func NewSource(r io.ReaderAt, size int64) (*Source, error) {
	return NewSourceWithConfig(r, size, DefaultConfig())
}

// NewSourceWithConfig reads a PDF from r with custom analysis settings
func NewSourceWithConfig(r io.ReaderAt, size int64, config Config) (*Source, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}
	return newSource(reader, config)
}

func newSource(r *pdf.Reader, config Config) (s *Source, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read page tree: %v", p)
		}
	}()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Source{
		reader: r,
		pages:  r.NumPage(),
		lines:  layout.NewLineBuilderWithConfig(config.Lines),
		rules:  tables.NewRuleDetectorWithConfig(config.Tables),
		cache:  make(map[int]*analysis),
		logger: logger,
	}, nil
}

// SetLogger sets the logger used for per-page diagnostics
func (s *Source) SetLogger(logger logrus.FieldLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Close releases the underlying file, if any
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// PageCount returns the number of pages
func (s *Source) PageCount() int {
	return s.pages
}

// PageSize returns the media box dimensions of page n in points. It reads
// only the page dictionary, so the size is known even when the page content
// cannot be analysed.
func (s *Source) PageSize(n int) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 || n > s.pages {
		return 0, 0, fmt.Errorf("%w: %d of %d", model.ErrPageNotFound, n, s.pages)
	}
	if a, ok := s.cache[n]; ok && a.width > 0 && a.height > 0 {
		return a.width, a.height, nil
	}
	_, box, err := s.page(n)
	if err != nil {
		return 0, 0, err
	}
	return box.urx - box.llx, box.ury - box.lly, nil
}

// TextLines returns the text lines of page n outside any table
func (s *Source) TextLines(n int) ([]model.Line, error) {
	a, err := s.analyze(n)
	if err != nil {
		return nil, err
	}
	return append([]model.Line(nil), a.lines...), nil
}

// Tables returns the ruled tables of page n
func (s *Source) Tables(n int) ([]*model.Table, error) {
	a, err := s.analyze(n)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Table, len(a.tables))
	for i, t := range a.tables {
		c := *t
		c.Rows = make([][]string, len(t.Rows))
		for r, row := range t.Rows {
			c.Rows[r] = append([]string(nil), row...)
		}
		out[i] = &c
	}
	return out, nil
}

// Images returns the placed images of page n
func (s *Source) Images(n int) ([]*model.Image, error) {
	a, err := s.analyze(n)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Image, len(a.images))
	for i, img := range a.images {
		c := *img
		out[i] = &c
	}
	return out, nil
}

// analyze reads page n once and caches the outcome, including failure
func (s *Source) analyze(n int) (*analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 || n > s.pages {
		return nil, fmt.Errorf("%w: %d of %d", model.ErrPageNotFound, n, s.pages)
	}
	if a, ok := s.cache[n]; ok {
		return a, a.err
	}

	a := s.read(n)
	s.cache[n] = a
	if a.err == nil {
		s.logger.WithFields(logrus.Fields{
			"page":   n,
			"lines":  len(a.lines),
			"tables": len(a.tables),
			"images": len(a.images),
		}).Debug("page analysed")
	}
	return a, a.err
}

// page returns page n and its media box. The PDF library panics on some
// malformed input; a panic becomes the error.
func (s *Source) page(n int) (page pdf.Page, box pageBox, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d: malformed page dictionary: %v", n, p)
		}
	}()

	page = s.reader.Page(n)
	if page.V.IsNull() {
		return page, box, fmt.Errorf("%w: %d", model.ErrPageNotFound, n)
	}
	box, err = mediaBox(page.V)
	if err != nil {
		return page, box, fmt.Errorf("page %d: %w", n, err)
	}
	return page, box, nil
}

// read analyses one page. A panic while reading the content becomes the
// page's error; the size stays known.
func (s *Source) read(n int) (a *analysis) {
	a = &analysis{}
	defer func() {
		if p := recover(); p != nil {
			*a = analysis{
				width:  a.width,
				height: a.height,
				err:    fmt.Errorf("page %d: malformed content: %v", n, p),
			}
		}
	}()

	page, box, err := s.page(n)
	if err != nil {
		a.err = err
		return a
	}
	a.width = box.urx - box.llx
	a.height = box.ury - box.lly

	content := page.Content()

	glyphs := make([]layout.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, box.glyph(t))
	}

	rects := make([]model.BBox, 0, len(content.Rect))
	for _, r := range content.Rect {
		rects = append(rects, box.toPage(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y))
	}

	a.tables = s.rules.Detect(rects, glyphs)
	a.lines = s.lines.Build(outsideTables(glyphs, a.tables))
	a.images = placedImages(page, n, box)
	return a
}

// outsideTables drops glyphs whose center lies inside a table
func outsideTables(glyphs []layout.Glyph, tbls []*model.Table) []layout.Glyph {
	if len(tbls) == 0 {
		return glyphs
	}
	kept := glyphs[:0:0]
	for _, g := range glyphs {
		c := g.BBox.Center()
		inside := false
		for _, t := range tbls {
			if t.BBox.Contains(c) {
				inside = true
				break
			}
		}
		if !inside {
			kept = append(kept, g)
		}
	}
	return kept
}

// pageBox is a media box in PDF user space
type pageBox struct {
	llx, lly, urx, ury float64
}

// toPage converts a user-space rectangle to page space
func (b pageBox) toPage(x0, y0, x1, y1 float64) model.BBox {
	return model.BBox{
		X0:     math.Min(x0, x1) - b.llx,
		Top:    b.ury - math.Max(y0, y1),
		X1:     math.Max(x0, x1) - b.llx,
		Bottom: b.ury - math.Min(y0, y1),
	}
}

// glyph converts a positioned character. Y is the baseline; the glyph
// box spans one font size above it. Fonts without width metrics get half
// an em per character.
func (b pageBox) glyph(t pdf.Text) layout.Glyph {
	size := math.Abs(t.FontSize)
	w := t.W
	if w <= 0 {
		w = size * 0.5 * float64(utf8.RuneCountInString(t.S))
	}
	return layout.Glyph{
		Text:     t.S,
		BBox:     b.toPage(t.X, t.Y, t.X+w, t.Y+size),
		FontSize: size,
	}
}

// mediaBox returns the page's media box, inherited from the page tree when
// the page does not carry one
func mediaBox(page pdf.Value) (pageBox, error) {
	v := inherited(page, "MediaBox")
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return pageBox{}, fmt.Errorf("missing or invalid MediaBox")
	}

	var c [4]float64
	for i := range c {
		e := v.Index(i)
		switch e.Kind() {
		case pdf.Integer, pdf.Real:
			c[i] = e.Float64()
		default:
			return pageBox{}, fmt.Errorf("invalid MediaBox coordinate %d", i)
		}
	}

	b := pageBox{
		llx: math.Min(c[0], c[2]),
		lly: math.Min(c[1], c[3]),
		urx: math.Max(c[0], c[2]),
		ury: math.Max(c[1], c[3]),
	}
	if b.urx <= b.llx || b.ury <= b.lly {
		return pageBox{}, fmt.Errorf("empty MediaBox [%g %g %g %g]", c[0], c[1], c[2], c[3])
	}
	return b, nil
}

// inherited looks up key on the node and then on its ancestors
func inherited(node pdf.Value, key string) pdf.Value {
	for depth := 0; depth < 32 && !node.IsNull(); depth++ {
		if v := node.Key(key); !v.IsNull() {
			return v
		}
		node = node.Key("Parent")
	}
	return pdf.Value{}
}

// imageRef names an image by its page and XObject name
func imageRef(page int, name string) string {
	return fmt.Sprintf("page-%d-%s", page, strings.TrimPrefix(name, "/"))
}
