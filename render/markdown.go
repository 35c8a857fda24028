// Package render writes processed documents as markdown.
//
// The output starts with a summary of the document totals, followed by one
// "## Page N" section per page separated by horizontal rules. Text lines end
// with a hard line break, tables become pipe tables and images become image
// links to their reference.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/folio/model"
)

var textEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`)

// Markdown renders doc as a markdown string
func Markdown(doc *model.Document) string {
	var sb strings.Builder
	// strings.Builder writes never fail
	_ = WriteMarkdown(&sb, doc)
	return sb.String()
}

// WriteMarkdown renders doc as markdown to w
func WriteMarkdown(w io.Writer, doc *model.Document) error {
	var sb strings.Builder

	sb.WriteString("# PDF Extraction Result\n\n")
	fmt.Fprintf(&sb, "- Total Pages: %d\n", doc.Totals.Pages)
	fmt.Fprintf(&sb, "- Total Text Characters: %d\n", doc.Totals.Chars)
	fmt.Fprintf(&sb, "- Total Images: %d\n", doc.Totals.Images)
	fmt.Fprintf(&sb, "- Total Tables: %d\n\n", doc.Totals.Tables)

	mw := &markdownWriter{sb: &sb}
	for _, page := range doc.Pages {
		fmt.Fprintf(&sb, "## Page %d\n\n", page.Number)
		for _, item := range page.Contents {
			item.Accept(mw)
		}
		sb.WriteString("---\n\n")
	}

	out := strings.TrimSuffix(sb.String(), "\n")
	_, err := io.WriteString(w, out)
	return err
}

// markdownWriter renders content items in place
type markdownWriter struct {
	sb *strings.Builder
}

func (m *markdownWriter) VisitText(b *model.TextBlock) {
	lines := make([]string, len(b.Lines))
	for i, line := range b.Lines {
		lines[i] = EscapeText(line.Text) + "  "
	}
	m.sb.WriteString(strings.Join(lines, "\n"))
	m.sb.WriteString("\n\n")
}

func (m *markdownWriter) VisitTable(t *model.Table) {
	md := t.ToMarkdown()
	if md == "" {
		m.sb.WriteString("<!-- Empty table -->\n\n")
		return
	}
	m.sb.WriteString(md)
	m.sb.WriteString("\n")
}

func (m *markdownWriter) VisitImage(i *model.Image) {
	fmt.Fprintf(m.sb, "![Image %s](%s)\n\n", i.Ref, i.Ref)
}

// EscapeText escapes backslashes, asterisks and underscores so that text
// is not read as markdown emphasis
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
