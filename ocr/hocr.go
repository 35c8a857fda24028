package ocr

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Word is one recognised word in image pixel coordinates
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64 // 0-100, negative when unknown

	// Line identifies the hOCR line the word belongs to
	Line string

	// XSize is the line's x-height-based text size in pixels, 0 if unknown
	XSize float64
}

// ParseHOCR extracts the words of an hOCR document in document order.
// Words without a bounding box or with blank text are dropped.
func ParseHOCR(r io.Reader) ([]Word, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse hOCR: %w", err)
	}

	var words []Word
	var walk func(n *html.Node, line string, xsize float64)
	walk = func(n *html.Node, line string, xsize float64) {
		if n.Type == html.ElementNode {
			classes := strings.Fields(getAttr(n, "class"))
			props := parseTitle(getAttr(n, "title"))

			if hasClass(classes, "ocr_line", "ocr_textfloat", "ocr_header", "ocr_caption") {
				line = getAttr(n, "id")
				xsize = 0
				if v, ok := props["x_size"]; ok && len(v) > 0 {
					xsize, _ = strconv.ParseFloat(v[0], 64)
				}
			}

			if hasClass(classes, "ocrx_word") {
				if w, ok := makeWord(n, props, line, xsize); ok {
					words = append(words, w)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, line, xsize)
		}
	}
	walk(doc, "", 0)

	return words, nil
}

func makeWord(n *html.Node, props map[string][]string, line string, xsize float64) (Word, bool) {
	text := strings.TrimSpace(getTextContent(n))
	if text == "" {
		return Word{}, false
	}

	box, ok := parseBBox(props["bbox"])
	if !ok {
		return Word{}, false
	}

	conf := -1.0
	if v, ok := props["x_wconf"]; ok && len(v) > 0 {
		if f, err := strconv.ParseFloat(v[0], 64); err == nil {
			conf = f
		}
	}

	return Word{Text: text, Box: box, Confidence: conf, Line: line, XSize: xsize}, true
}

// parseTitle splits an hOCR title attribute ("bbox 1 2 3 4; x_wconf 95")
// into properties
func parseTitle(title string) map[string][]string {
	props := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		props[fields[0]] = fields[1:]
	}
	return props
}

func parseBBox(values []string) (image.Rectangle, bool) {
	if len(values) != 4 {
		return image.Rectangle{}, false
	}
	var v [4]int
	for i, s := range values {
		n, err := strconv.Atoi(s)
		if err != nil {
			return image.Rectangle{}, false
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), true
}

func hasClass(classes []string, want ...string) bool {
	for _, c := range classes {
		for _, w := range want {
			if c == w {
				return true
			}
		}
	}
	return false
}

// getAttr returns the value of an attribute on a node, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
