package scorer

import (
	"context"
	"strings"
	"unicode"

	"github.com/tsawler/folio/verify"
	"golang.org/x/text/unicode/norm"
)

// Heuristic scores text from how printable it is, how many of its tokens
// look like words and how many are stray single characters. Clean prose
// scores close to 1; glyph soup from a broken font encoding scores low.
type Heuristic struct {
	// MinWordLength and MaxWordLength bound the rune length of a word-like
	// token (defaults: 2 and 20)
	MinWordLength int
	MaxWordLength int
}

// NewHeuristic creates a heuristic scorer with default settings
func NewHeuristic() *Heuristic {
	return &Heuristic{MinWordLength: 2, MaxWordLength: 20}
}

var _ verify.Scorer = (*Heuristic)(nil)

// Score implements verify.Scorer. It never fails.
func (h *Heuristic) Score(_ context.Context, text string) (float64, error) {
	text = norm.NFKC.String(strings.TrimSpace(text))
	if text == "" {
		return 0, nil
	}

	printable := PrintableRatio(text)
	wordlike := h.WordlikeRatio(text)
	singles := SingleCharRatio(text)

	score := printable * (0.3 + 0.7*wordlike) * (1 - 0.5*singles)
	if ReplacementRatio(text) > 0.05 {
		score *= 0.5
	}
	return clamp(score), nil
}

// PrintableRatio returns the share of printable runes. Private use area
// runes, U+FFFD and control characters other than whitespace do not count.
func PrintableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r == unicode.ReplacementChar:
		return true
	case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

// WordlikeRatio returns the share of tokens within the word length bounds
// that are at least half letters or digits
func (h *Heuristic) WordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		runes := []rune(f)
		if len(runes) < h.MinWordLength || len(runes) > h.MaxWordLength {
			// Single letters such as "a" or "I" are still words
			if len(runes) == 1 && unicode.IsLetter(runes[0]) {
				wordlike++
			}
			continue
		}
		alnum := 0
		for _, r := range runes {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				alnum++
			}
		}
		if alnum*2 >= len(runes) {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

// SingleCharRatio returns the share of tokens that are a single character,
// ignoring characters that commonly stand alone in formatted text. Text
// split into one glyph per token is a typical extraction failure.
func SingleCharRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) < 5 {
		return 0
	}
	singles := 0
	for _, f := range fields {
		runes := []rune(f)
		if len(runes) != 1 {
			continue
		}
		switch runes[0] {
		case '.', '-', ':', '&', 'a', 'A', 'I', 'y', 'à', 'é', 'o':
			continue
		}
		singles++
	}
	return float64(singles) / float64(len(fields))
}

// ReplacementRatio returns the share of U+FFFD runes
func ReplacementRatio(text string) float64 {
	total, count := 0, 0
	for _, r := range text {
		total++
		if r == unicode.ReplacementChar {
			count++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
