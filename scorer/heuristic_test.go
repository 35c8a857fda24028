package scorer

import (
	"context"
	"strings"
	"testing"
)

func TestHeuristic_CleanProse(t *testing.T) {
	h := NewHeuristic()
	score, err := h.Score(context.Background(), "The quarterly report shows revenue grew by 12 percent compared to last year.")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score < 0.9 {
		t.Errorf("Expected clean prose to score >= 0.9, got %f", score)
	}
}

func TestHeuristic_Garbage(t *testing.T) {
	h := NewHeuristic()
	tests := []struct {
		name string
		text string
	}{
		{"symbols", "x#@! q$$ ^^%% ~~|| @@##"},
		{"glyph soup", "T h e q u a r t e r l y r e p o r t"},
		{"private use", strings.Repeat("\uE000x", 10)},
		{"replacement chars", "Th\uFFFD qu\uFFFD\uFFFDrt\uFFFDrly r\uFFFDp\uFFFDrt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := h.Score(context.Background(), tt.text)
			if score >= 0.7 {
				t.Errorf("Expected score < 0.7 for %q, got %f", tt.text, score)
			}
		})
	}
}

func TestHeuristic_Empty(t *testing.T) {
	score, err := NewHeuristic().Score(context.Background(), "   ")
	if err != nil || score != 0 {
		t.Errorf("Expected 0 for blank text, got %f (%v)", score, err)
	}
}

func TestHeuristic_Normalises(t *testing.T) {
	h := NewHeuristic()
	// Full-width letters fold to ASCII under NFKC
	a, _ := h.Score(context.Background(), "Ｈｅｌｌｏ ｗｏｒｌｄ")
	b, _ := h.Score(context.Background(), "Hello world")
	if a != b {
		t.Errorf("Expected equal scores after normalisation, got %f and %f", a, b)
	}
}

func TestPrintableRatio(t *testing.T) {
	if r := PrintableRatio("abc"); r != 1 {
		t.Errorf("Expected 1, got %f", r)
	}
	if r := PrintableRatio("ab\x01\x02"); r != 0.5 {
		t.Errorf("Expected 0.5, got %f", r)
	}
	if r := PrintableRatio(""); r != 1 {
		t.Errorf("Expected 1 for empty text, got %f", r)
	}
}

func TestSingleCharRatio(t *testing.T) {
	if r := SingleCharRatio("a b"); r != 0 {
		t.Errorf("Expected 0 below the token minimum, got %f", r)
	}
	if r := SingleCharRatio("q w e r t"); r != 1 {
		t.Errorf("Expected 1, got %f", r)
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		reply   string
		want    float64
		wantErr bool
	}{
		{"0.85", 0.85, false},
		{"Score: 0.4\n", 0.4, false},
		{"1", 1, false},
		{".5", 0.5, false},
		{"7", 1, false},
		{"not sure", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseScore(tt.reply)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseScore(%q): unexpected error state %v", tt.reply, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseScore(%q): expected %f, got %f", tt.reply, tt.want, got)
		}
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", ""); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("Expected 'hé', got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("Expected 'abc', got %q", got)
	}
}
