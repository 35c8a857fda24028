package ocr

import (
	"image"
	"strings"
	"testing"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN"
    "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head><title></title></head>
 <body>
  <div class='ocr_page' id='page_1' title='image "page.png"; bbox 0 0 2550 3300; ppageno 0'>
   <div class='ocr_carea' id='block_1_1' title="bbox 300 300 1200 420">
    <p class='ocr_par' id='par_1_1' lang='eng' title="bbox 300 300 1200 420">
     <span class='ocr_line' id='line_1_1' title="bbox 300 300 1200 350; baseline 0 -10; x_size 50; x_descenders 10; x_ascenders 12">
      <span class='ocrx_word' id='word_1_1' title='bbox 300 300 480 350; x_wconf 96'>Hello</span>
      <span class='ocrx_word' id='word_1_2' title='bbox 500 302 700 350; x_wconf 91'><strong>world</strong></span>
      <span class='ocrx_word' id='word_1_3' title='bbox 720 302 740 350; x_wconf 90'> </span>
     </span>
     <span class='ocr_textfloat' id='line_1_2' title="bbox 300 370 900 420; x_size 42">
      <span class='ocrx_word' id='word_1_4' title='bbox 300 370 420 420'>again</span>
      <span class='ocrx_word' id='word_1_5' title='x_wconf 88'>nobox</span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseHOCR_Words(t *testing.T) {
	words, err := ParseHOCR(strings.NewReader(sampleHOCR))
	if err != nil {
		t.Fatalf("ParseHOCR failed: %v", err)
	}

	if len(words) != 3 {
		t.Fatalf("Expected 3 words, got %d: %+v", len(words), words)
	}

	first := words[0]
	if first.Text != "Hello" {
		t.Errorf("Expected 'Hello', got %q", first.Text)
	}
	if first.Box != image.Rect(300, 300, 480, 350) {
		t.Errorf("Expected box (300,300)-(480,350), got %v", first.Box)
	}
	if first.Confidence != 96 {
		t.Errorf("Expected confidence 96, got %f", first.Confidence)
	}
	if first.Line != "line_1_1" {
		t.Errorf("Expected line 'line_1_1', got %q", first.Line)
	}
	if first.XSize != 50 {
		t.Errorf("Expected x_size 50, got %f", first.XSize)
	}

	if words[1].Text != "world" {
		t.Errorf("Expected nested text 'world', got %q", words[1].Text)
	}
}

func TestParseHOCR_TextFloatLine(t *testing.T) {
	words, err := ParseHOCR(strings.NewReader(sampleHOCR))
	if err != nil {
		t.Fatalf("ParseHOCR failed: %v", err)
	}

	last := words[len(words)-1]
	if last.Text != "again" {
		t.Fatalf("Expected 'again', got %q", last.Text)
	}
	if last.Line != "line_1_2" {
		t.Errorf("Expected line 'line_1_2', got %q", last.Line)
	}
	if last.XSize != 42 {
		t.Errorf("Expected x_size 42, got %f", last.XSize)
	}
	if last.Confidence >= 0 {
		t.Errorf("Expected unknown confidence, got %f", last.Confidence)
	}
}

func TestParseHOCR_Empty(t *testing.T) {
	words, err := ParseHOCR(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ParseHOCR failed: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("Expected no words, got %d", len(words))
	}
}

func TestParseTitle(t *testing.T) {
	props := parseTitle("bbox 1 2 3 4; x_wconf 95;  ")

	if got := props["bbox"]; len(got) != 4 || got[0] != "1" || got[3] != "4" {
		t.Errorf("Expected bbox [1 2 3 4], got %v", got)
	}
	if got := props["x_wconf"]; len(got) != 1 || got[0] != "95" {
		t.Errorf("Expected x_wconf [95], got %v", got)
	}
}

func TestParseBBox_Invalid(t *testing.T) {
	tests := [][]string{
		nil,
		{"1", "2", "3"},
		{"1", "2", "x", "4"},
	}
	for _, values := range tests {
		if _, ok := parseBBox(values); ok {
			t.Errorf("Expected %v to be rejected", values)
		}
	}
}
