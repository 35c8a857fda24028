package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func blankImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestPreprocess_Grayscale(t *testing.T) {
	out, scale, err := Preprocess(encodePNG(blankImage(120, 80)), 5000)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if scale != 1 {
		t.Errorf("Expected scale 1, got %f", scale)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("Expected grayscale output, got %T", img)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("Expected 120x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPreprocess_Downscale(t *testing.T) {
	out, scale, err := Preprocess(encodePNG(blankImage(400, 200)), 100)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if scale != 0.25 {
		t.Errorf("Expected scale 0.25, got %f", scale)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("Expected 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPreprocess_NoLimit(t *testing.T) {
	_, scale, err := Preprocess(encodePNG(blankImage(400, 200)), 0)
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if scale != 1 {
		t.Errorf("Expected scale 1 with no pixel limit, got %f", scale)
	}
}

func TestPreprocess_InvalidData(t *testing.T) {
	if _, _, err := Preprocess([]byte("not an image"), 5000); err == nil {
		t.Error("Expected error for invalid image data")
	}
}
