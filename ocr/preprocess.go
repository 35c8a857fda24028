package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/jpeg" // register JPEG decoder

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

// Preprocess prepares a page image for recognition. The image is converted
// to grayscale and, when its longer side exceeds maxPixels, downscaled so
// that side equals maxPixels. It returns the PNG-encoded result and the
// scale factor applied (1 when the image was not resized). A maxPixels of
// zero or less disables resizing.
func Preprocess(data []byte, maxPixels int) ([]byte, float64, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("decode page image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, 0, fmt.Errorf("page image is empty (%dx%d)", w, h)
	}

	scale := 1.0
	longest := max(w, h)
	if maxPixels > 0 && longest > maxPixels {
		scale = float64(maxPixels) / float64(longest)
	}

	dstW := max(1, int(float64(w)*scale+0.5))
	dstH := max(1, int(float64(h)*scale+0.5))
	dst := image.NewGray(image.Rect(0, 0, dstW, dstH))

	if scale == 1 {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), scale, nil
}
