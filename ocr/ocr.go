//go:build ocr

// Package ocr provides the OCR fallback extraction for pages whose primary
// text extraction cannot be trusted.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-fra poppler-utils
package ocr

import (
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations. A Client is not safe for
// concurrent use; create one per goroutine.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// RecognizeHOCR performs OCR on image data and returns the hOCR document,
// which carries a bounding box and confidence for every word.
func (c *Client) RecognizeHOCR(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	hocr, err := c.client.HOCRText()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return hocr, nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return c.client.SetPageSegMode(gosseract.PageSegMode(mode))
}

// SetDPI tells Tesseract the resolution of the images it is given.
func (c *Client) SetDPI(dpi int) error {
	return c.client.SetVariable("user_defined_dpi", strconv.Itoa(dpi))
}
