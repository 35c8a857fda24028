//go:build !ocr

// Package ocr provides the OCR fallback extraction for pages whose primary
// text extraction cannot be trusted.
//
// This is the stub implementation used when the "ocr" build tag is not set.
// Every Client operation returns ErrOCRNotEnabled.
//
// To enable OCR, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-fra poppler-utils
package ocr

// Client is a stub OCR client that returns errors for all operations.
type Client struct{}

// New returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeHOCR returns an error indicating OCR support is not enabled.
func (c *Client) RecognizeHOCR(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns an error indicating OCR support is not enabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

// SetDPI returns an error indicating OCR support is not enabled.
func (c *Client) SetDPI(dpi int) error {
	return ErrOCRNotEnabled
}
