//go:build !ocr

package ocr

import (
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned by every Client operation when the binary
// was built without the "ocr" tag.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client stands in for the Tesseract engine in builds without OCR.
// [New] never returns one, but a nil *Client is still safe to use.
type Client struct{}

// New always fails with ErrOCRNotEnabled
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close does nothing
func (c *Client) Close() error {
	return nil
}

func (c *Client) Words(img image.Image) ([]Word, error) {
	return nil, ErrOCRNotEnabled
}

func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// PageSegMode reports the mode a real engine starts in
func (c *Client) PageSegMode() PageSegMode {
	return PSM_AUTO
}

func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

// Languages fails with ErrOCRNotEnabled
func Languages() ([]string, error) {
	return nil, ErrOCRNotEnabled
}

// Version is empty without OCR
func Version() string {
	return ""
}
