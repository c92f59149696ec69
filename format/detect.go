// Package format tells the inputs pagecrop accepts apart: PDF documents,
// and the raster images that calibration and OCR read.
package format

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image, in either byte order.
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tiff"
	case BMP:
		return ".bmp"
	default:
		return ""
	}
}

// IsImage reports whether f is a raster image format.
func (f Format) IsImage() bool {
	return f == PNG || f == JPEG || f == TIFF || f == BMP
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	default:
		return Unknown
	}
}

var (
	magicPDF     = []byte("%PDF")
	magicPNG     = []byte("\x89PNG\r\n\x1a\n")
	magicJPEG    = []byte{0xFF, 0xD8, 0xFF}
	magicTIFFLE  = []byte("II*\x00")
	magicTIFFBE  = []byte("MM\x00*")
	magicBMP     = []byte("BM")
	pdfSearchLen = 1024
)

// DetectFromMagic checks file magic bytes to determine format.
// This provides more reliable detection than extension-based detection.
// A PDF header may follow up to 1024 bytes of junk, as readers allow.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return PNG
	case bytes.HasPrefix(data, magicJPEG):
		return JPEG
	case bytes.HasPrefix(data, magicTIFFLE), bytes.HasPrefix(data, magicTIFFBE):
		return TIFF
	case bytes.HasPrefix(data, magicBMP) && len(data) >= 14:
		return BMP
	}

	head := data
	if len(head) > pdfSearchLen {
		head = head[:pdfSearchLen]
	}
	if bytes.Contains(head, magicPDF) {
		return PDF
	}
	return Unknown
}

// DetectFromReader inspects the first bytes of r to determine format.
func DetectFromReader(r io.Reader) (Format, error) {
	magic := make([]byte, pdfSearchLen)
	n, err := io.ReadFull(r, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}

// DetectFile determines the format of the file at path from its content,
// falling back to its extension when the content is not recognized.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	got, err := DetectFromReader(f)
	if err != nil {
		return Unknown, err
	}
	if got == Unknown {
		got = Detect(path)
	}
	return got, nil
}

// RequirePDF fails unless the file at path is a PDF.
func RequirePDF(path string) error {
	f, err := DetectFile(path)
	if err != nil {
		return err
	}
	if f != PDF {
		return fmt.Errorf("%s is not a PDF (detected %s)", filepath.Base(path), f)
	}
	return nil
}

// RequireImage fails unless the file at path is a PNG, JPEG, TIFF or BMP
// image.
func RequireImage(path string) error {
	f, err := DetectFile(path)
	if err != nil {
		return err
	}
	if !f.IsImage() {
		return fmt.Errorf("%s is not a supported image (detected %s)", filepath.Base(path), f)
	}
	return nil
}
