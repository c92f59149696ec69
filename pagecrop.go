// Package pagecrop provides a fluent API for pulling the printed page out
// of a print-ready PDF: its text, images, rectangles and lines, the page
// box inside the crop marks, a clean raster of the content, and a map of
// the content that can be aligned with a photo or scan of the print.
//
// Basic usage:
//
//	res, err := pagecrop.Open("flyer.pdf").Render()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(res.OutputPath)
//
// With options:
//
//	res, err := pagecrop.Open("flyer.pdf").
//	    Page(2).
//	    StripCropMarks().
//	    BoundsMode(render.ModeLargestRectangle).
//	    DPI(600).
//	    Render()
//
// For finer control the reader, elements, cropmarks, render and relmap
// packages can be used directly.
package pagecrop

import (
	"github.com/tsawler/pagecrop/reader"
)

// Open returns an Extractor for the PDF at filename. The file is opened by
// the first terminal operation, which also closes it.
//
// Example:
//
//	pe, err := pagecrop.Open("flyer.pdf").Elements()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromDocument creates an Extractor over an already-opened document.
// The caller is responsible for closing it.
//
// Example:
//
//	doc, err := reader.Open("flyer.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	box, err := pagecrop.FromDocument(doc).CropBox()
func FromDocument(doc *reader.Document) *Extractor {
	return &Extractor{
		doc:       doc,
		ownsDoc:   false,
		docOpened: true,
		options:   defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := pagecrop.Must(pagecrop.Open("flyer.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
