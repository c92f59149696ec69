package reader

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"

	"github.com/tsawler/pagecrop/model"
)

// Document is an open PDF. It is not safe for concurrent use.
type Document struct {
	file *os.File
	data io.ReaderAt
	size int64
	pdf  *pdf.Reader

	// pdfcpu context, parsed on first use by a page that has images
	imagesOnce sync.Once
	images     *imageSource
}

// Open opens a PDF file for reading
func Open(filename string) (*Document, error) {
	return OpenWithPassword(filename, "")
}

// OpenWithPassword opens a PDF file, decrypting it with password if the
// file is encrypted. An empty password only opens files that need none.
func OpenWithPassword(filename, password string) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, model.WrapError(model.DocumentLoadFailed, err, "cannot open %s", filename)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, model.WrapError(model.DocumentLoadFailed, err, "cannot stat %s", filename)
	}

	doc, err := newDocument(f, info.Size(), password)
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.file = f
	return doc, nil
}

// OpenBytes opens a PDF held in memory
func OpenBytes(data []byte, password string) (*Document, error) {
	return newDocument(bytes.NewReader(data), int64(len(data)), password)
}

func newDocument(ra io.ReaderAt, size int64, password string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = model.WrapError(model.DocumentLoadFailed, errors.Errorf("%v", r), "malformed PDF")
		}
	}()

	tried := false
	r, err := pdf.NewReaderEncrypted(ra, size, func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	})
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, model.WrapError(model.DocumentLocked, err, "document is password protected")
		}
		return nil, model.WrapError(model.DocumentLoadFailed, errors.Wrap(err, "parse"), "cannot load document")
	}

	if r.NumPage() == 0 {
		return nil, model.NewError(model.NoPages, "document has no pages")
	}

	return &Document{data: ra, size: size, pdf: r}, nil
}

// Close releases the underlying file, if any
func (d *Document) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// NumPages returns the number of pages in the document
func (d *Document) NumPages() int {
	return d.pdf.NumPage()
}

// page returns the 1-based page n
func (d *Document) page(n int) (pdf.Page, error) {
	count := d.NumPages()
	if n < 1 || n > count {
		return pdf.Page{}, model.NewError(model.NoPages, "page %d out of range (document has %d pages)", n, count)
	}
	p := d.pdf.Page(n)
	if p.V.IsNull() {
		return pdf.Page{}, model.NewError(model.DocumentLoadFailed, "page %d is missing", n)
	}
	return p, nil
}

// readSeeker gives pdfcpu its own cursor over the document bytes
func (d *Document) readSeeker() io.ReadSeeker {
	return io.NewSectionReader(d.data, 0, d.size)
}
