// Package pdftest builds small uncompressed PDF files for tests. Object
// offsets in the xref table are computed from the serialised bytes, so the
// output opens cleanly in strict readers.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Builder collects numbered objects
type Builder struct {
	objects []string
}

// New creates an empty builder
func New() *Builder {
	return &Builder{}
}

// Reserve allocates an object number to be filled in later with Set
func (b *Builder) Reserve() int {
	b.objects = append(b.objects, "null")
	return len(b.objects)
}

// Add appends an object body and returns its object number
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// Set replaces the body of object n
func (b *Builder) Set(n int, body string) {
	b.objects[n-1] = body
}

// AddStream appends a stream object. dict holds extra dictionary entries
// without the enclosing << >>; Length is added automatically.
func (b *Builder) AddStream(dict string, data []byte) int {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<< %s /Length %d >>\nstream\n", dict, len(data))
	sb.Write(data)
	sb.WriteString("\nendstream")
	return b.Add(sb.String())
}

// Bytes serialises the document with root as the catalog object
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, xref)
	return buf.Bytes()
}

// Box is a PDF rectangle [llx lly urx ury]
type Box [4]float64

func (b Box) String() string {
	return fmt.Sprintf("[%g %g %g %g]", b[0], b[1], b[2], b[3])
}

// Image is an 8-bit DeviceGray image XObject
type Image struct {
	Width, Height int
	Gray          []byte
}

// Form is a form XObject
type Form struct {
	BBox    Box
	Matrix  []float64
	Content string
}

// Page describes one page of a generated document
type Page struct {
	MediaBox Box
	CropBox  *Box
	Rotate   int
	Content  string
	Images   map[string]Image
	Forms    map[string]Form
}

// helveticaWidths gives every character in 32..126 a 500 unit advance
func helveticaWidths() string {
	w := make([]string, 95)
	for i := range w {
		w[i] = "500"
	}
	return "[" + strings.Join(w, " ") + "]"
}

// Document builds a PDF with one Helvetica font resource F1 shared by all
// pages. MediaBox is set on the page tree node and inherited by pages that
// leave it zero.
func Document(pages ...Page) []byte {
	b := New()
	catalog := b.Reserve()
	tree := b.Reserve()
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 32 /LastChar 126 /Widths " +
		helveticaWidths() + " /FontDescriptor << /Ascent 718 /Descent -207 >> >>")

	var kids []string
	for _, p := range pages {
		xobjects := map[string]int{}
		for name, img := range p.Images {
			xobjects[name] = b.AddStream(fmt.Sprintf(
				"/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8",
				img.Width, img.Height), img.Gray)
		}
		for name, f := range p.Forms {
			dict := "/Type /XObject /Subtype /Form /BBox " + f.BBox.String()
			if len(f.Matrix) == 6 {
				dict += fmt.Sprintf(" /Matrix [%g %g %g %g %g %g]", f.Matrix[0], f.Matrix[1], f.Matrix[2], f.Matrix[3], f.Matrix[4], f.Matrix[5])
			}
			xobjects[name] = b.AddStream(dict, []byte(f.Content))
		}

		res := fmt.Sprintf("/Font << /F1 %d 0 R >>", font)
		if len(xobjects) > 0 {
			names := make([]string, 0, len(xobjects))
			for name := range xobjects {
				names = append(names, name)
			}
			sort.Strings(names)
			var xs []string
			for _, name := range names {
				xs = append(xs, fmt.Sprintf("/%s %d 0 R", name, xobjects[name]))
			}
			res += " /XObject << " + strings.Join(xs, " ") + " >>"
		}

		content := b.AddStream("", []byte(p.Content))
		dict := fmt.Sprintf("/Type /Page /Parent %d 0 R /Resources << %s >> /Contents %d 0 R", tree, res, content)
		if p.MediaBox != (Box{}) {
			dict += " /MediaBox " + p.MediaBox.String()
		}
		if p.CropBox != nil {
			dict += " /CropBox " + p.CropBox.String()
		}
		if p.Rotate != 0 {
			dict += fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		kids = append(kids, fmt.Sprintf("%d 0 R", b.Add("<< "+dict+" >>")))
	}

	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), len(kids)))
	return b.Bytes(catalog)
}

// WriteFile writes data to name inside a fresh temp directory
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
