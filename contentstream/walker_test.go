package contentstream

import (
	"bytes"
	"math"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pagecrop/graphicsstate"
	"github.com/tsawler/pagecrop/internal/pdftest"
	"github.com/tsawler/pagecrop/model"
)

func openPage(t *testing.T, p pdftest.Page) pdf.Page {
	t.Helper()
	data := pdftest.Document(p)
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open generated PDF: %v", err)
	}
	return r.Page(1)
}

func opsOfKind(ops []graphicsstate.Op, kind graphicsstate.OpKind) []graphicsstate.Op {
	var out []graphicsstate.Op
	for _, op := range ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// TestWalk_PathPainting tests that painted paths carry CTM and line width
func TestWalk_PathPainting(t *testing.T) {
	page := openPage(t, pdftest.Page{
		Content: "q 2 0 0 2 10 10 cm 3 w 0 0 50 25 re S Q 5 5 m 100 5 l f 0 0 m 1 1 l n",
	})

	res, err := Walk(page, 1)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	paints := opsOfKind(res.Ops, graphicsstate.OpPaint)
	if len(paints) != 2 {
		t.Fatalf("expected 2 paint ops, got %d", len(paints))
	}

	first := paints[0].Paint
	if !first.Stroke || first.Fill {
		t.Errorf("expected stroke-only first op, got stroke=%v fill=%v", first.Stroke, first.Fill)
	}
	if first.CTM != (model.Matrix{2, 0, 0, 2, 10, 10}) {
		t.Errorf("expected CTM [2 0 0 2 10 10], got %v", first.CTM)
	}
	if first.LineWidth != 6 {
		t.Errorf("expected device line width 6, got %f", first.LineWidth)
	}
	if len(first.Subpaths) != 1 || !first.Subpaths[0].Closed {
		t.Errorf("expected one closed subpath from re")
	}

	second := paints[1].Paint
	if second.Stroke || !second.Fill {
		t.Errorf("expected fill-only second op")
	}
	if !second.CTM.IsIdentity() {
		t.Errorf("expected CTM restored to identity, got %v", second.CTM)
	}
}

// TestWalk_Glyphs tests glyph placement and advance
func TestWalk_Glyphs(t *testing.T) {
	page := openPage(t, pdftest.Page{
		Content: "BT /F1 12 Tf 72 700 Td (Hi) Tj ET",
	})

	res, err := Walk(page, 1)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	glyphs := opsOfKind(res.Ops, graphicsstate.OpGlyph)
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}

	h := glyphs[0].Glyph
	if h.Text != "H" {
		t.Errorf("expected text H, got %q", h.Text)
	}
	if h.FontName != "Helvetica" {
		t.Errorf("expected font Helvetica, got %q", h.FontName)
	}
	if h.Trm != (model.Matrix{12, 0, 0, 12, 72, 700}) {
		t.Errorf("expected Trm [12 0 0 12 72 700], got %v", h.Trm)
	}
	if h.Advance != 0.5 {
		t.Errorf("expected advance 0.5 em, got %f", h.Advance)
	}
	if math.Abs(h.Ascent-0.718) > 1e-9 || math.Abs(h.Descent-0.207) > 1e-9 {
		t.Errorf("expected descriptor metrics 0.718/0.207, got %f/%f", h.Ascent, h.Descent)
	}

	i := glyphs[1].Glyph
	if i.Trm[4] != 78 {
		t.Errorf("expected second glyph at x 78, got %f", i.Trm[4])
	}
}

// TestWalk_TJKerning tests TJ number adjustments
func TestWalk_TJKerning(t *testing.T) {
	page := openPage(t, pdftest.Page{
		Content: "BT /F1 10 Tf 0 0 Td [(A) -1000 (B)] TJ ET",
	})

	res, err := Walk(page, 1)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	glyphs := opsOfKind(res.Ops, graphicsstate.OpGlyph)
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}
	// 5 for the advance of A, 10 for the kern
	if glyphs[1].Glyph.Trm[4] != 15 {
		t.Errorf("expected B at x 15, got %f", glyphs[1].Glyph.Trm[4])
	}
}

// TestWalk_Images tests image placement and the image stream map
func TestWalk_Images(t *testing.T) {
	page := openPage(t, pdftest.Page{
		Content: "q 50 0 0 40 300 400 cm /Im1 Do Q",
		Images: map[string]pdftest.Image{
			"Im1": {Width: 2, Height: 2, Gray: []byte{0, 255, 255, 0}},
		},
	})

	res, err := Walk(page, 1)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	images := opsOfKind(res.Ops, graphicsstate.OpImage)
	if len(images) != 1 {
		t.Fatalf("expected 1 image op, got %d", len(images))
	}
	img := images[0].Image
	if img.Name != "Im1" || img.Width != 2 || img.Height != 2 {
		t.Errorf("unexpected image op %+v", img)
	}
	if img.ColorSpace != "DeviceGray" || img.BitsPerComponent != 8 {
		t.Errorf("expected DeviceGray 8 bit, got %s %d", img.ColorSpace, img.BitsPerComponent)
	}
	box := img.CTM.UnitSquareBox()
	if box.X != 300 || box.Y != 400 || box.Width != 50 || box.Height != 40 {
		t.Errorf("expected placement (300,400,50,40), got %+v", box)
	}
	if _, ok := res.Images["Im1"]; !ok {
		t.Error("expected Im1 in image stream map")
	}
}

// TestWalk_FormXObject tests that forms are expanded with their matrix
func TestWalk_FormXObject(t *testing.T) {
	page := openPage(t, pdftest.Page{
		Content: "q 1 0 0 1 100 100 cm /Fm1 Do Q 0 0 10 10 re f",
		Forms: map[string]pdftest.Form{
			"Fm1": {
				BBox:    pdftest.Box{0, 0, 100, 100},
				Matrix:  []float64{1, 0, 0, 1, 20, 30},
				Content: "0 0 40 40 re S",
			},
		},
	})

	res, err := Walk(page, 1)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	paints := opsOfKind(res.Ops, graphicsstate.OpPaint)
	if len(paints) != 2 {
		t.Fatalf("expected 2 paint ops, got %d", len(paints))
	}
	if paints[0].Paint.CTM != (model.Matrix{1, 0, 0, 1, 120, 130}) {
		t.Errorf("expected form CTM translate(120,130), got %v", paints[0].Paint.CTM)
	}
	if !paints[1].Paint.CTM.IsIdentity() {
		t.Errorf("expected CTM restored after form, got %v", paints[1].Paint.CTM)
	}
}

// TestWalk_UnbalancedRestore tests that a stray Q is tolerated
func TestWalk_UnbalancedRestore(t *testing.T) {
	page := openPage(t, pdftest.Page{
		Content: "Q 0 0 20 20 re f",
	})

	res, err := Walk(page, 1)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(opsOfKind(res.Ops, graphicsstate.OpPaint)) != 1 {
		t.Error("expected drawing to continue after stray Q")
	}
}

// TestFontInfo_TwoByteCodes tests Type0 code splitting and widths
func TestFontInfo_TwoByteCodes(t *testing.T) {
	fi := &fontInfo{twoByte: true, dw: 1000, cidWidths: map[int]float64{0x0102: 600}}

	codes := fi.split("\x01\x02\x00\x05")
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}
	if w := fi.width(codes[0]); w != 600 {
		t.Errorf("expected width 600, got %f", w)
	}
	if w := fi.width(codes[1]); w != 1000 {
		t.Errorf("expected default width 1000, got %f", w)
	}
}

// TestFontInfo_MissingFont tests the fallback metrics
func TestFontInfo_MissingFont(t *testing.T) {
	fi := loadFont(pdf.Value{})

	if fi.ascent != DefaultAscent || fi.descent != DefaultDescent {
		t.Errorf("expected default metrics, got %f/%f", fi.ascent, fi.descent)
	}
	if w := fi.width("x"); w != DefaultGlyphWidth {
		t.Errorf("expected default width, got %f", w)
	}
	if s := fi.decode("x"); s != "x" {
		t.Errorf("expected passthrough decode, got %q", s)
	}
}

// TestParseCIDWidths tests both forms of the /W array
func TestParseCIDWidths(t *testing.T) {
	b := pdftest.New()
	root := b.Add("<< /Type /Catalog /Pages 2 0 R /W [1 [100 200] 5 7 300] >>")
	b.Add("<< /Type /Pages /Kids [] /Count 0 >>")
	data := b.Bytes(root)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open generated PDF: %v", err)
	}

	widths := parseCIDWidths(r.Trailer().Key("Root").Key("W"))
	want := map[int]float64{1: 100, 2: 200, 5: 300, 6: 300, 7: 300}
	if len(widths) != len(want) {
		t.Fatalf("expected %d widths, got %d", len(want), len(widths))
	}
	for c, w := range want {
		if widths[c] != w {
			t.Errorf("code %d: expected width %f, got %f", c, w, widths[c])
		}
	}

	if got := parseCIDWidths(pdf.Value{}); len(got) != 0 {
		t.Errorf("expected no widths from null array, got %d", len(got))
	}
}
