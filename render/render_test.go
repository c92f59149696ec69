package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
	"golang.org/x/net/html"
)

func TestMain(m *testing.M) {
	diag.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newPage(w, h float64) *model.PageElements {
	return &model.PageElements{PageNumber: 1, PageCount: 1, PageWidth: w, PageHeight: h, MediaHeight: h}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// TestParseBoundsMode tests mode names
func TestParseBoundsMode(t *testing.T) {
	tests := []struct {
		in      string
		want    BoundsMode
		wantErr bool
	}{
		{"cropmarks", ModeCropMarks, false},
		{"Crop-Marks", ModeCropMarks, false},
		{"largest-rectangle", ModeLargestRectangle, false},
		{" largest ", ModeLargestRectangle, false},
		{"computed", ModeComputed, false},
		{"nonsense", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBoundsMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
	for _, m := range []BoundsMode{ModeCropMarks, ModeLargestRectangle, ModeComputed} {
		if got, err := ParseBoundsMode(m.String()); err != nil || got != m {
			t.Errorf("expected %s to parse back, got %s, %v", m, got, err)
		}
	}
}

// TestResolveBounds tests each bounds mode
func TestResolveBounds(t *testing.T) {
	withInterior := func() *model.PageElements {
		pe := newPage(600, 800)
		pe.SetInteriorBounds(model.Bounds{MinX: 50, MinY: 60, MaxX: 550, MaxY: 760})
		return pe
	}
	withShapes := func() *model.PageElements {
		pe := newPage(600, 800)
		pe.Rectangles = []model.Rectangle{
			{X: 10, Y: 10, Width: 50, Height: 50},
			{X: 100, Y: 200, Width: 300, Height: 400},
		}
		pe.Images = []model.EmbeddedImage{{X: 20, Y: 20, DisplayWidth: 100, DisplayHeight: 100}}
		pe.Lines = []model.LineSegment{{X1: 5, Y1: 700, X2: 590, Y2: 700}}
		return pe
	}

	tests := []struct {
		name string
		pe   func() *model.PageElements
		mode BoundsMode
		want model.Bounds
	}{
		{"interior box", withInterior, ModeCropMarks, model.Bounds{MinX: 50, MinY: 60, MaxX: 550, MaxY: 760}},
		{"no interior falls back", withShapes, ModeCropMarks, model.Bounds{MinX: 5, MinY: 10, MaxX: 590, MaxY: 700}},
		{"largest rectangle", withShapes, ModeLargestRectangle, model.Bounds{MinX: 100, MinY: 200, MaxX: 400, MaxY: 600}},
		{"largest image", func() *model.PageElements {
			pe := newPage(600, 800)
			pe.Images = []model.EmbeddedImage{
				{X: 0, Y: 0, DisplayWidth: 10, DisplayHeight: 10},
				{X: 100, Y: 100, DisplayWidth: 200, DisplayHeight: 100},
			}
			return pe
		}, ModeLargestRectangle, model.Bounds{MinX: 100, MinY: 100, MaxX: 300, MaxY: 200}},
		{"computed", withShapes, ModeComputed, model.Bounds{MinX: 5, MinY: 10, MaxX: 590, MaxY: 700}},
		{"computed empty page", func() *model.PageElements { return newPage(600, 800) }, ModeComputed, model.Bounds{MaxX: 600, MaxY: 800}},
		{"computed skips outside", func() *model.PageElements {
			pe := newPage(600, 800)
			pe.Rectangles = []model.Rectangle{{X: 100, Y: 100, Width: 100, Height: 100}, {X: -50, Y: 0, Width: 80, Height: 80}}
			return pe
		}, ModeComputed, model.Bounds{MinX: 100, MinY: 100, MaxX: 200, MaxY: 200}},
		{"clamped to page", func() *model.PageElements {
			pe := newPage(600, 800)
			pe.SetInteriorBounds(model.Bounds{MinX: -20, MinY: 100, MaxX: 700, MaxY: 900})
			return pe
		}, ModeCropMarks, model.Bounds{MinX: 0, MinY: 100, MaxX: 600, MaxY: 800}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBounds(tt.pe(), tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

// TestResolveBounds_Invalid tests the failures
func TestResolveBounds_Invalid(t *testing.T) {
	if _, err := ResolveBounds(newPage(600, 800), ModeLargestRectangle); !errors.Is(err, model.ErrInvalidBounds) {
		t.Errorf("expected InvalidBounds for an empty page, got %v", err)
	}

	pe := newPage(600, 800)
	pe.SetInteriorBounds(model.Bounds{MinX: 700, MinY: 100, MaxX: 900, MaxY: 300})
	_, err := ResolveBounds(pe, ModeCropMarks)
	if !errors.Is(err, model.ErrInvalidBounds) {
		t.Fatalf("expected InvalidBounds off the page, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid bounding box dimensions") {
		t.Errorf("expected message about dimensions, got %q", err.Error())
	}

	if _, err := ResolveBounds(newPage(600, 800), BoundsMode(42)); !errors.Is(err, model.ErrInvalidBounds) {
		t.Errorf("expected InvalidBounds for an unknown mode, got %v", err)
	}
}

// TestRender_Size tests the 500x700pt box at 300 DPI
func TestRender_Size(t *testing.T) {
	pe := newPage(572, 772)
	pe.SetInteriorBounds(model.Bounds{MinX: 36, MinY: 36, MaxX: 536, MaxY: 736})

	res, err := New(DefaultOptions()).Render(pe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Image.Bounds().Size(); got != image.Pt(2084, 2917) {
		t.Errorf("expected 2084x2917, got %v", got)
	}
	if res.Image.RGBAAt(1000, 1000) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("expected a white background")
	}
}

func elementsPage() *model.PageElements {
	pe := newPage(200, 100)
	pe.SetInteriorBounds(pe.PageBounds())
	pe.Lines = []model.LineSegment{{X1: 10, Y1: 50, X2: 190, Y2: 50, IsHorizontal: true}}
	pe.Images = []model.EmbeddedImage{{
		Pixels: solid(10, 10, red), Width: 10, Height: 10,
		X: 20, Y: 20, DisplayWidth: 40, DisplayHeight: 30,
	}}
	pe.Texts = []model.TextElement{{Text: "Hello", BBox: model.NewBBox(100, 20, 50, 12), FontSize: 12}}
	return pe
}

// TestRender_Elements tests placement of each element kind
func TestRender_Elements(t *testing.T) {
	opts := DefaultOptions()
	opts.DPI = 72
	res, err := New(opts).Render(elementsPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(res.Elements))
	}

	line := res.Elements[0]
	want := model.RenderedElement{Kind: model.KindLine, X: 10, Y: 50, X2: 190, Y2: 50, Width: 180}
	if !reflect.DeepEqual(line, want) {
		t.Errorf("expected line %+v, got %+v", want, line)
	}
	if res.Image.RGBAAt(100, 49).R == 255 && res.Image.RGBAAt(100, 50).R == 255 {
		t.Error("expected ink along the line")
	}

	img := res.Elements[1]
	if img.Kind != model.KindImage || img.X != 20 || img.Y != 50 || img.Width != 40 || img.Height != 30 {
		t.Errorf("expected image at (20,50) 40x30, got %+v", img)
	}
	if c := res.Image.RGBAAt(40, 65); c != red {
		t.Errorf("expected red inside the image, got %v", c)
	}
	if c := res.Image.RGBAAt(70, 65); c.G != 255 {
		t.Errorf("expected nothing right of the image, got %v", c)
	}

	text := res.Elements[2]
	if text.Kind != model.KindText || text.Text != "Hello" || text.X != 100 || text.Y != 32 {
		t.Errorf("expected Hello at (100,32), got %+v", text)
	}
	if text.FontSize != 9 || text.FontName != DefaultFontName || text.Width != 50 || text.Height != 12 {
		t.Errorf("expected 9pt %s 50x12, got %+v", DefaultFontName, text)
	}
	inked := false
	for y := 20; y <= 33 && !inked; y++ {
		for x := 100; x < 150; x++ {
			if res.Image.RGBAAt(x, y).R < 255 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("expected glyphs above the baseline")
	}
}

// TestRender_QuarterTurnImage tests that an image placed at 90 degrees is
// turned to fill its box
func TestRender_QuarterTurnImage(t *testing.T) {
	src := solid(10, 20, red)
	for y := 10; y < 20; y++ {
		for x := 0; x < 10; x++ {
			src.SetRGBA(x, y, blue)
		}
	}
	pe := newPage(100, 100)
	pe.SetInteriorBounds(pe.PageBounds())
	pe.Images = []model.EmbeddedImage{{
		Pixels: src, Width: 10, Height: 20,
		X: 10, Y: 10, DisplayWidth: 40, DisplayHeight: 20,
		RotationAngle: math.Pi / 2,
	}}

	opts := DefaultOptions()
	opts.DPI = 72
	res, err := New(opts).Render(pe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := res.Image.RGBAAt(20, 80); c != red {
		t.Errorf("expected the top of the image on the left, got %v", c)
	}
	if c := res.Image.RGBAAt(40, 80); c != blue {
		t.Errorf("expected the bottom of the image on the right, got %v", c)
	}
}

type fakeRecognizer struct {
	words []ocr.Word
	calls int
}

func (f *fakeRecognizer) Words(image.Image) ([]ocr.Word, error) {
	f.calls++
	return f.words, nil
}

// TestRender_OCRFallback tests that image words stand in for missing text
func TestRender_OCRFallback(t *testing.T) {
	pe := newPage(200, 100)
	pe.Images = []model.EmbeddedImage{{
		Pixels: solid(100, 50, color.RGBA{255, 255, 255, 255}), Width: 100, Height: 50,
		DisplayWidth: 200, DisplayHeight: 100,
	}}
	rec := &fakeRecognizer{words: []ocr.Word{{Text: "Hi", Box: image.Rect(10, 5, 30, 25), Confidence: 90}}}

	opts := DefaultOptions()
	opts.Mode = ModeComputed
	opts.DPI = 72
	opts.Recognizer = rec
	res, err := New(opts).Render(pe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.calls != 1 {
		t.Errorf("expected 1 recognizer call, got %d", rec.calls)
	}

	var text *model.RenderedElement
	for i := range res.Elements {
		if res.Elements[i].Kind == model.KindText {
			text = &res.Elements[i]
		}
	}
	if text == nil {
		t.Fatal("expected a text element from OCR")
	}
	if text.Text != "Hi" || text.X != 20 || text.Y != 50 || text.Width != 40 || text.Height != 40 {
		t.Errorf("expected Hi at (20,50) 40x40, got %+v", *text)
	}
	if text.FontSize != DefaultOCRFontSize || text.IsBold {
		t.Errorf("expected plain %vpt text, got %+v", DefaultOCRFontSize, *text)
	}

	// pages with their own text are never sent to OCR
	rec.calls = 0
	pe.Texts = []model.TextElement{{Text: "x", BBox: model.NewBBox(10, 10, 10, 10)}}
	if _, err := New(opts).Render(pe); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.calls != 0 {
		t.Errorf("expected no recognizer calls, got %d", rec.calls)
	}
}

// TestRender_InvalidBounds tests that bounds failures come back tagged
func TestRender_InvalidBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeLargestRectangle
	if _, err := New(opts).Render(newPage(100, 100)); model.KindOf(err) != model.InvalidBounds {
		t.Errorf("expected InvalidBounds, got %v", err)
	}
}

// TestImageTransform tests that the corners of an upright image land on
// the corners of its box
func TestImageTransform(t *testing.T) {
	m := imageTransform(image.Rect(0, 0, 10, 20), 5, 7, 40, 60, 0, false)
	apply := func(u, v float64) (float64, float64) {
		return m[0]*u + m[1]*v + m[2], m[3]*u + m[4]*v + m[5]
	}
	for _, tc := range []struct{ u, v, x, y float64 }{
		{0, 0, 5, 7},
		{10, 20, 45, 67},
		{10, 0, 45, 7},
	} {
		x, y := apply(tc.u, tc.v)
		if math.Abs(x-tc.x) > 1e-9 || math.Abs(y-tc.y) > 1e-9 {
			t.Errorf("(%v,%v): expected (%v,%v), got (%v,%v)", tc.u, tc.v, tc.x, tc.y, x, y)
		}
	}
	if !isQuarterTurn(-math.Pi/2+0.05, QuarterTurnTol) || isQuarterTurn(math.Pi/4, QuarterTurnTol) {
		t.Error("expected quarter-turn detection within tolerance only")
	}
}

// TestSortByPosition tests reading order
func TestSortByPosition(t *testing.T) {
	elems := []model.RenderedElement{
		{Text: "A", X: 50, Y: 10},
		{Text: "B", X: 10, Y: 12},
		{Text: "C", X: 5, Y: 40},
		{Text: "D", X: 30, Y: 8},
		{Text: "E", X: 10, Y: 12},
	}
	SortByPosition(elems)

	var got []string
	for _, e := range elems {
		got = append(got, e.Text)
	}
	if want := "B E D A C"; strings.Join(got, " ") != want {
		t.Errorf("expected %s, got %s", want, strings.Join(got, " "))
	}
}

// TestSortByPosition_Idempotent tests that sorting sorted output is a no-op
func TestSortByPosition_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		elems := make([]model.RenderedElement, 30)
		for i := range elems {
			elems[i] = model.RenderedElement{Text: string(rune('a' + i%26)), X: rng.Intn(40), Y: rng.Intn(60)}
		}
		SortByPosition(elems)
		once := append([]model.RenderedElement(nil), elems...)
		SortByPosition(elems)
		if !reflect.DeepEqual(once, elems) {
			t.Fatalf("trial %d: expected the same order after a second sort", trial)
		}
	}
}

// TestRenderToFile tests the written PNG and HTML report
func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.DPI = 72
	opts.OutputDir = filepath.Join(dir, "out")
	opts.HTMLReport = true

	res, err := New(opts).RenderToFile(elementsPage(), "/docs/flyer.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(dir, "out", "flyer_rendered.png"); res.OutputPath != want {
		t.Errorf("expected %s, got %s", want, res.OutputPath)
	}

	data, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatalf("failed to read PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if img.Bounds().Size() != image.Pt(200, 100) {
		t.Errorf("expected 200x100, got %v", img.Bounds().Size())
	}

	f, err := os.Open(res.HTMLPath)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer f.Close()
	doc, err := html.Parse(f)
	if err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}
	var boxes int
	var src string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if n.Data == "div" && a.Key == "class" && strings.HasPrefix(a.Val, "el ") {
					boxes++
				}
				if n.Data == "img" && a.Key == "src" {
					src = a.Val
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if boxes != len(res.Elements) {
		t.Errorf("expected %d overlay boxes, got %d", len(res.Elements), boxes)
	}
	if src != "flyer_rendered.png" {
		t.Errorf("expected relative image source, got %q", src)
	}
}

// TestOutputPath tests output naming
func TestOutputPath(t *testing.T) {
	if got := Stem("/a/b/report.final.pdf"); got != "report.final" {
		t.Errorf("expected report.final, got %s", got)
	}
	if got, want := OutputPath("images", "x/doc.pdf", "cropped", ".png"), filepath.Join("images", "doc_cropped.png"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
