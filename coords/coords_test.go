package coords

import (
	"image"
	"math"
	"testing"

	"github.com/tsawler/pagecrop/model"
)

const eps = 1e-9

// TestToRasterY_SelfInverse tests that flipping twice is a no-op
func TestToRasterY_SelfInverse(t *testing.T) {
	for _, h := range []float64{1, 72, 700, 841.89} {
		for _, y := range []float64{-50, 0, 0.5, 123.456, 700, 1e4} {
			if got := ToRasterY(ToRasterY(y, h), h); math.Abs(got-y) > eps {
				t.Errorf("h=%v y=%v: expected %v, got %v", h, y, y, got)
			}
		}
	}
}

// TestToPixels_Linear tests that doubling points doubles pixels
func TestToPixels_Linear(t *testing.T) {
	for _, dpi := range []float64{72, 96, 150, 300} {
		for _, pt := range []float64{0, 1, 13.5, 500, 700} {
			if got, want := ToPixels(2*pt, dpi), 2*ToPixels(pt, dpi); math.Abs(got-want) > eps {
				t.Errorf("dpi=%v pt=%v: expected %v, got %v", dpi, pt, want, got)
			}
		}
	}
	if got := ToPixels(72, 300); got != 300 {
		t.Errorf("expected one inch to be 300px, got %v", got)
	}
	if got := ToPoints(ToPixels(123, 150), 150); math.Abs(got-123) > eps {
		t.Errorf("expected 123, got %v", got)
	}
}

// TestPixelSize tests rounding of the output size
func TestPixelSize(t *testing.T) {
	tests := []struct {
		name   string
		bounds model.Bounds
		dpi    float64
		want   image.Point
	}{
		{"500x700 at 300", model.Bounds{MaxX: 500, MaxY: 700}, 300, image.Pt(2084, 2917)},
		{"offset box", model.Bounds{MinX: 36, MinY: 36, MaxX: 536, MaxY: 736}, 300, image.Pt(2084, 2917)},
		{"exact inch", model.Bounds{MaxX: 72, MaxY: 144}, 150, image.Pt(150, 300)},
		{"letter at 72", model.Bounds{MaxX: 612, MaxY: 792}, 72, image.Pt(612, 792)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelSize(tt.bounds, tt.dpi); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestRaster_Point tests the flip and offset
func TestRaster_Point(t *testing.T) {
	r := NewRaster(model.Bounds{MinX: 100, MinY: 50, MaxX: 300, MaxY: 150}, 144)
	if r.Size() != image.Pt(400, 200) {
		t.Fatalf("expected 400x200, got %v", r.Size())
	}

	tests := []struct {
		p    model.Point
		x, y float64
	}{
		{model.Point{X: 100, Y: 150}, 0, 0},
		{model.Point{X: 300, Y: 50}, 400, 200},
		{model.Point{X: 200, Y: 100}, 200, 100},
	}
	for _, tt := range tests {
		x, y := r.Point(tt.p)
		if math.Abs(x-tt.x) > eps || math.Abs(y-tt.y) > eps {
			t.Errorf("%v: expected (%v,%v), got (%v,%v)", tt.p, tt.x, tt.y, x, y)
		}
		if back := r.PagePoint(x, y); !back.Near(tt.p, eps) {
			t.Errorf("expected %v back, got %v", tt.p, back)
		}
	}
}

// TestRaster_Box tests that a box lands by its top-left corner
func TestRaster_Box(t *testing.T) {
	r := NewRaster(model.Bounds{MaxX: 200, MaxY: 100}, 72)
	x, y, w, h := r.Box(model.NewBBox(10, 20, 30, 40))
	if x != 10 || y != 40 || w != 30 || h != 40 {
		t.Errorf("expected (10,40,30,40), got (%v,%v,%v,%v)", x, y, w, h)
	}
}

// TestClipToBounds tests the overlap rule
func TestClipToBounds(t *testing.T) {
	bounds := model.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}

	tests := []struct {
		name string
		kind model.ElementKind
		box  model.Bounds
		want bool
	}{
		{"inside", model.KindImage, model.Bounds{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20}, true},
		{"straddling", model.KindImage, model.Bounds{MinX: 90, MinY: 90, MaxX: 120, MaxY: 120}, true},
		{"outside", model.KindImage, model.Bounds{MinX: 110, MinY: 10, MaxX: 120, MaxY: 20}, false},
		{"touching edge", model.KindImage, model.Bounds{MinX: 100, MinY: 10, MaxX: 120, MaxY: 20}, false},
		{"vertical line inside", model.KindLine, model.Bounds{MinX: 50, MinY: 10, MaxX: 50, MaxY: 90}, true},
		{"vertical line on edge", model.KindLine, model.Bounds{MinX: 100, MinY: 10, MaxX: 100, MaxY: 90}, true},
		{"horizontal line outside", model.KindLine, model.Bounds{MinX: 10, MinY: 101, MaxX: 90, MaxY: 101}, false},
		{"text just above", model.KindText, model.Bounds{MinX: 10, MinY: 105, MaxX: 50, MaxY: 115}, true},
		{"text well above", model.KindText, model.Bounds{MinX: 10, MinY: 111, MaxX: 50, MaxY: 120}, false},
		{"image just above", model.KindImage, model.Bounds{MinX: 10, MinY: 105, MaxX: 50, MaxY: 115}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClipToBounds(tt.kind, tt.box, bounds, DefaultTextAllowance); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
