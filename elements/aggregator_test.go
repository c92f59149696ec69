package elements

import (
	"testing"

	"github.com/tsawler/pagecrop/model"
)

func line(x1, y1, x2, y2 float64) model.LineSegment {
	return model.NewLineSegment(1, model.Point{X: x1, Y: y1}, model.Point{X: x2, Y: y2}, 1, 5)
}

// box returns the four edge lines of a rectangle
func box(x, y, w, h float64) []model.LineSegment {
	return []model.LineSegment{
		line(x, y, x+w, y),
		line(x, y+h, x+w, y+h),
		line(x, y, x, y+h),
		line(x+w, y, x+w, y+h),
	}
}

// TestAggregate_FourLines tests that a box drawn as four lines becomes one
// rectangle and its lines are absorbed
func TestAggregate_FourLines(t *testing.T) {
	pe := &model.PageElements{Lines: box(50, 50, 200, 100)}

	out := NewAggregator().Aggregate(pe)

	if len(out.Rectangles) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(out.Rectangles))
	}
	r := out.Rectangles[0]
	if r.X != 50 || r.Y != 50 || r.Width != 200 || r.Height != 100 {
		t.Errorf("expected rectangle (50,50,200,100), got %+v", r)
	}
	if !r.Stroked || r.Filled {
		t.Errorf("expected stroked unfilled rectangle, got %+v", r)
	}
	if len(out.Lines) != 0 {
		t.Errorf("expected edge lines to be removed, got %d", len(out.Lines))
	}

	interior, ok := out.InteriorBounds()
	if !ok {
		t.Fatal("expected an interior box")
	}
	if interior != (model.Bounds{MinX: 50, MinY: 50, MaxX: 250, MaxY: 150}) {
		t.Errorf("expected interior (50,50)-(250,150), got %+v", interior)
	}

	if len(pe.Rectangles) != 0 || len(pe.Lines) != 4 {
		t.Error("expected input page to be left unchanged")
	}
}

// TestAggregate_ExistingRectangle tests that a stroked rectangle and its
// own edge lines are not doubled
func TestAggregate_ExistingRectangle(t *testing.T) {
	pe := &model.PageElements{
		Rectangles: []model.Rectangle{{PageNumber: 1, X: 50, Y: 50, Width: 200, Height: 100, Stroked: true}},
		Lines:      box(50, 50, 200, 100),
	}

	out := NewAggregator().Aggregate(pe)
	if len(out.Rectangles) != 1 {
		t.Errorf("expected 1 rectangle, got %d", len(out.Rectangles))
	}
}

// TestRectanglesFromLines_Grid tests the pairwise search on a two-row grid
func TestRectanglesFromLines_Grid(t *testing.T) {
	lines := []model.LineSegment{
		line(50, 50, 250, 50),
		line(50, 100, 250, 100),
		line(50, 150, 250, 150),
		line(50, 50, 50, 150),
		line(250, 50, 250, 150),
	}

	rects := NewAggregator().RectanglesFromLines(lines, nil)
	if len(rects) != 3 {
		t.Fatalf("expected 3 rectangles, got %d", len(rects))
	}
	want := []model.Rectangle{
		{X: 50, Y: 50, Width: 200, Height: 50},
		{X: 50, Y: 50, Width: 200, Height: 100},
		{X: 50, Y: 100, Width: 200, Height: 50},
	}
	for i, w := range want {
		r := rects[i]
		if r.X != w.X || r.Y != w.Y || r.Width != w.Width || r.Height != w.Height {
			t.Errorf("rectangle %d: expected %+v, got %+v", i, w, r)
		}
	}
}

// TestRectanglesFromLines_SpanMismatch tests that lines which do not reach
// the corners make no rectangle
func TestRectanglesFromLines_SpanMismatch(t *testing.T) {
	lines := []model.LineSegment{
		line(50, 50, 250, 50),
		line(50, 150, 120, 150),
		line(50, 300, 250, 300),
		line(50, 50, 50, 150),
		line(250, 50, 250, 150),
	}

	if rects := NewAggregator().RectanglesFromLines(lines, nil); len(rects) != 0 {
		t.Errorf("expected no rectangles, got %d", len(rects))
	}
}

// TestRectanglesFromLines_TooClose tests the minimum side separation
func TestRectanglesFromLines_TooClose(t *testing.T) {
	lines := []model.LineSegment{
		line(0, 0, 100, 0),
		line(0, 5, 100, 5),
		line(0, 200, 100, 200),
		line(0, 0, 0, 5),
		line(3, 0, 3, 5),
	}

	if rects := NewAggregator().RectanglesFromLines(lines, nil); len(rects) != 0 {
		t.Errorf("expected no rectangles, got %d", len(rects))
	}
}

// TestFilterEdgeLines tests which lines count as rectangle edges
func TestFilterEdgeLines(t *testing.T) {
	rects := []model.Rectangle{
		{PageNumber: 1, X: 100, Y: 100, Width: 200, Height: 100},
		{PageNumber: 1, X: 500, Y: 500, Width: 20, Height: 20},
	}

	tests := []struct {
		name string
		line model.LineSegment
		keep bool
	}{
		{"bottom edge", line(100, 101, 300, 101), false},
		{"partial top edge", line(150, 200, 250, 200), false},
		{"left edge", line(100, 100, 100, 200), false},
		{"overhanging edge", line(50, 100, 300, 100), true},
		{"interior line", line(100, 150, 300, 150), true},
		{"diagonal", line(100, 100, 300, 200), true},
		{"small rectangle edge", line(500, 500, 520, 500), true},
		{"other page", model.NewLineSegment(2, model.Point{X: 100, Y: 100}, model.Point{X: 300, Y: 100}, 1, 5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := NewAggregator().FilterEdgeLines([]model.LineSegment{tt.line}, rects)
			if got := len(kept) == 1; got != tt.keep {
				t.Errorf("expected keep=%v, got %v", tt.keep, got)
			}
		})
	}
}

// cornerMark returns an L of two 15pt lines meeting at (x, y) and pointing
// away from the content
func cornerMark(x, y, dx, dy float64) []model.LineSegment {
	return []model.LineSegment{
		line(x, y, x+dx*15, y),
		line(x, y, x, y+dy*15),
	}
}

// TestCornerBox tests interior box recovery from corner marks
func TestCornerBox(t *testing.T) {
	var lines []model.LineSegment
	lines = append(lines, cornerMark(100, 100, -1, -1)...)
	lines = append(lines, cornerMark(400, 100, 1, -1)...)
	lines = append(lines, cornerMark(100, 600, -1, 1)...)
	lines = append(lines, cornerMark(400, 600, 1, 1)...)
	// a redrawn mark slightly offset merges into the same corner
	lines = append(lines, cornerMark(101, 101, -1, -1)...)
	// long lines are never corner candidates
	lines = append(lines, line(0, 300, 500, 300), line(250, 0, 250, 700))

	got, ok := NewAggregator().CornerBox(lines)
	if !ok {
		t.Fatal("expected a corner box")
	}
	if got.MinX < 100 || got.MinX > 101 || got.MinY < 100 || got.MinY > 101 ||
		got.MaxX != 400 || got.MaxY != 600 {
		t.Errorf("expected box near (100,100)-(400,600), got %+v", got)
	}
}

// TestCornerBox_TooFew tests that fewer than four corners give no box
func TestCornerBox_TooFew(t *testing.T) {
	var lines []model.LineSegment
	lines = append(lines, cornerMark(100, 100, -1, -1)...)
	lines = append(lines, cornerMark(400, 600, 1, 1)...)

	if _, ok := NewAggregator().CornerBox(lines); ok {
		t.Error("expected no corner box")
	}
}

// TestInteriorBox_PrefersCorners tests that corner marks win over midpoints
func TestInteriorBox_PrefersCorners(t *testing.T) {
	var lines []model.LineSegment
	lines = append(lines, cornerMark(100, 100, -1, -1)...)
	lines = append(lines, cornerMark(400, 100, 1, -1)...)
	lines = append(lines, cornerMark(100, 600, -1, 1)...)
	lines = append(lines, cornerMark(400, 600, 1, 1)...)

	got, ok := NewAggregator().InteriorBox(lines)
	if !ok {
		t.Fatal("expected an interior box")
	}
	if got != (model.Bounds{MinX: 100, MinY: 100, MaxX: 400, MaxY: 600}) {
		t.Errorf("expected corner box, got %+v", got)
	}
}

// TestMidpointBox tests the line midpoint fallback
func TestMidpointBox(t *testing.T) {
	lines := []model.LineSegment{
		line(0, 40, 300, 40),
		line(0, 500, 300, 500),
		line(0, 250, 300, 250),
		line(20, 0, 20, 600),
		line(280, 0, 280, 600),
		line(0, 0, 50, 50),
	}

	got, ok := MidpointBox(lines)
	if !ok {
		t.Fatal("expected a midpoint box")
	}
	if got != (model.Bounds{MinX: 20, MinY: 40, MaxX: 280, MaxY: 500}) {
		t.Errorf("expected (20,40)-(280,500), got %+v", got)
	}

	if _, ok := MidpointBox(lines[:3]); ok {
		t.Error("expected no box without vertical lines")
	}
}
