package elements

import (
	"math"

	"github.com/tsawler/pagecrop/model"
)

// split separates horizontal and vertical lines; diagonals are dropped
func split(lines []model.LineSegment) (horizontals, verticals []model.LineSegment) {
	for _, l := range lines {
		switch {
		case l.IsHorizontal:
			horizontals = append(horizontals, l)
		case l.IsVertical:
			verticals = append(verticals, l)
		}
	}
	return horizontals, verticals
}

// RectanglesFromLines appends to existing the rectangles outlined by pairs
// of horizontal and vertical lines. When the page has exactly two of each
// they make a rectangle from their midpoints whatever their spans. Then every
// horizontal pair is tried against every vertical pair, and a candidate is
// kept when all four lines cover their side. No rectangle is added that
// repeats one already known.
func (a *Aggregator) RectanglesFromLines(lines []model.LineSegment, existing []model.Rectangle) []model.Rectangle {
	rects := append([]model.Rectangle(nil), existing...)
	hs, vs := split(lines)

	if len(hs) == 2 && len(vs) == 2 && samePage(hs[0], hs[1], vs[0], vs[1]) {
		r := a.outline(hs[0].PageNumber, hs[0].MidY(), hs[1].MidY(), vs[0].MidX(), vs[1].MidX())
		if r.Width > 0 && r.Height > 0 && !a.duplicate(r, rects) {
			rects = append(rects, r)
		}
	}

	for i := 0; i < len(hs); i++ {
		for j := i + 1; j < len(hs); j++ {
			h1, h2 := hs[i], hs[j]
			if h1.PageNumber != h2.PageNumber {
				continue
			}
			y1, y2 := h1.MidY(), h2.MidY()
			if math.Abs(y1-y2) < a.config.MinSideSeparation {
				continue
			}

			for k := 0; k < len(vs); k++ {
				for m := k + 1; m < len(vs); m++ {
					v1, v2 := vs[k], vs[m]
					if v1.PageNumber != h1.PageNumber || v2.PageNumber != h1.PageNumber {
						continue
					}
					x1, x2 := v1.MidX(), v2.MidX()
					if math.Abs(x1-x2) < a.config.MinSideSeparation {
						continue
					}

					r := a.outline(h1.PageNumber, y1, y2, x1, x2)
					if !a.covers(r, h1, h2, v1, v2) || a.duplicate(r, rects) {
						continue
					}
					rects = append(rects, r)
				}
			}
		}
	}
	return rects
}

func samePage(lines ...model.LineSegment) bool {
	for _, l := range lines[1:] {
		if l.PageNumber != lines[0].PageNumber {
			return false
		}
	}
	return true
}

// outline builds a stroked rectangle between two Ys and two Xs
func (a *Aggregator) outline(page int, y1, y2, x1, x2 float64) model.Rectangle {
	minX, maxX := math.Min(x1, x2), math.Max(x1, x2)
	minY, maxY := math.Min(y1, y2), math.Max(y1, y2)
	return model.Rectangle{
		PageNumber:  page,
		X:           minX,
		Y:           minY,
		Width:       maxX - minX,
		Height:      maxY - minY,
		StrokeWidth: a.config.RectStrokeWidth,
		Stroked:     true,
	}
}

// covers reports whether both horizontals span r's width and both
// verticals span its height, within the span tolerance
func (a *Aggregator) covers(r model.Rectangle, h1, h2, v1, v2 model.LineSegment) bool {
	tol := a.config.SpanTolerance
	right, top := r.X+r.Width, r.Y+r.Height
	for _, h := range []model.LineSegment{h1, h2} {
		if h.MinX() > r.X+tol || h.MaxX() < right-tol {
			return false
		}
	}
	for _, v := range []model.LineSegment{v1, v2} {
		if v.MinY() > r.Y+tol || v.MaxY() < top-tol {
			return false
		}
	}
	return true
}

func (a *Aggregator) duplicate(r model.Rectangle, rects []model.Rectangle) bool {
	tol := a.config.DuplicateTol
	for _, e := range rects {
		if e.PageNumber == r.PageNumber &&
			math.Abs(e.X-r.X) < tol &&
			math.Abs(e.Y-r.Y) < tol &&
			math.Abs(e.Width-r.Width) < tol &&
			math.Abs(e.Height-r.Height) < tol {
			return true
		}
	}
	return false
}

// FilterEdgeLines drops every horizontal or vertical line that lies along
// an edge of one of rects and stays within that edge. Rectangles no larger
// than the small-rectangle limit on both sides never claim lines.
func (a *Aggregator) FilterEdgeLines(lines []model.LineSegment, rects []model.Rectangle) []model.LineSegment {
	kept := make([]model.LineSegment, 0, len(lines))
	for _, l := range lines {
		if !a.onEdge(l, rects) {
			kept = append(kept, l)
		}
	}
	return kept
}

func (a *Aggregator) onEdge(l model.LineSegment, rects []model.Rectangle) bool {
	tol := a.config.EdgeTolerance
	for _, r := range rects {
		if r.PageNumber != l.PageNumber {
			continue
		}
		if r.Width <= a.config.SmallRectMax && r.Height <= a.config.SmallRectMax {
			continue
		}
		left, right := r.X, r.X+r.Width
		bottom, top := r.Y, r.Y+r.Height

		if l.IsHorizontal {
			y := l.MidY()
			if (math.Abs(y-bottom) < tol || math.Abs(y-top) < tol) &&
				l.MinX() >= left-tol && l.MaxX() <= right+tol {
				return true
			}
		}
		if l.IsVertical {
			x := l.MidX()
			if (math.Abs(x-left) < tol || math.Abs(x-right) < tol) &&
				l.MinY() >= bottom-tol && l.MaxY() <= top+tol {
				return true
			}
		}
	}
	return false
}
