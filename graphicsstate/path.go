package graphicsstate

import "github.com/tsawler/pagecrop/model"

// Subpath is a connected run of points in user space. Curve marks Bézier
// control points; a straight segment joins two unmarked neighbours.
type Subpath struct {
	Points []model.Point
	Curve  []bool
	Closed bool
}

// HasCurves reports whether any point is a curve control point
func (s Subpath) HasCurves() bool {
	for _, c := range s.Curve {
		if c {
			return true
		}
	}
	return false
}

func (s *Subpath) add(p model.Point, curve bool) {
	s.Points = append(s.Points, p)
	s.Curve = append(s.Curve, curve)
}

// Path represents a graphics path being constructed
type Path struct {
	subpaths []Subpath

	// CurrentPoint is the current point in user space
	CurrentPoint model.Point

	// HasCurrentPoint indicates if a current point has been set
	HasCurrentPoint bool
}

// NewPath creates a new empty path
func NewPath() *Path {
	return &Path{}
}

func (p *Path) current() *Subpath {
	return &p.subpaths[len(p.subpaths)-1]
}

// MoveTo starts a new subpath at the specified point (m operator)
func (p *Path) MoveTo(x, y float64) {
	pt := model.Point{X: x, Y: y}
	p.subpaths = append(p.subpaths, Subpath{})
	p.current().add(pt, false)
	p.CurrentPoint = pt
	p.HasCurrentPoint = true
}

// LineTo appends a line segment from current point to (x, y) (l operator)
func (p *Path) LineTo(x, y float64) {
	if !p.HasCurrentPoint {
		p.MoveTo(x, y)
		return
	}
	p.startIfClosed()
	pt := model.Point{X: x, Y: y}
	p.current().add(pt, false)
	p.CurrentPoint = pt
}

// CurveTo appends a cubic Bézier curve (c operator)
func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !p.HasCurrentPoint {
		p.MoveTo(x1, y1)
	}
	p.startIfClosed()
	sp := p.current()
	sp.add(model.Point{X: x1, Y: y1}, true)
	sp.add(model.Point{X: x2, Y: y2}, true)
	end := model.Point{X: x3, Y: y3}
	sp.add(end, false)
	p.CurrentPoint = end
}

// CurveToV appends a curve whose first control point is the current point (v operator)
func (p *Path) CurveToV(x2, y2, x3, y3 float64) {
	if !p.HasCurrentPoint {
		return
	}
	p.CurveTo(p.CurrentPoint.X, p.CurrentPoint.Y, x2, y2, x3, y3)
}

// CurveToY appends a curve whose second control point is the end point (y operator)
func (p *Path) CurveToY(x1, y1, x3, y3 float64) {
	if !p.HasCurrentPoint {
		return
	}
	p.CurveTo(x1, y1, x3, y3, x3, y3)
}

// ClosePath closes the current subpath (h operator)
func (p *Path) ClosePath() {
	if !p.HasCurrentPoint || len(p.subpaths) == 0 {
		return
	}
	sp := p.current()
	sp.Closed = true
	p.CurrentPoint = sp.Points[0]
}

// startIfClosed begins a fresh subpath at the current point when drawing
// continues after a closepath.
func (p *Path) startIfClosed() {
	if p.current().Closed {
		p.subpaths = append(p.subpaths, Subpath{})
		p.current().add(p.CurrentPoint, false)
	}
}

// Rectangle appends a rectangle as a complete closed subpath (re operator)
func (p *Path) Rectangle(x, y, width, height float64) {
	p.MoveTo(x, y)
	p.LineTo(x+width, y)
	p.LineTo(x+width, y+height)
	p.LineTo(x, y+height)
	p.ClosePath()
}

// Subpaths returns the subpaths built so far
func (p *Path) Subpaths() []Subpath {
	return p.subpaths
}

// Clear resets the path
func (p *Path) Clear() {
	p.subpaths = nil
	p.HasCurrentPoint = false
}

// IsEmpty returns true if the path has no subpaths
func (p *Path) IsEmpty() bool {
	return len(p.subpaths) == 0
}
