package graphicsstate

import (
	"math"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// Default thresholds for path geometry, in points and degrees.
const (
	DefaultMinRectSize      = 5.0
	DefaultMinLineLength    = 5.0
	DefaultAxisToleranceDeg = 5.0
	DefaultCornerTolerance  = 0.5
)

// Options controls the rectangle and line tests.
type Options struct {
	// MinRectSize rejects rectangles narrower or shorter than this
	MinRectSize float64
	// MinLineLength rejects shorter segments
	MinLineLength float64
	// AxisToleranceDeg is the angle from an axis within which a segment
	// counts as horizontal or vertical
	AxisToleranceDeg float64
	// CornerTolerance merges corner coordinates closer than this
	CornerTolerance float64
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		MinRectSize:      DefaultMinRectSize,
		MinLineLength:    DefaultMinLineLength,
		AxisToleranceDeg: DefaultAxisToleranceDeg,
		CornerTolerance:  DefaultCornerTolerance,
	}
}

// Geometry is what the extractor found on a page
type Geometry struct {
	Rectangles []model.Rectangle
	Lines      []model.LineSegment
}

// PathExtractor folds an operation stream into rectangles and lines in
// page space. It keeps no state between calls to Extract.
type PathExtractor struct {
	opts Options
	page int
}

// NewPathExtractor creates an extractor for the given 1-based page number
func NewPathExtractor(page int, opts Options) *PathExtractor {
	return &PathExtractor{opts: opts, page: page}
}

// Extract runs the rectangle test on every painted subpath and the line
// test on every stroked subpath. Non-paint operations are ignored.
func (pe *PathExtractor) Extract(ops []Op) Geometry {
	var g Geometry
	for i, op := range ops {
		if op.Kind != OpPaint || op.Paint == nil {
			continue
		}
		p := op.Paint
		for j, sp := range p.Subpaths {
			if !finiteSubpath(sp) {
				diag.Printf("page %d: op %d subpath %d: %v", pe.page, i, j, model.ErrRectangleGeometryInvalid)
				continue
			}
			if rect, ok := pe.rectangle(sp, p); ok {
				g.Rectangles = append(g.Rectangles, rect)
			}
			if p.Stroke {
				g.Lines = append(g.Lines, pe.lines(sp, p)...)
			}
		}
	}
	return g
}

// rectangle applies the rectangle test to one subpath
func (pe *PathExtractor) rectangle(sp Subpath, p *PaintOp) (model.Rectangle, bool) {
	n := len(sp.Points)
	if n < 4 || n > 5 || sp.HasCurves() {
		return model.Rectangle{}, false
	}
	if !sp.Closed && !(n == 5 && sp.Points[4].Near(sp.Points[0], pe.opts.CornerTolerance)) {
		return model.Rectangle{}, false
	}

	corners := make([]model.Point, 4)
	for i := 0; i < 4; i++ {
		corners[i] = p.CTM.Transform(sp.Points[i])
	}

	xs := uniqueValues(corners, func(pt model.Point) float64 { return pt.X }, pe.opts.CornerTolerance)
	ys := uniqueValues(corners, func(pt model.Point) float64 { return pt.Y }, pe.opts.CornerTolerance)
	if len(xs) != 2 || len(ys) != 2 {
		return model.Rectangle{}, false
	}

	box := model.BBoxFromPoints(corners...)
	if box.Width < pe.opts.MinRectSize || box.Height < pe.opts.MinRectSize {
		return model.Rectangle{}, false
	}

	return model.Rectangle{
		PageNumber:  pe.page,
		X:           box.X,
		Y:           box.Y,
		Width:       box.Width,
		Height:      box.Height,
		StrokeWidth: p.LineWidth,
		Filled:      p.Fill,
		Stroked:     p.Stroke,
	}, true
}

// lines applies the line test to every straight segment of a subpath
func (pe *PathExtractor) lines(sp Subpath, p *PaintOp) []model.LineSegment {
	var out []model.LineSegment
	add := func(a, b model.Point) {
		p1 := p.CTM.Transform(a)
		p2 := p.CTM.Transform(b)
		if p1.Distance(p2) < pe.opts.MinLineLength {
			return
		}
		out = append(out, model.NewLineSegment(pe.page, p1, p2, p.LineWidth, pe.opts.AxisToleranceDeg))
	}

	for j := 1; j < len(sp.Points); j++ {
		// a segment touching a control point is part of a curve
		if sp.Curve[j-1] || sp.Curve[j] {
			continue
		}
		add(sp.Points[j-1], sp.Points[j])
	}

	if sp.Closed && len(sp.Points) > 1 {
		last := len(sp.Points) - 1
		if !sp.Curve[last] && !sp.Points[last].Near(sp.Points[0], 0) {
			add(sp.Points[last], sp.Points[0])
		}
	}
	return out
}

// uniqueValues clusters a coordinate of the points, returning one value per
// cluster.
func uniqueValues(pts []model.Point, coord func(model.Point) float64, tol float64) []float64 {
	var vals []float64
	for _, pt := range pts {
		v := coord(pt)
		seen := false
		for _, u := range vals {
			if math.Abs(u-v) <= tol {
				seen = true
				break
			}
		}
		if !seen {
			vals = append(vals, v)
		}
	}
	return vals
}

func finiteSubpath(sp Subpath) bool {
	if len(sp.Points) != len(sp.Curve) {
		return false
	}
	for _, p := range sp.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Statistics summarises extracted geometry
type Statistics struct {
	Rectangles      int
	HorizontalLines int
	VerticalLines   int
	DiagonalLines   int
}

// Statistics counts rectangles and classifies lines
func (g Geometry) Statistics() Statistics {
	s := Statistics{Rectangles: len(g.Rectangles)}
	for _, l := range g.Lines {
		switch {
		case l.IsHorizontal:
			s.HorizontalLines++
		case l.IsVertical:
			s.VerticalLines++
		default:
			s.DiagonalLines++
		}
	}
	return s
}
