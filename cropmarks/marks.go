package cropmarks

import (
	"math"

	"github.com/tsawler/pagecrop/model"
)

// Candidates returns every pair of lines that forms an L: the two lines are
// perpendicular within tolerance, fit together in a small box, and their
// extensions cross. The mark point is that crossing.
func (r *Resolver) Candidates(lines []model.LineSegment) []model.CropMark {
	var marks []model.CropMark
	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			l1, l2 := lines[i], lines[j]
			if !r.perpendicular(l1, l2) {
				continue
			}

			box := l1.Bounds()
			box.MinX = math.Min(box.MinX, l2.MinX())
			box.MinY = math.Min(box.MinY, l2.MinY())
			box.MaxX = math.Max(box.MaxX, l2.MaxX())
			box.MaxY = math.Max(box.MaxY, l2.MaxY())
			if math.Max(box.Width(), box.Height()) > r.opts.MaxMarkSize {
				continue
			}

			p, ok := r.intersect(l1, l2)
			if !ok {
				continue
			}
			marks = append(marks, model.CropMark{Line1: i, Line2: j, CropX: p.X, CropY: p.Y})
		}
	}
	return marks
}

// axisAngle returns the direction of l in degrees, in [0, 180)
func axisAngle(l model.LineSegment) float64 {
	deg := math.Atan2(l.Y2-l.Y1, l.X2-l.X1) * 180 / math.Pi
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	return deg
}

func (r *Resolver) perpendicular(l1, l2 model.LineSegment) bool {
	diff := math.Abs(axisAngle(l1) - axisAngle(l2))
	if diff > 90 {
		diff = 180 - diff
	}
	return math.Abs(diff-90) < r.opts.PerpendicularTol
}

// intersect returns where the infinite extensions of l1 and l2 cross
func (r *Resolver) intersect(l1, l2 model.LineSegment) (model.Point, bool) {
	x1, y1, x2, y2 := l1.X1, l1.Y1, l1.X2, l1.Y2
	x3, y3, x4, y4 := l2.X1, l2.Y1, l2.X2, l2.Y2

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < r.opts.ParallelEpsilon {
		return model.Point{}, false
	}
	a := x1*y2 - y1*x2
	b := x3*y4 - y3*x4
	return model.Point{
		X: (a*(x3-x4) - (x1-x2)*b) / denom,
		Y: (a*(y3-y4) - (y1-y2)*b) / denom,
	}, true
}

// DetectCropMarks returns the four crop marks among lines. With more than
// four candidates, one is kept per quadrant around the centre of the
// candidates' extent: the one closest to that quadrant's outer corner.
func (r *Resolver) DetectCropMarks(lines []model.LineSegment) ([]model.CropMark, error) {
	marks := r.Candidates(lines)
	if len(marks) < 4 {
		return nil, model.NewError(model.CropMarksNotFound, "Could not find 4 crop marks. Found: %d", len(marks))
	}
	if len(marks) == 4 {
		return marks, nil
	}

	selected := selectCorners(marks)
	if len(selected) != 4 {
		return nil, model.NewError(model.CropMarksAmbiguous, "Could not identify exactly 4 crop marks")
	}
	return selected, nil
}

// quadrant order of the returned marks
const (
	lowerLeft = iota
	lowerRight
	upperLeft
	upperRight
)

// selectCorners keeps the mark nearest each outer corner of the marks'
// extent. Ties go to the x±y extremum for the quadrant. Empty quadrants
// are left out.
func selectCorners(marks []model.CropMark) []model.CropMark {
	ext := model.Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, m := range marks {
		ext.MinX = math.Min(ext.MinX, m.CropX)
		ext.MinY = math.Min(ext.MinY, m.CropY)
		ext.MaxX = math.Max(ext.MaxX, m.CropX)
		ext.MaxY = math.Max(ext.MaxY, m.CropY)
	}
	cx, cy := (ext.MinX+ext.MaxX)/2, (ext.MinY+ext.MaxY)/2

	corners := [4]model.Point{
		lowerLeft:  {X: ext.MinX, Y: ext.MinY},
		lowerRight: {X: ext.MaxX, Y: ext.MinY},
		upperLeft:  {X: ext.MinX, Y: ext.MaxY},
		upperRight: {X: ext.MaxX, Y: ext.MaxY},
	}
	// extremum returns a value that is larger the further m sits toward
	// the quadrant's corner along the diagonal
	extremum := func(q int, m model.CropMark) float64 {
		switch q {
		case lowerLeft:
			return -(m.CropX + m.CropY)
		case lowerRight:
			return m.CropX - m.CropY
		case upperLeft:
			return m.CropY - m.CropX
		default:
			return m.CropX + m.CropY
		}
	}

	var best [4]*model.CropMark
	for i := range marks {
		m := &marks[i]
		q := lowerLeft
		if m.CropX >= cx {
			q |= 1
		}
		if m.CropY >= cy {
			q |= 2
		}

		cur := best[q]
		if cur == nil {
			best[q] = m
			continue
		}
		d, dc := m.Point().Distance(corners[q]), cur.Point().Distance(corners[q])
		if d < dc || (d == dc && extremum(q, *m) > extremum(q, *cur)) {
			best[q] = m
		}
	}

	var selected []model.CropMark
	for _, m := range best {
		if m != nil {
			selected = append(selected, *m)
		}
	}
	return selected
}
