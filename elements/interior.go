package elements

import (
	"math"
	"sort"

	"github.com/tsawler/pagecrop/model"
)

// InteriorBox returns the content box framed by the page's lines. Corner
// marks drawn as short crossing lines give the most precise box; without
// them the box spans the outermost horizontal and vertical line midpoints.
func (a *Aggregator) InteriorBox(lines []model.LineSegment) (model.Bounds, bool) {
	if box, ok := a.CornerBox(lines); ok {
		return box, true
	}
	return MidpointBox(lines)
}

// MidpointBox spans the smallest and largest vertical line X midpoints and
// horizontal line Y midpoints. It needs at least one line of each kind.
func MidpointBox(lines []model.LineSegment) (model.Bounds, bool) {
	var ys, xs []float64
	for _, l := range lines {
		switch {
		case l.IsHorizontal:
			ys = append(ys, l.MidY())
		case l.IsVertical:
			xs = append(xs, l.MidX())
		}
	}
	if len(xs) == 0 || len(ys) == 0 {
		return model.Bounds{}, false
	}
	sort.Float64s(xs)
	sort.Float64s(ys)

	b := model.Bounds{MinX: xs[0], MinY: ys[0], MaxX: xs[len(xs)-1], MaxY: ys[len(ys)-1]}
	if b.IsDegenerate() {
		return model.Bounds{}, false
	}
	return b, true
}

// CornerBox finds where short horizontal and vertical lines cross,
// merges nearby crossings, and takes the two X and two Y values shared by
// the most crossings as the box.
func (a *Aggregator) CornerBox(lines []model.LineSegment) (model.Bounds, bool) {
	corners := a.clusterCorners(a.crossings(lines))
	if len(corners) < 4 {
		return model.Bounds{}, false
	}

	xs := a.popular(corners, func(p model.Point) float64 { return p.X })
	ys := a.popular(corners, func(p model.Point) float64 { return p.Y })
	if len(xs) < 2 || len(ys) < 2 {
		return model.Bounds{}, false
	}

	b := model.Bounds{
		MinX: math.Min(xs[0], xs[1]),
		MinY: math.Min(ys[0], ys[1]),
		MaxX: math.Max(xs[0], xs[1]),
		MaxY: math.Max(ys[0], ys[1]),
	}
	if b.IsDegenerate() {
		return model.Bounds{}, false
	}
	return b, true
}

// crossings returns the meeting point of every short horizontal and
// vertical line pair that touch within the intersection tolerance
func (a *Aggregator) crossings(lines []model.LineSegment) []model.Point {
	var hs, vs []model.LineSegment
	for _, l := range lines {
		if l.Length < a.config.CornerMinLength || l.Length > a.config.CornerMaxLength {
			continue
		}
		switch {
		case l.IsHorizontal:
			hs = append(hs, l)
		case l.IsVertical:
			vs = append(vs, l)
		}
	}

	tol := a.config.IntersectionTol
	var pts []model.Point
	for _, h := range hs {
		y := h.MidY()
		for _, v := range vs {
			x := v.MidX()
			if x >= h.MinX()-tol && x <= h.MaxX()+tol &&
				y >= v.MinY()-tol && y <= v.MaxY()+tol {
				pts = append(pts, model.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// clusterCorners merges each point into the first earlier cluster closer
// than the cluster tolerance, moving that cluster to the pair's average
func (a *Aggregator) clusterCorners(pts []model.Point) []model.Point {
	var clusters []model.Point
	for _, p := range pts {
		merged := false
		for i := range clusters {
			if p.Distance(clusters[i]) < a.config.ClusterTol {
				clusters[i] = model.Point{X: (clusters[i].X + p.X) / 2, Y: (clusters[i].Y + p.Y) / 2}
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, p)
		}
	}
	return clusters
}

// popular buckets one coordinate of pts within the coordinate tolerance
// and returns the bucket values, most populated first. Ties keep the
// smaller value first.
func (a *Aggregator) popular(pts []model.Point, coord func(model.Point) float64) []float64 {
	type bucket struct {
		value float64
		count int
	}
	var buckets []bucket
	for _, p := range pts {
		v := coord(p)
		found := false
		for i := range buckets {
			if math.Abs(v-buckets[i].value) < a.config.CoordTolerance {
				buckets[i].count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, bucket{value: v, count: 1})
		}
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].value < buckets[j].value
	})
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.value
	}
	return values
}
