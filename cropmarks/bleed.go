package cropmarks

import (
	"math"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// BleedGroups returns the rows of rectangles that look like bleed marks:
// two or more rectangles whose Y agree within the group tolerance, away
// from the top and bottom page edges. A group's position is its first
// member's Y. Each group holds indices into rects.
func (r *Resolver) BleedGroups(rects []model.Rectangle, page model.Bounds) [][]int {
	var groups [][]int
	grouped := make([]bool, len(rects))

	for i := range rects {
		if grouped[i] {
			continue
		}
		group := []int{i}
		grouped[i] = true
		for j := i + 1; j < len(rects); j++ {
			if grouped[j] {
				continue
			}
			if math.Abs(rects[i].Y-rects[j].Y) < r.opts.GroupYTolerance {
				group = append(group, j)
				grouped[j] = true
			}
		}
		if len(group) < 2 {
			continue
		}

		y := rects[group[0]].Y
		if y-page.MinY < r.opts.EdgeMargin || page.MaxY-y < r.opts.EdgeMargin {
			continue
		}
		groups = append(groups, group)
	}
	return groups
}

func groupBox(rects []model.Rectangle, group []int) model.Bounds {
	first := rects[group[0]]
	box := model.Bounds{MinX: first.X, MinY: first.Y, MaxX: first.X + first.Width, MaxY: first.Y + first.Height}
	for _, idx := range group[1:] {
		rc := rects[idx]
		box.MinX = math.Min(box.MinX, rc.X)
		box.MinY = math.Min(box.MinY, rc.Y)
		box.MaxX = math.Max(box.MaxX, rc.X+rc.Width)
		box.MaxY = math.Max(box.MaxY, rc.Y+rc.Height)
	}
	return box
}

// RemoveBleedMarks returns a copy of pe without its bleed mark rows and
// the lines drawn through them. Lines reaching into a page corner are
// kept since crop marks live there.
func (r *Resolver) RemoveBleedMarks(pe *model.PageElements) *model.PageElements {
	out := pe.Clone()
	page := pe.PageBounds()

	groups := r.BleedGroups(out.Rectangles, page)
	if len(groups) == 0 {
		return out
	}

	dropRect := make(map[int]bool)
	dropLine := make(map[int]bool)
	tol := r.opts.ConnectionTolerance
	for _, group := range groups {
		for _, idx := range group {
			dropRect[idx] = true
		}
		box := groupBox(out.Rectangles, group)
		for i, l := range out.Lines {
			if l.MaxY() < box.MinY-tol || l.MinY() > box.MaxY+tol {
				continue
			}
			if l.MaxX() < box.MinX-tol || l.MinX() > box.MaxX+tol {
				continue
			}
			if r.nearCorner(l, page) {
				continue
			}
			dropLine[i] = true
		}
	}

	rects := make([]model.Rectangle, 0, len(out.Rectangles))
	for i, rc := range out.Rectangles {
		if !dropRect[i] {
			rects = append(rects, rc)
		}
	}
	lines := make([]model.LineSegment, 0, len(out.Lines))
	for i, l := range out.Lines {
		if !dropLine[i] {
			lines = append(lines, l)
		}
	}

	diag.Printf("page %d: removed %d bleed rectangles and %d lines in %d groups",
		pe.PageNumber, len(dropRect), len(dropLine), len(groups))
	out.Rectangles = rects
	out.Lines = lines
	return out
}

// nearCorner reports whether the extents of l reach into one of the
// corner-margin squares of the page
func (r *Resolver) nearCorner(l model.LineSegment, page model.Bounds) bool {
	m := r.opts.CornerMargin
	left := l.MinX()-page.MinX < m
	right := page.MaxX-l.MaxX() < m
	bottom := l.MinY()-page.MinY < m
	top := page.MaxY-l.MaxY() < m
	return (left || right) && (bottom || top)
}
