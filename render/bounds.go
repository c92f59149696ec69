package render

import (
	"fmt"
	"strings"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// BoundsMode selects how the content box of a page is chosen
type BoundsMode int

const (
	// ModeCropMarks uses the interior box found from crop marks, falling
	// back to ModeComputed when there is none
	ModeCropMarks BoundsMode = iota

	// ModeLargestRectangle uses the largest rectangle, or the largest
	// image when the page has no rectangles
	ModeLargestRectangle

	// ModeComputed uses the union of the elements lying inside the page
	// box
	ModeComputed
)

func (m BoundsMode) String() string {
	switch m {
	case ModeCropMarks:
		return "cropmarks"
	case ModeLargestRectangle:
		return "largest-rectangle"
	case ModeComputed:
		return "computed"
	default:
		return fmt.Sprintf("BoundsMode(%d)", int(m))
	}
}

// ParseBoundsMode parses the names printed by BoundsMode.String, plus a few
// spellings people tend to type
func ParseBoundsMode(s string) (BoundsMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cropmarks", "crop-marks", "crop_marks", "crop", "interior":
		return ModeCropMarks, nil
	case "largest-rectangle", "largest_rectangle", "largest", "rectangle", "rect":
		return ModeLargestRectangle, nil
	case "computed", "union", "elements":
		return ModeComputed, nil
	default:
		return 0, fmt.Errorf("unknown bounds mode %q", s)
	}
}

// ResolveBounds returns the content box of pe for mode, clamped to the page
// box. It fails with InvalidBounds when the result encloses no area.
func ResolveBounds(pe *model.PageElements, mode BoundsMode) (model.Bounds, error) {
	var b model.Bounds
	switch mode {
	case ModeLargestRectangle:
		lb, err := largestBounds(pe)
		if err != nil {
			return model.Bounds{}, err
		}
		b = lb
	case ModeCropMarks:
		if ib, ok := pe.InteriorBounds(); ok {
			b = ib
		} else {
			diag.Printf("render: page %d has no interior box, computing bounds from elements", pe.PageNumber)
			b = computedBounds(pe)
		}
	case ModeComputed:
		b = computedBounds(pe)
	default:
		return model.Bounds{}, model.NewError(model.InvalidBounds, "Unknown bounds mode %d", int(mode))
	}

	b = b.Clamp(pe.PageBounds())
	if b.IsDegenerate() {
		return model.Bounds{}, model.NewError(model.InvalidBounds, "Invalid bounding box dimensions")
	}
	return b, nil
}

// largestBounds returns the box of the largest rectangle, or of the largest
// image by display area when there are no rectangles
func largestBounds(pe *model.PageElements) (model.Bounds, error) {
	best := -1
	var bestArea float64
	for i, r := range pe.Rectangles {
		if a := r.Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best >= 0 {
		return pe.Rectangles[best].BBox().Bounds(), nil
	}

	if len(pe.Rectangles) == 0 && len(pe.Images) == 0 {
		return model.Bounds{}, model.NewError(model.InvalidBounds,
			"No rectangles or images found for %s mode", ModeLargestRectangle)
	}

	best, bestArea = -1, 0
	for i, img := range pe.Images {
		if a := img.BBox().Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return model.Bounds{}, model.NewError(model.InvalidBounds, "Could not find valid rectangle or image")
	}
	diag.Printf("render: page %d has no rectangles, using image %d", pe.PageNumber, best)
	return pe.Images[best].BBox().Bounds(), nil
}

// computedBounds returns the union of every element that lies wholly inside
// the page box, or the page box itself when none do
func computedBounds(pe *model.PageElements) model.Bounds {
	page := pe.PageBounds()
	var (
		union model.Bounds
		found bool
	)
	add := func(b model.Bounds) {
		if !inside(b, page) {
			return
		}
		if !found {
			union, found = b, true
			return
		}
		union = union.BBox().Union(b.BBox()).Bounds()
	}

	for _, t := range pe.Texts {
		add(pe.TextPageBox(t).Bounds())
	}
	for _, img := range pe.Images {
		add(img.BBox().Bounds())
	}
	for _, r := range pe.Rectangles {
		add(r.BBox().Bounds())
	}
	for _, l := range pe.Lines {
		add(l.Bounds())
	}

	if !found {
		return page
	}
	return union
}

func inside(b, limit model.Bounds) bool {
	return b.MinX >= limit.MinX && b.MinY >= limit.MinY && b.MaxX <= limit.MaxX && b.MaxY <= limit.MaxY
}
