package cropmarks

import (
	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// Default thresholds in points (angles in degrees)
const (
	DefaultGroupYTolerance     = 2.0
	DefaultConnectionTolerance = 2.0
	DefaultEdgeMargin          = 50.0
	DefaultCornerMargin        = 100.0

	DefaultPerpendicularTol = 5.0
	DefaultMaxMarkSize      = 50.0
	DefaultParallelEpsilon  = 1e-10
	DefaultMinCropSize      = 100.0
)

// Options holds the detection thresholds
type Options struct {
	// GroupYTolerance is how closely rectangle Ys must agree to be one
	// bleed row
	GroupYTolerance float64

	// ConnectionTolerance widens a bleed group's box when deciding which
	// lines belong to it
	ConnectionTolerance float64

	// EdgeMargin exempts rectangle rows this close to the top or bottom
	// page edge from bleed removal
	EdgeMargin float64

	// CornerMargin protects lines with an endpoint this close to a page
	// corner from bleed removal
	CornerMargin float64

	// PerpendicularTol is the allowed deviation from 90 degrees between the
	// two lines of a mark
	PerpendicularTol float64

	// MaxMarkSize is the largest side of the box enclosing both lines of a
	// mark
	MaxMarkSize float64

	// ParallelEpsilon is the smallest determinant for which two lines are
	// treated as crossing
	ParallelEpsilon float64

	// MinCropSize is the smallest accepted side of the crop box
	MinCropSize float64
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		GroupYTolerance:     DefaultGroupYTolerance,
		ConnectionTolerance: DefaultConnectionTolerance,
		EdgeMargin:          DefaultEdgeMargin,
		CornerMargin:        DefaultCornerMargin,
		PerpendicularTol:    DefaultPerpendicularTol,
		MaxMarkSize:         DefaultMaxMarkSize,
		ParallelEpsilon:     DefaultParallelEpsilon,
		MinCropSize:         DefaultMinCropSize,
	}
}

// Resolver finds the printed page inside a sheet carrying bleed and crop
// marks
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver with default thresholds
func NewResolver() *Resolver {
	return &Resolver{opts: DefaultOptions()}
}

// NewResolverWithOptions creates a resolver with custom thresholds
func NewResolverWithOptions(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Options returns the resolver's thresholds
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve removes bleed marks from pe, detects the four crop marks in the
// remaining lines and returns a copy of pe whose page box and interior box
// are both the crop box.
// The lines forming the accepted marks are dropped from the copy. pe is
// never modified.
func (r *Resolver) Resolve(pe *model.PageElements) (*model.PageElements, error) {
	out := r.RemoveBleedMarks(pe)

	marks, err := r.DetectCropMarks(out.Lines)
	if err != nil {
		return nil, err
	}
	box, err := r.CropBox(marks)
	if err != nil {
		return nil, err
	}

	used := make(map[int]bool, 2*len(marks))
	for _, m := range marks {
		used[m.Line1] = true
		used[m.Line2] = true
	}
	kept := make([]model.LineSegment, 0, len(out.Lines))
	for i, l := range out.Lines {
		if !used[i] {
			kept = append(kept, l)
		}
	}
	out.Lines = kept
	out.SetPageBounds(box)
	out.SetInteriorBounds(box)

	diag.Printf("page %d: crop box (%.2f, %.2f) %.2f x %.2f from %d mark lines",
		out.PageNumber, box.MinX, box.MinY, box.Width(), box.Height(), len(used))
	return out, nil
}

// CropBox returns the bounding box of the mark points. It fails when
// either side is below the minimum crop size.
func (r *Resolver) CropBox(marks []model.CropMark) (model.Bounds, error) {
	if len(marks) == 0 {
		return model.Bounds{}, model.NewError(model.CropMarksNotFound, "Could not find 4 crop marks. Found: 0")
	}
	box := model.Bounds{MinX: marks[0].CropX, MinY: marks[0].CropY, MaxX: marks[0].CropX, MaxY: marks[0].CropY}
	for _, m := range marks[1:] {
		if m.CropX < box.MinX {
			box.MinX = m.CropX
		}
		if m.CropX > box.MaxX {
			box.MaxX = m.CropX
		}
		if m.CropY < box.MinY {
			box.MinY = m.CropY
		}
		if m.CropY > box.MaxY {
			box.MaxY = m.CropY
		}
	}

	if box.Width() < r.opts.MinCropSize || box.Height() < r.opts.MinCropSize {
		return model.Bounds{}, model.NewError(model.CropBoxTooSmall,
			"Detected crop box is too small (%.2f x %.2f points). Crop marks may not be correctly detected.",
			box.Width(), box.Height())
	}
	return box, nil
}
