// Package coords converts between PDF page space and raster pixels.
//
// Page space has its origin at the bottom-left and measures in points
// (1/72 inch). Raster space has its origin at the top-left and measures in
// pixels at a chosen DPI. A [Raster] fixes the content box and DPI once so
// every element of a page is mapped the same way.
package coords

import (
	"image"
	"math"

	"github.com/tsawler/pagecrop/model"
)

// PointsPerInch is the size of an inch in PDF points
const PointsPerInch = 72.0

// DefaultTextAllowance is how far below its box a text element may reach
// and still be kept, in points. Descenders hang below the baseline.
const DefaultTextAllowance = 10.0

// ToRasterY flips a bottom-left Y into a top-left Y inside a box of height
// h. Applying it twice returns y.
func ToRasterY(y, h float64) float64 {
	return h - y
}

// ToPixels converts points to pixels at dpi
func ToPixels(pt, dpi float64) float64 {
	return pt * dpi / PointsPerInch
}

// ToPoints converts pixels at dpi back to points
func ToPoints(px, dpi float64) float64 {
	return px * PointsPerInch / dpi
}

// PixelSize returns the raster size of a content box at dpi, rounding
// partial pixels up
func PixelSize(b model.Bounds, dpi float64) image.Point {
	return image.Pt(
		int(math.Ceil(ToPixels(b.Width(), dpi))),
		int(math.Ceil(ToPixels(b.Height(), dpi))),
	)
}

// Raster maps page space inside Content onto a raster at DPI
type Raster struct {
	Content model.Bounds
	DPI     float64
}

// NewRaster creates a mapping for the content box at dpi
func NewRaster(content model.Bounds, dpi float64) Raster {
	return Raster{Content: content, DPI: dpi}
}

// Scale returns pixels per point
func (r Raster) Scale() float64 {
	return r.DPI / PointsPerInch
}

// Size returns the raster dimensions
func (r Raster) Size() image.Point {
	return PixelSize(r.Content, r.DPI)
}

// Point maps a page-space point to pixel coordinates
func (r Raster) Point(p model.Point) (x, y float64) {
	s := r.Scale()
	return (p.X - r.Content.MinX) * s, ToRasterY(p.Y-r.Content.MinY, r.Content.Height()) * s
}

// Box maps a bottom-left page-space box to a top-left pixel box, returned
// as its top-left corner and size
func (r Raster) Box(b model.BBox) (x, y, w, h float64) {
	s := r.Scale()
	x, y = r.Point(model.Point{X: b.Left(), Y: b.Top()})
	return x, y, b.Width * s, b.Height * s
}

// PagePoint maps pixel coordinates back into page space
func (r Raster) PagePoint(x, y float64) model.Point {
	s := r.Scale()
	return model.Point{
		X: x/s + r.Content.MinX,
		Y: ToRasterY(y/s, r.Content.Height()) + r.Content.MinY,
	}
}

// ClipToBounds reports whether an element with page-space extent box
// should be drawn inside bounds. An element is kept when it overlaps the
// bounds; an axis with no extent, such as the width of a vertical line,
// only has to fall within them. Text may reach allowance points below the
// bounds and still count.
func ClipToBounds(kind model.ElementKind, box, bounds model.Bounds, allowance float64) bool {
	minY := box.MinY
	if kind == model.KindText {
		minY -= allowance
	}
	return overlaps(box.MinX, box.MaxX, bounds.MinX, bounds.MaxX) &&
		overlaps(minY, box.MaxY, bounds.MinY, bounds.MaxY)
}

func overlaps(lo, hi, boundLo, boundHi float64) bool {
	if lo == hi {
		return lo >= boundLo && lo <= boundHi
	}
	return hi > boundLo && lo < boundHi
}
