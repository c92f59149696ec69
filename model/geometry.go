package model

import "math"

// Point represents a 2D point in page space (points, bottom-left origin)
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Near reports whether both coordinates agree within tol
func (p Point) Near(other Point, tol float64) bool {
	return math.Abs(p.X-other.X) <= tol && math.Abs(p.Y-other.Y) <= tol
}

// BBox represents an axis-aligned box stored as origin plus size.
// Whether Y is the bottom or the top edge depends on the owning record;
// page geometry is bottom-left, TextElement boxes are top-left.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// BBoxFromPoints returns the smallest box containing every point.
// It returns the zero box for an empty slice.
func BBoxFromPoints(pts ...Point) BBox {
	if len(pts) == 0 {
		return BBox{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 { return b.X }

// Right returns the right edge X coordinate
func (b BBox) Right() float64 { return b.X + b.Width }

// Bottom returns the lower Y coordinate
func (b BBox) Bottom() float64 { return b.Y }

// Top returns the upper Y coordinate
func (b BBox) Top() float64 { return b.Y + b.Height }

// Center returns the center point
func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Bottom(), other.Bottom())
	right := math.Max(b.Right(), other.Right())
	top := math.Max(b.Top(), other.Top())
	return BBox{X: x, Y: y, Width: right - x, Height: top - y}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// FlipY mirrors the box vertically inside a page of the given height,
// converting between bottom-left and top-left conventions. It is its own
// inverse.
func (b BBox) FlipY(pageHeight float64) BBox {
	return BBox{X: b.X, Y: pageHeight - b.Y - b.Height, Width: b.Width, Height: b.Height}
}

// Bounds returns the box as min/max extents.
func (b BBox) Bounds() Bounds {
	return Bounds{MinX: b.Left(), MinY: b.Bottom(), MaxX: b.Right(), MaxY: b.Top()}
}

// Bounds is a min/max rectangle in page space. Content boxes chosen by the
// renderer and the calibrator are expressed this way.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX - MinX
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// IsDegenerate reports whether the bounds enclose no area.
func (b Bounds) IsDegenerate() bool {
	return !(b.MaxX > b.MinX) || !(b.MaxY > b.MinY)
}

// BBox converts the bounds into origin plus size form.
func (b Bounds) BBox() BBox {
	return BBox{X: b.MinX, Y: b.MinY, Width: b.Width(), Height: b.Height()}
}

// Clamp restricts b to lie within limit.
func (b Bounds) Clamp(limit Bounds) Bounds {
	return Bounds{
		MinX: math.Max(b.MinX, limit.MinX),
		MinY: math.Max(b.MinY, limit.MinY),
		MaxX: math.Min(b.MaxX, limit.MaxX),
		MaxY: math.Min(b.MaxY, limit.MaxY),
	}
}

// Matrix represents a 2D affine transformation [a b c d e f] using the PDF
// row-vector convention: x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × other, the transform that applies m first and then
// other. A "cm" operand concatenates as operand.Multiply(ctm).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in radians)
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// UnitSquareBox returns the page-space bounding box of the unit square
// under m. Images are painted into the unit square, so this is where an
// image lands on the page.
func (m Matrix) UnitSquareBox() BBox {
	return BBoxFromPoints(
		m.Transform(Point{0, 0}),
		m.Transform(Point{1, 0}),
		m.Transform(Point{0, 1}),
		m.Transform(Point{1, 1}),
	)
}
