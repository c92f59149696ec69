package model

import (
	"image"
	"math"
	"strings"
)

// Orientation is the reading direction of a text element
type Orientation int

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
	OrientationUnknown
)

func (o Orientation) String() string {
	switch o {
	case OrientationHorizontal:
		return "horizontal"
	case OrientationVertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// TextLevel records whether a text element is a single word or a grouped line
type TextLevel int

const (
	LevelWord TextLevel = iota
	LevelLine
)

func (l TextLevel) String() string {
	if l == LevelLine {
		return "line"
	}
	return "word"
}

// Rectangle is an axis-aligned box recovered from a closed subpath or
// synthesized from four lines. X and Y are the bottom-left corner in points.
type Rectangle struct {
	PageNumber  int
	X           float64
	Y           float64
	Width       float64
	Height      float64
	StrokeWidth float64
	Filled      bool
	Stroked     bool
}

// BBox returns the rectangle's box in page space
func (r Rectangle) BBox() BBox {
	return BBox{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Area returns width times height
func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// LineSegment is a straight stroked segment in page space.
// IsHorizontal and IsVertical are never both true.
type LineSegment struct {
	PageNumber   int
	X1, Y1       float64
	X2, Y2       float64
	StrokeWidth  float64
	Length       float64
	IsHorizontal bool
	IsVertical   bool
}

// NewLineSegment builds a segment and classifies it against the axes.
// A segment whose angle is within axisTolDeg of the X axis is horizontal,
// within axisTolDeg of the Y axis is vertical, otherwise neither.
func NewLineSegment(page int, p1, p2 Point, strokeWidth, axisTolDeg float64) LineSegment {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	angle := math.Atan2(math.Abs(dy), math.Abs(dx)) * 180 / math.Pi
	l := LineSegment{
		PageNumber:  page,
		X1:          p1.X,
		Y1:          p1.Y,
		X2:          p2.X,
		Y2:          p2.Y,
		StrokeWidth: strokeWidth,
		Length:      math.Hypot(dx, dy),
	}
	if angle <= axisTolDeg {
		l.IsHorizontal = true
	} else if angle >= 90-axisTolDeg {
		l.IsVertical = true
	}
	return l
}

// MidX returns the X midpoint
func (l LineSegment) MidX() float64 { return (l.X1 + l.X2) / 2 }

// MidY returns the Y midpoint
func (l LineSegment) MidY() float64 { return (l.Y1 + l.Y2) / 2 }

// MinX returns the smaller X coordinate
func (l LineSegment) MinX() float64 { return math.Min(l.X1, l.X2) }

// MaxX returns the larger X coordinate
func (l LineSegment) MaxX() float64 { return math.Max(l.X1, l.X2) }

// MinY returns the smaller Y coordinate
func (l LineSegment) MinY() float64 { return math.Min(l.Y1, l.Y2) }

// MaxY returns the larger Y coordinate
func (l LineSegment) MaxY() float64 { return math.Max(l.Y1, l.Y2) }

// Bounds returns the extents of the segment
func (l LineSegment) Bounds() Bounds {
	return Bounds{MinX: l.MinX(), MinY: l.MinY(), MaxX: l.MaxX(), MaxY: l.MaxY()}
}

// TextElement is a recognized word or line. BBox uses a top-left origin
// (Y measured down from the top of the page); use PageBox to get the
// bottom-left page-space equivalent.
type TextElement struct {
	Text        string
	BBox        BBox
	FontName    string
	FontSize    float64
	IsBold      bool
	IsItalic    bool
	Orientation Orientation
	Confidence  float64
	Level       TextLevel
}

// PageBox converts the element's top-left box into bottom-left page space.
func (t TextElement) PageBox(pageHeight float64) BBox {
	return t.BBox.FlipY(pageHeight)
}

// StyleFromFontName infers bold and italic flags from a font name such as
// "ABCDEF+Helvetica-BoldOblique".
func StyleFromFontName(name string) (bold, italic bool) {
	lower := strings.ToLower(name)
	bold = strings.Contains(lower, "bold")
	italic = strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
	return bold, italic
}

// SourceRaw marks an image decoded from an image XObject
const SourceRaw = "raw"

// EmbeddedImage is an image XObject placed on the page. X and Y are the
// bottom-left corner of its axis-aligned placement box in points.
type EmbeddedImage struct {
	Pixels        image.Image
	PageNumber    int
	ImageIndex    int
	Width         int
	Height        int
	X             float64
	Y             float64
	DisplayWidth  float64
	DisplayHeight float64
	RotationAngle float64
	SourceType    string
}

// BBox returns the placement box in page space
func (img EmbeddedImage) BBox() BBox {
	return BBox{X: img.X, Y: img.Y, Width: img.DisplayWidth, Height: img.DisplayHeight}
}

// CropMark is a printer corner mark: two short near-perpendicular lines and
// the point where their extensions meet.
type CropMark struct {
	Line1, Line2 int
	CropX, CropY float64
}

// Point returns the corner point of the mark
func (c CropMark) Point() Point {
	return Point{X: c.CropX, Y: c.CropY}
}

// PageElements is everything extracted from one page. The page box starts as
// the PDF crop box and is replaced by the crop-mark box once resolved.
type PageElements struct {
	Texts      []TextElement
	Images     []EmbeddedImage
	Rectangles []Rectangle
	Lines      []LineSegment
	FullText   string

	PageCount  int
	PageNumber int

	// Page box, bottom-left origin
	PageX      float64
	PageY      float64
	PageWidth  float64
	PageHeight float64

	// MediaHeight is the height used to convert text boxes between
	// top-left and bottom-left coordinates. It never changes after
	// extraction.
	MediaHeight float64

	// Interior content box derived from line geometry
	LinesBBoxX      float64
	LinesBBoxY      float64
	LinesBBoxWidth  float64
	LinesBBoxHeight float64
}

// PageBounds returns the current page box
func (p *PageElements) PageBounds() Bounds {
	return Bounds{MinX: p.PageX, MinY: p.PageY, MaxX: p.PageX + p.PageWidth, MaxY: p.PageY + p.PageHeight}
}

// SetPageBounds replaces the page box
func (p *PageElements) SetPageBounds(b Bounds) {
	p.PageX, p.PageY = b.MinX, b.MinY
	p.PageWidth, p.PageHeight = b.Width(), b.Height()
}

// InteriorBounds returns the interior box and whether it is usable.
func (p *PageElements) InteriorBounds() (Bounds, bool) {
	if p.LinesBBoxWidth <= 0 || p.LinesBBoxHeight <= 0 {
		return Bounds{}, false
	}
	return Bounds{
		MinX: p.LinesBBoxX,
		MinY: p.LinesBBoxY,
		MaxX: p.LinesBBoxX + p.LinesBBoxWidth,
		MaxY: p.LinesBBoxY + p.LinesBBoxHeight,
	}, true
}

// SetInteriorBounds records the interior box
func (p *PageElements) SetInteriorBounds(b Bounds) {
	p.LinesBBoxX, p.LinesBBoxY = b.MinX, b.MinY
	p.LinesBBoxWidth, p.LinesBBoxHeight = b.Width(), b.Height()
}

// TextPageBox returns a text element's box in bottom-left page space.
func (p *PageElements) TextPageBox(t TextElement) BBox {
	return t.PageBox(p.MediaHeight)
}

// Counts summarises how many of each element the page holds.
type Counts struct {
	Texts, Images, Rectangles, Lines int
}

// Counts returns the number of each element type
func (p *PageElements) Counts() Counts {
	return Counts{
		Texts:      len(p.Texts),
		Images:     len(p.Images),
		Rectangles: len(p.Rectangles),
		Lines:      len(p.Lines),
	}
}

// Clone returns a copy whose slices can be modified independently.
func (p *PageElements) Clone() *PageElements {
	c := *p
	c.Texts = append([]TextElement(nil), p.Texts...)
	c.Images = append([]EmbeddedImage(nil), p.Images...)
	c.Rectangles = append([]Rectangle(nil), p.Rectangles...)
	c.Lines = append([]LineSegment(nil), p.Lines...)
	return &c
}
