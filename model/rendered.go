package model

import "image"

// ElementKind tags the variant carried by a RenderedElement or RelativeElement
type ElementKind int

const (
	KindText ElementKind = iota
	KindImage
	KindRectangle
	KindLine
)

func (k ElementKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindRectangle:
		return "rectangle"
	case KindLine:
		return "line"
	default:
		return "unknown"
	}
}

// RenderedElement is an element as painted onto the output raster, in
// pixels with a top-left origin. X2/Y2 are only meaningful for lines.
type RenderedElement struct {
	Kind   ElementKind
	X, Y   int
	Width  int
	Height int
	X2, Y2 int

	Text     string
	FontName string
	FontSize float64
	IsBold   bool
	IsItalic bool

	Image         image.Image
	RotationAngle float64
}

// RelativeElement is a text or image element expressed as fractions of the
// content box: CenterX/CenterY and Width/Height are all in [0,1] for
// elements inside the box, with a top-left origin.
type RelativeElement struct {
	Kind    ElementKind
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64

	Text     string
	FontName string
	FontSize float64
	IsBold   bool
	IsItalic bool

	ImageIndex int
}
