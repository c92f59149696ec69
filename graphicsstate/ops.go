package graphicsstate

import "github.com/tsawler/pagecrop/model"

// OpKind tags the variant held by an Op
type OpKind int

const (
	// OpPaint is a path painting operation (S, f, B, ...)
	OpPaint OpKind = iota
	// OpImage is an image XObject drawn with Do
	OpImage
	// OpGlyph is a single shown glyph
	OpGlyph
)

func (k OpKind) String() string {
	switch k {
	case OpPaint:
		return "paint"
	case OpImage:
		return "image"
	case OpGlyph:
		return "glyph"
	default:
		return "unknown"
	}
}

// Op is one drawing operation produced by walking a page's content stream.
// Exactly one of Paint, Image or Glyph is set, matching Kind.
type Op struct {
	Kind  OpKind
	Paint *PaintOp
	Image *ImageOp
	Glyph *GlyphOp
}

// PaintOp is a path that was stroked and/or filled. Subpaths are in user
// space; CTM maps them to page space.
type PaintOp struct {
	Subpaths  []Subpath
	CTM       model.Matrix
	LineWidth float64
	Stroke    bool
	Fill      bool
}

// ImageOp is an image XObject placed through the CTM onto the unit square.
type ImageOp struct {
	Name   string
	CTM    model.Matrix
	Width  int
	Height int
	// ColorSpace and BitsPerComponent are informational
	ColorSpace       string
	BitsPerComponent int
	Filter           string
}

// GlyphOp is a shown glyph. Trm maps glyph space (one unit per em, origin
// at the glyph origin) to page space.
type GlyphOp struct {
	Text     string
	FontName string
	Trm      model.Matrix
	// Advance is the glyph width in ems
	Advance float64
	// Ascent and Descent are in ems, descent positive downwards
	Ascent  float64
	Descent float64
}

// NewPaintOp wraps a PaintOp
func NewPaintOp(p PaintOp) Op { return Op{Kind: OpPaint, Paint: &p} }

// NewImageOp wraps an ImageOp
func NewImageOp(i ImageOp) Op { return Op{Kind: OpImage, Image: &i} }

// NewGlyphOp wraps a GlyphOp
func NewGlyphOp(g GlyphOp) Op { return Op{Kind: OpGlyph, Glyph: &g} }
