package text

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pagecrop/graphicsstate"
	"github.com/tsawler/pagecrop/model"
)

// Default word break thresholds, as fractions of the font size
const (
	DefaultGapFactor      = 0.25
	DefaultBaselineFactor = 0.5
	DefaultBacktrackRatio = 0.5
)

// rotationTolerance is how far two glyph rotations may differ (radians)
// and still belong to one word
const rotationTolerance = 0.01

// Glyph is one shown character placed in page space
type Glyph struct {
	Text     string
	FontName string

	// Box is the glyph's ascent-to-descent box, bottom-left origin
	Box model.BBox

	// Origin is where the glyph starts on its baseline and End where the
	// next glyph would start
	Origin model.Point
	End    model.Point

	// FontSize is the em size in points after all transforms
	FontSize float64

	// Rotation of the baseline in radians, counter-clockwise
	Rotation float64
}

// GlyphFromOp places a walker glyph op on the page
func GlyphFromOp(op *graphicsstate.GlyphOp) Glyph {
	trm := op.Trm
	box := model.BBoxFromPoints(
		trm.Transform(model.Point{X: 0, Y: -op.Descent}),
		trm.Transform(model.Point{X: op.Advance, Y: -op.Descent}),
		trm.Transform(model.Point{X: op.Advance, Y: op.Ascent}),
		trm.Transform(model.Point{X: 0, Y: op.Ascent}),
	)
	return Glyph{
		Text:     op.Text,
		FontName: op.FontName,
		Box:      box,
		Origin:   trm.Transform(model.Point{}),
		End:      trm.Transform(model.Point{X: op.Advance}),
		FontSize: math.Hypot(trm[2], trm[3]),
		Rotation: math.Atan2(trm[1], trm[0]),
	}
}

// IsSpace reports whether the glyph shows only whitespace
func (g Glyph) IsSpace() bool {
	return strings.TrimSpace(g.Text) == ""
}

// Word is a run of glyphs on one baseline
type Word struct {
	Text     string
	FontName string

	// Box is the union of the glyph boxes, bottom-left origin
	Box model.BBox

	// Rotation is the baseline rotation in degrees
	Rotation float64

	// SpaceAfter is set when a whitespace glyph ended the word
	SpaceAfter bool
}

// Options controls word assembly
type Options struct {
	// GapFactor is the largest baseline gap inside a word, as a fraction
	// of the font size
	GapFactor float64
	// BaselineFactor is the largest baseline shift inside a word
	BaselineFactor float64
	// BacktrackRatio is how far a glyph may start before the previous
	// glyph's end
	BacktrackRatio float64
}

// DefaultOptions returns the standard word break thresholds
func DefaultOptions() Options {
	return Options{
		GapFactor:      DefaultGapFactor,
		BaselineFactor: DefaultBaselineFactor,
		BacktrackRatio: DefaultBacktrackRatio,
	}
}

// AssembleWords joins glyphs in drawing order into words. Word text is
// NFKC-normalised, so ligature glyphs become their letters.
func AssembleWords(glyphs []Glyph, opts Options) []Word {
	var words []Word
	var cur []Glyph

	flush := func(spaceAfter bool) {
		if len(cur) == 0 {
			if spaceAfter && len(words) > 0 {
				words[len(words)-1].SpaceAfter = true
			}
			return
		}
		words = append(words, buildWord(cur, spaceAfter))
		cur = nil
	}

	for _, g := range glyphs {
		if g.IsSpace() {
			flush(true)
			continue
		}
		if len(cur) > 0 && breaksBefore(cur[len(cur)-1], g, opts) {
			flush(false)
		}
		cur = append(cur, g)
	}
	flush(false)
	return words
}

// breaksBefore reports whether g starts a new word after prev
func breaksBefore(prev, g Glyph, opts Options) bool {
	if prev.FontName != g.FontName {
		return true
	}
	if math.Abs(prev.Rotation-g.Rotation) > rotationTolerance {
		return true
	}

	size := math.Max(prev.FontSize, g.FontSize)
	if size <= 0 {
		return true
	}

	// distance from prev's end to g's origin, along and across the baseline
	cos, sin := math.Cos(prev.Rotation), math.Sin(prev.Rotation)
	dx := g.Origin.X - prev.End.X
	dy := g.Origin.Y - prev.End.Y
	along := dx*cos + dy*sin
	across := -dx*sin + dy*cos

	switch {
	case math.Abs(across) > opts.BaselineFactor*size:
		return true
	case along > opts.GapFactor*size:
		return true
	case along < -opts.BacktrackRatio*size:
		return true
	}
	return false
}

func buildWord(glyphs []Glyph, spaceAfter bool) Word {
	var sb strings.Builder
	box := glyphs[0].Box
	for i, g := range glyphs {
		sb.WriteString(g.Text)
		if i > 0 {
			box = box.Union(g.Box)
		}
	}
	return Word{
		Text:       norm.NFKC.String(sb.String()),
		FontName:   glyphs[0].FontName,
		Box:        box,
		Rotation:   glyphs[0].Rotation * 180 / math.Pi,
		SpaceAfter: spaceAfter,
	}
}
