package text

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pagecrop/model"
)

// Aspect ratios (height over width) above which a word counts as vertical
const (
	VerticalAspect   = 1.5
	SingleCharAspect = 3.0
)

// PDFConfidence is the confidence given to text read from the content stream
const PDFConfidence = 80.0

// Orientation classifies a word by its quarter-turn rotation and its shape
func Orientation(w Word) model.Orientation {
	if w.Box.IsEmpty() {
		return model.OrientationUnknown
	}

	switch quarterTurn(w.Rotation) {
	case 90, 270:
		return model.OrientationVertical
	}

	limit := VerticalAspect
	if utf8.RuneCountInString(w.Text) <= 1 {
		limit = SingleCharAspect
	}
	if w.Box.Height/w.Box.Width > limit {
		return model.OrientationVertical
	}
	return model.OrientationHorizontal
}

// quarterTurn rounds a rotation in degrees to the nearest of 0, 90, 180, 270
func quarterTurn(deg float64) int {
	q := int(math.Round(deg/90)) % 4
	if q < 0 {
		q += 4
	}
	return q * 90
}

// ToElements converts words into word-level text elements. Boxes are
// flipped to a top-left origin against mediaHeight.
func ToElements(words []Word, mediaHeight float64) []model.TextElement {
	out := make([]model.TextElement, 0, len(words))
	for _, w := range words {
		bold, italic := model.StyleFromFontName(w.FontName)
		out = append(out, model.TextElement{
			Text:        w.Text,
			BBox:        w.Box.FlipY(mediaHeight),
			FontName:    w.FontName,
			FontSize:    w.Box.Height,
			IsBold:      bold,
			IsItalic:    italic,
			Orientation: Orientation(w),
			Confidence:  PDFConfidence,
			Level:       model.LevelWord,
		})
	}
	return out
}

// FullText joins words in drawing order, separating those that were
// followed by whitespace.
func FullText(words []Word) string {
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(w.Text)
		if w.SpaceAfter {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
