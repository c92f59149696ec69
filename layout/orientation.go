package layout

import (
	"math"

	"github.com/tsawler/pagecrop/model"
)

// Default thresholds in points
const (
	DefaultMinTolerance      = 5.0
	DefaultNeighbourGapRatio = 2.0
	DefaultMinAdjacentGap    = 10.0
	DefaultHorizontalGap     = 3.0
	DefaultVerticalGap       = 2.0
)

// Config holds the thresholds for both layout passes
type Config struct {
	// MinTolerance is the smallest alignment tolerance ever used
	MinTolerance float64

	// NeighbourGapRatio times the average width of two words is the gap
	// below which they count as horizontal neighbours
	NeighbourGapRatio float64

	// MinAdjacentGap is the smallest vertical gap that still counts as
	// adjacent to a vertical word
	MinAdjacentGap float64

	// HorizontalGap and VerticalGap bound the gap between words of one
	// line, as multiples of the line's width or height
	HorizontalGap float64
	VerticalGap   float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinTolerance:      DefaultMinTolerance,
		NeighbourGapRatio: DefaultNeighbourGapRatio,
		MinAdjacentGap:    DefaultMinAdjacentGap,
		HorizontalGap:     DefaultHorizontalGap,
		VerticalGap:       DefaultVerticalGap,
	}
}

// Reclassify returns a copy of words where each horizontal word that has
// no horizontal neighbour on its line, and is centred on and stacked
// against a vertical word, is made vertical. Decisions use the original
// orientations, so the result does not depend on word order.
func Reclassify(words []model.TextElement, cfg Config) []model.TextElement {
	out := make([]model.TextElement, len(words))
	copy(out, words)

	for i, w := range words {
		if w.Orientation != model.OrientationHorizontal {
			continue
		}
		if hasHorizontalNeighbour(words, i, cfg) {
			continue
		}
		if stacksOnVertical(words, i, cfg) {
			out[i].Orientation = model.OrientationVertical
		}
	}
	return out
}

func hasHorizontalNeighbour(words []model.TextElement, i int, cfg Config) bool {
	a := words[i].BBox
	for k, other := range words {
		if k == i || other.Orientation != model.OrientationHorizontal {
			continue
		}
		b := other.BBox

		yTol := math.Max(cfg.MinTolerance, math.Max(a.Height, b.Height)/2)
		if math.Abs(a.Center().Y-b.Center().Y) > yTol {
			continue
		}

		avgWidth := (a.Width + b.Width) / 2
		if gap(a.Left(), a.Right(), b.Left(), b.Right()) < avgWidth*cfg.NeighbourGapRatio {
			return true
		}
	}
	return false
}

func stacksOnVertical(words []model.TextElement, i int, cfg Config) bool {
	h := words[i].BBox
	for j, other := range words {
		if j == i || other.Orientation != model.OrientationVertical {
			continue
		}
		v := other.BBox

		xTol := math.Max(cfg.MinTolerance, math.Max(h.Width, v.Width)/2)
		vTol := math.Max(cfg.MinAdjacentGap, v.Height)
		if math.Abs(h.Center().X-v.Center().X) <= xTol &&
			gap(h.Y, h.Y+h.Height, v.Y, v.Y+v.Height) <= vTol {
			return true
		}
	}
	return false
}

// gap returns the distance between two intervals, 0 when they overlap
func gap(aMin, aMax, bMin, bMax float64) float64 {
	switch {
	case aMin > bMax:
		return aMin - bMax
	case bMin > aMax:
		return bMin - aMax
	}
	return 0
}
