package layout

import (
	"math"

	"github.com/tsawler/pagecrop/model"
)

// LineDetector merges word-level text elements into line-level ones
type LineDetector struct {
	config Config
}

// NewLineDetector creates a detector with default thresholds
func NewLineDetector() *LineDetector {
	return &LineDetector{config: DefaultConfig()}
}

// NewLineDetectorWithConfig creates a detector with custom thresholds
func NewLineDetectorWithConfig(config Config) *LineDetector {
	return &LineDetector{config: config}
}

// Group merges words into lines. Each unused word, in order, starts a line
// and absorbs every later unused word of the same orientation that sits on
// it. The alignment tolerance is fixed by the starting word; the gap test
// runs against the line as it grows.
func (d *LineDetector) Group(words []model.TextElement) []model.TextElement {
	used := make([]bool, len(words))
	var lines []model.TextElement

	for i := range words {
		if used[i] {
			continue
		}
		used[i] = true
		line := words[i]
		line.Level = model.LevelLine

		vertical := line.Orientation == model.OrientationVertical
		tol := math.Max(d.config.MinTolerance, line.BBox.Height/2)
		if vertical {
			tol = math.Max(d.config.MinTolerance, line.BBox.Width/2)
		}

		for j := i + 1; j < len(words); j++ {
			if used[j] || words[j].Orientation != line.Orientation {
				continue
			}
			if !d.onLine(line.BBox, words[j].BBox, tol, vertical) {
				continue
			}
			used[j] = true
			line.BBox = line.BBox.Union(words[j].BBox)
			line.Text += " " + words[j].Text
			line.Confidence = math.Max(line.Confidence, words[j].Confidence)
		}
		lines = append(lines, line)
	}
	return lines
}

func (d *LineDetector) onLine(line, cand model.BBox, tol float64, vertical bool) bool {
	if vertical {
		xDiff := math.Abs(cand.X - line.X)
		g := math.Min(
			math.Abs(cand.Y-(line.Y+line.Height)),
			math.Abs(line.Y-(cand.Y+cand.Height)),
		)
		return xDiff <= tol && g < line.Height*d.config.VerticalGap
	}

	yDiff := math.Abs(cand.Center().Y - line.Center().Y)
	g := math.Min(
		math.Abs(cand.X-(line.X+line.Width)),
		math.Abs(line.X-(cand.X+cand.Width)),
	)
	return yDiff <= tol && g < line.Width*d.config.HorizontalGap
}
