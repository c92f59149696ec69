package relmap

import (
	"fmt"
	"image"
	"math"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// Crop is the part of a target image the content box occupies, in pixels
type Crop struct {
	X, Y          float64
	Width, Height float64
}

// Rect rounds c, clamps it to an image of the given size and reports
// whether both sides are still longer than minSide
func (c Crop) Rect(size image.Point, minSide int) (image.Rectangle, bool) {
	x := max(0, int(math.Round(c.X)))
	y := max(0, int(math.Round(c.Y)))
	w := min(int(math.Round(c.Width)), size.X-x)
	h := min(int(math.Round(c.Height)), size.Y-y)
	if w <= minSide || h <= minSide {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// Solve fits pixel = rel*size + offset on each axis by least squares.
// It needs at least two matches that do not all share one relative
// coordinate, and rejects a crop with a side under MinCropSide.
func (c *Calibrator) Solve(matches []Match) (Crop, error) {
	if len(matches) < 2 {
		return Crop{}, fmt.Errorf("least squares needs 2 matches, got %d", len(matches))
	}
	rx := make([]float64, len(matches))
	px := make([]float64, len(matches))
	ry := make([]float64, len(matches))
	py := make([]float64, len(matches))
	for i, m := range matches {
		rx[i], px[i] = m.RelX, m.PixelX
		ry[i], py[i] = m.RelY, m.PixelY
	}

	width, x, ok := fitLine(rx, px, c.opts.SingularEpsilon)
	if !ok {
		return Crop{}, model.NewError(model.SingularCalibrationSystem,
			"X system is singular: all %d matches share one relative X", len(matches))
	}
	height, y, ok := fitLine(ry, py, c.opts.SingularEpsilon)
	if !ok {
		return Crop{}, model.NewError(model.SingularCalibrationSystem,
			"Y system is singular: all %d matches share one relative Y", len(matches))
	}

	crop := Crop{X: x, Y: y, Width: width, Height: height}
	if width < float64(c.opts.MinCropSide) || height < float64(c.opts.MinCropSide) {
		return Crop{}, fmt.Errorf("solved crop %.1fx%.1f is under %dpx", width, height, c.opts.MinCropSide)
	}

	for _, m := range matches {
		dx := m.RelX*width + x - m.PixelX
		dy := m.RelY*height + y - m.PixelY
		diag.Printf("relmap: match %d residual (%.2f, %.2f)", m.Element, dx, dy)
	}
	diag.Printf("relmap: solved crop (%.1f, %.1f) %.1fx%.1f from %d matches", x, y, width, height, len(matches))
	return crop, nil
}

// fitLine solves the 2x2 normal equations of y = a*x + b
func fitLine(xs, ys []float64, eps float64) (a, b float64, ok bool) {
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	n := float64(len(xs))
	det := sxx*n - sx*sx
	if math.Abs(det) < eps {
		return 0, 0, false
	}
	a = (sxy*n - sx*sy) / det
	b = (sxx*sy - sx*sxy) / det
	return a, b, true
}

// Sweep places a crop of the given aspect ratio through a single match.
// Widths from SweepFrom to SweepTo of the image width are tried. A
// candidate may start up to Overshoot of its own size before the left and
// top edges, and end up to Overshoot of the image size past the right and
// bottom edges. It scores its in-image area fraction times OverhangPenalty
// per overhanging side. The best strictly-greater score wins.
func (c *Calibrator) Sweep(m Match, aspect float64, size image.Point) (Crop, bool) {
	if aspect <= 0 || size.X <= 0 || size.Y <= 0 {
		return Crop{}, false
	}
	cols, rows := float64(size.X), float64(size.Y)
	maxX, maxY := cols*(1+c.opts.Overshoot), rows*(1+c.opts.Overshoot)

	var best Crop
	bestScore := 0.0
	found := false
	steps := int(math.Round((c.opts.SweepTo - c.opts.SweepFrom) / c.opts.SweepStep))
	for i := 0; i <= steps; i++ {
		frac := math.Min(c.opts.SweepFrom+float64(i)*c.opts.SweepStep, c.opts.SweepTo)
		w := cols * frac
		h := w / aspect
		if h > rows {
			continue
		}
		x := m.PixelX - m.RelX*w
		y := m.PixelY - m.RelY*h
		if x < -w*c.opts.Overshoot || y < -h*c.opts.Overshoot || x+w > maxX || y+h > maxY {
			continue
		}

		cw := math.Min(x+w, cols) - math.Max(x, 0)
		ch := math.Min(y+h, rows) - math.Max(y, 0)
		if cw <= 0 || ch <= 0 {
			continue
		}
		score := cw * ch / (cols * rows)
		for _, over := range []bool{x < 0, y < 0, x+w > cols, y+h > rows} {
			if over {
				score *= c.opts.OverhangPenalty
			}
		}
		if score > bestScore {
			best, bestScore, found = Crop{X: x, Y: y, Width: w, Height: h}, score, true
		}
	}
	if found {
		diag.Printf("relmap: sweep chose (%.1f, %.1f) %.1fx%.1f with score %.3f",
			best.X, best.Y, best.Width, best.Height, bestScore)
	}
	return best, found
}
