package ocr

import (
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// Graphic masking defaults, in pixels
const (
	DefaultMaskCell          = 5
	DefaultEdgeThreshold     = 64
	DefaultMinGraphicSide    = 50
	DefaultMinGraphicArea    = 2500
	DefaultMaxGraphicDivisor = 3
	DefaultGraphicPadding    = 5
	DefaultGraphicScore      = 5

	hueBins         = 18
	hueBinMinShare  = 50 // a bin counts above 1/50 of the pixels
	minFeatureSide  = 10
	squarishMin     = 0.5
	squarishMax     = 2.0
	complexSolidity = 0.7
	busyEdgeDensity = 0.15
	colorfulBins    = 3
	fillMin         = 0.2
	fillMax         = 0.8
)

// Features describes a candidate region of a page image
type Features struct {
	// Aspect is width over height
	Aspect float64

	// Solidity is the filled region area over its convex hull area
	Solidity float64

	// EdgeDensity is the share of edge pixels
	EdgeDensity float64

	// HueBins is how many of 18 hue bins hold more than 2% of the pixels.
	// Zero for gray images.
	HueBins int

	// FillRatio is the share of dark pixels after an Otsu threshold
	FillRatio float64
}

// GraphicScore rates how much a region looks like a logo or picture
// rather than text
func GraphicScore(f Features) int {
	squarish := f.Aspect >= squarishMin && f.Aspect <= squarishMax
	score := 0
	if squarish {
		score += 2
	}
	if f.Solidity < complexSolidity {
		score += 2
	}
	if f.EdgeDensity > busyEdgeDensity {
		score++
	}
	if f.HueBins >= colorfulBins {
		score += 3
	}
	if squarish && f.FillRatio > fillMin && f.FillRatio < fillMax {
		score += 2
	}
	return score
}

// IsGraphic reports whether f scores as a graphic
func IsGraphic(f Features) bool {
	return GraphicScore(f) >= DefaultGraphicScore
}

// MaskGraphics returns a copy of img with every region that scores as a
// graphic painted white
func MaskGraphics(img image.Image) *image.RGBA {
	out := toRGBA(img)
	for _, r := range GraphicRegions(out) {
		draw.Draw(out, r, image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	return out
}

// GraphicRegions finds the connected ink regions of img that score as
// graphics, padded and merged where they overlap. Rectangles are relative
// to img's origin.
func GraphicRegions(img image.Image) []image.Rectangle {
	rgba := toRGBA(img)
	gray := Grayscale(rgba)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	edges := edgeMap(gray, DefaultEdgeThreshold)
	colorful := !isGrayModel(img.ColorModel())

	var found []image.Rectangle
	for _, comp := range components(edges, w, h, DefaultMaskCell) {
		r := comp.bounds.Intersect(gray.Rect)
		if r.Dx() < DefaultMinGraphicSide || r.Dy() < DefaultMinGraphicSide ||
			r.Dx()*r.Dy() < DefaultMinGraphicArea {
			continue
		}
		if r.Dx() > w/DefaultMaxGraphicDivisor || r.Dy() > h/DefaultMaxGraphicDivisor {
			continue
		}
		if r.Dx() < minFeatureSide || r.Dy() < minFeatureSide {
			continue
		}

		f := Features{
			Aspect:      float64(r.Dx()) / float64(r.Dy()),
			Solidity:    comp.solidity,
			EdgeDensity: edgeDensity(edges, w, r),
			FillRatio:   fillRatio(gray, r),
		}
		if colorful {
			f.HueBins = hueBinCount(rgba, r)
		}
		if !IsGraphic(f) {
			continue
		}
		found = append(found, r.Inset(-DefaultGraphicPadding).Intersect(gray.Rect))
	}
	return mergeOverlapping(found)
}

func isGrayModel(m color.Model) bool {
	return m == color.GrayModel || m == color.Gray16Model
}

// edgeMap marks pixels whose central-difference gradient exceeds threshold
func edgeMap(g *image.Gray, threshold int) []bool {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	at := func(x, y int) int {
		return int(g.Pix[clamp(y, 0, h-1)*g.Stride+clamp(x, 0, w-1)])
	}
	edges := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y) - at(x-1, y)
			gy := at(x, y+1) - at(x, y-1)
			if abs(gx)+abs(gy) > threshold {
				edges[y*w+x] = true
			}
		}
	}
	return edges
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type component struct {
	bounds   image.Rectangle
	solidity float64
}

// components groups edge pixels on a coarse grid, dilated by one cell,
// into 8-connected regions
func components(edges []bool, w, h, cell int) []component {
	cols, rows := (w+cell-1)/cell, (h+cell-1)/cell
	ink := make([]bool, cols*rows)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges[y*w+x] {
				ink[(y/cell)*cols+x/cell] = true
			}
		}
	}

	grid := make([]bool, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !ink[r*cols+c] {
				continue
			}
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					rr, cc := r+dr, c+dc
					if rr >= 0 && rr < rows && cc >= 0 && cc < cols {
						grid[rr*cols+cc] = true
					}
				}
			}
		}
	}

	seen := make([]bool, cols*rows)
	var comps []component
	for start := range grid {
		if !grid[start] || seen[start] {
			continue
		}
		var cells []image.Point
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			r, c := i/cols, i%cols
			cells = append(cells, image.Pt(c, r))
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					rr, cc := r+dr, c+dc
					if rr < 0 || rr >= rows || cc < 0 || cc >= cols {
						continue
					}
					j := rr*cols + cc
					if grid[j] && !seen[j] {
						seen[j] = true
						queue = append(queue, j)
					}
				}
			}
		}

		box := cellBounds(cells)
		comps = append(comps, component{
			bounds:   image.Rect(box.Min.X*cell, box.Min.Y*cell, box.Max.X*cell, box.Max.Y*cell),
			solidity: solidity(cells, box),
		})
	}
	return comps
}

// cellBounds returns the half-open cell range covering cells
func cellBounds(cells []image.Point) image.Rectangle {
	b := image.Rect(cells[0].X, cells[0].Y, cells[0].X+1, cells[0].Y+1)
	for _, p := range cells[1:] {
		b = b.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return b
}

// solidity is the area enclosed by the component's outer boundary, holes
// included, over the area of the convex hull of its cells
func solidity(cells []image.Point, box image.Rectangle) float64 {
	bw, bh := box.Dx(), box.Dy()
	member := make([]bool, bw*bh)
	for _, p := range cells {
		member[(p.Y-box.Min.Y)*bw+p.X-box.Min.X] = true
	}

	// flood the outside from the box border; whatever is not reached is
	// enclosed
	outside := make([]bool, bw*bh)
	var stack []int
	push := func(x, y int) {
		i := y*bw + x
		if !member[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < bw; x++ {
		push(x, 0)
		push(x, bh-1)
	}
	for y := 0; y < bh; y++ {
		push(0, y)
		push(bw-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%bw, i/bw
		if x > 0 {
			push(x-1, y)
		}
		if x < bw-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < bh-1 {
			push(x, y+1)
		}
	}
	filled := 0
	for _, o := range outside {
		if !o {
			filled++
		}
	}

	corners := make([]image.Point, 0, 4*len(cells))
	for _, p := range cells {
		corners = append(corners, p, p.Add(image.Pt(1, 0)), p.Add(image.Pt(0, 1)), p.Add(image.Pt(1, 1)))
	}
	hull := hullArea(corners)
	if hull <= 0 {
		return 0
	}
	return math.Min(1, float64(filled)/hull)
}

// hullArea returns the area of the convex hull of pts
func hullArea(pts []image.Point) float64 {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	area := 0
	for i := range hull {
		j := (i + 1) % len(hull)
		area += hull[i].X*hull[j].Y - hull[j].X*hull[i].Y
	}
	return math.Abs(float64(area)) / 2
}

func edgeDensity(edges []bool, w int, r image.Rectangle) float64 {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges[y*w+x] {
				n++
			}
		}
	}
	return float64(n) / float64(r.Dx()*r.Dy())
}

// fillRatio returns the share of pixels in r at or below the Otsu
// threshold of r
func fillRatio(g *image.Gray, r image.Rectangle) float64 {
	var hist [256]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[g.Pix[y*g.Stride+x]]++
		}
	}
	t := otsu(hist)
	dark := 0
	for v := 0; v <= t; v++ {
		dark += hist[v]
	}
	return float64(dark) / float64(r.Dx()*r.Dy())
}

// otsu returns the threshold that maximizes between-class variance
func otsu(hist [256]int) int {
	total, sum := 0, 0.0
	for v, n := range hist {
		total += n
		sum += float64(v * n)
	}
	var sumB float64
	wB, best, bestVar := 0, 0, -1.0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	return best
}

// hueBinCount counts the hue bins holding more than 2% of r's pixels.
// Achromatic pixels fall in the first bin.
func hueBinCount(img *image.RGBA, r image.Rectangle) int {
	var bins [hueBins]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			bin := int(hue(c.R, c.G, c.B) / (360 / hueBins))
			if bin >= hueBins {
				bin = hueBins - 1
			}
			bins[bin]++
		}
	}
	floor := r.Dx() * r.Dy() / hueBinMinShare
	n := 0
	for _, count := range bins {
		if count > floor {
			n++
		}
	}
	return n
}

// hue returns the HSV hue of an RGB colour in degrees
func hue(r, g, b uint8) float64 {
	rf, gf, bf := float64(r), float64(g), float64(b)
	hi := math.Max(rf, math.Max(gf, bf))
	lo := math.Min(rf, math.Min(gf, bf))
	d := hi - lo
	if d == 0 {
		return 0
	}
	var h float64
	switch hi {
	case rf:
		h = math.Mod((gf-bf)/d, 6)
	case gf:
		h = (bf-rf)/d + 2
	default:
		h = (rf-gf)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// mergeOverlapping unions rectangles until none overlap
func mergeOverlapping(rects []image.Rectangle) []image.Rectangle {
	merged := make([]bool, len(rects))
	var out []image.Rectangle
	for i := range rects {
		if merged[i] {
			continue
		}
		cur := rects[i]
		for changed := true; changed; {
			changed = false
			for j := i + 1; j < len(rects); j++ {
				if merged[j] || !cur.Overlaps(rects[j]) {
					continue
				}
				cur = cur.Union(rects[j])
				merged[j] = true
				changed = true
			}
		}
		out = append(out, cur)
	}
	return out
}
