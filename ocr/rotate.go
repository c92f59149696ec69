package ocr

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotation is a quarter-turn applied to an image before recognition
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90CW
	Rotate180
	Rotate90CCW
)

func (r Rotation) String() string {
	switch r {
	case Rotate90CW:
		return "90cw"
	case Rotate180:
		return "180"
	case Rotate90CCW:
		return "90ccw"
	default:
		return "0"
	}
}

// Rotations lists every rotation in the order they are tried
var Rotations = []Rotation{Rotate0, Rotate90CW, Rotate180, Rotate90CCW}

// transform returns the source-to-destination matrix for r on an image of
// bounds b, along with the destination size
func (r Rotation) transform(b image.Rectangle) (f64.Aff3, image.Point) {
	w, h := float64(b.Dx()), float64(b.Dy())
	x0, y0 := float64(b.Min.X), float64(b.Min.Y)
	switch r {
	case Rotate90CW:
		// (x, y) -> (h - y, x)
		return f64.Aff3{0, -1, h + y0, 1, 0, -x0}, image.Pt(b.Dy(), b.Dx())
	case Rotate180:
		// (x, y) -> (w - x, h - y)
		return f64.Aff3{-1, 0, w + x0, 0, -1, h + y0}, image.Pt(b.Dx(), b.Dy())
	case Rotate90CCW:
		// (x, y) -> (y, w - x)
		return f64.Aff3{0, 1, -y0, -1, 0, w + x0}, image.Pt(b.Dy(), b.Dx())
	default:
		return f64.Aff3{1, 0, -x0, 0, 1, -y0}, image.Pt(b.Dx(), b.Dy())
	}
}

// Rotate returns img turned by r. The result starts at the origin.
func Rotate(img image.Image, r Rotation) *image.RGBA {
	s2d, size := r.transform(img.Bounds())
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.NearestNeighbor.Transform(dst, s2d, img, img.Bounds(), draw.Src, nil)
	return dst
}

// Unrotate maps a box found in an image turned by r back onto the
// original image of the given size
func (r Rotation) Unrotate(box image.Rectangle, size image.Point) image.Rectangle {
	w, h := size.X, size.Y
	switch r {
	case Rotate90CW:
		return image.Rect(box.Min.Y, h-box.Max.X, box.Max.Y, h-box.Min.X)
	case Rotate180:
		return image.Rect(w-box.Max.X, h-box.Max.Y, w-box.Min.X, h-box.Min.Y)
	case Rotate90CCW:
		return image.Rect(w-box.Max.Y, box.Min.X, w-box.Min.Y, box.Max.X)
	default:
		return box
	}
}

// toRGBA copies img into an RGBA image starting at the origin
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// crop copies the part of img inside r, surrounded by a white border
func crop(img image.Image, r image.Rectangle, border int) *image.RGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx()+2*border, r.Dy()+2*border))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(border, border, border+r.Dx(), border+r.Dy()), img, r.Min, draw.Src)
	return dst
}
