package render

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type faceKey struct {
	mono, bold, italic bool
}

var (
	facesOnce sync.Once
	faces     map[faceKey]*truetype.Font
	facesErr  error
)

// loadFaces parses the embedded Go fonts once
func loadFaces() (map[faceKey]*truetype.Font, error) {
	facesOnce.Do(func() {
		ttfs := []struct {
			key faceKey
			ttf []byte
		}{
			{faceKey{}, goregular.TTF},
			{faceKey{bold: true}, gobold.TTF},
			{faceKey{italic: true}, goitalic.TTF},
			{faceKey{bold: true, italic: true}, gobolditalic.TTF},
			{faceKey{mono: true}, gomono.TTF},
			{faceKey{mono: true, bold: true}, gomonobold.TTF},
			{faceKey{mono: true, italic: true}, gomonoitalic.TTF},
			{faceKey{mono: true, bold: true, italic: true}, gomonobolditalic.TTF},
		}
		parsed := make(map[faceKey]*truetype.Font, len(ttfs))
		for _, t := range ttfs {
			f, err := truetype.Parse(t.ttf)
			if err != nil {
				facesErr = err
				return
			}
			parsed[t.key] = f
		}
		faces = parsed
	})
	return faces, facesErr
}

// faceFor picks the Go font closest to a PDF font name and style
func faceFor(fonts map[faceKey]*truetype.Font, name string, bold, italic bool) *truetype.Font {
	lower := strings.ToLower(name)
	mono := strings.Contains(lower, "mono") || strings.Contains(lower, "courier")
	return fonts[faceKey{mono: mono, bold: bold, italic: italic}]
}

// canvas is a white RGBA surface with the few drawing operations the
// renderer needs. Coordinates are pixels with a top-left origin.
type canvas struct {
	img *image.RGBA
	dpi float64
}

func newCanvas(size image.Point, dpi float64) *canvas {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &canvas{img: img, dpi: dpi}
}

// line strokes a segment width pixels wide
func (c *canvas) line(x1, y1, x2, y2, width float64, col color.Color) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// offset to either side of the centre line
	nx, ny := -dy/length*width/2, dx/length*width/2

	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x2+nx), float32(y2+ny))
	z.LineTo(float32(x2-nx), float32(y2-ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.ClosePath()
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// strokeRect outlines a box given by its top-left corner and size
func (c *canvas) strokeRect(x, y, w, h, width float64, col color.Color) {
	c.line(x, y, x+w, y, width, col)
	c.line(x+w, y, x+w, y+h, width, col)
	c.line(x+w, y+h, x, y+h, width, col)
	c.line(x, y+h, x, y, width, col)
}

// text draws s with its baseline starting at (x, y). size is in points and
// is scaled by the canvas DPI.
func (c *canvas) text(x, y float64, s string, f *truetype.Font, size float64, col color.Color) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(c.dpi)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetClip(c.img.Bounds())
	ctx.SetDst(c.img)
	ctx.SetSrc(image.NewUniform(col))
	_, err := ctx.DrawString(s, fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x * 64)),
		Y: fixed.Int26_6(math.Round(y * 64)),
	})
	return err
}

// image composites src through the source-to-canvas transform m
func (c *canvas) image(src image.Image, m f64.Aff3) {
	draw.BiLinear.Transform(c.img, m, src, src.Bounds(), draw.Over, nil)
}

// imageTransform maps the pixels of an image of the given source bounds
// onto a box of w x h pixels at (x, y). When quarterTurn is set the image
// is turned by -angle about the box centre and its sides are swapped
// before scaling, so a picture placed at 90 degrees fills its upright box.
func imageTransform(src image.Rectangle, x, y, w, h, angle float64, quarterTurn bool) f64.Aff3 {
	cols, rows := float64(src.Dx()), float64(src.Dy())
	cos, sin := 1.0, 0.0
	sx, sy := w/cols, h/rows
	if quarterTurn {
		cos, sin = math.Cos(angle), math.Sin(angle)
		sx, sy = h/cols, w/rows
	}
	// source centre
	cu := float64(src.Min.X) + cols/2
	cv := float64(src.Min.Y) + rows/2
	// box centre
	bx, by := x+w/2, y+h/2

	return f64.Aff3{
		cos * sx, sin * sy, bx - cos*sx*cu - sin*sy*cv,
		-sin * sx, cos * sy, by + sin*sx*cu - cos*sy*cv,
	}
}

// isQuarterTurn reports whether angle is within tol of plus or minus 90
// degrees
func isQuarterTurn(angle, tol float64) bool {
	return math.Abs(math.Abs(angle)-math.Pi/2) < tol
}
