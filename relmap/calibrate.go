package relmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
	"github.com/tsawler/pagecrop/render"
)

// Calibration defaults
const (
	DefaultMinConfidence    = 30.0
	DefaultMinTextLength    = 2
	DefaultMinContainLength = 4
	DefaultSingularEpsilon  = 1e-10
	DefaultMinCropSide      = 10
	DefaultSweepFrom        = 0.30
	DefaultSweepTo          = 1.00
	DefaultSweepStep        = 0.01
	DefaultOvershoot        = 0.1
	DefaultOverhangPenalty  = 0.8
	DefaultDrawMargin       = 0.1
	DefaultBoxThickness     = 2
)

// Box colours of the marked image
var (
	TextBoxColor  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	ImageBoxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// ErrNoRecognizer is returned when calibrating without a word recognizer
var ErrNoRecognizer = errors.New("relmap: no word recognizer")

// Method is how a calibration found its crop
type Method int

const (
	MethodFullImage Method = iota
	MethodLeastSquares
	MethodSweep
)

func (m Method) String() string {
	switch m {
	case MethodLeastSquares:
		return "least-squares"
	case MethodSweep:
		return "sweep"
	default:
		return "full-image"
	}
}

// Options controls matching, solving and drawing
type Options struct {
	// MinConfidence drops recognized words at or below this confidence
	MinConfidence float64

	// MinTextLength is the shortest normalized element text that is matched
	MinTextLength int

	// MinContainLength is the shortest text accepted in a containment match
	MinContainLength int

	SingularEpsilon float64

	// MinCropSide is the shortest crop side in pixels
	MinCropSide int

	SweepFrom, SweepTo, SweepStep float64
	Overshoot                     float64
	OverhangPenalty               float64

	// DrawMargin lets elements whose centre is slightly outside the crop
	// still be drawn
	DrawMargin float64

	BoxThickness int
}

// DefaultOptions returns the standard calibration settings
func DefaultOptions() Options {
	return Options{
		MinConfidence:    DefaultMinConfidence,
		MinTextLength:    DefaultMinTextLength,
		MinContainLength: DefaultMinContainLength,
		SingularEpsilon:  DefaultSingularEpsilon,
		MinCropSide:      DefaultMinCropSide,
		SweepFrom:        DefaultSweepFrom,
		SweepTo:          DefaultSweepTo,
		SweepStep:        DefaultSweepStep,
		Overshoot:        DefaultOvershoot,
		OverhangPenalty:  DefaultOverhangPenalty,
		DrawMargin:       DefaultDrawMargin,
		BoxThickness:     DefaultBoxThickness,
	}
}

// Calibration is the outcome of aligning a map with a target image
type Calibration struct {
	Words   []ocr.Word
	Matches []Match
	Method  Method

	// Crop is in pixels of the target image
	Crop image.Rectangle

	// SolveErr records why least squares was abandoned, if it was
	SolveErr error

	// Cropped is the target cut to Crop
	Cropped *image.RGBA

	// Marked is Cropped with the element boxes drawn on it
	Marked *image.RGBA
	Drawn  int

	CroppedPath string
	MarkedPath  string
}

// Calibrator aligns relative maps with target images. It is not safe for
// concurrent use since the recognizer is not.
type Calibrator struct {
	rec  ocr.Recognizer
	opts Options
}

// NewCalibrator creates a calibrator around rec
func NewCalibrator(rec ocr.Recognizer, opts Options) *Calibrator {
	return &Calibrator{rec: rec, opts: opts}
}

// Options returns the calibrator's settings
func (c *Calibrator) Options() Options {
	return c.opts
}

// engineHolder is a recognizer that drives an engine, like ocr.Analyzer
type engineHolder interface {
	Engine() ocr.Engine
}

// recognize runs the recognizer with the engine in single-block mode
func (c *Calibrator) recognize(img image.Image) ([]ocr.Word, error) {
	var e ocr.Engine
	switch r := c.rec.(type) {
	case ocr.Engine:
		e = r
	case engineHolder:
		e = r.Engine()
	}
	if e == nil {
		return c.rec.Words(img)
	}

	var words []ocr.Word
	err := ocr.WithPageSegMode(e, ocr.PSM_SINGLE_BLOCK, func() error {
		var err error
		words, err = c.rec.Words(img)
		return err
	})
	return words, err
}

// Calibrate recognizes the words of target, matches them against m and
// crops target to the content box. The element boxes are then drawn on
// the crop.
func (c *Calibrator) Calibrate(m *Map, target image.Image) (*Calibration, error) {
	if c.rec == nil {
		return nil, ErrNoRecognizer
	}
	if target == nil || target.Bounds().Empty() {
		return nil, ocr.ErrEmptyImage
	}
	size := target.Bounds().Size()

	words, err := c.recognize(target)
	if err != nil {
		return nil, fmt.Errorf("recognize target: %w", err)
	}
	res := &Calibration{Method: MethodFullImage, Crop: image.Rectangle{Max: size}}
	for _, w := range words {
		if w.Confidence > c.opts.MinConfidence {
			res.Words = append(res.Words, w)
		}
	}
	res.Matches = c.Match(m, res.Words)
	diag.Printf("relmap: %d of %d recognized words kept, %d matched", len(res.Words), len(words), len(res.Matches))

	switch {
	case len(res.Matches) >= 2:
		crop, err := c.Solve(res.Matches)
		if err != nil {
			res.SolveErr = err
			diag.Printf("relmap: least squares failed, using the full image: %v", err)
			break
		}
		if r, ok := crop.Rect(size, c.opts.MinCropSide); ok {
			res.Method, res.Crop = MethodLeastSquares, r
		} else {
			diag.Printf("relmap: solved crop leaves the image, using the full image")
		}
	case len(res.Matches) == 1:
		crop, ok := c.Sweep(res.Matches[0], m.AspectRatio(), size)
		if !ok {
			diag.Printf("relmap: sweep found no crop, using the full image")
			break
		}
		if r, ok := crop.Rect(size, c.opts.MinCropSide); ok {
			res.Method, res.Crop = MethodSweep, r
		}
	default:
		diag.Printf("relmap: no matches, using the full image")
	}

	// Crop is relative to the target's origin
	res.Cropped = cropImage(target, res.Crop.Add(target.Bounds().Min))
	res.Marked = image.NewRGBA(res.Cropped.Bounds())
	draw.Draw(res.Marked, res.Marked.Bounds(), res.Cropped, image.Point{}, draw.Src)
	res.Drawn = c.Draw(res.Marked, m)

	diag.Printf("relmap: %s crop %v, %d boxes drawn", res.Method, res.Crop, res.Drawn)
	return res, nil
}

// CalibrateFile calibrates against the image at path and writes
// <outDir>/<stem>_cropped.png and <outDir>/<stem>_relmap.png
func (c *Calibrator) CalibrateFile(m *Map, path, outDir string) (*Calibration, error) {
	target, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	res, err := c.Calibrate(m, target)
	if err != nil {
		return nil, err
	}

	res.CroppedPath = render.OutputPath(outDir, path, "cropped", ".png")
	if err := render.WritePNG(res.CroppedPath, res.Cropped); err != nil {
		return nil, err
	}
	res.MarkedPath = render.OutputPath(outDir, path, "relmap", ".png")
	if err := render.WritePNG(res.MarkedPath, res.Marked); err != nil {
		return nil, err
	}
	diag.Printf("relmap: wrote %s and %s", res.CroppedPath, res.MarkedPath)
	return res, nil
}

// LoadImage decodes a PNG, JPEG, TIFF or BMP file
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// cropImage copies r of src into a new image with a zero origin
func cropImage(src image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// Draw outlines every element of m on dst, which is taken to span the
// content box. Elements whose centre lies more than DrawMargin outside the
// box are skipped. It returns how many boxes were drawn.
func (c *Calibrator) Draw(dst *image.RGBA, m *Map) int {
	b := dst.Bounds()
	cw, ch := float64(b.Dx()), float64(b.Dy())
	lo, hi := -c.opts.DrawMargin, 1+c.opts.DrawMargin

	drawn := 0
	for _, e := range m.Elements {
		if e.CenterX < lo || e.CenterX > hi || e.CenterY < lo || e.CenterY > hi {
			continue
		}
		px := int((e.CenterX - e.Width/2) * cw)
		py := int((e.CenterY - e.Height/2) * ch)
		x1 := clampInt(px, 0, b.Dx()-1)
		y1 := clampInt(py, 0, b.Dy()-1)
		x2 := clampInt(px+int(e.Width*cw), 0, b.Dx()-1)
		y2 := clampInt(py+int(e.Height*ch), 0, b.Dy()-1)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		col := TextBoxColor
		if e.Kind == model.KindImage {
			col = ImageBoxColor
		}
		outline(dst, image.Rect(x1, y1, x2, y2).Add(b.Min), c.opts.BoxThickness, col)
		drawn++
	}
	return drawn
}

// outline draws the edges of r thickness pixels wide, centred on the edge
func outline(dst *image.RGBA, r image.Rectangle, thickness int, col color.Color) {
	lo := thickness / 2
	hi := thickness - lo
	src := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(r.Min.X-lo, r.Min.Y-lo, r.Max.X+hi, r.Min.Y+hi),
		image.Rect(r.Min.X-lo, r.Max.Y-lo, r.Max.X+hi, r.Max.Y+hi),
		image.Rect(r.Min.X-lo, r.Min.Y-lo, r.Min.X+hi, r.Max.Y+hi),
		image.Rect(r.Max.X-lo, r.Min.Y-lo, r.Max.X+hi, r.Max.Y+hi),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
