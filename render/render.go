package render

import (
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"github.com/tsawler/pagecrop/coords"
	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
)

// Rendering defaults
const (
	DefaultDPI         = 300.0
	DefaultOutputDir   = "images"
	DefaultFontName    = "Sans"
	DefaultFontSize    = 10.0 // points, when the element has none
	DefaultFontScale   = 0.75 // box height overstates the glyph size
	DefaultLineWidth   = 0.5  // pixels
	DefaultRectWidth   = 1.0  // pixels
	QuarterTurnTol     = 0.1  // radians
	DefaultOCRFontSize = 10.0
)

var rectColor = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

// Options controls rendering
type Options struct {
	// Mode chooses the content box
	Mode BoundsMode

	// DPI is the output resolution
	DPI float64

	// OutputDir receives the files written by RenderToFile
	OutputDir string

	// DrawRectangles outlines rectangles too. They are usually borders and
	// trim guides rather than content, so they are left out by default.
	DrawRectangles bool

	// Recognizer, when set, reads the words of embedded images on pages
	// that have no text of their own
	Recognizer ocr.Recognizer

	// HTMLReport makes RenderToFile also write an HTML overlay next to the
	// PNG
	HTMLReport bool

	// TextAllowance is how far below the content box text may reach and
	// still be drawn, in points
	TextAllowance float64

	// FontScale multiplies the text box height to get the font size
	FontScale float64

	// LineWidth is the stroke width of lines in pixels
	LineWidth float64
}

// DefaultOptions returns the standard rendering settings
func DefaultOptions() Options {
	return Options{
		Mode:          ModeCropMarks,
		DPI:           DefaultDPI,
		OutputDir:     DefaultOutputDir,
		TextAllowance: coords.DefaultTextAllowance,
		FontScale:     DefaultFontScale,
		LineWidth:     DefaultLineWidth,
	}
}

// Result is a rendered page
type Result struct {
	// Image is the raster, white where nothing was painted
	Image *image.RGBA

	// Bounds is the content box in page space
	Bounds model.Bounds

	// Elements lists what was painted, in painting order
	Elements []model.RenderedElement

	// OutputPath and HTMLPath are set by RenderToFile
	OutputPath string
	HTMLPath   string
}

// Renderer paints pages. A Renderer holds no per-page state, but its
// Recognizer, if any, is not safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a renderer. Zero numeric options take their defaults.
func New(opts Options) *Renderer {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.FontScale <= 0 {
		opts.FontScale = DefaultFontScale
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = DefaultLineWidth
	}
	return &Renderer{opts: opts}
}

// Options returns the renderer's settings
func (r *Renderer) Options() Options {
	return r.opts
}

// textItem is a piece of text ready to paint. box is in page space with
// a bottom-left origin.
type textItem struct {
	box      model.BBox
	text     string
	fontName string
	size     float64
	bold     bool
	italic   bool
}

// Render paints pe into memory
func (r *Renderer) Render(pe *model.PageElements) (*Result, error) {
	bounds, err := ResolveBounds(pe, r.opts.Mode)
	if err != nil {
		return nil, err
	}
	fonts, err := loadFaces()
	if err != nil {
		return nil, model.WrapError(model.RasterizerUnavailable, err, "Font faces could not be loaded")
	}

	raster := coords.NewRaster(bounds, r.opts.DPI)
	c := newCanvas(raster.Size(), r.opts.DPI)
	res := &Result{Image: c.img, Bounds: bounds}
	diag.Printf("render: page %d content (%.2f, %.2f)-(%.2f, %.2f) at %.0f dpi, %dx%d px",
		pe.PageNumber, bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY,
		r.opts.DPI, c.img.Bounds().Dx(), c.img.Bounds().Dy())

	if r.opts.DrawRectangles {
		r.paintRectangles(c, raster, pe, res)
	}
	r.paintLines(c, raster, pe, res)
	r.paintImages(c, raster, pe, res)
	r.paintTexts(c, raster, fonts, r.textItems(pe), res)

	return res, nil
}

func (r *Renderer) paintRectangles(c *canvas, raster coords.Raster, pe *model.PageElements, res *Result) {
	for _, rect := range pe.Rectangles {
		box := rect.BBox()
		if !coords.ClipToBounds(model.KindRectangle, box.Bounds(), raster.Content, 0) {
			continue
		}
		x, y, w, h := raster.Box(box)
		c.strokeRect(x, y, w, h, DefaultRectWidth, rectColor)
		res.Elements = append(res.Elements, model.RenderedElement{
			Kind:   model.KindRectangle,
			X:      int(x),
			Y:      int(y),
			Width:  int(w),
			Height: int(h),
		})
	}
}

func (r *Renderer) paintLines(c *canvas, raster coords.Raster, pe *model.PageElements, res *Result) {
	for _, l := range pe.Lines {
		if !coords.ClipToBounds(model.KindLine, l.Bounds(), raster.Content, 0) {
			continue
		}
		x1, y1 := raster.Point(model.Point{X: l.X1, Y: l.Y1})
		x2, y2 := raster.Point(model.Point{X: l.X2, Y: l.Y2})
		c.line(x1, y1, x2, y2, r.opts.LineWidth, color.Black)
		res.Elements = append(res.Elements, model.RenderedElement{
			Kind:   model.KindLine,
			X:      int(x1),
			Y:      int(y1),
			X2:     int(x2),
			Y2:     int(y2),
			Width:  int(abs(x2 - x1)),
			Height: int(abs(y2 - y1)),
		})
	}
}

func (r *Renderer) paintImages(c *canvas, raster coords.Raster, pe *model.PageElements, res *Result) {
	for _, img := range pe.Images {
		box := img.BBox()
		if !coords.ClipToBounds(model.KindImage, box.Bounds(), raster.Content, 0) {
			diag.Printf("render: page %d image %d lies outside the content box", pe.PageNumber, img.ImageIndex)
			continue
		}
		x, y, w, h := raster.Box(box)
		if img.Pixels != nil && !img.Pixels.Bounds().Empty() {
			turn := isQuarterTurn(img.RotationAngle, QuarterTurnTol)
			c.image(img.Pixels, imageTransform(img.Pixels.Bounds(), x, y, w, h, img.RotationAngle, turn))
		} else {
			diag.Printf("render: page %d image %d has no pixels", pe.PageNumber, img.ImageIndex)
		}
		res.Elements = append(res.Elements, model.RenderedElement{
			Kind:          model.KindImage,
			X:             int(x),
			Y:             int(y),
			Width:         int(w),
			Height:        int(h),
			Image:         img.Pixels,
			RotationAngle: img.RotationAngle,
		})
	}
}

func (r *Renderer) paintTexts(c *canvas, raster coords.Raster, fonts map[faceKey]*truetype.Font, items []textItem, res *Result) {
	s := raster.Scale()
	for i, t := range items {
		if !coords.ClipToBounds(model.KindText, t.box.Bounds(), raster.Content, r.opts.TextAllowance) {
			continue
		}
		// the baseline sits on the bottom of the box
		x, y := raster.Point(model.Point{X: t.box.Left(), Y: t.box.Bottom()})
		if err := c.text(x, y, t.text, faceFor(fonts, t.fontName, t.bold, t.italic), t.size, color.Black); err != nil {
			diag.Printf("render: text %d %q not drawn: %v", i, t.text, err)
			continue
		}
		res.Elements = append(res.Elements, model.RenderedElement{
			Kind:     model.KindText,
			X:        int(x),
			Y:        int(y),
			Width:    int(t.box.Width * s),
			Height:   int(t.box.Height * s),
			Text:     t.text,
			FontName: t.fontName,
			FontSize: t.size,
			IsBold:   t.bold,
			IsItalic: t.italic,
		})
	}
}

// textItems returns the page's text, or the words read from its images
// when it has none and a recognizer is set
func (r *Renderer) textItems(pe *model.PageElements) []textItem {
	if len(pe.Texts) == 0 && len(pe.Images) > 0 && r.opts.Recognizer != nil {
		return r.recognizeImages(pe)
	}

	items := make([]textItem, 0, len(pe.Texts))
	for _, t := range pe.Texts {
		name := t.FontName
		if name == "" {
			name = DefaultFontName
		}
		size := DefaultFontSize
		if t.FontSize > 0 {
			size = t.FontSize * r.opts.FontScale
		}
		items = append(items, textItem{
			box:      pe.TextPageBox(t),
			text:     t.Text,
			fontName: name,
			size:     size,
			bold:     t.IsBold,
			italic:   t.IsItalic,
		})
	}
	return items
}

// recognizeImages reads the words of each embedded image and places them
// on the page. Word boxes are pixels with a top-left origin inside the
// image; the image's display box is bottom-left page space.
func (r *Renderer) recognizeImages(pe *model.PageElements) []textItem {
	var items []textItem
	for _, img := range pe.Images {
		if img.Pixels == nil || img.Pixels.Bounds().Empty() {
			continue
		}
		words, err := r.opts.Recognizer.Words(img.Pixels)
		if err != nil {
			diag.Printf("render: page %d image %d: OCR failed: %v", pe.PageNumber, img.ImageIndex, err)
			continue
		}
		diag.Printf("render: page %d image %d: OCR found %d words", pe.PageNumber, img.ImageIndex, len(words))

		pb := img.Pixels.Bounds()
		sx := img.DisplayWidth / float64(pb.Dx())
		sy := img.DisplayHeight / float64(pb.Dy())
		for _, w := range words {
			box := w.Box.Sub(pb.Min)
			items = append(items, textItem{
				box: model.NewBBox(
					img.X+float64(box.Min.X)*sx,
					img.Y+img.DisplayHeight-float64(box.Max.Y)*sy,
					float64(box.Dx())*sx,
					float64(box.Dy())*sy,
				),
				text:     w.Text,
				fontName: DefaultFontName,
				size:     DefaultOCRFontSize,
			})
		}
	}
	return items
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
