package pagecrop

import (
	"context"
	"fmt"

	"github.com/tsawler/pagecrop/config"
	"github.com/tsawler/pagecrop/cropmarks"
	"github.com/tsawler/pagecrop/elements"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
	"github.com/tsawler/pagecrop/reader"
	"github.com/tsawler/pagecrop/relmap"
	"github.com/tsawler/pagecrop/render"
)

// Extractor provides a fluent interface over one page of a PDF.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	ctx      context.Context

	// Document
	doc       *reader.Document
	ownsDoc   bool // true if we opened the document and should close it
	docOpened bool // true if the document has been opened

	// Configuration
	options Options

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:  e.filename,
		ctx:       e.ctx,
		doc:       e.doc,
		ownsDoc:   e.ownsDoc,
		docOpened: e.docOpened,
		options:   e.options.clone(),
		err:       e.err,
	}
}

// ensureDocument opens the document if not already open.
func (e *Extractor) ensureDocument() error {
	if e.docOpened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	doc, err := reader.OpenWithPassword(e.filename, e.options.password)
	if err != nil {
		return err
	}
	e.doc = doc
	e.ownsDoc = true
	e.docOpened = true
	return nil
}

// Close releases the document if this Extractor opened it.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsDoc && e.doc != nil {
		err := e.doc.Close()
		e.doc = nil
		e.ownsDoc = false
		e.docOpened = false
		return err
	}
	return nil
}

func (e *Extractor) context() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// WithContext sets the context passed to page extraction.
func (e *Extractor) WithContext(ctx context.Context) *Extractor {
	newExt := e.clone()
	newExt.ctx = ctx
	return newExt
}

// Page selects the page to work on (1-indexed). The default is page 1.
//
// Example:
//
//	pe, err := pagecrop.Open("brochure.pdf").Page(3).Elements()
func (e *Extractor) Page(n int) *Extractor {
	newExt := e.clone()
	if n < 1 && newExt.err == nil {
		newExt.err = fmt.Errorf("page must be 1 or more, got %d", n)
	}
	newExt.options.page = n
	return newExt
}

// Password sets the password for an encrypted PDF.
func (e *Extractor) Password(password string) *Extractor {
	newExt := e.clone()
	newExt.options.password = password
	return newExt
}

// Lines groups words into lines before they are returned or drawn.
func (e *Extractor) Lines() *Extractor {
	newExt := e.clone()
	newExt.options.extract.Level = model.LevelLine
	return newExt
}

// SkipImages leaves embedded images out, which avoids decoding them.
func (e *Extractor) SkipImages() *Extractor {
	newExt := e.clone()
	newExt.options.extract.SkipImages = true
	return newExt
}

// StripCropMarks removes bleed marks and replaces the page box with the
// box inside the four crop marks. A page without four usable marks then
// fails with CropMarksNotFound, CropMarksAmbiguous or CropBoxTooSmall.
//
// Example:
//
//	pe, err := pagecrop.Open("flyer.pdf").StripCropMarks().Elements()
func (e *Extractor) StripCropMarks() *Extractor {
	newExt := e.clone()
	newExt.options.stripMarks = true
	return newExt
}

// BoundsMode chooses how the content box is found for rendering and
// relative maps.
//
// Example:
//
//	res, err := pagecrop.Open("flyer.pdf").BoundsMode(render.ModeLargestRectangle).Render()
func (e *Extractor) BoundsMode(mode render.BoundsMode) *Extractor {
	newExt := e.clone()
	newExt.options.render.Mode = mode
	return newExt
}

// DPI sets the rendering resolution. The default is 300.
func (e *Extractor) DPI(dpi float64) *Extractor {
	newExt := e.clone()
	if dpi <= 0 && newExt.err == nil {
		newExt.err = fmt.Errorf("dpi must be positive, got %g", dpi)
	}
	newExt.options.render.DPI = dpi
	return newExt
}

// OutputDir sets where Render and Calibrate write their images. The
// default is "images".
func (e *Extractor) OutputDir(dir string) *Extractor {
	newExt := e.clone()
	newExt.options.render.OutputDir = dir
	return newExt
}

// HTMLReport makes Render also write an HTML overlay of the elements.
func (e *Extractor) HTMLReport() *Extractor {
	newExt := e.clone()
	newExt.options.render.HTMLReport = true
	return newExt
}

// DrawRectangles outlines rectangles in the rendered image.
func (e *Extractor) DrawRectangles() *Extractor {
	newExt := e.clone()
	newExt.options.render.DrawRectangles = true
	return newExt
}

// Recognizer sets the word recognizer. Render uses it to read the images
// of pages with no text; Calibrate needs it to read the target image.
//
// Example:
//
//	client, err := ocr.New()
//	if err != nil {
//	    // handle error
//	}
//	defer client.Close()
//	rec := ocr.NewAnalyzer(client, ocr.DefaultOptions())
//	cal, err := pagecrop.Open("flyer.pdf").Recognizer(rec).Calibrate("photo.jpg")
func (e *Extractor) Recognizer(rec ocr.Recognizer) *Extractor {
	newExt := e.clone()
	newExt.options.render.Recognizer = rec
	return newExt
}

// WithConfig applies a loaded configuration: page, password, thresholds
// and output settings. A recognizer set earlier is kept.
func (e *Extractor) WithConfig(cfg *config.Config) *Extractor {
	newExt := e.clone()
	if err := cfg.Validate(); err != nil && newExt.err == nil {
		newExt.err = fmt.Errorf("invalid configuration: %w", err)
	}
	rec := newExt.options.render.Recognizer

	newExt.options.page = cfg.Page
	newExt.options.password = cfg.Password
	newExt.options.extract = cfg.ExtractOptions()
	newExt.options.aggregation = cfg.Aggregation
	newExt.options.cropMarks = cfg.CropMarks
	newExt.options.stripMarks = cfg.StripMarks
	newExt.options.render = cfg.RenderOptions(rec)
	newExt.options.calibration = cfg.CalibrationOptions()
	newExt.options.analysis = cfg.AnalyzerOptions()
	return newExt
}

// ============================================================================
// Terminal Operations (execute extraction and return results)
// ============================================================================

// PageCount returns the number of pages in the document.
// This is a terminal operation that closes the underlying document.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return 0, err
	}
	defer e.Close()
	return e.doc.NumPages(), nil
}

// Elements extracts the page and reconciles its rectangles and lines.
// With StripCropMarks the page box is the crop box and the marks are gone.
// This is a terminal operation that closes the underlying document.
//
// Example:
//
//	pe, err := pagecrop.Open("flyer.pdf").Elements()
//	fmt.Printf("%d words, %d images\n", len(pe.Texts), len(pe.Images))
func (e *Extractor) Elements() (*model.PageElements, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.ensureDocument(); err != nil {
		return nil, err
	}
	defer e.Close()

	pe, err := e.doc.ExtractPage(e.context(), e.options.page, e.options.extract)
	if err != nil {
		return nil, err
	}
	pe = elements.NewAggregatorWithConfig(e.options.aggregation).Aggregate(pe)

	if e.options.stripMarks {
		return cropmarks.NewResolverWithOptions(e.options.cropMarks).Resolve(pe)
	}
	return pe, nil
}

// CropBox returns the box inside the page's four crop marks.
// This is a terminal operation that closes the underlying document.
//
// Example:
//
//	box, err := pagecrop.Open("flyer.pdf").CropBox()
func (e *Extractor) CropBox() (model.Bounds, error) {
	pe, err := e.StripCropMarks().Elements()
	if err != nil {
		return model.Bounds{}, err
	}
	return pe.PageBounds(), nil
}

// Image paints the content box without writing anything.
// This is a terminal operation that closes the underlying document.
func (e *Extractor) Image() (*render.Result, error) {
	pe, err := e.Elements()
	if err != nil {
		return nil, err
	}
	return render.New(e.options.render).Render(pe)
}

// Render paints the content box and writes <OutputDir>/<stem>_rendered.png,
// plus <stem>_rendered.html with HTMLReport.
// This is a terminal operation that closes the underlying document.
//
// Example:
//
//	res, err := pagecrop.Open("flyer.pdf").DPI(150).Render()
//	fmt.Println(res.OutputPath, res.Image.Bounds())
func (e *Extractor) Render() (*render.Result, error) {
	pe, err := e.Elements()
	if err != nil {
		return nil, err
	}
	return render.New(e.options.render).RenderToFile(pe, e.source())
}

// RelativeMap expresses the page's text and images as fractions of the
// content box.
// This is a terminal operation that closes the underlying document.
func (e *Extractor) RelativeMap() (*relmap.Map, error) {
	pe, err := e.Elements()
	if err != nil {
		return nil, err
	}
	return relmap.ToRelativeMap(pe, e.options.render.Mode)
}

// Calibrate aligns the page with a photo or scan of it at imagePath, and
// writes <OutputDir>/<stem>_cropped.png and <stem>_relmap.png named after
// the image. A Recognizer must be set.
// This is a terminal operation that closes the underlying document.
func (e *Extractor) Calibrate(imagePath string) (*relmap.Calibration, error) {
	rec := e.options.render.Recognizer
	if rec == nil {
		return nil, relmap.ErrNoRecognizer
	}
	if eng, ok := rec.(ocr.Engine); ok {
		rec = ocr.NewAnalyzer(eng, e.options.analysis)
	}

	m, err := e.RelativeMap()
	if err != nil {
		return nil, err
	}
	return relmap.NewCalibrator(rec, e.options.calibration).CalibrateFile(m, imagePath, e.options.render.OutputDir)
}

// source names the outputs of Render
func (e *Extractor) source() string {
	if e.filename != "" {
		return e.filename
	}
	return fmt.Sprintf("page%d.pdf", e.options.page)
}
