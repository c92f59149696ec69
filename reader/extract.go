package reader

import (
	"context"
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/tsawler/pagecrop/contentstream"
	"github.com/tsawler/pagecrop/graphicsstate"
	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/layout"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/text"
)

// ExtractOptions controls page extraction
type ExtractOptions struct {
	// Level selects word or line text elements
	Level model.TextLevel

	// SkipImages leaves Images empty and never decodes pixels
	SkipImages bool

	Geometry graphicsstate.Options
	Words    text.Options
	Layout   layout.Config
}

// DefaultExtractOptions returns word-level extraction with default thresholds
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Level:    model.LevelWord,
		Geometry: graphicsstate.DefaultOptions(),
		Words:    text.DefaultOptions(),
		Layout:   layout.DefaultConfig(),
	}
}

// ExtractPage pulls text, images, rectangles and lines out of the 1-based
// page n. The page box is the PDF crop box. Rectangles are not yet
// reconciled with lines; that is the aggregator's job.
func (d *Document) ExtractPage(ctx context.Context, n int, opts ExtractOptions) (pe *model.PageElements, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe = nil
			err = model.WrapError(model.DocumentLoadFailed, errors.Errorf("%v", r), "page %d could not be read", n)
		}
	}()

	page, err := d.page(n)
	if err != nil {
		return nil, err
	}
	boxes := pageBoxes(page.V)

	pe = &model.PageElements{
		PageCount:   d.NumPages(),
		PageNumber:  n,
		MediaHeight: boxes.Media.MaxY,
	}
	pe.SetPageBounds(boxes.Crop)

	res, err := contentstream.Walk(page, n)
	if err != nil {
		// keep whatever was drawn before the failure
		diag.Printf("page %d: %v", n, err)
	}

	geom := graphicsstate.NewPathExtractor(n, opts.Geometry).Extract(res.Ops)
	pe.Rectangles = geom.Rectangles
	pe.Lines = geom.Lines

	var glyphs []text.Glyph
	for _, op := range res.Ops {
		if op.Kind == graphicsstate.OpGlyph {
			glyphs = append(glyphs, text.GlyphFromOp(op.Glyph))
		}
	}
	words := text.AssembleWords(glyphs, opts.Words)
	pe.FullText = text.FullText(words)
	pe.Texts = layout.Reclassify(text.ToElements(words, pe.MediaHeight), opts.Layout)
	if opts.Level == model.LevelLine {
		pe.Texts = layout.NewLineDetectorWithConfig(opts.Layout).Group(pe.Texts)
	}

	if !opts.SkipImages {
		pe.Images = d.placeImages(ctx, n, res)
	}
	return pe, nil
}

// placeImages decodes every image op and records where it lands. Images
// whose pixels cannot be decoded are logged and skipped.
func (d *Document) placeImages(ctx context.Context, n int, res contentstream.Result) []model.EmbeddedImage {
	var placed []model.EmbeddedImage
	var decoded map[string]image.Image

	for i, op := range res.Ops {
		if op.Kind != graphicsstate.OpImage {
			continue
		}
		if decoded == nil {
			decoded = map[string]image.Image{}
			if src := d.imageSource(); src != nil {
				decoded = src.page(n)
			}
		}

		img := op.Image
		pixels, ok := decoded[img.Name]
		if !ok {
			var err error
			pixels, err = streamImage(ctx, res.Images[img.Name])
			if err != nil {
				diag.Printf("page %d: op %d image %s skipped: %v", n, i, img.Name, err)
				continue
			}
		}

		placed = append(placed, placement(n, len(placed), img, pixels))
	}
	return placed
}

// placement positions an image through its CTM. The image fills the unit
// square, so the images of the unit vectors give its displayed size and
// rotation.
func placement(page, index int, op *graphicsstate.ImageOp, pixels image.Image) model.EmbeddedImage {
	m := op.CTM
	box := m.UnitSquareBox()
	b := pixels.Bounds()
	return model.EmbeddedImage{
		Pixels:        pixels,
		PageNumber:    page,
		ImageIndex:    index,
		Width:         b.Dx(),
		Height:        b.Dy(),
		X:             box.X,
		Y:             box.Y,
		DisplayWidth:  math.Hypot(m[0], m[1]),
		DisplayHeight: math.Hypot(m[2], m[3]),
		RotationAngle: math.Atan2(m[1], m[0]),
		SourceType:    model.SourceRaw,
	}
}

// Text returns the plain text of page n, words separated by single spaces
func (d *Document) Text(n int) (string, error) {
	opts := DefaultExtractOptions()
	opts.SkipImages = true
	pe, err := d.ExtractPage(context.Background(), n, opts)
	if err != nil {
		return "", err
	}
	return pe.FullText, nil
}
