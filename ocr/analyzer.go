package ocr

import (
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// Analysis defaults
const (
	DefaultTallAspect    = 1.5
	DefaultRecheckPad    = 10
	DefaultRecheckBorder = 10
)

// Options controls image analysis
type Options struct {
	// Preprocess converts to gray and thresholds before recognition
	Preprocess bool

	// DetectRotation tries all four quarter-turns and keeps the one with
	// the best mean confidence
	DetectRotation bool

	// RecheckTall re-recognizes tall multi-character words one at a time
	// after turning them upright
	RecheckTall bool

	// MaskGraphics paints logos and pictures white first
	MaskGraphics bool

	// MinConfidence drops words below this confidence (0-100)
	MinConfidence float64

	// TallAspect is the height over width above which a word is
	// rechecked
	TallAspect float64

	// RecheckPad is the margin taken around a rechecked word
	RecheckPad int

	// RecheckBorder is the white border added around a rechecked word
	RecheckBorder int
}

// DefaultOptions returns the standard analysis settings
func DefaultOptions() Options {
	return Options{
		Preprocess:     true,
		DetectRotation: true,
		RecheckTall:    true,
		TallAspect:     DefaultTallAspect,
		RecheckPad:     DefaultRecheckPad,
		RecheckBorder:  DefaultRecheckBorder,
	}
}

// Result is the outcome of analyzing one image. Word boxes are in the
// pixels of the image passed to Analyze.
type Result struct {
	Words    []Word
	Text     string
	Rotation Rotation
}

// Analyzer runs recognition passes over an engine. It is not safe for
// concurrent use since the engine is not.
type Analyzer struct {
	engine Engine
	opts   Options
}

// NewAnalyzer creates an analyzer around e
func NewAnalyzer(e Engine, opts Options) *Analyzer {
	return &Analyzer{engine: e, opts: opts}
}

// Engine returns the engine the analyzer drives
func (a *Analyzer) Engine() Engine {
	return a.engine
}

// Words returns the words of img that pass the confidence filter
func (a *Analyzer) Words(img image.Image) ([]Word, error) {
	res, err := a.Analyze(img)
	if err != nil {
		return nil, err
	}
	return res.Words, nil
}

// Analyze recognizes the words of img.
//
// Recognition runs in two phases. The first collects every word of the
// upright image. The second revisits the tall words, each on its own
// cropped and turned image in single-word mode, and keeps the better
// reading. Phases never interleave, so the engine is only ever working on
// one image at a time.
func (a *Analyzer) Analyze(img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	size := img.Bounds().Size()

	var work image.Image = img
	if a.opts.MaskGraphics {
		work = MaskGraphics(work)
	}
	if a.opts.Preprocess {
		work = Preprocess(work)
	}

	rot := Rotate0
	if a.opts.DetectRotation {
		best, err := a.BestRotation(work)
		if err != nil {
			return nil, err
		}
		rot = best
	}
	upright := Rotate(work, rot)

	words, err := a.engine.Words(upright)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	if a.opts.RecheckTall {
		words = a.recheck(upright, words)
	}

	res := &Result{Rotation: rot}
	texts := make([]string, 0, len(words))
	for _, w := range words {
		if w.Text == "" || w.Confidence < a.opts.MinConfidence {
			continue
		}
		w.Box = rot.Unrotate(w.Box, size)
		res.Words = append(res.Words, w)
		texts = append(texts, w.Text)
	}
	res.Text = strings.Join(texts, " ")
	return res, nil
}

// BestRotation returns the quarter-turn of img whose words have the
// highest mean confidence. Turns that find nothing are ignored; the first
// turn wins ties.
func (a *Analyzer) BestRotation(img image.Image) (Rotation, error) {
	best, bestConf := Rotate0, -1.0
	for _, r := range Rotations {
		words, err := a.engine.Words(Rotate(img, r))
		if err != nil {
			return Rotate0, fmt.Errorf("recognize at rotation %s: %w", r, err)
		}
		conf, n := MeanConfidence(words)
		if n > 0 && conf > bestConf {
			best, bestConf = r, conf
		}
	}
	return best, nil
}

// tall reports whether w looks like a word set vertically
func (a *Analyzer) tall(w Word) bool {
	return utf8.RuneCountInString(w.Text) > 1 &&
		float64(w.Box.Dy()) > a.opts.TallAspect*float64(w.Box.Dx())
}

// recheck re-recognizes each tall word turned both ways. The reading
// with the best confidence replaces the original one.
func (a *Analyzer) recheck(img image.Image, words []Word) []Word {
	out := make([]Word, len(words))
	copy(out, words)

	for i, w := range words {
		if !a.tall(w) {
			continue
		}
		region := crop(img, w.Box.Inset(-a.opts.RecheckPad), 0)

		var best []Word
		bestConf := -1.0
		err := WithPageSegMode(a.engine, PSM_SINGLE_WORD, func() error {
			for _, r := range []Rotation{Rotate90CW, Rotate90CCW} {
				turned := Rotate(region, r)
				found, err := a.engine.Words(crop(turned, turned.Bounds(), a.opts.RecheckBorder))
				if err != nil {
					return err
				}
				if conf, n := MeanConfidence(found); n > 0 && conf > bestConf {
					best, bestConf = found, conf
				}
			}
			return nil
		})
		if err != nil {
			diag.Printf("ocr: recheck of word %d %q failed: %v", i, w.Text, err)
			continue
		}
		if text := joinWords(best); text != "" {
			out[i].Text = text
			out[i].Confidence = bestConf
			out[i].Orientation = model.OrientationVertical
		}
	}
	return out
}

func joinWords(words []Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
