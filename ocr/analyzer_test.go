package ocr

import (
	"errors"
	"image"
	"io"
	"os"
	"testing"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

func TestMain(m *testing.M) {
	diag.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeEngine answers from a function of the image and current mode
type fakeEngine struct {
	mode   PageSegMode
	modes  []PageSegMode
	sizes  map[PageSegMode][]image.Point
	answer func(img image.Image, mode PageSegMode) []Word
}

func newFakeEngine(answer func(image.Image, PageSegMode) []Word) *fakeEngine {
	return &fakeEngine{mode: PSM_AUTO, sizes: map[PageSegMode][]image.Point{}, answer: answer}
}

func (f *fakeEngine) Words(img image.Image) ([]Word, error) {
	f.sizes[f.mode] = append(f.sizes[f.mode], img.Bounds().Size())
	return f.answer(img, f.mode), nil
}

func (f *fakeEngine) PageSegMode() PageSegMode { return f.mode }

func (f *fakeEngine) SetPageSegMode(mode PageSegMode) error {
	f.modes = append(f.modes, mode)
	f.mode = mode
	return nil
}

func white(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

// TestWithPageSegMode tests that the previous mode comes back on every path
func TestWithPageSegMode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e := newFakeEngine(nil)
		err := WithPageSegMode(e, PSM_SINGLE_WORD, func() error {
			if e.mode != PSM_SINGLE_WORD {
				t.Errorf("expected PSM_SINGLE_WORD inside, got %d", e.mode)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.mode != PSM_AUTO {
			t.Errorf("expected PSM_AUTO after, got %d", e.mode)
		}
	})

	t.Run("error", func(t *testing.T) {
		e := newFakeEngine(nil)
		boom := errors.New("boom")
		if err := WithPageSegMode(e, PSM_SINGLE_WORD, func() error { return boom }); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if e.mode != PSM_AUTO {
			t.Errorf("expected PSM_AUTO after, got %d", e.mode)
		}
	})

	t.Run("panic", func(t *testing.T) {
		e := newFakeEngine(nil)
		func() {
			defer func() { _ = recover() }()
			_ = WithPageSegMode(e, PSM_SINGLE_WORD, func() error { panic("boom") })
		}()
		if e.mode != PSM_AUTO {
			t.Errorf("expected PSM_AUTO after, got %d", e.mode)
		}
	})

	t.Run("same mode", func(t *testing.T) {
		e := newFakeEngine(nil)
		_ = WithPageSegMode(e, PSM_AUTO, func() error { return nil })
		if len(e.modes) != 0 {
			t.Errorf("expected no mode changes, got %v", e.modes)
		}
	})
}

// TestBestRotation tests the quarter-turn search
func TestBestRotation(t *testing.T) {
	e := newFakeEngine(func(img image.Image, _ PageSegMode) []Word {
		b := img.Bounds()
		if b.Dx() < b.Dy() {
			return []Word{{Text: "abc", Confidence: 90}}
		}
		return []Word{{Text: "zz", Confidence: 10}}
	})

	got, err := NewAnalyzer(e, Options{}).BestRotation(white(40, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Rotate90CW {
		t.Errorf("expected %s, got %s", Rotate90CW, got)
	}

	none := newFakeEngine(func(image.Image, PageSegMode) []Word { return nil })
	if got, _ := NewAnalyzer(none, Options{}).BestRotation(white(40, 20)); got != Rotate0 {
		t.Errorf("expected %s without words, got %s", Rotate0, got)
	}
}

// TestAnalyze_RotatedBoxes tests that boxes found on the turned image are
// mapped back onto the input
func TestAnalyze_RotatedBoxes(t *testing.T) {
	e := newFakeEngine(func(img image.Image, _ PageSegMode) []Word {
		b := img.Bounds()
		if b.Dx() < b.Dy() {
			return []Word{{Text: "abc", Box: image.Rect(2, 5, 8, 15), Confidence: 90}}
		}
		return []Word{{Text: "zz", Box: image.Rect(0, 0, 5, 5), Confidence: 10}}
	})

	res, err := NewAnalyzer(e, Options{DetectRotation: true}).Analyze(white(40, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rotation != Rotate90CW {
		t.Errorf("expected %s, got %s", Rotate90CW, res.Rotation)
	}
	if len(res.Words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(res.Words))
	}
	if want := image.Rect(5, 12, 15, 18); res.Words[0].Box != want {
		t.Errorf("expected box %v, got %v", want, res.Words[0].Box)
	}
	if res.Text != "abc" {
		t.Errorf("expected text abc, got %q", res.Text)
	}
}

func twoPhaseEngine() *fakeEngine {
	return newFakeEngine(func(_ image.Image, mode PageSegMode) []Word {
		if mode == PSM_SINGLE_WORD {
			return []Word{{Text: "HELLO", Confidence: 88}}
		}
		return []Word{
			{Text: "HLO", Box: image.Rect(10, 10, 20, 60), Confidence: 50},
			{Text: "ok", Box: image.Rect(50, 10, 90, 30), Confidence: 95},
			{Text: "x", Box: image.Rect(0, 70, 5, 95), Confidence: 80},
		}
	})
}

// TestAnalyze_RecheckTall tests the second pass over tall words
func TestAnalyze_RecheckTall(t *testing.T) {
	e := twoPhaseEngine()
	opts := Options{RecheckTall: true, TallAspect: DefaultTallAspect, RecheckPad: 10, RecheckBorder: 10}

	res, err := NewAnalyzer(e, opts).Analyze(white(100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(res.Words))
	}

	w := res.Words[0]
	if w.Text != "HELLO" || w.Confidence != 88 || w.Orientation != model.OrientationVertical {
		t.Errorf("expected rechecked vertical HELLO at 88, got %+v", w)
	}
	if w.Box != image.Rect(10, 10, 20, 60) {
		t.Errorf("expected box to be kept, got %v", w.Box)
	}
	if res.Words[1].Text != "ok" || res.Words[1].Orientation != model.OrientationHorizontal {
		t.Errorf("expected ok to be untouched, got %+v", res.Words[1])
	}
	if res.Words[2].Text != "x" {
		t.Errorf("expected single character to be untouched, got %+v", res.Words[2])
	}

	if e.mode != PSM_AUTO {
		t.Errorf("expected PSM_AUTO restored, got %d", e.mode)
	}
	// the 30x70 padded crop turned sideways plus a 10px border
	sizes := e.sizes[PSM_SINGLE_WORD]
	if len(sizes) != 2 {
		t.Fatalf("expected 2 single-word passes, got %d", len(sizes))
	}
	for _, s := range sizes {
		if s != image.Pt(90, 50) {
			t.Errorf("expected 90x50 recheck image, got %v", s)
		}
	}
	if res.Text != "HELLO ok x" {
		t.Errorf("expected text %q, got %q", "HELLO ok x", res.Text)
	}
}

// TestAnalyze_MinConfidence tests the confidence filter
func TestAnalyze_MinConfidence(t *testing.T) {
	res, err := NewAnalyzer(twoPhaseEngine(), Options{MinConfidence: 60}).Analyze(white(100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Words) != 2 || res.Text != "ok x" {
		t.Errorf("expected ok and x, got %+v", res.Words)
	}
}

// TestAnalyze_Empty tests the empty image error
func TestAnalyze_Empty(t *testing.T) {
	a := NewAnalyzer(twoPhaseEngine(), DefaultOptions())
	if _, err := a.Analyze(image.NewRGBA(image.Rectangle{})); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := a.Words(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

// TestMeanConfidence tests averaging over non-empty words
func TestMeanConfidence(t *testing.T) {
	conf, n := MeanConfidence([]Word{{Text: "a", Confidence: 40}, {Text: "", Confidence: 0}, {Text: "b", Confidence: 80}})
	if n != 2 || conf != 60 {
		t.Errorf("expected 60 over 2 words, got %v over %d", conf, n)
	}
	if _, n := MeanConfidence(nil); n != 0 {
		t.Errorf("expected 0 words, got %d", n)
	}
}
