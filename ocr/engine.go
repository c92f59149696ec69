package ocr

import (
	"errors"
	"fmt"
	"image"

	"github.com/tsawler/pagecrop/model"
)

// ErrEmptyImage is returned when an image with no pixels is analyzed
var ErrEmptyImage = errors.New("ocr: image is empty")

// Word is one recognized word. Box is in pixels of the analyzed image,
// top-left origin. Confidence runs from 0 to 100.
type Word struct {
	Text        string
	Box         image.Rectangle
	Confidence  float64
	Orientation model.Orientation
}

// Recognizer finds the words in an image
type Recognizer interface {
	Words(img image.Image) ([]Word, error)
}

// Engine is a word recognizer whose page segmentation mode can be
// switched. Engines are single-threaded: one per goroutine.
type Engine interface {
	Recognizer
	PageSegMode() PageSegMode
	SetPageSegMode(mode PageSegMode) error
}

// WithPageSegMode runs fn with e switched to mode and puts the previous
// mode back on every return path, including a panic in fn.
func WithPageSegMode(e Engine, mode PageSegMode, fn func() error) (err error) {
	prev := e.PageSegMode()
	if prev == mode {
		return fn()
	}
	if err := e.SetPageSegMode(mode); err != nil {
		return fmt.Errorf("set page segmentation mode %s: %w", mode, err)
	}
	defer func() {
		if rerr := e.SetPageSegMode(prev); rerr != nil && err == nil {
			err = fmt.Errorf("restore page segmentation mode %s: %w", prev, rerr)
		}
	}()
	return fn()
}

// MeanConfidence returns the average confidence of words with text, and
// how many there were
func MeanConfidence(words []Word) (float64, int) {
	var total float64
	var n int
	for _, w := range words {
		if w.Text == "" {
			continue
		}
		total += w.Confidence
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return total / float64(n), n
}
