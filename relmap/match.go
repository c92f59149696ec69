package relmap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
)

// Match pairs a text element of the map with a recognized word
type Match struct {
	// Element indexes Map.Elements
	Element int

	// Word indexes the recognized words
	Word int

	// RelX and RelY are the element's relative centre
	RelX, RelY float64

	// PixelX and PixelY are the centre of the word's box
	PixelX, PixelY float64
}

// Normalize folds s for matching: compatibility forms are unified, case is
// lowered, and whitespace and underscores are dropped.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Lower(language.Und).String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return -1
		}
		return r
	}, s)
}

// Match pairs each text element of m with the first recognized word that
// reads the same. A word matches when the normalized texts are equal, or
// when one contains the other and the shorter is at least
// MinContainLength runes. Words at or below MinConfidence and elements
// shorter than MinTextLength are ignored.
func (c *Calibrator) Match(m *Map, words []ocr.Word) []Match {
	type candidate struct {
		text string
		n    int
		idx  int
	}
	cands := make([]candidate, 0, len(words))
	for i, w := range words {
		if w.Confidence <= c.opts.MinConfidence {
			continue
		}
		t := Normalize(w.Text)
		if t == "" {
			continue
		}
		cands = append(cands, candidate{text: t, n: utf8.RuneCountInString(t), idx: i})
	}

	var matches []Match
	for i, e := range m.Elements {
		if e.Kind != model.KindText {
			continue
		}
		t := Normalize(e.Text)
		n := utf8.RuneCountInString(t)
		if n < c.opts.MinTextLength {
			continue
		}
		for _, w := range cands {
			if !c.sameText(t, n, w.text, w.n) {
				continue
			}
			box := words[w.idx].Box
			matches = append(matches, Match{
				Element: i,
				Word:    w.idx,
				RelX:    e.CenterX,
				RelY:    e.CenterY,
				PixelX:  float64(box.Min.X+box.Max.X) / 2,
				PixelY:  float64(box.Min.Y+box.Max.Y) / 2,
			})
			break
		}
	}
	return matches
}

func (c *Calibrator) sameText(a string, an int, b string, bn int) bool {
	if a == b {
		return true
	}
	if an >= bn {
		return bn >= c.opts.MinContainLength && strings.Contains(a, b)
	}
	return an >= c.opts.MinContainLength && strings.Contains(b, a)
}
