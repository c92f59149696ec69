package text

import (
	"math"
	"testing"

	"github.com/tsawler/pagecrop/graphicsstate"
	"github.com/tsawler/pagecrop/model"
)

// glyphRun lays out s at (x, y) with size-pt glyphs 0.5em wide
func glyphRun(s string, x, y, size float64, font string) []Glyph {
	var out []Glyph
	for _, r := range s {
		trm := model.Matrix{size, 0, 0, size, x, y}
		out = append(out, GlyphFromOp(&graphicsstate.GlyphOp{
			Text: string(r), FontName: font, Trm: trm,
			Advance: 0.5, Ascent: 0.75, Descent: 0.25,
		}))
		x += size * 0.5
	}
	return out
}

// TestGlyphFromOp tests glyph placement from the rendering matrix
func TestGlyphFromOp(t *testing.T) {
	g := GlyphFromOp(&graphicsstate.GlyphOp{
		Text: "A", FontName: "Helvetica",
		Trm:     model.Matrix{10, 0, 0, 10, 100, 200},
		Advance: 0.6, Ascent: 0.8, Descent: 0.2,
	})

	if g.Box.X != 100 || g.Box.Y != 198 || g.Box.Width != 6 || g.Box.Height != 10 {
		t.Errorf("expected box (100,198,6,10), got %+v", g.Box)
	}
	if g.End.X != 106 || g.End.Y != 200 {
		t.Errorf("expected end (106,200), got %+v", g.End)
	}
	if g.FontSize != 10 {
		t.Errorf("expected font size 10, got %f", g.FontSize)
	}
	if g.Rotation != 0 {
		t.Errorf("expected rotation 0, got %f", g.Rotation)
	}
}

// TestGlyphFromOp_Rotated tests a glyph on a vertical baseline
func TestGlyphFromOp_Rotated(t *testing.T) {
	g := GlyphFromOp(&graphicsstate.GlyphOp{
		Text: "A", Trm: model.Matrix{0, 10, -10, 0, 100, 200},
		Advance: 0.5, Ascent: 0.8, Descent: 0.2,
	})

	if math.Abs(g.Rotation-math.Pi/2) > 1e-9 {
		t.Errorf("expected rotation pi/2, got %f", g.Rotation)
	}
	if math.Abs(g.Box.Width-10) > 1e-9 || math.Abs(g.Box.Height-5) > 1e-9 {
		t.Errorf("expected 10x5 box, got %fx%f", g.Box.Width, g.Box.Height)
	}
}

// TestAssembleWords tests splitting on spaces and gaps
func TestAssembleWords(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, glyphRun("Hello world", 72, 700, 10, "Helvetica")...)
	// far to the right on the same baseline
	glyphs = append(glyphs, glyphRun("again", 400, 700, 10, "Helvetica")...)

	words := AssembleWords(glyphs, DefaultOptions())

	want := []string{"Hello", "world", "again"}
	if len(words) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(words))
	}
	for i, w := range want {
		if words[i].Text != w {
			t.Errorf("word %d: expected %q, got %q", i, w, words[i].Text)
		}
	}
	if !words[0].SpaceAfter {
		t.Error("expected space after first word")
	}
	if words[1].SpaceAfter {
		t.Error("expected no space after second word")
	}

	hello := words[0].Box
	if hello.X != 72 || hello.Width != 25 || hello.Height != 10 {
		t.Errorf("expected Hello box x=72 w=25 h=10, got %+v", hello)
	}
}

// TestAssembleWords_FontChange tests that a font switch starts a new word
func TestAssembleWords_FontChange(t *testing.T) {
	glyphs := glyphRun("ab", 0, 0, 10, "Helvetica")
	glyphs = append(glyphs, glyphRun("cd", 10, 0, 10, "Helvetica-Bold")...)

	words := AssembleWords(glyphs, DefaultOptions())
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[1].FontName != "Helvetica-Bold" {
		t.Errorf("expected bold font on second word, got %s", words[1].FontName)
	}
}

// TestAssembleWords_NewLine tests that a baseline jump starts a new word
func TestAssembleWords_NewLine(t *testing.T) {
	glyphs := glyphRun("ab", 0, 100, 10, "F")
	glyphs = append(glyphs, glyphRun("cd", 10, 86, 10, "F")...)

	if words := AssembleWords(glyphs, DefaultOptions()); len(words) != 2 {
		t.Errorf("expected 2 words, got %d", len(words))
	}
}

// TestAssembleWords_Ligature tests NFKC folding of ligature glyphs
func TestAssembleWords_Ligature(t *testing.T) {
	words := AssembleWords(glyphRun("ﬁne", 0, 0, 10, "F"), DefaultOptions())
	if len(words) != 1 || words[0].Text != "fine" {
		t.Errorf("expected single word \"fine\", got %+v", words)
	}
}

// TestAssembleWords_Empty tests assembly of no glyphs
func TestAssembleWords_Empty(t *testing.T) {
	if words := AssembleWords(nil, DefaultOptions()); len(words) != 0 {
		t.Errorf("expected no words, got %d", len(words))
	}
	if words := AssembleWords(glyphRun("   ", 0, 0, 10, "F"), DefaultOptions()); len(words) != 0 {
		t.Errorf("expected no words from spaces, got %d", len(words))
	}
}
