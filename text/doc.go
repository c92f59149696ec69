// Package text turns shown glyphs into positioned words.
//
// Glyphs come from the content stream walker as [graphicsstate.GlyphOp]
// values. [GlyphFromOp] places each one in page space, [AssembleWords]
// joins consecutive glyphs into words, and [ToElements] converts the words
// into [model.TextElement] records with a top-left origin:
//
//	var glyphs []text.Glyph
//	for _, op := range ops {
//	    if op.Kind == graphicsstate.OpGlyph {
//	        glyphs = append(glyphs, text.GlyphFromOp(op.Glyph))
//	    }
//	}
//	words := text.AssembleWords(glyphs, text.DefaultOptions())
//	elems := text.ToElements(words, mediaHeight)
//
// # Word Breaks
//
// A word ends at a whitespace glyph, a change of font or rotation, or a gap
// along the baseline wider than a fraction of the font size. A jump off the
// baseline or backwards along it also ends the word.
//
// # Orientation
//
// Words rotated by 90 or 270 degrees are vertical. Other words are vertical
// when taller than wide by more than [VerticalAspect], or [SingleCharAspect]
// for single characters. A word with an empty box has unknown orientation.
package text
