// Package contentstream walks a page's content streams and flattens them
// into drawing operations.
//
// Tokenising is left to ledongthuc/pdf's Interpret; this package keeps the
// graphics state and turns operators into [graphicsstate.Op] values:
//
//	res, err := contentstream.Walk(page, 1)
//	for _, op := range res.Ops {
//	    switch op.Kind {
//	    case graphicsstate.OpPaint: // path painted with S, f, B, ...
//	    case graphicsstate.OpImage: // image XObject drawn with Do
//	    case graphicsstate.OpGlyph: // one shown character code
//	    }
//	}
//
// # Operators
//
// Graphics state: q, Q, cm, w, gs (LW only).
//
// Paths: m, l, c, v, y, h, re, then S, s, f, F, f*, B, B*, b, b* and n.
// Clipping operators are ignored.
//
// Text: BT, Tf, Tc, Tw, Tz, TL, Ts, Td, TD, Tm, T*, Tj, TJ, ' and ".
//
// XObjects: Do places images and expands forms with their /Matrix and
// /Resources, up to a fixed nesting depth.
//
// # Fonts
//
// Character codes are one byte, or two for Type0 fonts. Widths come from
// /Widths or the CIDFont /W array; codes without a width advance by
// [DefaultGlyphWidth]. Ascent and descent come from the font descriptor.
package contentstream
