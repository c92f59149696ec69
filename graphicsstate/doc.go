// Package graphicsstate tracks the PDF graphics state and turns painted
// paths into page-space rectangles and line segments.
//
// # Graphics State
//
// GraphicsState holds the CTM, line width and text state. Save and Restore
// implement the q/Q stack:
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()                              // q
//	gs.Concat(model.Scale(2, 2))           // cm
//	gs.SetFont("F1", 12)                   // Tf
//	_ = gs.Restore()                       // Q
//
// RenderingMatrix combines the text parameters, text matrix and CTM into
// the matrix that maps one glyph em onto the page.
//
// # Operations
//
// A content stream walk produces a flat []Op. Each Op is one of:
//   - PaintOp - subpaths with the CTM in force when they were painted
//   - ImageOp - an image XObject drawn with Do
//   - GlyphOp - one shown glyph with its rendering matrix
//
// # Path Geometry
//
// PathExtractor folds the paint operations into Geometry. A subpath of four
// or five straight points that closes and has exactly two distinct x and y
// values becomes a Rectangle. Every straight segment of a stroked subpath
// becomes a LineSegment. A stroked box therefore yields both a rectangle and
// its four edges.
package graphicsstate
