package graphicsstate

import (
	"fmt"
	"math"

	"github.com/tsawler/pagecrop/model"
)

// GraphicsState represents the parts of the PDF graphics state that affect
// where geometry and glyphs land on the page.
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	// Line width in user space units
	LineWidth float64

	// Text state
	Text TextState

	// Saved states (q/Q)
	stack []GraphicsState
}

// TextState represents text-specific state
type TextState struct {
	FontName          string
	FontSize          float64
	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent
	Leading           float64
	Rise              float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// NewGraphicsState creates a new graphics state with default values
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:       model.Identity(),
		LineWidth: 1.0,
		Text: TextState{
			FontSize:          12.0,
			HorizontalScaling: 100.0,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() {
	saved := *gs
	saved.stack = nil
	gs.stack = append(gs.stack, saved)
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	saved := gs.stack[len(gs.stack)-1]
	stack := gs.stack[:len(gs.stack)-1]
	*gs = saved
	gs.stack = stack
	return nil
}

// Concat pre-multiplies m onto the CTM (cm operator)
func (gs *GraphicsState) Concat(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetLineWidth sets the line width (w operator)
func (gs *GraphicsState) SetLineWidth(width float64) {
	gs.LineWidth = width
}

// DeviceLineWidth returns the line width scaled by the CTM. Non-uniform
// scaling is averaged.
func (gs *GraphicsState) DeviceLineWidth() float64 {
	sx := math.Hypot(gs.CTM[0], gs.CTM[1])
	sy := math.Hypot(gs.CTM[2], gs.CTM[3])
	return gs.LineWidth * (sx + sy) / 2
}

// SetFont sets the current font (Tf operator)
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
}

// BeginText resets the text matrices (BT operator)
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// SetTextMatrix sets the text matrix (Tm operator)
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText starts a new line offset from the current one (Td operator)
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading translates text and sets leading (TD operator)
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine moves to next line (T* operator)
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// RenderingMatrix returns the matrix mapping glyph space (one unit per em)
// to page space for the glyph about to be shown.
func (gs *GraphicsState) RenderingMatrix() model.Matrix {
	t := gs.Text
	params := model.Matrix{t.FontSize * t.HorizontalScaling / 100, 0, 0, t.FontSize, 0, t.Rise}
	return params.Multiply(t.TextMatrix).Multiply(gs.CTM)
}

// AdvanceGlyph moves the text matrix past a glyph of width w0 (in
// thousandths of an em). isSpace applies word spacing.
func (gs *GraphicsState) AdvanceGlyph(w0 float64, isSpace bool) {
	t := gs.Text
	tx := w0/1000*t.FontSize + t.CharSpacing
	if isSpace {
		tx += t.WordSpacing
	}
	tx *= t.HorizontalScaling / 100
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(t.TextMatrix)
}

// Kern applies a TJ array adjustment, given in thousandths of an em.
func (gs *GraphicsState) Kern(adjust float64) {
	t := gs.Text
	tx := -adjust / 1000 * t.FontSize * t.HorizontalScaling / 100
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(t.TextMatrix)
}
