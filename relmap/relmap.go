package relmap

import (
	"strings"
	"unicode/utf8"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/render"
)

// Map is a page's text and images relative to a content box
type Map struct {
	// Bounds is the content box in page space
	Bounds   model.Bounds
	Elements []model.RelativeElement
}

// ToRelativeMap expresses the text and images of pe as fractions of the
// content box resolved for mode. Text made mostly of underscores is left
// out.
func ToRelativeMap(pe *model.PageElements, mode render.BoundsMode) (*Map, error) {
	b, err := render.ResolveBounds(pe, mode)
	if err != nil {
		return nil, err
	}

	m := &Map{Bounds: b}
	skipped := 0
	for _, t := range pe.Texts {
		if fillIn(t.Text) {
			skipped++
			continue
		}
		e := m.relative(pe.TextPageBox(t))
		e.Kind = model.KindText
		e.Text = t.Text
		e.FontName = t.FontName
		e.FontSize = t.FontSize
		e.IsBold = t.IsBold
		e.IsItalic = t.IsItalic
		m.Elements = append(m.Elements, e)
	}
	for _, img := range pe.Images {
		e := m.relative(img.BBox())
		e.Kind = model.KindImage
		e.ImageIndex = img.ImageIndex
		m.Elements = append(m.Elements, e)
	}

	diag.Printf("relmap: page %d mapped %d elements against %.1fx%.1f, %d fill-in fields skipped",
		pe.PageNumber, len(m.Elements), b.Width(), b.Height(), skipped)
	return m, nil
}

// relative converts a bottom-left page box into centre fractions with a
// top-left origin
func (m *Map) relative(box model.BBox) model.RelativeElement {
	w, h := m.Bounds.Width(), m.Bounds.Height()
	top := h - (box.Y - m.Bounds.MinY + box.Height)
	return model.RelativeElement{
		CenterX: (box.X - m.Bounds.MinX + box.Width/2) / w,
		CenterY: (top + box.Height/2) / h,
		Width:   box.Width / w,
		Height:  box.Height / h,
	}
}

// Absolute returns the bottom-left page box of e
func (m *Map) Absolute(e model.RelativeElement) model.BBox {
	w, h := m.Bounds.Width(), m.Bounds.Height()
	cx := m.Bounds.MinX + e.CenterX*w
	cy := m.Bounds.MinY + h - e.CenterY*h
	bw, bh := e.Width*w, e.Height*h
	return model.BBox{X: cx - bw/2, Y: cy - bh/2, Width: bw, Height: bh}
}

// AspectRatio returns width over height of the content box
func (m *Map) AspectRatio() float64 {
	return m.Bounds.Width() / m.Bounds.Height()
}

// Texts returns the number of text elements
func (m *Map) Texts() int {
	n := 0
	for _, e := range m.Elements {
		if e.Kind == model.KindText {
			n++
		}
	}
	return n
}

// fillIn reports whether more than half of s is underscores, as in a form
// field like "Name: ________"
func fillIn(s string) bool {
	return strings.Count(s, "_") > utf8.RuneCountInString(s)/2
}
