package contentstream

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pagecrop/graphicsstate"
	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// maxFormDepth bounds form XObject nesting, which also breaks cycles
const maxFormDepth = 12

// Glyph metrics used when a font has no usable descriptor or widths
const (
	DefaultGlyphWidth = 500.0 // thousandths of an em
	DefaultAscent     = 0.95
	DefaultDescent    = 0.25
)

// Result is the flattened drawing of one page
type Result struct {
	Ops []graphicsstate.Op

	// Images maps an image XObject resource name to its stream. The first
	// definition of a name wins.
	Images map[string]pdf.Value
}

type walker struct {
	page  int
	gs    *graphicsstate.GraphicsState
	path  *graphicsstate.Path
	res   Result
	depth int
}

// Walk interprets every content stream of a page and returns the paint,
// image and glyph operations in drawing order. Form XObjects are expanded
// in place. If a stream cannot be interpreted the operations collected so
// far are returned along with the error.
func Walk(page pdf.Page, pageNum int) (Result, error) {
	w := &walker{
		page: pageNum,
		gs:   graphicsstate.NewGraphicsState(),
		path: graphicsstate.NewPath(),
		res:  Result{Images: map[string]pdf.Value{}},
	}

	resources := page.Resources()
	for _, strm := range contentStreams(page.V.Key("Contents")) {
		if err := w.run(strm, resources); err != nil {
			return w.res, fmt.Errorf("page %d: %w", pageNum, err)
		}
	}
	return w.res, nil
}

// contentStreams flattens /Contents, which may be one stream or an array
func contentStreams(v pdf.Value) []pdf.Value {
	switch v.Kind() {
	case pdf.Stream:
		return []pdf.Value{v}
	case pdf.Array:
		out := make([]pdf.Value, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if s := v.Index(i); s.Kind() == pdf.Stream {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (w *walker) run(strm, resources pdf.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	fonts := map[string]*fontInfo{}
	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		w.do(op, args, resources, fonts)
	})
	return nil
}

func (w *walker) do(op string, args []pdf.Value, resources pdf.Value, fonts map[string]*fontInfo) {
	gs := w.gs
	switch op {
	// graphics state
	case "q":
		gs.Save()
	case "Q":
		if err := gs.Restore(); err != nil {
			diag.Printf("page %d: %v", w.page, err)
		}
	case "cm":
		if len(args) == 6 {
			gs.Concat(matrix(args))
		}
	case "w":
		if len(args) == 1 {
			gs.SetLineWidth(args[0].Float64())
		}
	case "gs":
		if len(args) == 1 {
			ext := resources.Key("ExtGState").Key(args[0].Name())
			if lw := ext.Key("LW"); !lw.IsNull() {
				gs.SetLineWidth(lw.Float64())
			}
		}

	// path construction
	case "m":
		if len(args) == 2 {
			w.path.MoveTo(args[0].Float64(), args[1].Float64())
		}
	case "l":
		if len(args) == 2 {
			w.path.LineTo(args[0].Float64(), args[1].Float64())
		}
	case "c":
		if len(args) == 6 {
			w.path.CurveTo(args[0].Float64(), args[1].Float64(), args[2].Float64(),
				args[3].Float64(), args[4].Float64(), args[5].Float64())
		}
	case "v":
		if len(args) == 4 {
			w.path.CurveToV(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
		}
	case "y":
		if len(args) == 4 {
			w.path.CurveToY(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
		}
	case "h":
		w.path.ClosePath()
	case "re":
		if len(args) == 4 {
			w.path.Rectangle(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
		}

	// path painting
	case "S":
		w.paint(true, false)
	case "s":
		w.path.ClosePath()
		w.paint(true, false)
	case "f", "F", "f*":
		w.paint(false, true)
	case "B", "B*":
		w.paint(true, true)
	case "b", "b*":
		w.path.ClosePath()
		w.paint(true, true)
	case "n":
		w.path.Clear()

	// text
	case "BT":
		gs.BeginText()
	case "Tf":
		if len(args) == 2 {
			gs.SetFont(args[0].Name(), args[1].Float64())
		}
	case "Tc":
		if len(args) == 1 {
			gs.Text.CharSpacing = args[0].Float64()
		}
	case "Tw":
		if len(args) == 1 {
			gs.Text.WordSpacing = args[0].Float64()
		}
	case "Tz":
		if len(args) == 1 {
			gs.Text.HorizontalScaling = args[0].Float64()
		}
	case "TL":
		if len(args) == 1 {
			gs.Text.Leading = args[0].Float64()
		}
	case "Ts":
		if len(args) == 1 {
			gs.Text.Rise = args[0].Float64()
		}
	case "Td":
		if len(args) == 2 {
			gs.TranslateText(args[0].Float64(), args[1].Float64())
		}
	case "TD":
		if len(args) == 2 {
			gs.TranslateTextSetLeading(args[0].Float64(), args[1].Float64())
		}
	case "Tm":
		if len(args) == 6 {
			gs.SetTextMatrix(matrix(args))
		}
	case "T*":
		gs.NextLine()
	case "Tj":
		if len(args) == 1 {
			w.show(args[0].RawString(), resources, fonts)
		}
	case "'":
		if len(args) == 1 {
			gs.NextLine()
			w.show(args[0].RawString(), resources, fonts)
		}
	case "\"":
		if len(args) == 3 {
			gs.Text.WordSpacing = args[0].Float64()
			gs.Text.CharSpacing = args[1].Float64()
			gs.NextLine()
			w.show(args[2].RawString(), resources, fonts)
		}
	case "TJ":
		if len(args) == 1 {
			arr := args[0]
			for i := 0; i < arr.Len(); i++ {
				item := arr.Index(i)
				switch item.Kind() {
				case pdf.String:
					w.show(item.RawString(), resources, fonts)
				case pdf.Integer, pdf.Real:
					gs.Kern(item.Float64())
				}
			}
		}

	// external objects
	case "Do":
		if len(args) == 1 {
			w.xobject(args[0].Name(), resources)
		}
	}
}

// paint records the current path and starts a new one
func (w *walker) paint(stroke, fill bool) {
	if !w.path.IsEmpty() {
		w.res.Ops = append(w.res.Ops, graphicsstate.NewPaintOp(graphicsstate.PaintOp{
			Subpaths:  w.path.Subpaths(),
			CTM:       w.gs.CTM,
			LineWidth: w.gs.DeviceLineWidth(),
			Stroke:    stroke,
			Fill:      fill,
		}))
	}
	w.path.Clear()
}

func (w *walker) xobject(name string, resources pdf.Value) {
	xobj := resources.Key("XObject").Key(name)
	switch xobj.Key("Subtype").Name() {
	case "Image":
		w.res.Ops = append(w.res.Ops, graphicsstate.NewImageOp(graphicsstate.ImageOp{
			Name:             name,
			CTM:              w.gs.CTM,
			Width:            int(xobj.Key("Width").Int64()),
			Height:           int(xobj.Key("Height").Int64()),
			ColorSpace:       colorSpaceName(xobj.Key("ColorSpace")),
			BitsPerComponent: int(xobj.Key("BitsPerComponent").Int64()),
			Filter:           filterName(xobj.Key("Filter")),
		}))
		if _, ok := w.res.Images[name]; !ok {
			w.res.Images[name] = xobj
		}

	case "Form":
		if w.depth >= maxFormDepth {
			diag.Printf("page %d: form %s nested too deeply, skipped", w.page, name)
			return
		}
		depth := w.gs.Depth()
		w.gs.Save()
		if m := xobj.Key("Matrix"); m.Len() == 6 {
			args := make([]pdf.Value, 6)
			for i := range args {
				args[i] = m.Index(i)
			}
			w.gs.Concat(matrix(args))
		}
		formRes := xobj.Key("Resources")
		if formRes.IsNull() {
			formRes = resources
		}

		// a form starts with an empty path
		outer := w.path
		w.path = graphicsstate.NewPath()
		w.depth++
		if err := w.run(xobj, formRes); err != nil {
			diag.Printf("page %d: form %s: %v", w.page, name, err)
		}
		w.depth--
		w.path = outer

		for w.gs.Depth() > depth {
			_ = w.gs.Restore()
		}

	default:
		diag.Printf("page %d: unknown XObject %s skipped", w.page, name)
	}
}

// show emits one glyph op per character code in raw and advances the text
// matrix past each.
func (w *walker) show(raw string, resources pdf.Value, fonts map[string]*fontInfo) {
	fontName := w.gs.Text.FontName
	fi, ok := fonts[fontName]
	if !ok {
		fi = loadFont(resources.Key("Font").Key(fontName))
		fonts[fontName] = fi
	}

	for _, code := range fi.split(raw) {
		w0 := fi.width(code)
		text := fi.decode(code)
		w.res.Ops = append(w.res.Ops, graphicsstate.NewGlyphOp(graphicsstate.GlyphOp{
			Text:     text,
			FontName: fi.baseFont,
			Trm:      w.gs.RenderingMatrix(),
			Advance:  w0 / 1000,
			Ascent:   fi.ascent,
			Descent:  fi.descent,
		}))
		w.gs.AdvanceGlyph(w0, len(code) == 1 && code[0] == ' ')
	}
}

func matrix(args []pdf.Value) model.Matrix {
	var m model.Matrix
	for i := 0; i < 6; i++ {
		m[i] = args[i].Float64()
	}
	return m
}

func colorSpaceName(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Name:
		return v.Name()
	case pdf.Array:
		if v.Len() > 0 {
			return v.Index(0).Name()
		}
	}
	return ""
}

func filterName(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Name:
		return v.Name()
	case pdf.Array:
		names := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			names = append(names, v.Index(i).Name())
		}
		return strings.Join(names, " ")
	}
	return ""
}
