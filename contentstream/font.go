package contentstream

import (
	"math"

	"github.com/ledongthuc/pdf"
)

// fontInfo caches what glyph placement needs from a font resource
type fontInfo struct {
	baseFont string
	enc      pdf.TextEncoding
	font     pdf.Font
	twoByte  bool

	// CID fonts: per-code widths and the default width
	cidWidths map[int]float64
	dw        float64

	ascent  float64
	descent float64
}

// loadFont reads a font dictionary. A null value yields a font that passes
// bytes through and uses the default metrics.
func loadFont(v pdf.Value) *fontInfo {
	fi := &fontInfo{ascent: DefaultAscent, descent: DefaultDescent}
	if v.IsNull() {
		return fi
	}

	fi.font = pdf.Font{V: v}
	fi.baseFont = v.Key("BaseFont").Name()
	fi.enc = safeEncoder(fi.font)

	desc := v.Key("FontDescriptor")
	if v.Key("Subtype").Name() == "Type0" {
		fi.twoByte = true
		fi.dw = 1000
		if d := v.Key("DescendantFonts").Index(0); !d.IsNull() {
			if dw := d.Key("DW"); !dw.IsNull() {
				fi.dw = dw.Float64()
			}
			fi.cidWidths = parseCIDWidths(d.Key("W"))
			desc = d.Key("FontDescriptor")
		}
	}

	if a := desc.Key("Ascent").Float64(); a > 0 {
		fi.ascent = a / 1000
	}
	if d := math.Abs(desc.Key("Descent").Float64()); d > 0 {
		fi.descent = d / 1000
	}
	return fi
}

// safeEncoder builds the font's text decoder. Malformed CMaps make the
// underlying library panic; those fonts fall back to raw bytes.
func safeEncoder(f pdf.Font) (enc pdf.TextEncoding) {
	defer func() {
		if recover() != nil {
			enc = nil
		}
	}()
	return f.Encoder()
}

// split breaks a shown string into character codes
func (fi *fontInfo) split(raw string) []string {
	step := 1
	if fi.twoByte {
		step = 2
	}
	codes := make([]string, 0, len(raw)/step+1)
	for i := 0; i < len(raw); i += step {
		end := i + step
		if end > len(raw) {
			end = len(raw)
		}
		codes = append(codes, raw[i:end])
	}
	return codes
}

func (fi *fontInfo) decode(code string) string {
	if fi.enc == nil {
		return code
	}
	return fi.enc.Decode(code)
}

// width returns the advance of a code in thousandths of an em
func (fi *fontInfo) width(code string) float64 {
	c := 0
	for i := 0; i < len(code); i++ {
		c = c<<8 | int(code[i])
	}

	var w float64
	if fi.twoByte {
		var ok bool
		if w, ok = fi.cidWidths[c]; !ok {
			w = fi.dw
		}
	} else if !fi.font.V.IsNull() {
		w = fi.font.Width(c)
	}

	if w <= 0 {
		return DefaultGlyphWidth
	}
	return w
}

// parseCIDWidths reads a CIDFont /W array, which mixes the forms
// "c [w1 w2 ...]" and "cfirst clast w".
func parseCIDWidths(v pdf.Value) map[int]float64 {
	widths := map[int]float64{}
	for i := 0; i < v.Len(); {
		first := int(v.Index(i).Int64())
		if i+1 >= v.Len() {
			break
		}
		next := v.Index(i + 1)
		if next.Kind() == pdf.Array {
			for j := 0; j < next.Len(); j++ {
				widths[first+j] = next.Index(j).Float64()
			}
			i += 2
			continue
		}
		if i+2 >= v.Len() {
			break
		}
		last := int(next.Int64())
		w := v.Index(i + 2).Float64()
		for c := first; c <= last && c-first < 65536; c++ {
			widths[c] = w
		}
		i += 3
	}
	return widths
}
