package reader

import (
	"math"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pagecrop/model"
)

// maxInheritDepth bounds the walk up the page tree
const maxInheritDepth = 10

// letter is used when no MediaBox is found anywhere in the tree
var letter = model.Bounds{MinX: 0, MinY: 0, MaxX: 612, MaxY: 792}

// inherited looks key up on the page and then on its ancestors
func inherited(page pdf.Value, key string) pdf.Value {
	v := page
	for i := 0; i < maxInheritDepth && !v.IsNull(); i++ {
		if val := v.Key(key); !val.IsNull() {
			return val
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

// parseBox reads a [llx lly urx ury] array, normalising corner order
func parseBox(v pdf.Value) (model.Bounds, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return model.Bounds{}, false
	}
	var c [4]float64
	for i := range c {
		c[i] = v.Index(i).Float64()
		if math.IsNaN(c[i]) || math.IsInf(c[i], 0) {
			return model.Bounds{}, false
		}
	}
	b := model.Bounds{
		MinX: math.Min(c[0], c[2]),
		MinY: math.Min(c[1], c[3]),
		MaxX: math.Max(c[0], c[2]),
		MaxY: math.Max(c[1], c[3]),
	}
	if b.IsDegenerate() {
		return model.Bounds{}, false
	}
	return b, true
}

// PageBoxes holds the boxes that frame a page
type PageBoxes struct {
	Media model.Bounds
	Crop  model.Bounds
}

// pageBoxes resolves MediaBox and CropBox with inheritance. CropBox
// defaults to MediaBox and is clipped to it.
func pageBoxes(page pdf.Value) PageBoxes {
	media, ok := parseBox(inherited(page, "MediaBox"))
	if !ok {
		media = letter
	}
	crop, ok := parseBox(inherited(page, "CropBox"))
	if !ok {
		return PageBoxes{Media: media, Crop: media}
	}
	crop = crop.Clamp(media)
	if crop.IsDegenerate() {
		crop = media
	}
	return PageBoxes{Media: media, Crop: crop}
}

// PageBoxes returns the boxes of the 1-based page n
func (d *Document) PageBoxes(n int) (PageBoxes, error) {
	p, err := d.page(n)
	if err != nil {
		return PageBoxes{}, err
	}
	return pageBoxes(p.V), nil
}
