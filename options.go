package pagecrop

import (
	"github.com/tsawler/pagecrop/cropmarks"
	"github.com/tsawler/pagecrop/elements"
	"github.com/tsawler/pagecrop/ocr"
	"github.com/tsawler/pagecrop/reader"
	"github.com/tsawler/pagecrop/relmap"
	"github.com/tsawler/pagecrop/render"
)

// Options holds the configuration of an Extractor.
type Options struct {
	// Page selection, 1-based
	page     int
	password string

	// Pipeline stages
	extract     reader.ExtractOptions
	aggregation elements.Config
	cropMarks   cropmarks.Options
	stripMarks  bool

	// Outputs
	render      render.Options
	calibration relmap.Options
	analysis    ocr.Options
}

// defaultOptions returns the default options: page 1, marks left in place,
// cropmarks bounds at 300 DPI.
func defaultOptions() Options {
	return Options{
		page:        1,
		extract:     reader.DefaultExtractOptions(),
		aggregation: elements.DefaultConfig(),
		cropMarks:   cropmarks.DefaultOptions(),
		render:      render.DefaultOptions(),
		calibration: relmap.DefaultOptions(),
		analysis:    ocr.DefaultOptions(),
	}
}

// clone creates a copy of Options. None of the option structs hold slices
// or maps, so a field copy is deep.
func (o Options) clone() Options {
	return Options{
		page:        o.page,
		password:    o.password,
		extract:     o.extract,
		aggregation: o.aggregation,
		cropMarks:   o.cropMarks,
		stripMarks:  o.stripMarks,
		render:      o.render,
		calibration: o.calibration,
		analysis:    o.analysis,
	}
}
