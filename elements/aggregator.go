package elements

import (
	"github.com/tsawler/pagecrop/model"
)

// Default thresholds in points
const (
	DefaultMinSideSeparation = 10.0
	DefaultSpanTolerance     = 10.0
	DefaultDuplicateTol      = 5.0
	DefaultEdgeTolerance     = 2.0
	DefaultSmallRectMax      = 30.0
	DefaultRectStrokeWidth   = 1.0

	DefaultCornerMinLength = 10.0
	DefaultCornerMaxLength = 30.0
	DefaultIntersectionTol = 5.0
	DefaultClusterTol      = 5.0
	DefaultCoordTolerance  = 10.0
)

// Config holds the aggregation thresholds
type Config struct {
	// MinSideSeparation is the smallest distance between the two horizontal
	// (or vertical) lines of a reconstructed rectangle
	MinSideSeparation float64

	// SpanTolerance is how far short of a side a line may stop and still
	// cover it
	SpanTolerance float64

	// DuplicateTol is the per-bound distance below which a reconstructed
	// rectangle repeats an existing one
	DuplicateTol float64

	// EdgeTolerance is how close a line must lie to a rectangle edge to be
	// treated as that edge
	EdgeTolerance float64

	// SmallRectMax exempts rectangles no larger than this on both sides
	// from the edge filter
	SmallRectMax float64

	// RectStrokeWidth is given to rectangles rebuilt from lines
	RectStrokeWidth float64

	// Corner-cluster refinement of the interior box
	CornerMinLength float64
	CornerMaxLength float64
	IntersectionTol float64
	ClusterTol      float64
	CoordTolerance  float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinSideSeparation: DefaultMinSideSeparation,
		SpanTolerance:     DefaultSpanTolerance,
		DuplicateTol:      DefaultDuplicateTol,
		EdgeTolerance:     DefaultEdgeTolerance,
		SmallRectMax:      DefaultSmallRectMax,
		RectStrokeWidth:   DefaultRectStrokeWidth,
		CornerMinLength:   DefaultCornerMinLength,
		CornerMaxLength:   DefaultCornerMaxLength,
		IntersectionTol:   DefaultIntersectionTol,
		ClusterTol:        DefaultClusterTol,
		CoordTolerance:    DefaultCoordTolerance,
	}
}

// Aggregator reconciles the rectangles and lines of an extracted page
type Aggregator struct {
	config Config
}

// NewAggregator creates an aggregator with default thresholds
func NewAggregator() *Aggregator {
	return &Aggregator{config: DefaultConfig()}
}

// NewAggregatorWithConfig creates an aggregator with custom thresholds
func NewAggregatorWithConfig(config Config) *Aggregator {
	return &Aggregator{config: config}
}

// Aggregate returns a copy of pe where rectangles drawn as four separate
// lines have been rebuilt, lines that trace a rectangle edge have been
// dropped, and the interior box has been computed. The interior box is
// taken from all lines, before any are dropped.
func (a *Aggregator) Aggregate(pe *model.PageElements) *model.PageElements {
	out := pe.Clone()

	out.Rectangles = a.RectanglesFromLines(out.Lines, out.Rectangles)
	filtered := a.FilterEdgeLines(out.Lines, out.Rectangles)

	if box, ok := a.InteriorBox(out.Lines); ok {
		out.SetInteriorBounds(box)
	}
	out.Lines = filtered
	return out
}
