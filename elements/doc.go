// Package elements reconciles the raw geometry extracted from a page.
//
// Paths and lines come out of the content stream independently, so the
// same box can show up as a rectangle, as four lines, or both. The
// [Aggregator] rebuilds rectangles that were drawn as four separate
// lines, drops lines that only trace a rectangle's edge, and finds the
// page's interior content box.
//
// # Interior Box
//
// The interior box is taken from short corner marks when the page has
// them: every crossing of a 10-30pt horizontal and vertical line is a
// corner candidate, nearby candidates are merged, and the two most shared
// X and Y values frame the box. Otherwise the box spans the midpoints of
// the outermost horizontal and vertical lines.
package elements
