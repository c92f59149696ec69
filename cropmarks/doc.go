// Package cropmarks recovers the trimmed page from a print-ready sheet.
//
// Print sheets carry two kinds of furniture outside the real page. Bleed
// marks are rows of small boxes joined by lines; crop marks are short
// perpendicular line pairs at each corner of the trimmed page. The
// [Resolver] removes the first, then reads the second to get the crop box:
//
//	r := cropmarks.NewResolver()
//	trimmed, err := r.Resolve(page)
//	if errors.Is(err, model.ErrCropMarksNotFound) {
//		// page has no crop marks, keep its own box
//	}
//
// A crop mark is any pair of lines that are perpendicular within 5 degrees
// and fit in a 50pt box. Its corner is where the two lines' extensions
// cross, so marks drawn with a gap at the corner are still placed exactly.
// When a sheet holds more than four candidates, the one closest to each
// outer corner of their extent is kept.
//
// Bleed rows near the top or bottom page edge are left alone, as are lines
// reaching within 100pt of a page corner, since that is where crop marks
// are drawn.
package cropmarks
