// Package model defines the records that flow through the extraction,
// crop-resolution, rendering and calibration pipeline.
//
// # Coordinate Conventions
//
// Page geometry uses PDF page space: points (1/72 inch) with the origin at
// the bottom-left corner. [Rectangle], [LineSegment], [EmbeddedImage] and the
// page and interior boxes of [PageElements] are all stored this way.
//
// [TextElement] boxes are the exception: they are stored with a top-left
// origin, converted once at extraction time. [PageElements.TextPageBox]
// converts them back using the page's media height.
//
// Raster output ([RenderedElement]) uses pixels with a top-left origin.
// [RelativeElement] values are fractions of a content box, also top-left.
//
// # Geometry
//
//   - [Point] - 2D point with distance and tolerance comparison
//   - [BBox] - origin plus size box with union and vertical flip
//   - [Bounds] - min/max extents used for content boxes
//   - [Matrix] - 2D affine transformation in PDF row-vector form
//
// # Errors
//
// Page-level failures are returned as [*Error] values tagged with an
// [ErrorKind]. Each kind has a sentinel usable with errors.Is:
//
//	if errors.Is(err, model.ErrCropMarksNotFound) {
//	    // fall back to the PDF crop box
//	}
package model
