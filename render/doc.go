// Package render paints the elements of a page onto a raster.
//
// The content box is chosen by a [BoundsMode]: the interior box found from
// crop marks, the largest rectangle on the page, or the union of all
// elements inside the page box. The raster is ceil(width·dpi/72) by
// ceil(height·dpi/72) pixels with the content box's top-left corner at the
// origin.
//
// Basic usage:
//
//	r := render.New(render.DefaultOptions())
//	res, err := r.RenderToFile(page, "input.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	render.SortByPosition(res.Elements)
//	fmt.Println(res.OutputPath)
//
// Every painted element is also returned as a [model.RenderedElement] in
// pixels, so callers can tell where each piece of text and image landed.
package render
