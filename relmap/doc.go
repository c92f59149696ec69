// Package relmap expresses page elements as fractions of their content box
// and aligns them with a photographed or scanned copy of the same page.
//
// A relative map is resolution independent: each element keeps its centre
// and size as fractions of the box chosen by a [render.BoundsMode], with a
// top-left origin. To calibrate, the words of the target image are
// recognized and matched against the map's text. Two or more matches fix
// the crop of the target by least squares; a single match fixes it by a
// sweep over crop widths at the map's aspect ratio; with no match the whole
// image is used.
//
//	m, err := relmap.ToRelativeMap(pe, render.ModeCropMarks)
//	if err != nil {
//		return err
//	}
//	cal := relmap.NewCalibrator(recognizer, relmap.DefaultOptions())
//	res, err := cal.CalibrateFile(m, "scan.jpg", "images")
package relmap
