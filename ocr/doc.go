// Package ocr finds words in raster images.
//
// The [Client] wraps the Tesseract OCR engine via gosseract. It requires
// the "ocr" build tag and Tesseract to be installed on the system. On
// macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag every Client method returns [ErrOCRNotEnabled].
//
// The [Analyzer] works against any [Engine] and adds the passes a raw
// engine lacks: graphic masking, thresholding, a best quarter-turn search
// and a second look at words set vertically. Page segmentation mode
// changes made during a pass are always undone through
// [WithPageSegMode].
package ocr
