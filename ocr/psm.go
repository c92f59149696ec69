package ocr

import "fmt"

// PageSegMode tells the engine what layout to expect. The values are
// Tesseract's, so they pass straight through to gosseract.
type PageSegMode int

// Page segmentation modes
const (
	PSM_OSD_ONLY               PageSegMode = 0
	PSM_AUTO_OSD               PageSegMode = 1
	PSM_AUTO_ONLY              PageSegMode = 2
	PSM_AUTO                   PageSegMode = 3 // engine default
	PSM_SINGLE_COLUMN          PageSegMode = 4
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5
	PSM_SINGLE_BLOCK           PageSegMode = 6 // calibration photos
	PSM_SINGLE_LINE            PageSegMode = 7
	PSM_SINGLE_WORD            PageSegMode = 8 // re-reading one flagged word
	PSM_CIRCLE_WORD            PageSegMode = 9
	PSM_SINGLE_CHAR            PageSegMode = 10
	PSM_SPARSE_TEXT            PageSegMode = 11
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12
	PSM_RAW_LINE               PageSegMode = 13
)

var psmNames = [...]string{
	"osd-only", "auto-osd", "auto-only", "auto", "single-column",
	"single-block-vertical", "single-block", "single-line", "single-word",
	"circle-word", "single-char", "sparse-text", "sparse-text-osd", "raw-line",
}

func (m PageSegMode) String() string {
	if m < 0 || int(m) >= len(psmNames) {
		return fmt.Sprintf("psm(%d)", int(m))
	}
	return psmNames[m]
}
