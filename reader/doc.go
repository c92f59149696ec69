// Package reader opens PDF documents and extracts the raw elements of a
// page.
//
// # Opening Documents
//
// Use [Open] for files on disk and [OpenBytes] for documents in memory.
// Encrypted files need [OpenWithPassword]; a wrong or missing password
// yields a DocumentLocked error.
//
//	doc, err := reader.Open("label.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
// # Page Extraction
//
// [Document.ExtractPage] walks a page's content streams and returns a
// [model.PageElements] holding:
//
//   - words or lines of text, with top-left boxes
//   - placed images with decoded pixels
//   - rectangles and lines recovered from painted paths
//   - the page's crop box, with MediaBox and CropBox inherited from the
//     page tree
//
// Image pixels come from pdfcpu, which understands every image filter. An
// image pdfcpu cannot produce is decoded from its stream directly; if that
// fails too the image is logged and skipped.
package reader
