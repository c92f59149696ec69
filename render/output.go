package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
)

// Stem returns the file name of path without directory or extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath returns <dir>/<stem of source>_<suffix><ext>
func OutputPath(dir, source, suffix, ext string) string {
	return filepath.Join(dir, Stem(source)+"_"+suffix+ext)
}

// WritePNG encodes img to path, creating the directory if needed
func WritePNG(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// RenderToFile paints pe and writes <OutputDir>/<stem>_rendered.png, where
// the stem comes from source, usually the PDF path. With HTMLReport set it
// also writes <stem>_rendered.html.
func (r *Renderer) RenderToFile(pe *model.PageElements, source string) (*Result, error) {
	res, err := r.Render(pe)
	if err != nil {
		return nil, err
	}

	res.OutputPath = OutputPath(r.opts.OutputDir, source, "rendered", ".png")
	if err := WritePNG(res.OutputPath, res.Image); err != nil {
		return nil, err
	}
	diag.Printf("render: wrote %s with %d elements", res.OutputPath, len(res.Elements))

	if r.opts.HTMLReport {
		res.HTMLPath = OutputPath(r.opts.OutputDir, source, "rendered", ".html")
		if err := writeHTMLReportFile(res.HTMLPath, res, filepath.Base(res.OutputPath)); err != nil {
			return nil, err
		}
	}
	return res, nil
}
