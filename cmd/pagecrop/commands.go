package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tsawler/pagecrop"
	"github.com/tsawler/pagecrop/config"
	"github.com/tsawler/pagecrop/format"
	"github.com/tsawler/pagecrop/internal/diag"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
	"github.com/tsawler/pagecrop/relmap"
	"github.com/tsawler/pagecrop/render"
)

// env is what a command runs with once its flags are parsed
type env struct {
	ctx    context.Context
	cfg    *config.Config
	args   []string
	stdout io.Writer
}

type command struct {
	name    string
	args    []string
	summary string
	run     func(e *env) error
}

var commands = []command{
	{"extract", []string{"<pdf>"}, "print the page's elements", runExtract},
	{"strip", []string{"<pdf>"}, "print the box inside the crop marks", runStrip},
	{"render", []string{"<pdf>"}, "write a PNG of the content box", runRender},
	{"relmap", []string{"<pdf>"}, "print the content as fractions of the box", runRelmap},
	{"calibrate", []string{"<pdf>", "<image>"}, "align the page with a photo or scan of it", runCalibrate},
	{"ocr", []string{"<image>"}, "print the words found in an image", runOCR},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagecrop <command> [flags] <args>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %-16s %s\n", c.name, strings.Join(c.args, " "), c.summary)
	}
	fmt.Fprintf(w, "  %-10s %-16s %s\n", "version", "", "print version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pagecrop <command> --help' for the flags of a command.")
}

// run dispatches args and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "version", "--version":
		printVersion(stdout)
		return 0
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(stderr, "pagecrop: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	if err := cmd.execute(ctx, args[1:], stdout, stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "pagecrop %s: %v\n", cmd.name, err)
		return 1
	}
	return 0
}

func (c command) execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pagecrop %s [flags] %s\n\n%s.\n\nFlags:\n", c.name, strings.Join(c.args, " "), c.summary)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != len(c.args) {
		fs.Usage()
		return fmt.Errorf("expected %d argument(s), got %d", len(c.args), fs.NArg())
	}
	for i, arg := range fs.Args() {
		if err := checkInput(c.args[i], arg); err != nil {
			return err
		}
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		diag.SetOutput(stderr)
	} else {
		diag.SetOutput(io.Discard)
	}

	return c.run(&env{ctx: ctx, cfg: cfg, args: fs.Args(), stdout: stdout})
}

// checkInput makes sure a positional argument names the right kind of file
func checkInput(placeholder, path string) error {
	switch placeholder {
	case "<pdf>":
		return format.RequirePDF(path)
	case "<image>":
		return format.RequireImage(path)
	}
	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pagecrop %s (%s)\n", version, gitCommit)
	if v := ocr.Version(); v != "" {
		fmt.Fprintf(w, "tesseract %s\n", v)
	} else {
		fmt.Fprintln(w, "tesseract: not enabled")
	}
}

func (e *env) extractor() *pagecrop.Extractor {
	return pagecrop.Open(e.args[0]).WithContext(e.ctx).WithConfig(e.cfg)
}

// engine is an OCR engine holding resources until closed
type engine interface {
	ocr.Engine
	Close() error
}

// newEngine starts a Tesseract client for the configured language
var newEngine = func(cfg *config.Config) (engine, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language %q: %w", cfg.Language, err)
	}
	return client, nil
}

func runExtract(e *env) error {
	pe, err := e.extractor().Elements()
	if err != nil {
		return err
	}

	w := e.stdout
	fmt.Fprintf(w, "Page %d of %d\n", pe.PageNumber, pe.PageCount)
	fmt.Fprintf(w, "Page box: %s\n", formatBounds(pe.PageBounds()))
	if ib, ok := pe.InteriorBounds(); ok {
		fmt.Fprintf(w, "Interior box: %s\n", formatBounds(ib))
	}
	c := pe.Counts()
	fmt.Fprintf(w, "Texts: %d  Images: %d  Rectangles: %d  Lines: %d\n", c.Texts, c.Images, c.Rectangles, c.Lines)

	for _, t := range pe.Texts {
		fmt.Fprintf(w, "text   %-30q at (%.2f, %.2f) %.2fx%.2f size %.1f %s\n",
			t.Text, t.BBox.X, t.BBox.Y, t.BBox.Width, t.BBox.Height, t.FontSize, t.Orientation)
	}
	for _, img := range pe.Images {
		fmt.Fprintf(w, "image  #%d %dx%d px at (%.2f, %.2f) %.2fx%.2f\n",
			img.ImageIndex, img.Width, img.Height, img.X, img.Y, img.DisplayWidth, img.DisplayHeight)
	}
	for _, r := range pe.Rectangles {
		fmt.Fprintf(w, "rect   at (%.2f, %.2f) %.2fx%.2f\n", r.X, r.Y, r.Width, r.Height)
	}
	for _, l := range pe.Lines {
		fmt.Fprintf(w, "line   (%.2f, %.2f) - (%.2f, %.2f)\n", l.X1, l.Y1, l.X2, l.Y2)
	}
	return nil
}

func runStrip(e *env) error {
	box, err := e.extractor().CropBox()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Crop box: %s\n", formatBounds(box))
	fmt.Fprintf(e.stdout, "Size: %.2f x %.2f pt\n", box.Width(), box.Height())
	return nil
}

func runRender(e *env) error {
	ext := e.extractor()
	if client, err := newEngine(e.cfg); err != nil {
		diag.Printf("render: continuing without OCR: %v", err)
	} else {
		defer client.Close()
		ext = ext.Recognizer(ocr.NewAnalyzer(client, e.cfg.AnalyzerOptions()))
	}

	res, err := ext.Render()
	if err != nil {
		return err
	}

	w := e.stdout
	fmt.Fprintf(w, "Wrote %s (%dx%d)\n", res.OutputPath, res.Image.Bounds().Dx(), res.Image.Bounds().Dy())
	if res.HTMLPath != "" {
		fmt.Fprintf(w, "Wrote %s\n", res.HTMLPath)
	}
	fmt.Fprintf(w, "Content box: %s\n", formatBounds(res.Bounds))

	elems := append([]model.RenderedElement(nil), res.Elements...)
	render.SortByPosition(elems)
	for _, el := range elems {
		fmt.Fprintln(w, formatRendered(el))
	}
	return nil
}

func runRelmap(e *env) error {
	m, err := e.extractor().RelativeMap()
	if err != nil {
		return err
	}

	w := e.stdout
	fmt.Fprintf(w, "Bounds: %s\n", formatBounds(m.Bounds))
	fmt.Fprintf(w, "Aspect ratio: %.4f\n", m.AspectRatio())
	for _, el := range m.Elements {
		label := el.Text
		if el.Kind == model.KindImage {
			label = fmt.Sprintf("#%d", el.ImageIndex)
		}
		fmt.Fprintf(w, "%-5s center=(%.4f, %.4f) size=(%.4f x %.4f) %q\n",
			el.Kind, el.CenterX, el.CenterY, el.Width, el.Height, label)
	}
	return nil
}

func runCalibrate(e *env) error {
	client, err := newEngine(e.cfg)
	if err != nil {
		return fmt.Errorf("calibration needs OCR: %w", err)
	}
	defer client.Close()

	cal, err := e.extractor().Recognizer(client).Calibrate(e.args[1])
	if err != nil {
		return err
	}

	w := e.stdout
	fmt.Fprintf(w, "Words: %d  Matches: %d\n", len(cal.Words), len(cal.Matches))
	fmt.Fprintf(w, "Method: %s\n", cal.Method)
	if cal.SolveErr != nil {
		fmt.Fprintf(w, "Least squares abandoned: %v\n", cal.SolveErr)
	}
	fmt.Fprintf(w, "Crop: (%d, %d) - (%d, %d)\n", cal.Crop.Min.X, cal.Crop.Min.Y, cal.Crop.Max.X, cal.Crop.Max.Y)
	fmt.Fprintf(w, "Boxes drawn: %d\n", cal.Drawn)
	fmt.Fprintf(w, "Wrote %s\n", cal.CroppedPath)
	fmt.Fprintf(w, "Wrote %s\n", cal.MarkedPath)
	return nil
}

func runOCR(e *env) error {
	img, err := relmap.LoadImage(e.args[0])
	if err != nil {
		return err
	}
	client, err := newEngine(e.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	return printAnalysis(e.stdout, ocr.NewAnalyzer(client, e.cfg.AnalyzerOptions()), img)
}

func printAnalysis(w io.Writer, a *ocr.Analyzer, img image.Image) error {
	res, err := a.Analyze(img)
	if err != nil {
		return err
	}
	mean, n := ocr.MeanConfidence(res.Words)
	fmt.Fprintf(w, "Rotation: %s\n", res.Rotation)
	fmt.Fprintf(w, "Words: %d  Mean confidence: %.1f\n", n, mean)
	for _, word := range res.Words {
		b := word.Box
		fmt.Fprintf(w, "%-30q (%d, %d) - (%d, %d) conf %.1f\n", word.Text, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, word.Confidence)
	}
	return nil
}

func formatBounds(b model.Bounds) string {
	return fmt.Sprintf("(%.2f, %.2f) - (%.2f, %.2f)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func formatRendered(el model.RenderedElement) string {
	switch el.Kind {
	case model.KindText:
		return fmt.Sprintf("%-5s (%d, %d) %dx%d %q size %.1f", el.Kind, el.X, el.Y, el.Width, el.Height, el.Text, el.FontSize)
	case model.KindLine:
		return fmt.Sprintf("%-5s (%d, %d) - (%d, %d)", el.Kind, el.X, el.Y, el.X2, el.Y2)
	default:
		return fmt.Sprintf("%-5s (%d, %d) %dx%d", el.Kind, el.X, el.Y, el.Width, el.Height)
	}
}
