// Package config loads pagecrop settings from defaults, an optional config
// file, PAGECROP_* environment variables and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tsawler/pagecrop/cropmarks"
	"github.com/tsawler/pagecrop/elements"
	"github.com/tsawler/pagecrop/graphicsstate"
	"github.com/tsawler/pagecrop/model"
	"github.com/tsawler/pagecrop/ocr"
	"github.com/tsawler/pagecrop/reader"
	"github.com/tsawler/pagecrop/relmap"
	"github.com/tsawler/pagecrop/render"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. PAGECROP_DPI
	EnvPrefix = "PAGECROP"

	// ConfigName is the file looked for in the working directory when no
	// --config is given, e.g. pagecrop.yaml
	ConfigName = "pagecrop"

	DefaultLanguage = "eng"
	DefaultLevel    = "word"
)

// Config holds everything a pagecrop run needs
type Config struct {
	// Run settings
	Page           int
	Password       string
	Level          string
	DPI            float64
	BoundsMode     string
	OutputDir      string
	HTMLReport     bool
	DrawRectangles bool
	StripMarks     bool
	Verbose        bool

	// OCR settings
	Language       string
	MinConfidence  float64
	Preprocess     bool
	DetectRotation bool
	MaskGraphics   bool

	// Thresholds, settable from the config file or environment
	Geometry    graphicsstate.Options
	Aggregation elements.Config
	CropMarks   cropmarks.Options
	Calibration relmap.Options
	Analysis    ocr.Options
	FontScale   float64
	LineWidth   float64
	TextAllow   float64
}

// DefaultConfig returns the settings used when nothing overrides them
func DefaultConfig() *Config {
	ro := render.DefaultOptions()
	oo := ocr.DefaultOptions()
	co := relmap.DefaultOptions()
	return &Config{
		Page:           1,
		Level:          DefaultLevel,
		DPI:            render.DefaultDPI,
		BoundsMode:     render.ModeCropMarks.String(),
		OutputDir:      render.DefaultOutputDir,
		Language:       DefaultLanguage,
		MinConfidence:  co.MinConfidence,
		Preprocess:     oo.Preprocess,
		DetectRotation: oo.DetectRotation,
		MaskGraphics:   oo.MaskGraphics,
		Geometry:       graphicsstate.DefaultOptions(),
		Aggregation:    elements.DefaultConfig(),
		CropMarks:      cropmarks.DefaultOptions(),
		Calibration:    co,
		Analysis:       oo,
		FontScale:      ro.FontScale,
		LineWidth:      ro.LineWidth,
		TextAllow:      ro.TextAllowance,
	}
}

// RegisterFlags adds the run-setting flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "Config file (default ./pagecrop.yaml if present)")
	fs.IntP("page", "p", d.Page, "Page number, 1-based")
	fs.String("password", "", "Password for encrypted PDFs")
	fs.String("level", d.Level, "Text elements: word or line")
	fs.Float64("dpi", d.DPI, "Output resolution")
	fs.StringP("bounds", "b", d.BoundsMode, "Content box: cropmarks, largest or computed")
	fs.StringP("output-dir", "o", d.OutputDir, "Directory for written images")
	fs.Bool("html", false, "Also write an HTML overlay report")
	fs.Bool("draw-rectangles", false, "Outline rectangles in the rendered image")
	fs.Bool("strip", false, "Remove bleed and crop marks before rendering")
	fs.BoolP("verbose", "v", false, "Log diagnostics to stderr")
	fs.String("lang", d.Language, "OCR language(s), '+' separated")
	fs.Float64("min-confidence", d.MinConfidence, "Drop recognized words at or below this confidence (0-100)")
	fs.Bool("preprocess", d.Preprocess, "Threshold images before OCR")
	fs.Bool("detect-rotation", d.DetectRotation, "Try all quarter-turns before OCR")
	fs.Bool("mask-graphics", d.MaskGraphics, "Paint logos and pictures white before OCR")
}

// flagKeys maps viper keys to flag names
var flagKeys = map[string]string{
	"config":          "config",
	"page":            "page",
	"password":        "password",
	"level":           "level",
	"dpi":             "dpi",
	"bounds":          "bounds",
	"output_dir":      "output-dir",
	"html":            "html",
	"draw_rectangles": "draw-rectangles",
	"strip":           "strip",
	"verbose":         "verbose",
	"lang":            "lang",
	"min_confidence":  "min-confidence",
	"preprocess":      "preprocess",
	"detect_rotation": "detect-rotation",
	"mask_graphics":   "mask-graphics",
}

// floatKey is a threshold read from the config file or environment
type floatKey struct {
	key   string
	field func(*Config) *float64
}

var floatKeys = []floatKey{
	{"geometry.min_rect_size", func(c *Config) *float64 { return &c.Geometry.MinRectSize }},
	{"geometry.min_line_length", func(c *Config) *float64 { return &c.Geometry.MinLineLength }},
	{"geometry.axis_tolerance_deg", func(c *Config) *float64 { return &c.Geometry.AxisToleranceDeg }},
	{"geometry.corner_tolerance", func(c *Config) *float64 { return &c.Geometry.CornerTolerance }},

	{"elements.min_side_separation", func(c *Config) *float64 { return &c.Aggregation.MinSideSeparation }},
	{"elements.span_tolerance", func(c *Config) *float64 { return &c.Aggregation.SpanTolerance }},
	{"elements.duplicate_tolerance", func(c *Config) *float64 { return &c.Aggregation.DuplicateTol }},
	{"elements.edge_tolerance", func(c *Config) *float64 { return &c.Aggregation.EdgeTolerance }},
	{"elements.small_rect_max", func(c *Config) *float64 { return &c.Aggregation.SmallRectMax }},
	{"elements.corner_min_length", func(c *Config) *float64 { return &c.Aggregation.CornerMinLength }},
	{"elements.corner_max_length", func(c *Config) *float64 { return &c.Aggregation.CornerMaxLength }},
	{"elements.intersection_tolerance", func(c *Config) *float64 { return &c.Aggregation.IntersectionTol }},
	{"elements.cluster_tolerance", func(c *Config) *float64 { return &c.Aggregation.ClusterTol }},
	{"elements.coord_tolerance", func(c *Config) *float64 { return &c.Aggregation.CoordTolerance }},

	{"cropmarks.group_y_tolerance", func(c *Config) *float64 { return &c.CropMarks.GroupYTolerance }},
	{"cropmarks.connection_tolerance", func(c *Config) *float64 { return &c.CropMarks.ConnectionTolerance }},
	{"cropmarks.edge_margin", func(c *Config) *float64 { return &c.CropMarks.EdgeMargin }},
	{"cropmarks.corner_margin", func(c *Config) *float64 { return &c.CropMarks.CornerMargin }},
	{"cropmarks.perpendicular_tolerance", func(c *Config) *float64 { return &c.CropMarks.PerpendicularTol }},
	{"cropmarks.max_mark_size", func(c *Config) *float64 { return &c.CropMarks.MaxMarkSize }},
	{"cropmarks.min_crop_size", func(c *Config) *float64 { return &c.CropMarks.MinCropSize }},

	{"calibrate.overshoot", func(c *Config) *float64 { return &c.Calibration.Overshoot }},
	{"calibrate.overhang_penalty", func(c *Config) *float64 { return &c.Calibration.OverhangPenalty }},
	{"calibrate.draw_margin", func(c *Config) *float64 { return &c.Calibration.DrawMargin }},

	{"ocr.tall_aspect", func(c *Config) *float64 { return &c.Analysis.TallAspect }},

	{"render.font_scale", func(c *Config) *float64 { return &c.FontScale }},
	{"render.line_width", func(c *Config) *float64 { return &c.LineWidth }},
	{"render.text_allowance", func(c *Config) *float64 { return &c.TextAllow }},
}

// Load builds a Config. fs holds flags registered with RegisterFlags and
// already parsed; it may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)
	if fs != nil {
		if err := bindFlagsToViper(v, fs); err != nil {
			return nil, err
		}
	}
	if err := readConfigFile(v); err != nil {
		return nil, err
	}
	populateConfigFromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures the environment lookup and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("config", "")
	v.SetDefault("page", cfg.Page)
	v.SetDefault("password", cfg.Password)
	v.SetDefault("level", cfg.Level)
	v.SetDefault("dpi", cfg.DPI)
	v.SetDefault("bounds", cfg.BoundsMode)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("html", cfg.HTMLReport)
	v.SetDefault("draw_rectangles", cfg.DrawRectangles)
	v.SetDefault("strip", cfg.StripMarks)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("lang", cfg.Language)
	v.SetDefault("min_confidence", cfg.MinConfidence)
	v.SetDefault("preprocess", cfg.Preprocess)
	v.SetDefault("detect_rotation", cfg.DetectRotation)
	v.SetDefault("mask_graphics", cfg.MaskGraphics)
	v.SetDefault("ocr.min_confidence", cfg.Analysis.MinConfidence)

	for _, k := range floatKeys {
		v.SetDefault(k.key, *k.field(cfg))
	}
}

// bindFlagsToViper binds every registered run-setting flag
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// readConfigFile reads the file named by the config key, or ./pagecrop.*
// when there is one
func readConfigFile(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// populateConfigFromViper fills cfg with the resolved values
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Page = v.GetInt("page")
	cfg.Password = v.GetString("password")
	cfg.Level = v.GetString("level")
	cfg.DPI = v.GetFloat64("dpi")
	cfg.BoundsMode = v.GetString("bounds")
	cfg.OutputDir = v.GetString("output_dir")
	cfg.HTMLReport = v.GetBool("html")
	cfg.DrawRectangles = v.GetBool("draw_rectangles")
	cfg.StripMarks = v.GetBool("strip")
	cfg.Verbose = v.GetBool("verbose")
	cfg.Language = v.GetString("lang")
	cfg.MinConfidence = v.GetFloat64("min_confidence")
	cfg.Preprocess = v.GetBool("preprocess")
	cfg.DetectRotation = v.GetBool("detect_rotation")
	cfg.MaskGraphics = v.GetBool("mask_graphics")
	cfg.Analysis.MinConfidence = v.GetFloat64("ocr.min_confidence")

	for _, k := range floatKeys {
		*k.field(cfg) = v.GetFloat64(k.key)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Page < 1 {
		return fmt.Errorf("page must be 1 or more, got %d", c.Page)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %g", c.DPI)
	}
	if _, err := render.ParseBoundsMode(c.BoundsMode); err != nil {
		return err
	}
	if _, err := c.TextLevel(); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if c.Language == "" {
		return errors.New("OCR language cannot be empty")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("min confidence must be between 0 and 100, got %g", c.MinConfidence)
	}
	if c.Analysis.MinConfidence < 0 || c.Analysis.MinConfidence > 100 {
		return fmt.Errorf("OCR min confidence must be between 0 and 100, got %g", c.Analysis.MinConfidence)
	}
	for _, k := range floatKeys {
		if *k.field(c) < 0 {
			return fmt.Errorf("%s cannot be negative", k.key)
		}
	}
	return nil
}

// Mode returns the parsed bounds mode
func (c *Config) Mode() (render.BoundsMode, error) {
	return render.ParseBoundsMode(c.BoundsMode)
}

// TextLevel returns the parsed text level
func (c *Config) TextLevel() (model.TextLevel, error) {
	switch strings.ToLower(c.Level) {
	case "word", "words":
		return model.LevelWord, nil
	case "line", "lines":
		return model.LevelLine, nil
	default:
		return 0, fmt.Errorf("unknown text level %q", c.Level)
	}
}

// ExtractOptions returns the page extraction settings
func (c *Config) ExtractOptions() reader.ExtractOptions {
	opts := reader.DefaultExtractOptions()
	opts.Geometry = c.Geometry
	if level, err := c.TextLevel(); err == nil {
		opts.Level = level
	}
	return opts
}

// RenderOptions returns the rendering settings. rec may be nil.
func (c *Config) RenderOptions(rec ocr.Recognizer) render.Options {
	opts := render.DefaultOptions()
	if mode, err := c.Mode(); err == nil {
		opts.Mode = mode
	}
	opts.DPI = c.DPI
	opts.OutputDir = c.OutputDir
	opts.HTMLReport = c.HTMLReport
	opts.DrawRectangles = c.DrawRectangles
	opts.Recognizer = rec
	opts.FontScale = c.FontScale
	opts.LineWidth = c.LineWidth
	opts.TextAllowance = c.TextAllow
	return opts
}

// AnalyzerOptions returns the OCR analysis settings
func (c *Config) AnalyzerOptions() ocr.Options {
	opts := c.Analysis
	opts.Preprocess = c.Preprocess
	opts.DetectRotation = c.DetectRotation
	opts.MaskGraphics = c.MaskGraphics
	return opts
}

// CalibrationOptions returns the calibration settings
func (c *Config) CalibrationOptions() relmap.Options {
	opts := c.Calibration
	opts.MinConfidence = c.MinConfidence
	return opts
}

// String returns a string representation of the run settings
func (c *Config) String() string {
	return fmt.Sprintf("Config{Page: %d, DPI: %g, Bounds: %s, OutputDir: %s, Level: %s, Lang: %s, MinConfidence: %g}",
		c.Page, c.DPI, c.BoundsMode, c.OutputDir, c.Level, c.Language, c.MinConfidence)
}
