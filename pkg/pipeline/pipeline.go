// Package pipeline provides the decode → sort → encode pipeline for pixelsort.
//
// Both the CLI and the HTTP service run images through this package, so
// defaults, validation, caching and logging behave the same at every entry
// point.
//
// # Architecture
//
// A run consists of three stages:
//
//  1. Decode: Read the input bytes into a pixel grid
//  2. Sort: Reorder the grid in place with [sorter.Sort]
//  3. Encode: Write the grid in the requested output format
//
// Runs with a fixed seed are deterministic and their encoded output is
// cached, keyed on the input hash and the sort options. Unseeded runs are
// never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:  data,
//	    Sort:   sorter.DefaultOptions(),
//	    Format: "png",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.png", result.Output, 0o644)
package pipeline

import (
	"time"

	"github.com/matzehuels/pixelsort/pkg/cache"
	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/core/sorter"
	"github.com/matzehuels/pixelsort/pkg/errors"
	"github.com/matzehuels/pixelsort/pkg/imageio"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is used when the input format cannot be encoded (webp)
	// and no output format was requested.
	DefaultFormat = imageio.FormatPNG

	// MaxInputBytes bounds the size of an encoded input image.
	MaxInputBytes = 64 << 20

	// MaxPixels bounds the decoded size of an input image.
	MaxPixels = 100_000_000
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Input is the encoded source image.
	Input []byte `json:"-"`

	// Sort configures the sort pass.
	Sort sorter.Options `json:"sort"`

	// Format is the output format. Empty keeps the input format when it
	// can be encoded and falls back to DefaultFormat otherwise.
	Format      string `json:"format,omitempty"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and hooks.
	RunID string

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// InputFormat is the detected format of the input.
	InputFormat string

	// Format is the format of Output.
	Format string

	// Output is the encoded sorted image.
	Output []byte

	// Width and Height are the image dimensions.
	Width  int
	Height int

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the output came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Pixels     int
	Moved      int // pixels whose value at a position changed
	DecodeTime time.Duration
	SortTime   time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache usage for a run.
type CacheInfo struct {
	Cacheable bool // Whether the run was eligible for caching (fixed seed)
	Hit       bool // Whether Output came from cache
}

// AnalyzeOptions configures a score summary of an input image.
type AnalyzeOptions struct {
	Input []byte          `json:"-"`
	By    score.Algorithm `json:"by"`
}

// Analysis is the result of [Runner.Analyze].
type Analysis struct {
	Format  string        `json:"format"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	By      string        `json:"by"`
	Summary score.Summary `json:"summary"`
	Hit     bool          `json:"-"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateInput checks that input is non-empty and within MaxInputBytes.
func ValidateInput(input []byte) error {
	if len(input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input image is empty")
	}
	if len(input) > MaxInputBytes {
		return errors.New(errors.ErrCodeInvalidInput, "input image is %d bytes (max %d)", len(input), MaxInputBytes)
	}
	return nil
}

// ValidateDimensions checks decoded image dimensions against MaxPixels.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "image has no pixels (%dx%d)", width, height)
	}
	if width*height > MaxPixels {
		return errors.New(errors.ErrCodeInvalidInput, "image is %dx%d (max %d pixels)", width, height, MaxPixels)
	}
	return nil
}

// ValidateWindowVolume bounds the pixels a windowed pass buffers. Each step
// of a line reads Discretize pixels and a line has at most one step per pixel,
// so a pass holds up to width*height*Discretize pixels.
func ValidateWindowVolume(width, height int, so sorter.Options) error {
	if !so.Windowed() {
		return nil
	}
	if so.Discretize > MaxPixels/(width*height) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"discretize %d over a %dx%d image exceeds %d windowed pixels", so.Discretize, width, height, MaxPixels)
	}
	return nil
}

// ValidateJPEGQuality checks that q is zero (default) or within [1, 100].
func ValidateJPEGQuality(q int) error {
	if q < 0 || q > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "jpeg quality must be within [1, 100], got %d", q)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateInput(o.Input); err != nil {
		return err
	}
	if err := o.Sort.Validate(); err != nil {
		return err
	}
	if o.Format != "" {
		f, err := imageio.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		o.Format = f
	}
	if err := ValidateJPEGQuality(o.JPEGQuality); err != nil {
		return err
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = imageio.DefaultJPEGQuality
	}
	o.validated = true
	return nil
}

// OutputFormat resolves the output format for an input of the given format.
func (o *Options) OutputFormat(inputFormat string) string {
	if o.Format != "" {
		return o.Format
	}
	if f, err := imageio.ParseFormat(inputFormat); err == nil {
		return f
	}
	return DefaultFormat
}

// Cacheable reports whether the run is deterministic and may be cached.
func (o *Options) Cacheable() bool {
	return o.Sort.Seed != 0
}

// ArtifactKeyOpts returns cache key options for the encoded output.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Sort: o.Sort, Format: format}
	if format == imageio.FormatJPEG {
		opts.JPEGQuality = o.JPEGQuality
	}
	return opts
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *AnalyzeOptions) ValidateAndSetDefaults() error {
	if err := ValidateInput(o.Input); err != nil {
		return err
	}
	if !o.By.Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown score algorithm %d", int(o.By))
	}
	return nil
}
