package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pixelsort/pkg/cache"
	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/core/sorter"
	"github.com/matzehuels/pixelsort/pkg/imageio"
	"github.com/matzehuels/pixelsort/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → sort → encode pipeline with caching.
//
// The context is checked before decoding and after the sort pass; a pass
// that has started always runs to completion.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(opts.Input),
	}
	logger := r.Logger.With("run", result.RunID[:8])
	hooks := observability.Pipeline()

	inputFormat, width, height, err := imageio.Sniff(bytes.NewReader(opts.Input))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := ValidateDimensions(width, height); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := ValidateWindowVolume(width, height, opts.Sort); err != nil {
		return nil, err
	}
	result.InputFormat = inputFormat
	result.Format = opts.OutputFormat(inputFormat)
	result.Width, result.Height = width, height

	// Cache lookup
	cacheKey := r.Keyer.ArtifactKey(result.InputHash, opts.ArtifactKeyOpts(result.Format))
	result.CacheInfo.Cacheable = opts.Cacheable()
	if result.CacheInfo.Cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			result.Output = data
			result.Stats.Pixels = width * height
			result.CacheInfo.Hit = true
			logger.Info("served from cache", "format", result.Format, "bytes", len(data))
			return result, nil
		} else if err != nil {
			logger.Warn("cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	hooks.OnDecodeStart(ctx, result.RunID, len(opts.Input))
	g, _, err := imageio.Read(bytes.NewReader(opts.Input))
	result.Stats.DecodeTime = time.Since(decodeStart)
	hooks.OnDecodeComplete(ctx, result.RunID, inputFormat, result.Stats.DecodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Stats.Pixels = len(g.Pix)

	logger.Debug("decoded image",
		"format", inputFormat,
		"width", g.Width,
		"height", g.Height,
		"duration", result.Stats.DecodeTime)

	// Stage 2: Sort
	before := g.Clone()
	sortStart := time.Now()
	hooks.OnSortStart(ctx, result.RunID, g.Width, g.Height)
	err = sorter.Sort(g, opts.Sort)
	result.Stats.SortTime = time.Since(sortStart)
	hooks.OnSortComplete(ctx, result.RunID, result.Stats.SortTime, err)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Stats.Moved = moved(before, g)

	logger.Info("sorted image",
		"by", opts.Sort.By,
		"direction", opts.Sort.Direction,
		"interval", opts.Sort.Interval,
		"moved", result.Stats.Moved,
		"duration", result.Stats.SortTime)

	// Stage 3: Encode
	encodeStart := time.Now()
	hooks.OnEncodeStart(ctx, result.RunID, result.Format)
	var buf bytes.Buffer
	err = imageio.Write(&buf, g, result.Format, imageio.Options{JPEGQuality: opts.JPEGQuality})
	result.Stats.EncodeTime = time.Since(encodeStart)
	hooks.OnEncodeComplete(ctx, result.RunID, result.Format, buf.Len(), result.Stats.EncodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Output = buf.Bytes()

	logger.Debug("encoded image",
		"format", result.Format,
		"bytes", len(result.Output),
		"duration", result.Stats.EncodeTime)

	if result.CacheInfo.Cacheable {
		if err := r.Cache.Set(ctx, cacheKey, result.Output, cache.TTLArtifact); err != nil {
			logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(result.Output))
		}
	}

	return result, nil
}

// Analyze summarizes the score keys of an input image. Summaries are
// deterministic and always cached.
func (r *Runner) Analyze(ctx context.Context, opts AnalyzeOptions) (*Analysis, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := r.Keyer.SummaryKey(cache.Hash(opts.Input), opts.By.String())
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var a Analysis
		if err := json.Unmarshal(data, &a); err == nil {
			observability.Cache().OnCacheHit(ctx, "summary")
			a.Hit = true
			return &a, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "summary")

	g, format, err := imageio.Read(bytes.NewReader(opts.Input))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	fn, err := score.Build(opts.By, nil, nil)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Format:  format,
		Width:   g.Width,
		Height:  g.Height,
		By:      opts.By.String(),
		Summary: score.Summarize(g, fn),
	}
	r.Logger.Debug("summarized image", "by", a.By, "mean", a.Summary.Mean, "std_dev", a.Summary.StdDev)

	if data, err := json.Marshal(a); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSummary); err == nil {
			observability.Cache().OnCacheSet(ctx, "summary", len(data))
		}
	}
	return a, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// moved counts positions whose pixel differs between a and b.
func moved(a, b *pixel.Grid) int {
	n := 0
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			n++
		}
	}
	return n
}
