// Package pkg provides the libraries behind pixelsort.
//
// # Overview
//
// Pixelsort reorders runs of pixels along the rows or columns of an image by
// a per-pixel score. The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (pixel grids, score functions, the sort engine)
//  2. [imageio] - Decoding and encoding between image files and grids
//  3. [pipeline] - Orchestration (decode → sort → encode) with caching
//  4. [cache] - Result cache backends (file, Redis, null)
//  5. [preset] - Named sort configurations in TOML or YAML
//  6. [server] - HTTP service over the pipeline
//
// # Architecture
//
// The typical data flow through pixelsort:
//
//	Image bytes (PNG, JPEG, GIF, BMP, TIFF, WebP)
//	         ↓
//	    [imageio] package (decode into a pixel.Grid)
//	         ↓
//	    [core/sorter] package (partition lines, sort or shuffle blocks)
//	         ↓
//	    [imageio] package (encode)
//	         ↓
//	PNG/JPEG/GIF/BMP/TIFF output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.Options{Input: data, Sort: sorter.DefaultOptions()}
//	opts.Sort.By = score.AlgHue
//	opts.Sort.Interval = 12
//	result, err := runner.Execute(ctx, opts)
//
// The CLI in cmd/pixelsort and the HTTP service in [server] are thin shells
// around [pipeline.Runner].
package pkg
