// Package score maps pixels to 8-bit ordering keys.
//
// Six functions are provided: [Luma], [Brightness], [Chroma], [Hue],
// [Saturation] and [Intensity]. Each is a pure function of one pixel. Several
// of them intentionally use modular 8-bit arithmetic: Brightness adds max and
// min with wraparound before halving, so (200,200,200) scores 72, not 200.
// Hue is computed in degrees and truncated to 8 bits, so hues of 256° and above
// alias onto low keys. These quirks are part of the effect and are covered by
// tests.
//
// # Building a scorer
//
// Callers select a function with an [Algorithm] and resolve it once with
// [Build], which also folds in [Coefficients] and optional [Channel]
// isolation:
//
//	fn, err := score.Build(score.Luma, nil, nil)
//	key := fn(pixel.Pixel{R: 10, G: 20, B: 30})
//
// The returned [Func] is safe for concurrent use.
package score
