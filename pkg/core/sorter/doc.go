// Package sorter implements the pixel-sorting engine.
//
// A sort pass walks an image line by line, splits every line into
// contiguous blocks, reorders each block by a per-pixel score key and writes
// the result back in place.
//
// # Architecture
//
// A pass runs through these phases:
//
//  1. Planning: [Options] are validated and compiled; the [Direction] is
//     mapped to an outer/inner iteration scheme (rows or columns).
//  2. Dispatched: workers claim outer indices from a shared counter. Each
//     worker partitions its line into blocks, transforms every block and
//     sends the finished line to a single collector.
//  3. Collecting: once every worker has finished, the collector writes the
//     lines back into the grid. It is the only goroutine that mutates the
//     grid, so no per-pixel locking is needed.
//  4. Done, or Failed when validation or a worker failed. A failed pass
//     never writes to the grid.
//
// # Partitioning
//
// With Discretize <= 1 a line is cut into non-overlapping runs whose lengths
// are drawn from [1, Interval]. With Discretize >= 2 a window of Discretize
// pixels is read at every step; indices past the end of the line are clamped
// to the last pixel, and the concatenated line may be longer than the
// original. Writes past the end clamp onto the last pixel, and the last value
// written wins. This smear is intended.
//
// # Randomness
//
// Step sizes and shuffles draw from a PCG generator derived from
// [Options.Seed] and the outer index, so a fixed seed reproduces a pass
// byte for byte regardless of how lines are scheduled. A zero seed is
// replaced with a random one for every pass.
package sorter
