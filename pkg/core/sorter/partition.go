package sorter

import (
	"math/rand/v2"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
)

// step draws the distance to the next starting point: a base in [1, k]
// (or k under StepFixed), plus the progressive bias for this line, clamped
// to k.
func (c *config) step(rng *rand.Rand, outer int) int {
	k := c.Interval
	s := k
	if c.StepPolicy == StepRandom && k > 1 {
		s = 1 + rng.IntN(k)
	}
	if c.ProgressiveAmount != nil {
		s += *c.ProgressiveAmount + outer
	}
	return max(1, min(s, k))
}

// partition reads line outer of g into blocks.
func (c *config) partition(g *pixel.Grid, p plan, outer int, rng *rand.Rand) [][]pixel.Pixel {
	if c.Windowed() {
		return c.windows(g, p, outer, rng)
	}
	return c.runs(g, p, outer, rng)
}

// runs cuts the line into contiguous, non-overlapping blocks.
func (c *config) runs(g *pixel.Grid, p plan, outer int, rng *rand.Rand) [][]pixel.Pixel {
	var blocks [][]pixel.Pixel
	for start := 0; start < p.inner; {
		end := min(start+c.step(rng, outer), p.inner)
		block := make([]pixel.Pixel, 0, end-start)
		for i := start; i < end; i++ {
			block = append(block, p.at(g, i, outer))
		}
		blocks = append(blocks, block)
		start = end
	}
	return blocks
}

// windows reads Discretize pixels at every step. Indices past the end of the
// line read the last pixel.
func (c *config) windows(g *pixel.Grid, p plan, outer int, rng *rand.Rand) [][]pixel.Pixel {
	var blocks [][]pixel.Pixel
	for start := 0; start < p.inner; start += c.step(rng, outer) {
		block := make([]pixel.Pixel, c.Discretize)
		for j := range block {
			block[j] = p.at(g, start+j, outer)
		}
		blocks = append(blocks, block)
	}
	return blocks
}
