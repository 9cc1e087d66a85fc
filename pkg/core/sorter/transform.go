package sorter

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/core/score"
)

// transform reorders one block in place. Shuffle wins over ordering;
// otherwise the block is sorted by key, descending when Reverse is set.
func (c *config) transform(block []pixel.Pixel, rng *rand.Rand, s *scratch) {
	switch {
	case c.Shuffle:
		rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
	case c.Reverse:
		slices.Reverse(block)
		s.sortByKey(block, c.score)
		slices.Reverse(block)
	default:
		s.sortByKey(block, c.score)
	}
}

// scratch holds per-worker buffers for the counting sort.
type scratch struct {
	keys []uint8
	tmp  []pixel.Pixel
}

// sortByKey orders block ascending by key with a single stable counting
// pass over the 256 possible keys. Each key is computed once.
func (s *scratch) sortByKey(block []pixel.Pixel, fn score.Func) {
	n := len(block)
	if n < 2 {
		return
	}
	s.keys = slices.Grow(s.keys[:0], n)[:n]
	s.tmp = slices.Grow(s.tmp[:0], n)[:n]

	var count [256]int
	for i, p := range block {
		k := fn(p)
		s.keys[i] = k
		count[k]++
	}

	offset := 0
	for b := range count {
		c := count[b]
		count[b] = offset
		offset += c
	}

	for i, p := range block {
		k := s.keys[i]
		s.tmp[count[k]] = p
		count[k]++
	}
	copy(block, s.tmp)
}
