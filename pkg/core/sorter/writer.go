package sorter

import (
	"github.com/matzehuels/pixelsort/pkg/core/pixel"
)

// line is one finished traversal line: its outer index and the
// concatenation of its transformed blocks.
type line struct {
	outer int
	pix   []pixel.Pixel
}

// collector is the single consumer of finished lines. It buffers lines as
// they arrive, in completion order, and writes them only when commit is
// called.
type collector struct {
	in     chan line
	lines  []line
	done   chan struct{}
	onRecv func(received int)
}

func newCollector(buffer, expected int, onRecv func(int)) *collector {
	c := &collector{
		in:     make(chan line, buffer),
		lines:  make([]line, 0, expected),
		done:   make(chan struct{}),
		onRecv: onRecv,
	}
	go c.run()
	return c
}

func (c *collector) run() {
	defer close(c.done)
	for l := range c.in {
		c.lines = append(c.lines, l)
		if c.onRecv != nil {
			c.onRecv(len(c.lines))
		}
	}
}

// close stops accepting lines and waits for the collector to drain.
func (c *collector) close() {
	close(c.in)
	<-c.done
}

// commit writes every collected line into g through the plan's mapping.
// Elements past the end of a line clamp onto its last pixel; the last one
// written wins.
func (c *collector) commit(g *pixel.Grid, p plan) {
	for _, l := range c.lines {
		for i, px := range l.pix {
			p.set(g, i, l.outer, px)
		}
	}
}
