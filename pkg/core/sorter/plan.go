package sorter

import (
	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// plan maps logical (inner, outer) line coordinates to image (x, y).
type plan struct {
	dir   Direction
	outer int // number of lines
	inner int // pixels per line
}

func newPlan(width, height int, dir Direction) (plan, error) {
	switch dir {
	case Horizontal:
		return plan{dir: dir, outer: height, inner: width}, nil
	case Vertical:
		return plan{dir: dir, outer: width, inner: height}, nil
	case Concentric, Diagonal:
		return plan{}, errors.New(errors.ErrCodeUnsupportedTraversal, "%s traversal is not implemented", dir)
	}
	return plan{}, errors.New(errors.ErrCodeInvalidConfig, "unknown direction %d", int(dir))
}

// coords returns the image position of inner index i on line outer. i is
// clamped to the last pixel of the line.
func (p plan) coords(i, outer int) (x, y int) {
	i = min(i, p.inner-1)
	if p.dir == Vertical {
		return outer, i
	}
	return i, outer
}

func (p plan) at(g *pixel.Grid, i, outer int) pixel.Pixel {
	x, y := p.coords(i, outer)
	return g.At(x, y)
}

func (p plan) set(g *pixel.Grid, i, outer int, px pixel.Pixel) {
	x, y := p.coords(i, outer)
	g.Set(x, y, px)
}
