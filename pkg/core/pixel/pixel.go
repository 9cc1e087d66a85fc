// Package pixel defines the RGB pixel value and the mutable image grid the
// sorting engine operates on.
//
// A [Grid] is a width × height matrix stored row-major. It carries no codec
// knowledge; conversion from and to image.Image lives in package imageio.
package pixel

import (
	"fmt"
	"slices"
)

// Pixel is a single 8-bit RGB sample.
type Pixel struct {
	R, G, B uint8
}

// Channels returns the pixel as a [3]uint8 in R, G, B order.
func (p Pixel) Channels() [3]uint8 {
	return [3]uint8{p.R, p.G, p.B}
}

// MinMax returns the smallest and largest channel value.
func (p Pixel) MinMax() (lo, hi uint8) {
	return min(p.R, p.G, p.B), max(p.R, p.G, p.B)
}

func (p Pixel) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.R, p.G, p.B)
}

// Grid is a row-major matrix of pixels, mutable in place.
type Grid struct {
	Width  int
	Height int
	Pix    []Pixel // len == Width*Height
}

// NewGrid allocates a zeroed grid. Negative dimensions are treated as zero.
func NewGrid(width, height int) *Grid {
	width, height = max(width, 0), max(height, 0)
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}
}

// FromPixels wraps pix as a grid. It returns an error if len(pix) does not
// match the dimensions.
func FromPixels(width, height int, pix []Pixel) (*Grid, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, fmt.Errorf("pixel count %d does not match %dx%d", len(pix), width, height)
	}
	return &Grid{Width: width, Height: height, Pix: pix}, nil
}

// At returns the pixel at column x, row y.
func (g *Grid) At(x, y int) Pixel {
	return g.Pix[y*g.Width+x]
}

// Set stores p at column x, row y.
func (g *Grid) Set(x, y int, p Pixel) {
	g.Pix[y*g.Width+x] = p
}

// Row returns row y as a slice aliasing the grid's storage.
func (g *Grid) Row(y int) []Pixel {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// Empty reports whether the grid has no pixels.
func (g *Grid) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{Width: g.Width, Height: g.Height, Pix: slices.Clone(g.Pix)}
}

// Equal reports whether both grids have the same dimensions and pixels.
func (g *Grid) Equal(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height && slices.Equal(g.Pix, o.Pix)
}

// Histogram counts occurrences of each pixel value. Two grids with equal
// histograms hold the same multiset of pixels.
func (g *Grid) Histogram() map[Pixel]int {
	h := make(map[Pixel]int, len(g.Pix))
	for _, p := range g.Pix {
		h[p]++
	}
	return h
}
