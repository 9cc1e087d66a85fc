package score

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
)

// Summary describes the distribution of score keys over a grid.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    uint8   `json:"min"`
	Max    uint8   `json:"max"`
}

// Summarize scores every pixel of g with fn.
func Summarize(g *pixel.Grid, fn Func) Summary {
	if len(g.Pix) == 0 {
		return Summary{}
	}
	keys := make([]float64, len(g.Pix))
	for i, p := range g.Pix {
		keys[i] = float64(fn(p))
	}
	mean, std := stat.PopMeanStdDev(keys, nil)
	return Summary{
		Count:  len(keys),
		Mean:   mean,
		StdDev: std,
		Min:    uint8(floats.Min(keys)),
		Max:    uint8(floats.Max(keys)),
	}
}
