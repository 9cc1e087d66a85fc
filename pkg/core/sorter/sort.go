package sorter

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// Phase is the state of a sort pass.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlanning
	PhaseDispatched
	PhaseCollecting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlanning:
		return "planning"
	case PhaseDispatched:
		return "dispatched"
	case PhaseCollecting:
		return "collecting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Observer receives progress from a pass. Calls are serialized: phases come
// from the calling goroutine and line counts from the collector.
type Observer interface {
	OnPhase(p Phase)
	OnLine(done, total int)
}

// Sort reorders the pixels of g in place.
//
// Validation and traversal errors are returned before any work starts. If a
// worker fails, the pass is aborted with a WORKER_FAILURE error and g is
// left untouched.
func Sort(g *pixel.Grid, opts Options) error {
	obs := opts.Observer
	phase := func(p Phase) {
		if obs != nil {
			obs.OnPhase(p)
		}
	}

	phase(PhasePlanning)
	cfg, err := opts.compile()
	if err != nil {
		phase(PhaseFailed)
		return err
	}
	p, err := newPlan(g.Width, g.Height, opts.Direction)
	if err != nil {
		phase(PhaseFailed)
		return err
	}

	if err := cfg.run(g, p, phase); err != nil {
		phase(PhaseFailed)
		return err
	}
	phase(PhaseDone)
	return nil
}

func (c *config) run(g *pixel.Grid, p plan, phase func(Phase)) error {
	if g.Empty() {
		return nil
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, p.outer)

	var onRecv func(int)
	if c.Observer != nil {
		onRecv = func(n int) { c.Observer.OnLine(n, p.outer) }
	}
	col := newCollector(workers, p.outer, onRecv)

	phase(PhaseDispatched)
	eg, ctx := errgroup.WithContext(context.Background())
	var next atomic.Int64
	for range workers {
		eg.Go(func() error {
			return c.work(ctx, g, p, &next, col.in)
		})
	}
	err := eg.Wait()
	col.close()
	if err != nil {
		return err
	}

	phase(PhaseCollecting)
	col.commit(g, p)
	return nil
}

// work claims outer indices until none are left or another worker failed.
func (c *config) work(ctx context.Context, g *pixel.Grid, p plan, next *atomic.Int64, out chan<- line) (err error) {
	outer := -1
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(errors.ErrCodeWorkerFailure, fmt.Errorf("%v", r), "line %d", outer)
		}
	}()

	var s scratch
	for ctx.Err() == nil {
		outer = int(next.Add(1) - 1)
		if outer >= p.outer {
			return nil
		}
		out <- c.sortLine(g, p, outer, &s)
	}
	return nil
}

// sortLine partitions, transforms and concatenates one line. It only reads g.
func (c *config) sortLine(g *pixel.Grid, p plan, outer int, s *scratch) line {
	rng := c.lineRand(outer)
	blocks := c.partition(g, p, outer, rng)

	n := 0
	for _, b := range blocks {
		c.transform(b, rng, s)
		n += len(b)
	}

	pix := make([]pixel.Pixel, 0, n)
	for _, b := range blocks {
		pix = append(pix, b...)
	}
	return line{outer: outer, pix: pix}
}

// SortByLuma sorts with the luma score regardless of opts.By.
func SortByLuma(g *pixel.Grid, opts Options) error {
	return sortBy(g, opts, score.AlgLuma)
}

// SortByBrightness sorts with the brightness score regardless of opts.By.
func SortByBrightness(g *pixel.Grid, opts Options) error {
	return sortBy(g, opts, score.AlgBrightness)
}

// SortByChroma sorts with the chroma score regardless of opts.By.
func SortByChroma(g *pixel.Grid, opts Options) error {
	return sortBy(g, opts, score.AlgChroma)
}

// SortByHue sorts with the hue score regardless of opts.By.
func SortByHue(g *pixel.Grid, opts Options) error {
	return sortBy(g, opts, score.AlgHue)
}

// SortBySaturation sorts with the saturation score regardless of opts.By.
func SortBySaturation(g *pixel.Grid, opts Options) error {
	return sortBy(g, opts, score.AlgSaturation)
}

// SortByIntensity sorts with the intensity score regardless of opts.By.
func SortByIntensity(g *pixel.Grid, opts Options) error {
	return sortBy(g, opts, score.AlgIntensity)
}

func sortBy(g *pixel.Grid, opts Options, alg score.Algorithm) error {
	opts.By = alg
	return Sort(g, opts)
}
