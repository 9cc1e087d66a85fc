package sorter

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

func grey(v uint8) pixel.Pixel { return pixel.Pixel{R: v, G: v, B: v} }

func mustGrid(t *testing.T, w, h int, pix ...pixel.Pixel) *pixel.Grid {
	t.Helper()
	g, err := pixel.FromPixels(w, h, pix)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func randomGrid(seed uint64, w, h int) *pixel.Grid {
	rng := rand.New(rand.NewPCG(seed, 1))
	g := pixel.NewGrid(w, h)
	for i := range g.Pix {
		g.Pix[i] = pixel.Pixel{R: uint8(rng.UintN(256)), G: uint8(rng.UintN(256)), B: uint8(rng.UintN(256))}
	}
	return g
}

func TestSortAlreadyAscending(t *testing.T) {
	g := mustGrid(t, 2, 2, grey(10), grey(50), grey(0), grey(90))
	want := g.Clone()

	if err := Sort(g, DefaultOptions()); err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if diff := cmp.Diff(want.Pix, g.Pix); diff != "" {
		t.Errorf("Sort changed an already sorted image (-want +got):\n%s", diff)
	}
}

func TestSortRows(t *testing.T) {
	g := mustGrid(t, 4, 2,
		grey(40), grey(10), grey(30), grey(20),
		grey(9), grey(8), grey(7), grey(6),
	)
	opts := DefaultOptions()
	opts.By = score.AlgIntensity
	opts.Interval = 4
	opts.StepPolicy = StepFixed

	if err := Sort(g, opts); err != nil {
		t.Fatal(err)
	}
	want := []pixel.Pixel{
		grey(10), grey(20), grey(30), grey(40),
		grey(6), grey(7), grey(8), grey(9),
	}
	if diff := cmp.Diff(want, g.Pix); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSortSteppedRunsAreContiguous(t *testing.T) {
	g := mustGrid(t, 6, 1, grey(50), grey(40), grey(30), grey(20), grey(10), grey(0))
	opts := DefaultOptions()
	opts.By = score.AlgIntensity
	opts.Interval = 3
	opts.StepPolicy = StepFixed

	if err := Sort(g, opts); err != nil {
		t.Fatal(err)
	}
	// Each step sorts the whole run it covers rather than one sampled pixel,
	// so no pixel is dropped or duplicated.
	want := []pixel.Pixel{grey(30), grey(40), grey(50), grey(0), grey(10), grey(20)}
	if diff := cmp.Diff(want, g.Pix); diff != "" {
		t.Errorf("stepped runs mismatch (-want +got):\n%s", diff)
	}
}

func TestSortColumns(t *testing.T) {
	g := mustGrid(t, 2, 3,
		grey(30), grey(1),
		grey(10), grey(3),
		grey(20), grey(2),
	)
	opts := DefaultOptions()
	opts.By = score.AlgIntensity
	opts.Interval = 3
	opts.StepPolicy = StepFixed
	opts.Direction = Vertical

	if err := Sort(g, opts); err != nil {
		t.Fatal(err)
	}
	want := []pixel.Pixel{
		grey(10), grey(1),
		grey(20), grey(2),
		grey(30), grey(3),
	}
	if diff := cmp.Diff(want, g.Pix); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsupportedDirectionFailsFast(t *testing.T) {
	for _, dir := range []Direction{Concentric, Diagonal} {
		t.Run(dir.String(), func(t *testing.T) {
			g := randomGrid(1, 5, 4)
			before := g.Clone()
			opts := DefaultOptions()
			opts.Direction = dir

			err := Sort(g, opts)
			if !errors.Is(err, errors.ErrCodeUnsupportedTraversal) {
				t.Fatalf("Sort(%v) error = %v, want UNSUPPORTED_TRAVERSAL", dir, err)
			}
			if !g.Equal(before) {
				t.Error("failed pass mutated the image")
			}
		})
	}
}

func TestSortRejectsInvalidOptions(t *testing.T) {
	red := score.Red
	negative := -1
	splice := 1.5
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero interval", func(o *Options) { o.Interval = 0 }},
		{"negative discretize", func(o *Options) { o.Discretize = -2 }},
		{"negative progressive", func(o *Options) { o.ProgressiveAmount = &negative }},
		{"unknown direction", func(o *Options) { o.Direction = Direction(9) }},
		{"unknown step policy", func(o *Options) { o.StepPolicy = StepPolicy(4) }},
		{"negative workers", func(o *Options) { o.Workers = -1 }},
		{"splice out of range", func(o *Options) { o.Splice = &splice }},
		{"channel with hue", func(o *Options) { o.By = score.AlgHue; o.Channel = &red }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := randomGrid(2, 3, 3)
			before := g.Clone()
			opts := DefaultOptions()
			tt.mutate(&opts)

			err := Sort(g, opts)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Sort() error = %v, want INVALID_CONFIG", err)
			}
			if !g.Equal(before) {
				t.Error("rejected pass mutated the image")
			}
		})
	}
}

// Without windowed overlap a pass only permutes pixels.
func TestSortPreservesPixels(t *testing.T) {
	progressive := 2
	configs := []Options{
		{By: score.AlgLuma, Interval: 1},
		{By: score.AlgHue, Interval: 7},
		{By: score.AlgBrightness, Interval: 50, Reverse: true, Direction: Vertical},
		{By: score.AlgChroma, Interval: 13, Shuffle: true},
		{By: score.AlgSaturation, Interval: 5, Discretize: 1, StepPolicy: StepFixed},
		{By: score.AlgIntensity, Interval: 9, ProgressiveAmount: &progressive, Direction: Vertical},
	}

	for i, opts := range configs {
		g := randomGrid(uint64(i), 31, 17)
		want := g.Histogram()

		if err := Sort(g, opts); err != nil {
			t.Fatalf("config %d: Sort() error = %v", i, err)
		}
		if diff := cmp.Diff(want, g.Histogram()); diff != "" {
			t.Errorf("config %d (%+v): pixel multiset changed (-want +got):\n%s", i, opts, diff)
		}
	}
}

func TestSortSeedReproducible(t *testing.T) {
	progressive := 1
	opts := Options{
		By:                score.AlgHue,
		Interval:          12,
		Discretize:        4,
		ProgressiveAmount: &progressive,
		Shuffle:           true,
		Seed:              42,
	}

	a := randomGrid(7, 40, 25)
	b := a.Clone()
	c := a.Clone()

	opts.Workers = 1
	if err := Sort(a, opts); err != nil {
		t.Fatal(err)
	}
	if err := Sort(b, opts); err != nil {
		t.Fatal(err)
	}
	opts.Workers = 8
	if err := Sort(c, opts); err != nil {
		t.Fatal(err)
	}

	if !a.Equal(b) {
		t.Error("two runs with the same seed differ")
	}
	if !a.Equal(c) {
		t.Error("worker count changed the output of a seeded run")
	}
}

// A window that runs past the end of a line reads and writes the last pixel.
func TestSortWindowClampsAtLineEnd(t *testing.T) {
	// Windows start at 0 and 2: [0,3) and [2,5) -> indices 2,3,3.
	g := mustGrid(t, 4, 1, grey(10), grey(40), grey(20), grey(30))
	opts := Options{
		By:         score.AlgIntensity,
		Interval:   2,
		StepPolicy: StepFixed,
		Discretize: 3,
		Reverse:    true,
	}

	if err := Sort(g, opts); err != nil {
		t.Fatal(err)
	}

	// Blocks sorted descending: [40 20 10] and [30 30 20]. The concatenation
	// has six elements; positions 3, 4 and 5 all land on index 3 and the last
	// element of the second block wins.
	want := []pixel.Pixel{grey(40), grey(20), grey(10), grey(20)}
	if diff := cmp.Diff(want, g.Pix); diff != "" {
		t.Errorf("clamped line mismatch (-want +got):\n%s", diff)
	}
}

func TestSortReverseComposition(t *testing.T) {
	asc := Options{By: score.AlgLuma, Interval: 64, StepPolicy: StepFixed}
	desc := asc
	desc.Reverse = true

	keys := func(g *pixel.Grid) []uint8 {
		out := make([]uint8, len(g.Pix))
		for i, p := range g.Pix {
			out[i] = score.Luma(p)
		}
		return out
	}

	g := randomGrid(3, 64, 8)
	if err := Sort(g, asc); err != nil {
		t.Fatal(err)
	}
	ascending := keys(g)

	if err := Sort(g, desc); err != nil {
		t.Fatal(err)
	}
	for y := range g.Height {
		row := keys(g)[y*g.Width : (y+1)*g.Width]
		for x := 1; x < len(row); x++ {
			if row[x] > row[x-1] {
				t.Fatalf("row %d not descending at %d: %d > %d", y, x, row[x], row[x-1])
			}
		}
	}

	if err := Sort(g, asc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ascending, keys(g)); diff != "" {
		t.Errorf("asc -> desc -> asc did not restore the ascending keys (-want +got):\n%s", diff)
	}
}

func TestSortVariantsMatchSelector(t *testing.T) {
	variants := map[score.Algorithm]func(*pixel.Grid, Options) error{
		score.AlgLuma:       SortByLuma,
		score.AlgBrightness: SortByBrightness,
		score.AlgChroma:     SortByChroma,
		score.AlgHue:        SortByHue,
		score.AlgSaturation: SortBySaturation,
		score.AlgIntensity:  SortByIntensity,
	}

	for alg, fn := range variants {
		t.Run(alg.String(), func(t *testing.T) {
			opts := Options{Interval: 6, Seed: 99}
			a := randomGrid(11, 20, 10)
			b := a.Clone()

			if err := fn(a, opts); err != nil {
				t.Fatal(err)
			}
			opts.By = alg
			if err := Sort(b, opts); err != nil {
				t.Fatal(err)
			}
			if !a.Equal(b) {
				t.Errorf("SortBy%s differs from Sort with By=%s", alg, alg)
			}
		})
	}
}

func TestSortEmptyGrid(t *testing.T) {
	g := pixel.NewGrid(0, 5)
	if err := Sort(g, DefaultOptions()); err != nil {
		t.Errorf("Sort(empty) error = %v", err)
	}
}

type recorder struct {
	mu     sync.Mutex
	phases []Phase
	last   int
	total  int
}

func (r *recorder) OnPhase(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
}

func (r *recorder) OnLine(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last, r.total = done, total
}

func TestSortObserver(t *testing.T) {
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Interval = 4
	opts.Observer = rec

	if err := Sort(randomGrid(5, 9, 13), opts); err != nil {
		t.Fatal(err)
	}

	want := []Phase{PhasePlanning, PhaseDispatched, PhaseCollecting, PhaseDone}
	if diff := cmp.Diff(want, rec.phases); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
	if rec.last != 13 || rec.total != 13 {
		t.Errorf("OnLine last = %d/%d, want 13/13", rec.last, rec.total)
	}

	rec = &recorder{}
	opts.Direction = Concentric
	opts.Observer = rec
	_ = Sort(randomGrid(5, 3, 3), opts)
	if diff := cmp.Diff([]Phase{PhasePlanning, PhaseFailed}, rec.phases); diff != "" {
		t.Errorf("failed phases mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"horizontal", Horizontal, false},
		{"V", Vertical, false},
		{"Concentric", Concentric, false},
		{"diagonal", Diagonal, false},
		{"spiral", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr || (!tt.wantErr && got != tt.want) {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v (err %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
