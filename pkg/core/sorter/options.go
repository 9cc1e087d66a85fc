package sorter

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/matzehuels/pixelsort/pkg/core/score"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// Direction selects how lines are walked.
type Direction int

const (
	Horizontal Direction = iota // lines are rows
	Vertical                    // lines are columns
	Concentric                  // accepted by configuration, not implemented
	Diagonal                    // accepted by configuration, not implemented
)

var directionNames = [...]string{
	Horizontal: "horizontal",
	Vertical:   "vertical",
	Concentric: "concentric",
	Diagonal:   "diagonal",
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection parses a case-insensitive direction name. "h" and "v" are
// accepted as short forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "h":
		return Horizontal, nil
	case "v":
		return Vertical, nil
	}
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig,
		"unknown direction %q (must be one of: %s)", s, strings.Join(directionNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(directionNames) {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// StepPolicy selects how the step size is drawn from [1, Interval].
type StepPolicy int

const (
	// StepRandom draws a uniform step in [1, Interval] at every starting point.
	StepRandom StepPolicy = iota
	// StepFixed always steps by Interval.
	StepFixed
)

func (p StepPolicy) String() string {
	switch p {
	case StepRandom:
		return "random"
	case StepFixed:
		return "fixed"
	}
	return fmt.Sprintf("StepPolicy(%d)", int(p))
}

// ParseStepPolicy parses "random" or "fixed".
func ParseStepPolicy(s string) (StepPolicy, error) {
	switch strings.ToLower(s) {
	case "random", "":
		return StepRandom, nil
	case "fixed":
		return StepFixed, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown step policy %q (must be random or fixed)", s)
}

// Options configures one sort pass. The zero value is not valid: Interval
// must be at least 1. Use [DefaultOptions] for a usable starting point.
type Options struct {
	By                score.Algorithm     `json:"by"`
	Interval          int                 `json:"interval"`
	Reverse           bool                `json:"reverse,omitempty"`
	Coefficients      *score.Coefficients `json:"coefficients,omitempty"` // nil = per-algorithm default
	Discretize        int                 `json:"discretize,omitempty"`   // <= 1 stepped, >= 2 windowed
	ProgressiveAmount *int                `json:"progressive_amount,omitempty"`
	Direction         Direction           `json:"direction"`
	Shuffle           bool                `json:"shuffle,omitempty"`
	Channel           *score.Channel      `json:"channel,omitempty"`
	StepPolicy        StepPolicy          `json:"step_policy,omitempty"`
	Seed              uint64              `json:"seed,omitempty"` // 0 = random per pass

	// Reserved for future effects; validated, not used by the sort.
	Splice         *float64 `json:"splice,omitempty"`
	EdgeThreshold  *uint64  `json:"edge_threshold,omitempty"`
	ImageThreshold *uint64  `json:"image_threshold,omitempty"`
	ImageMask      string   `json:"image_mask,omitempty"`

	// Runtime options (not serialized)
	Workers  int      `json:"-"` // 0 = GOMAXPROCS
	Observer Observer `json:"-"`
}

// DefaultOptions returns luma, interval 1, horizontal.
func DefaultOptions() Options {
	return Options{By: score.AlgLuma, Interval: 1, Direction: Horizontal}
}

// Validate checks every invariant that can be checked without an image.
func (o Options) Validate() error {
	if o.Interval < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "interval must be >= 1, got %d", o.Interval)
	}
	if o.Discretize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "discretize must be >= 0, got %d", o.Discretize)
	}
	if o.ProgressiveAmount != nil && *o.ProgressiveAmount < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "progressive amount must be >= 0, got %d", *o.ProgressiveAmount)
	}
	if o.Direction < 0 || int(o.Direction) >= len(directionNames) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown direction %d", int(o.Direction))
	}
	if o.StepPolicy != StepRandom && o.StepPolicy != StepFixed {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown step policy %d", int(o.StepPolicy))
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", o.Workers)
	}
	if o.Splice != nil && (*o.Splice < 0 || *o.Splice > 1) {
		return errors.New(errors.ErrCodeInvalidConfig, "splice must be within [0, 1], got %v", *o.Splice)
	}
	if o.EdgeThreshold != nil && *o.EdgeThreshold > 255 {
		return errors.New(errors.ErrCodeInvalidConfig, "edge threshold must be <= 255, got %d", *o.EdgeThreshold)
	}
	if o.ImageThreshold != nil && *o.ImageThreshold > 255 {
		return errors.New(errors.ErrCodeInvalidConfig, "image threshold must be <= 255, got %d", *o.ImageThreshold)
	}
	_, err := score.Build(o.By, o.Coefficients, o.Channel)
	return err
}

// Windowed reports whether blocks are fixed-size windows rather than runs.
func (o Options) Windowed() bool {
	return o.Discretize >= 2
}

// config is the compiled, immutable form of Options for one pass.
type config struct {
	Options
	score score.Func
	seed  uint64
}

func (o Options) compile() (*config, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	fn, err := score.Build(o.By, o.Coefficients, o.Channel)
	if err != nil {
		return nil, err
	}
	seed := o.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}
	return &config{Options: o, score: fn, seed: seed}, nil
}

// lineRand returns the generator for one outer index. Lines never share a
// generator, so results do not depend on scheduling.
func (c *config) lineRand(outer int) *rand.Rand {
	return rand.New(rand.NewPCG(c.seed, uint64(outer)^0x9e3779b97f4a7c15))
}
