package score

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// Algorithm selects one of the score functions.
type Algorithm int

const (
	AlgLuma Algorithm = iota
	AlgBrightness
	AlgChroma
	AlgHue
	AlgSaturation
	AlgIntensity
)

var algorithmNames = [...]string{
	AlgLuma:       "luma",
	AlgBrightness: "brightness",
	AlgChroma:     "chroma",
	AlgHue:        "hue",
	AlgSaturation: "saturation",
	AlgIntensity:  "intensity",
}

// Algorithms lists every algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgLuma, AlgBrightness, AlgChroma, AlgHue, AlgSaturation, AlgIntensity}
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// Valid reports whether a names a known algorithm.
func (a Algorithm) Valid() bool {
	return a >= 0 && int(a) < len(algorithmNames)
}

// ParseAlgorithm parses a case-insensitive algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return Algorithm(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig,
		"unknown sort function %q (must be one of: %s)", s, strings.Join(algorithmNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(b []byte) error {
	v, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// channelSum reports whether the algorithm is built from channel sums or
// extremes, which is what channel isolation is defined for.
func (a Algorithm) channelSum() bool {
	switch a {
	case AlgLuma, AlgBrightness, AlgChroma, AlgIntensity:
		return true
	}
	return false
}

// Build resolves an algorithm into a scoring function. A nil coef selects
// the algorithm's default coefficients; a nil channel scores the full pixel.
// Channel isolation is only defined for luma, brightness, chroma and
// intensity.
func Build(alg Algorithm, coef *Coefficients, ch *Channel) (Func, error) {
	if !alg.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown sort function %d", int(alg))
	}
	if ch != nil {
		if !ch.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown channel %d", int(*ch))
		}
		if !alg.channelSum() {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"channel isolation is not supported with %s", alg)
		}
	}

	c := Defaults(alg)
	if coef != nil {
		c = *coef
	}

	var fn Func
	switch alg {
	case AlgLuma:
		fn = func(p pixel.Pixel) uint8 { return weighted(p, c) }
	case AlgBrightness:
		fn = prescaled(Brightness, c)
	case AlgChroma:
		fn = prescaled(Chroma, c)
	case AlgHue:
		fn = prescaled(Hue, c)
	case AlgSaturation:
		fn = prescaled(Saturation, c)
	case AlgIntensity:
		fn = prescaled(Intensity, c)
	}

	if ch != nil {
		fn = isolate(fn, *ch)
	}
	return fn, nil
}

func prescaled(fn Func, c Coefficients) Func {
	if c.IsZero() {
		return fn
	}
	return func(p pixel.Pixel) uint8 { return fn(c.Scale(p)) }
}

func isolate(fn Func, ch Channel) Func {
	return func(p pixel.Pixel) uint8 { return fn(ch.Isolate(p)) }
}
