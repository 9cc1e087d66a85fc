package score

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// Coefficients are per-channel weights. For luma they are the weights of the
// sum; for every other algorithm a non-zero weight pre-scales that channel
// before the min/max/sum computation and a zero weight leaves it unchanged.
type Coefficients struct {
	R float64 `json:"red" toml:"red" yaml:"red"`
	G float64 `json:"green" toml:"green" yaml:"green"`
	B float64 `json:"blue" toml:"blue" yaml:"blue"`
}

// ParseCoefficients parses "r,g,b", e.g. "0.3,0.59,0.11".
func ParseCoefficients(s string) (Coefficients, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Coefficients{}, errors.New(errors.ErrCodeInvalidConfig,
			"coefficients must be three comma-separated numbers, got %q", s)
	}
	var w [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Coefficients{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "coefficient %q", part)
		}
		w[i] = v
	}
	return Coefficients{R: w[0], G: w[1], B: w[2]}, nil
}

// String formats c in the form accepted by ParseCoefficients.
func (c Coefficients) String() string {
	return fmt.Sprintf("%g,%g,%g", c.R, c.G, c.B)
}

// Defaults returns the default coefficients for alg.
func Defaults(alg Algorithm) Coefficients {
	if alg == AlgLuma {
		return Coefficients{R: LumaRed, G: LumaGreen, B: LumaBlue}
	}
	return Coefficients{}
}

// IsZero reports whether every weight is zero.
func (c Coefficients) IsZero() bool {
	return c == Coefficients{}
}

// Scale multiplies each channel with a non-zero weight and truncates the
// product to 8 bits with wraparound.
func (c Coefficients) Scale(p pixel.Pixel) pixel.Pixel {
	return pixel.Pixel{
		R: scaleChannel(p.R, c.R),
		G: scaleChannel(p.G, c.G),
		B: scaleChannel(p.B, c.B),
	}
}

func scaleChannel(v uint8, w float64) uint8 {
	if w == 0 {
		return v
	}
	return truncate(float64(v) * w)
}

// Channel names a single color channel.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

var channelNames = [...]string{Red: "red", Green: "green", Blue: "blue"}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid reports whether c is red, green or blue.
func (c Channel) Valid() bool {
	return c >= 0 && int(c) < len(channelNames)
}

// Isolate keeps only channel c of p and zeroes the others.
func (c Channel) Isolate(p pixel.Pixel) pixel.Pixel {
	switch c {
	case Red:
		return pixel.Pixel{R: p.R}
	case Green:
		return pixel.Pixel{G: p.G}
	default:
		return pixel.Pixel{B: p.B}
	}
}

// ParseChannel parses "red", "green" or "blue" (or r, g, b).
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(s) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown channel %q (must be red, green or blue)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid channel %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(b []byte) error {
	v, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
