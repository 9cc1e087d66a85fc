package score

import "github.com/matzehuels/pixelsort/pkg/core/pixel"

// Func maps a pixel to its ordering key.
type Func func(pixel.Pixel) uint8

// Perceptual luma weights (Rec. 709).
const (
	LumaRed   = 0.2126
	LumaGreen = 0.7152
	LumaBlue  = 0.0722
)

// Intensity is the integer mean of the three channels.
func Intensity(p pixel.Pixel) uint8 {
	sum := uint16(p.R) + uint16(p.G) + uint16(p.B)
	return uint8(sum / 3)
}

// Brightness is the midpoint of the smallest and largest channel. The sum
// wraps at 256 before halving.
func Brightness(p pixel.Pixel) uint8 {
	lo, hi := p.MinMax()
	return (hi + lo) / 2
}

// Luma is the perceptual weighted sum of the channels, truncated to 8 bits.
func Luma(p pixel.Pixel) uint8 {
	return weighted(p, Coefficients{R: LumaRed, G: LumaGreen, B: LumaBlue})
}

// Chroma is the spread between the largest and smallest channel.
func Chroma(p pixel.Pixel) uint8 {
	lo, hi := p.MinMax()
	return hi - lo
}

// Saturation is (max-min)/max in integer arithmetic, 0 for black. Only 0 and
// 1 are reachable.
func Saturation(p pixel.Pixel) uint8 {
	lo, hi := p.MinMax()
	if hi == 0 {
		return 0
	}
	return (hi - lo) / hi
}

// Hue is the HSV hue in degrees, floored and truncated to 8 bits, so hues of
// 256° and above alias. Grey pixels have no hue and score 0. The degrees are
// computed in integers so that exact hues such as 20° never floor to 19.
func Hue(p pixel.Pixel) uint8 {
	lo, hi := p.MinMax()
	if lo == hi {
		return 0
	}
	r, g, b, d := int(p.R), int(p.G), int(p.B), int(hi-lo)

	var n int // degrees × d, always >= 0
	switch hi {
	case p.R:
		n = 60 * (g - b)
		if n < 0 {
			n += 360 * d
		}
	case p.G:
		n = 60*(b-r) + 120*d
	default:
		n = 60*(r-g) + 240*d
	}
	return uint8(n / d)
}

func weighted(p pixel.Pixel, c Coefficients) uint8 {
	return truncate(c.R*float64(p.R) + c.G*float64(p.G) + c.B*float64(p.B))
}

// truncate drops the fraction and keeps the low 8 bits.
func truncate(v float64) uint8 {
	return uint8(int64(v))
}
