package imageio

import (
	"bufio"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// Read decodes an image from r and returns it as a grid with the detected
// format name. Read does not close r.
func Read(r io.Reader) (*pixel.Grid, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode image")
	}
	return FromImage(img), format, nil
}

// Sniff reads only the image header and returns the format and dimensions.
func Sniff(r io.Reader) (format string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bufio.NewReader(r))
	if err != nil {
		return "", 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image header")
	}
	return format, cfg.Width, cfg.Height, nil
}

// Import reads and decodes the image file at path.
func Import(path string) (*pixel.Grid, string, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// FromImage copies img into a new grid. The grid origin is img.Bounds().Min.
func FromImage(img image.Image) *pixel.Grid {
	b := img.Bounds()
	g := pixel.NewGrid(b.Dx(), b.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		for y := range g.Height {
			row := src.Pix[y*src.Stride : y*src.Stride+4*g.Width]
			for x := range g.Width {
				g.Pix[y*g.Width+x] = pixel.Pixel{R: row[4*x], G: row[4*x+1], B: row[4*x+2]}
			}
		}
		return g
	}

	for y := range g.Height {
		for x := range g.Width {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			g.Pix[y*g.Width+x] = pixel.Pixel{R: c.R, G: c.G, B: c.B}
		}
	}
	return g
}
