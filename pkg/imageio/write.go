package imageio

import (
	"bufio"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// Options configures encoding.
type Options struct {
	// JPEGQuality is the JPEG quality in [1, 100]. Default: 90.
	JPEGQuality int
}

// ToImage copies g into a new opaque NRGBA image.
func ToImage(g *pixel.Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, p := range g.Pix {
		o := 4 * i
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = p.R, p.G, p.B, 0xff
	}
	return img
}

// Write encodes g in the given format and writes it to w.
func Write(w io.Writer, g *pixel.Grid, format string, opts Options) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	img := ToImage(g)

	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		q := opts.JPEGQuality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: min(max(q, 1), 100)})
	case FormatGIF:
		err = gif.Encode(w, img, nil)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return nil
}

// Export encodes g to a file, picking the format from the extension.
func Export(g *pixel.Grid, path string, opts Options) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format, err = ParseFormat(format); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	w := bufio.NewWriter(f)
	if err := Write(w, g, format, opts); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
