package imageio

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/pixelsort/pkg/errors"
)

// Supported format names, as reported by image.Decode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)

// encodable lists formats with an encoder.
var encodable = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
	FormatGIF:  true,
	FormatBMP:  true,
	FormatTIFF: true,
}

var extensions = map[string]string{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
}

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unrecognized image extension %q", ext)
}

// ParseFormat normalizes a format name ("jpg" -> "jpeg") and checks that it
// can be encoded.
func ParseFormat(name string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(name, "."))
	if alias, ok := extensions["."+f]; ok {
		f = alias
	}
	if !encodable[f] {
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"cannot encode %q (must be one of: png, jpeg, gif, bmp, tiff)", name)
	}
	return f, nil
}

// Extension returns the preferred file extension for a format, including
// the dot.
func Extension(format string) string {
	switch format {
	case FormatJPEG:
		return ".jpg"
	case FormatGIF, FormatBMP, FormatTIFF, FormatWebP:
		return "." + format
	}
	return ".png"
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case FormatWebP:
		return "image/webp"
	}
	return "image/png"
}
