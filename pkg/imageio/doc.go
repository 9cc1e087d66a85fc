// Package imageio decodes images into pixel grids and encodes them back.
//
// # Formats
//
// Decoding supports PNG, JPEG and GIF from the standard library plus BMP,
// TIFF and WebP from golang.org/x/image. Encoding supports every format
// except WebP, which has no encoder.
//
// # Color handling
//
// Images are read as 8-bit non-premultiplied RGB; alpha is dropped. Encoded
// images are fully opaque. The pixel grid is independent of the decoded image
// and can be modified freely.
//
// # Usage
//
//	g, format, err := imageio.Import("photo.jpg")
//	// ... sort g ...
//	err = imageio.Export(g, "photo_sorted.png", imageio.Options{})
package imageio
