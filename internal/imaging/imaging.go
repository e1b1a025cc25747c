// Package imaging probes image dimensions and renders gallery thumbnails.
//
// Decoding is best-effort: camera raw formats (heic, dng, raw, raf) are
// accepted for upload but cannot be decoded here, so callers treat a
// failure as "no dimensions, no thumbnail" rather than an upload error.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/nfnt/resize"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ThumbnailMaxDim bounds the longest edge of a generated thumbnail.
const ThumbnailMaxDim = 480

const thumbnailJPEGQuality = 80

// Dimensions holds a decoded image's pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// Probe reads just enough of r to determine the image's dimensions.
func Probe(r io.Reader) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, fmt.Errorf("probing image: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Thumbnail decodes r and renders a JPEG no larger than ThumbnailMaxDim on
// its longest edge. Images already within bounds are re-encoded as-is.
func Thumbnail(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	thumb := resize.Thumbnail(ThumbnailMaxDim, ThumbnailMaxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
