package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	data := encodePNG(t, 640, 360)

	dims, err := Probe(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, dims.Width)
	assert.Equal(t, 360, dims.Height)
}

func TestProbeUndecodable(t *testing.T) {
	_, err := Probe(strings.NewReader("definitely not an image"))
	assert.Error(t, err)
}

func TestThumbnailShrinksLargeImages(t *testing.T) {
	data := encodePNG(t, 1920, 1080)

	thumb, err := Thumbnail(bytes.NewReader(data))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, ThumbnailMaxDim)
	assert.LessOrEqual(t, cfg.Height, ThumbnailMaxDim)
	// Aspect ratio preserved: 16:9 input stays wider than tall
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 100, 80)

	thumb, err := Thumbnail(bytes.NewReader(data))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestThumbnailUndecodable(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("raw sensor bytes"))
	assert.Error(t, err)
}
