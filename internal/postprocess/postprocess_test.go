package postprocess

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func TestDownsampleKeepsEdgeColor(t *testing.T) {
	// opaque red square on a transparent background
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	out := Downsample(img, 4, 4)
	require.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())

	// the edge pixel is partly transparent but not darkened
	edge := out.NRGBAAt(1, 2)
	if edge.A > 0 {
		assert.Greater(t, edge.R, uint8(200))
	}
	inner := out.NRGBAAt(0, 2)
	assert.Greater(t, inner.A, uint8(240))
	assert.Greater(t, inner.R, uint8(240))
}

func TestDownsampleSameSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	assert.Same(t, img, Downsample(img, 3, 3))
}

func TestFit(t *testing.T) {
	w, h := Fit(800, 400, 400, 400)
	assert.Equal(t, 400, w)
	assert.Equal(t, 200, h)

	w, h = Fit(100, 50, 400, 400)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	w, h = Fit(0, 10, 4, 4)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestWebPRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	img.SetNRGBA(2, 1, color.NRGBA{10, 200, 30, 255})

	data, err := WebP(img)
	require.NoError(t, err)

	got, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 3), got.Bounds())
	r, g, _, _ := got.At(2, 1).RGBA()
	assert.Equal(t, uint32(10), r>>8)
	assert.Equal(t, uint32(200), g>>8)
}
