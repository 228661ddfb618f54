package raster

import (
	"image"
	"math"
)

// Wrap selects how texture coordinates outside [0, 1] are handled.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClamp
)

// SampleTexture performs bilinear filtering at (u, v), with v growing
// downward in image space. Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64, wrap Wrap) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()

	// texel centers sit at half-integer coordinates
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	dx, dy := fx-x0f, fy-y0f

	x0 := texel(int(x0f), w, wrap)
	x1 := texel(int(x0f)+1, w, wrap)
	y0 := texel(int(y0f), h, wrap)
	y1 := texel(int(y0f)+1, h, wrap)

	stride := tex.Stride
	pix := tex.Pix
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	mix := func(o int) uint8 {
		return uint8(float64(pix[i00+o])*w00 + float64(pix[i10+o])*w10 +
			float64(pix[i01+o])*w01 + float64(pix[i11+o])*w11 + 0.5)
	}
	return mix(0), mix(1), mix(2), mix(3)
}

func texel(i, n int, wrap Wrap) int {
	if wrap == WrapClamp {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
