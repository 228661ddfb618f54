package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ComposeFrame draws a 360° frame into a w×h canvas filled with bg. The frame
// is fitted inside the canvas keeping its aspect ratio, scaled by zoom about
// the canvas center and shifted by (panX, panY) pixels.
func ComposeFrame(frame image.Image, w, h int, zoom, panX, panY float64, bg color.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	if frame == nil {
		return dst
	}
	sb := frame.Bounds()
	fw, fh := float64(sb.Dx()), float64(sb.Dy())
	if fw == 0 || fh == 0 || w == 0 || h == 0 {
		return dst
	}

	fit := min(float64(w)/fw, float64(h)/fh)
	s := fit * zoom
	cx := float64(w)/2 + panX
	cy := float64(h)/2 + panY

	// source → destination, source origin at sb.Min
	tx := cx - s*(float64(sb.Min.X)+fw/2)
	ty := cy - s*(float64(sb.Min.Y)+fh/2)
	m := f64.Aff3{
		s, 0, tx,
		0, s, ty,
	}
	draw.CatmullRom.Transform(dst, m, frame, sb, draw.Over, nil)
	return dst
}
