package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales img to w×h with CatmullRom filtering in premultiplied
// alpha, which keeps transparent edges free of dark halos. An image already
// at the target size is returned as is.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}

	// draw.Draw premultiplies NRGBA into RGBA and back
	premul := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(premul, premul.Bounds(), img, b.Min, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	out := image.NewNRGBA(scaled.Bounds())
	draw.Draw(out, out.Bounds(), scaled, image.Point{}, draw.Src)
	return out
}

// Fit returns the largest size with the aspect ratio of w×h that fits
// inside maxW×maxH. Sizes already inside the box are returned unchanged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	s := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(float64(w)*s+0.5)), max(1, int(float64(h)*s+0.5))
}
