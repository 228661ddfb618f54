package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// decoder pairs a container signature with its decoder. TGA has no
// signature, so it is tried only when nothing else matches.
type decoder struct {
	name   string
	match  func([]byte) bool
	decode func(io.Reader) (image.Image, error)
}

var decoders = []decoder{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"gif", prefix("GIF8"), gif.Decode},
	{"webp", func(b []byte) bool {
		return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP"
	}, webp.Decode},
}

func prefix(sig string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(sig)) }
}

// Decode decodes JPEG, PNG, GIF, TGA or WebP bytes into an NRGBA image.
// Formats are told apart by their leading bytes rather than the image
// registry, whose TGA entry would claim every input.
func Decode(data []byte) (*image.NRGBA, error) {
	format, decode := "tga", tga.Decode
	for _, d := range decoders {
		if d.match(data) {
			format, decode = d.name, d.decode
			break
		}
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", format, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("texture: decode %s: empty image", format)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Placeholder synthesizes the neutral checkerboard shown when a product has
// no images of its own.
func Placeholder(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	light := color.NRGBA{0xe8, 0xea, 0xed, 0xff}
	dark := color.NRGBA{0xda, 0xdc, 0xe0, 0xff}
	cell := max(1, w/8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := light
			if (x/cell+y/cell)%2 == 1 {
				c = dark
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// AverageColor returns the mean opaque color of an image.
func AverageColor(tex *image.NRGBA) color.NRGBA {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{160, 160, 170, 255}
	}

	var sumR, sumG, sumB float64
	for y := 0; y < h; y++ {
		off := y * tex.Stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(tex.Pix[i])
			sumG += float64(tex.Pix[i+1])
			sumB += float64(tex.Pix[i+2])
		}
	}
	n := float64(w * h)
	return color.NRGBA{uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255}
}
