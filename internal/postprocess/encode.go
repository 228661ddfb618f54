package postprocess

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
)

// EncodeWebP writes img as lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("postprocess: encode webp: %w", err)
	}
	return nil
}

// WebP returns img encoded as lossless WebP.
func WebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeWebP(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
