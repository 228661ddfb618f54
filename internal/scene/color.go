package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an opaque sRGB color.
type Color struct {
	R, G, B uint8
}

// Palette is the set of swatches offered by the recolor control.
var Palette = []Color{
	{0x42, 0x85, 0xf4},
	{0xea, 0x43, 0x35},
	{0x34, 0xa8, 0x53},
	{0xfb, 0xbc, 0x04},
	{0x9c, 0x27, 0xb0},
}

var (
	White      = Color{0xff, 0xff, 0xff}
	ModelBlue  = Color{0x42, 0x85, 0xf4}
	Background = Color{0xf8, 0xf9, 0xfa}
)

// ParseHex parses "#rrggbb", "0xrrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	if strings.HasPrefix(h, "0x") || strings.HasPrefix(h, "0X") {
		h = h[2:]
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("scene: parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("scene: parse color %q: %w", s, err)
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, 0xff}
}
