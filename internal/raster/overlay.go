package raster

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	panelColor   = color.NRGBA{0xff, 0xff, 0xff, 0xe6}
	textColor    = color.NRGBA{0x20, 0x21, 0x24, 0xff}
	mutedColor   = color.NRGBA{0x5f, 0x63, 0x68, 0xff}
	accentColor  = color.NRGBA{0x1a, 0x73, 0xe8, 0xff}
	trackColor   = color.NRGBA{0xda, 0xdc, 0xe0, 0xff}
	errorColor   = color.NRGBA{0xd9, 0x30, 0x25, 0xff}
	warningColor = color.NRGBA{0xfe, 0xf7, 0xe0, 0xf2}
	badgeColor   = color.NRGBA{0x00, 0x00, 0x00, 0x99}
)

const lineHeight = 16

// DrawLoading draws a centered panel with label and a progress bar for
// pct in [0, 100].
func DrawLoading(img draw.Image, label string, pct float64) {
	pct = max(0, min(100, pct))
	b := img.Bounds()
	pw := min(b.Dx()-16, 240)
	panel := centered(b, pw, 56)
	fillRect(img, panel, panelColor)
	drawText(img, panel.Min.X+12, panel.Min.Y+20, label, textColor)

	bar := image.Rect(panel.Min.X+12, panel.Min.Y+32, panel.Max.X-12, panel.Min.Y+40)
	fillRect(img, bar, trackColor)
	done := bar
	done.Max.X = bar.Min.X + int(float64(bar.Dx())*pct/100+0.5)
	fillRect(img, done, accentColor)
}

// DrawFatal draws the error panel with a retry hint.
func DrawFatal(img draw.Image, msg string) {
	b := img.Bounds()
	lines := wrap(msg, (min(b.Dx()-16, 280)-24)/7)
	panel := centered(b, min(b.Dx()-16, 280), 48+lineHeight*len(lines))
	fillRect(img, panel, panelColor)
	y := panel.Min.Y + 20
	drawText(img, panel.Min.X+12, y, "Failed to load", errorColor)
	for _, l := range lines {
		y += lineHeight
		drawText(img, panel.Min.X+12, y, l, textColor)
	}
	drawText(img, panel.Min.X+12, y+lineHeight+4, "[ Retry ]", accentColor)
}

// DrawMessage draws a single centered line, used for empty states.
func DrawMessage(img draw.Image, msg string) {
	b := img.Bounds()
	w := textWidth(msg)
	x := b.Min.X + (b.Dx()-w)/2
	y := b.Min.Y + b.Dy()/2 + 4
	drawText(img, x, y, msg, mutedColor)
}

// DrawWarning draws a dismissible banner along the top edge.
func DrawWarning(img draw.Image, msg string) {
	b := img.Bounds()
	lines := wrap(msg, (b.Dx()-40)/7)
	banner := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+8+lineHeight*len(lines))
	fillRect(img, banner, warningColor)
	y := banner.Min.Y + 2
	for _, l := range lines {
		y += lineHeight
		drawText(img, b.Min.X+8, y-4, l, textColor)
	}
	drawText(img, b.Max.X-16, banner.Min.Y+lineHeight, "x", mutedColor)
}

// DrawBadge draws a small label in the bottom-left corner.
func DrawBadge(img draw.Image, text string) {
	b := img.Bounds()
	w := textWidth(text) + 12
	r := image.Rect(b.Min.X+8, b.Max.Y-8-lineHeight-4, b.Min.X+8+w, b.Max.Y-8)
	fillRect(img, r, badgeColor)
	drawText(img, r.Min.X+6, r.Max.Y-6, text, color.NRGBA{0xff, 0xff, 0xff, 0xff})
}

func centered(b image.Rectangle, w, h int) image.Rectangle {
	x := b.Min.X + (b.Dx()-w)/2
	y := b.Min.Y + (b.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

func fillRect(img draw.Image, r image.Rectangle, c color.NRGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func drawText(img draw.Image, x, y int, s string, c color.NRGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: c},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

// wrap breaks s on spaces into lines of at most n runes.
func wrap(s string, n int) []string {
	if n < 8 {
		n = 8
	}
	var lines []string
	var cur []rune
	word := []rune{}
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}
	addWord := func() {
		if len(word) == 0 {
			return
		}
		if len(cur) > 0 && len(cur)+1+len(word) > n {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, word...)
		word = word[:0]
	}
	for _, r := range s {
		if r == ' ' {
			addWord()
			continue
		}
		word = append(word, r)
	}
	addWord()
	flush()
	return lines
}
