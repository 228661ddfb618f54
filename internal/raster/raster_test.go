package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/internal/mathutil"
	"product-viewer/internal/scene"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func quad(mat scene.Material) *scene.Mesh {
	return &scene.Mesh{
		Positions: []mathutil.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		UVs:       []mathutil.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		Material:  mat,
	}
}

func frontCamera() scene.Camera {
	cam := scene.DefaultCamera()
	cam.Position = mathutil.Vec3{0, 0, 5}
	return cam
}

func TestFrameBufferFill(t *testing.T) {
	fb := NewFrameBuffer(3, 2)
	fb.Fill(color.NRGBA{1, 2, 3, 4})
	img := fb.Image()
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, img.NRGBAAt(2, 1))
	assert.Zero(t, fb.ZBuf[5])
}

func TestSampleTextureWrap(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	tex.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 255})

	r, _, b, _ := SampleTexture(tex, 0.25, 0.5, WrapClamp)
	assert.Equal(t, uint8(255), r)
	assert.Equal(t, uint8(0), b)

	// u = 1.25 repeats onto the left texel
	r, _, _, _ = SampleTexture(tex, 1.25, 0.5, WrapRepeat)
	assert.Equal(t, uint8(255), r)

	// far outside clamps to the right texel
	_, _, b, _ = SampleTexture(tex, 5, 0.5, WrapClamp)
	assert.Equal(t, uint8(255), b)
}

func TestRenderEmptySceneIsBackground(t *testing.T) {
	s := scene.New()
	img := RenderScene(s, scene.DefaultCamera(), 8, 6, 2)
	require.Equal(t, image.Rect(0, 0, 16, 12), img.Bounds())
	assert.Equal(t, scene.Background.NRGBA(), img.NRGBAAt(7, 5))
}

func TestRenderQuadCoversCenter(t *testing.T) {
	s := scene.New()
	s.Attach(scene.NewModel(quad(&scene.PhongMaterial{Color: scene.Color{R: 200, G: 20, B: 20}})))

	img := RenderScene(s, frontCamera(), 64, 64, 1)
	center := img.NRGBAAt(32, 32)
	assert.Greater(t, center.R, center.G)
	assert.Greater(t, center.R, center.B)
	assert.Equal(t, scene.Background.NRGBA(), img.NRGBAAt(1, 1))
}

func TestRenderNearerSurfaceWins(t *testing.T) {
	far := quad(&scene.PhongMaterial{Color: scene.Color{R: 255}})
	near := quad(&scene.PhongMaterial{Color: scene.Color{B: 255}})
	for i := range near.Positions {
		near.Positions[i][2] = 1
	}
	s := scene.New()
	// near is drawn first, far must not overwrite it
	s.Attach(scene.NewModel(near, far))

	c := RenderScene(s, frontCamera(), 32, 32, 1).NRGBAAt(16, 16)
	assert.Greater(t, c.B, c.R)
}

func TestRenderTexturedQuad(t *testing.T) {
	tex := solid(4, 4, color.NRGBA{0, 255, 0, 255})
	s := scene.New()
	s.Attach(scene.NewModel(quad(&scene.PhongMaterial{Color: scene.White, Map: tex})))

	c := RenderScene(s, frontCamera(), 32, 32, 1).NRGBAAt(16, 16)
	assert.Greater(t, c.G, c.R)
	assert.Greater(t, c.G, c.B)
}

func TestRenderBehindCameraIsCulled(t *testing.T) {
	s := scene.New()
	s.Attach(scene.NewModel(quad(&scene.PhongMaterial{Color: scene.Color{R: 255}})))
	cam := frontCamera()
	cam.Position = mathutil.Vec3{0, 0, -0.05}
	cam.Target = mathutil.Vec3{0, 0, -5}

	img := RenderScene(s, cam, 16, 16, 1)
	assert.Equal(t, scene.Background.NRGBA(), img.NRGBAAt(8, 8))
}

func TestComposeFrameFitsAndZooms(t *testing.T) {
	bg := color.NRGBA{9, 9, 9, 255}
	red := color.NRGBA{255, 0, 0, 255}
	frame := solid(10, 5, red)

	isRed := func(c color.NRGBA) bool { return c.R > 240 && c.G < 16 && c.B < 16 }

	img := ComposeFrame(frame, 20, 20, 1, 0, 0, bg)
	assert.True(t, isRed(img.NRGBAAt(10, 10)))
	// letterboxed above and below
	assert.Equal(t, bg, img.NRGBAAt(10, 1))

	img = ComposeFrame(frame, 20, 20, 2, 0, 0, bg)
	assert.True(t, isRed(img.NRGBAAt(10, 2)))
}

func TestComposeFramePans(t *testing.T) {
	bg := color.NRGBA{9, 9, 9, 255}
	frame := solid(10, 10, color.NRGBA{255, 0, 0, 255})

	img := ComposeFrame(frame, 20, 20, 0.5, 8, 0, bg)
	assert.Equal(t, bg, img.NRGBAAt(4, 10))
	assert.Greater(t, img.NRGBAAt(17, 10).R, uint8(240))
}

func TestComposeNilFrame(t *testing.T) {
	bg := color.NRGBA{1, 2, 3, 255}
	img := ComposeFrame(nil, 4, 4, 1, 0, 0, bg)
	assert.Equal(t, bg, img.NRGBAAt(3, 3))
}

func TestOverlaysDrawSomething(t *testing.T) {
	bg := color.NRGBA{0x80, 0x80, 0x80, 0xff}
	for name, draw := range map[string]func(*image.NRGBA){
		"loading": func(img *image.NRGBA) { DrawLoading(img, "Loading 3D model", 50) },
		"fatal":   func(img *image.NRGBA) { DrawFatal(img, "asset: fetch x: boom") },
		"message": func(img *image.NRGBA) { DrawMessage(img, "No 360° images available") },
		"warning": func(img *image.NRGBA) { DrawWarning(img, "Unsupported 3D model format: .obj.") },
		"badge":   func(img *image.NRGBA) { DrawBadge(img, "STL") },
	} {
		t.Run(name, func(t *testing.T) {
			img := solid(200, 120, bg)
			draw(img)
			changed := false
			for i := 0; i < len(img.Pix); i += 4 {
				if img.Pix[i] != bg.R {
					changed = true
					break
				}
			}
			assert.True(t, changed)
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, wrap("aaaa bbbb cccc", 9))
	assert.Equal(t, []string{"abcdefghijkl"}, wrap("abcdefghijkl", 8))
	assert.Empty(t, wrap("", 10))
}
