package model

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/internal/asset"
	"product-viewer/internal/scene"
	"product-viewer/internal/texture"
)

const asciiSTL = `solid wedge
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 10 0 0
    vertex 0 5 0
  endloop
endfacet
facet normal 0 -1 0
  outer loop
    vertex 0 0 0
    vertex 10 0 0
    vertex 0 0 2
  endloop
endfacet
endsolid wedge
`

// testGLB builds a single red triangle translated by +10 on X.
func testGLB(t *testing.T) []byte {
	t.Helper()
	var bin bytes.Buffer
	for _, f := range []float32{0, 0, 0, 4, 0, 0, 0, 2, 0} {
		require.NoError(t, binary.Write(&bin, binary.LittleEndian, f))
	}
	for _, i := range []uint16{0, 1, 2} {
		require.NoError(t, binary.Write(&bin, binary.LittleEndian, i))
	}
	binLen := bin.Len()
	for bin.Len()%4 != 0 {
		bin.WriteByte(0)
	}

	js := []byte(`{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],` +
		`"nodes":[{"mesh":0,"translation":[10,0,0]}],` +
		`"meshes":[{"name":"tri","primitives":[{"attributes":{"POSITION":0},"indices":1,"material":0}]}],` +
		`"materials":[{"pbrMetallicRoughness":{"baseColorFactor":[1,0,0,1]}}],` +
		`"buffers":[{"byteLength":42}],` +
		`"bufferViews":[{"buffer":0,"byteOffset":0,"byteLength":36},{"buffer":0,"byteOffset":36,"byteLength":6}],` +
		`"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3","min":[0,0,0],"max":[4,2,0]},` +
		`{"bufferView":1,"componentType":5123,"count":3,"type":"SCALAR"}]}`)
	require.Equal(t, 42, binLen)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + bin.Len()
	for _, v := range []uint32{0x46546C67, 2, uint32(total), uint32(len(js)), 0x4E4F534A} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	out.Write(js)
	for _, v := range []uint32{uint32(bin.Len()), 0x004E4942} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	out.Write(bin.Bytes())
	return out.Bytes()
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.Set(i%2, i/2, c)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newLoader(files asset.Static, opts Options) *Loader {
	return NewLoader(files, texture.NewCache(files), opts, zerolog.Nop())
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		uri  string
		want Format
		ok   bool
	}{
		{"robot.STL", FormatSTL, true},
		{"/models/robot.glb?v=3", FormatGLB, true},
		{"https://cdn.example.com/a/b.gltf#top", FormatGLTF, true},
		{"robot.xyz", "xyz", false},
		{"robot", "", false},
	}
	for _, c := range cases {
		f, ok := DetectFormat(c.uri)
		assert.Equal(t, c.want, f, c.uri)
		assert.Equal(t, c.ok, ok, c.uri)
	}
}

func TestTrackerTransitions(t *testing.T) {
	tr := NewTracker()
	assert.Error(t, tr.To(StateLoading, ""))
	require.NoError(t, tr.To(StateError, "boom"))
	st, msg := tr.State()
	assert.Equal(t, StateError, st)
	assert.Equal(t, "boom", msg)
	assert.Error(t, tr.To(StateReady, ""))
	require.NoError(t, tr.To(StateLoading, ""))
	require.NoError(t, tr.To(StateReady, ""))
	assert.Error(t, tr.To(StateLoading, ""))
	assert.Equal(t, []LoadState{StateLoading, StateError, StateLoading, StateReady}, tr.Trace())
}

func TestLoadUnsupportedFormatFallsBack(t *testing.T) {
	l := newLoader(asset.Static{}, Options{})
	res, err := l.Load(context.Background(), Request{URI: "robot.xyz"}, nil)
	require.NoError(t, err)

	assert.Equal(t, FormatCube, res.Format)
	assert.True(t, res.Fallback())
	assert.Equal(t, "Unsupported 3D model format: .xyz. Falling back to image-based model.", res.Warning)
	var ue *UnsupportedFormatError
	assert.ErrorAs(t, res.Cause, &ue)
	assert.Equal(t, []LoadState{StateLoading, StateReady}, res.Trace)
	assert.Len(t, res.Model.Meshes, 6)
}

func TestLoadFetchFailureFallsBack(t *testing.T) {
	l := newLoader(asset.Static{}, Options{})
	res, err := l.Load(context.Background(), Request{URI: "robot.glb"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []LoadState{StateLoading, StateError, StateLoading, StateReady}, res.Trace)
	assert.Equal(t, "Failed to load GLB model from robot.glb. Falling back to image-based model.", res.Warning)
	var fe *asset.FetchError
	assert.ErrorAs(t, res.Cause, &fe)
	require.NotNil(t, res.Model)
	assert.Equal(t, FormatCube, res.Format)
}

func TestLoadDecodeFailureFallsBack(t *testing.T) {
	l := newLoader(asset.Static{"bad.stl": []byte("solid nonsense\nfacet")}, Options{})
	res, err := l.Load(context.Background(), Request{URI: "bad.stl"}, nil)
	require.NoError(t, err)

	var de *DecodeError
	require.ErrorAs(t, res.Cause, &de)
	assert.Equal(t, FormatSTL, de.Format)
	assert.Contains(t, res.Warning, "Failed to load STL model from bad.stl")
}

func TestLoadSTLNormalizes(t *testing.T) {
	l := newLoader(asset.Static{"wedge.stl": []byte(asciiSTL)}, Options{})
	var last float64
	res, err := l.Load(context.Background(), Request{URI: "wedge.stl"}, func(p float64) { last = p })
	require.NoError(t, err)

	assert.False(t, res.Fallback())
	assert.Equal(t, FormatSTL, res.Format)
	assert.Equal(t, 100.0, last)
	assert.Equal(t, 2, res.Model.Triangles())

	lo, hi, ok := res.Model.WorldBounds()
	require.True(t, ok)
	assert.InDelta(t, 3, hi.Sub(lo).MaxComponent(), 1e-9)

	mat, ok := res.Model.Meshes[0].Material.(*scene.PhongMaterial)
	require.True(t, ok)
	assert.Equal(t, scene.ModelBlue, mat.Color)
}

func TestLoadGLB(t *testing.T) {
	l := newLoader(asset.Static{"tri.glb": testGLB(t)}, Options{})
	res, err := l.Load(context.Background(), Request{URI: "tri.glb"}, nil)
	require.NoError(t, err)
	require.False(t, res.Fallback(), res.Warning)

	require.Len(t, res.Model.Meshes, 1)
	mesh := res.Model.Meshes[0]
	assert.Equal(t, "tri", mesh.Name)
	assert.InDelta(t, 10, mesh.Positions[0][0], 1e-6)
	assert.InDelta(t, 0.75, res.Model.Scale, 1e-9)

	mat, ok := mesh.Material.(*scene.PBRMaterial)
	require.True(t, ok)
	assert.Equal(t, scene.Color{R: 255}, mat.BaseColor)
	assert.Equal(t, 1, res.Model.Recolor(scene.Palette[2]))
}

func TestLoadWithoutModelBuildsCube(t *testing.T) {
	files := asset.Static{
		"a.png": pngBytes(t, color.NRGBA{255, 0, 0, 255}),
		"b.png": pngBytes(t, color.NRGBA{0, 0, 255, 255}),
	}
	l := newLoader(files, Options{})
	res, err := l.Load(context.Background(), Request{Images: []string{"a.png", "b.png", "broken.png"}}, nil)
	require.NoError(t, err)

	assert.False(t, res.Fallback())
	require.Len(t, res.Model.Meshes, 6)
	faceColor := func(i int) color.NRGBA {
		return res.Model.Meshes[i].Material.Texture().NRGBAAt(0, 0)
	}
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, faceColor(0))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, faceColor(1))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, faceColor(3))
	// broken.png falls back to the placeholder
	assert.Equal(t, texture.Placeholder(256, 256).NRGBAAt(0, 0), faceColor(2))

	lo, hi, _ := res.Model.Bounds()
	assert.Equal(t, float64(CubeSize), hi[0]-lo[0])
	assert.Equal(t, 1.0, res.Model.Scale)
}

func TestLoadFatalWhenPlaceholderMissing(t *testing.T) {
	l := newLoader(asset.Static{}, Options{Placeholder: "placeholder.png"})
	res, err := l.Load(context.Background(), Request{URI: "robot.glb"}, nil)

	var fatal *asset.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "placeholder.png", fatal.URI)
	assert.Nil(t, res.Model)
	assert.Equal(t, []LoadState{StateLoading, StateError, StateLoading, StateError}, res.Trace)
}

func TestLoadFatalWithoutModel(t *testing.T) {
	l := newLoader(asset.Static{}, Options{Placeholder: "placeholder.png"})
	res, err := l.Load(context.Background(), Request{Images: []string{"front.png"}}, nil)

	var fatal *asset.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, []LoadState{StateLoading, StateError}, res.Trace)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newLoader(asset.Static{"wedge.stl": []byte(asciiSTL)}, Options{})
	_, err := l.Load(ctx, Request{URI: "wedge.stl"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCubeFacesPointOutward(t *testing.T) {
	m, err := Cube(context.Background(), texture.NewCache(asset.Static{}), nil, "")
	require.NoError(t, err)
	for i, mesh := range m.Meshes {
		a, b, c := mesh.Positions[0], mesh.Positions[1], mesh.Positions[2]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		assert.InDelta(t, 1, n.Dot(cubeFaces[i].normal), 1e-9, "face %d", i)
		assert.False(t, math.IsNaN(n[0]))
	}
}
