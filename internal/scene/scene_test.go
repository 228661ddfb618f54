package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/internal/mathutil"
)

func box(min, max mathutil.Vec3, mat Material) *Mesh {
	return &Mesh{
		Positions: []mathutil.Vec3{min, max, {min[0], max[1], min[2]}},
		Indices:   []uint32{0, 1, 2},
		Material:  mat,
	}
}

func TestParseHex(t *testing.T) {
	for _, in := range []string{"#4285f4", "0x4285f4", "4285F4"} {
		c, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, ModelBlue, c)
		assert.Equal(t, "#4285f4", c.Hex())
	}
	_, err := ParseHex("#12345")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

func TestNormalizeLargestDimension(t *testing.T) {
	m := NewModel(box(mathutil.Vec3{10, 0, -5}, mathutil.Vec3{110, 20, 5}, &PhongMaterial{}))
	m.Normalize(3)

	assert.Equal(t, mathutil.Vec3{60, 10, 0}, m.Center)
	assert.InDelta(t, 0.03, m.Scale, 1e-12)

	lo, hi, ok := m.WorldBounds()
	require.True(t, ok)
	size := hi.Sub(lo)
	assert.InDelta(t, 3, size.MaxComponent(), 1e-9)
	assert.True(t, lo.Add(hi).ApproxEqual(mathutil.Vec3{}, 1e-9), "centered: %v %v", lo, hi)
}

func TestNormalizeDegenerate(t *testing.T) {
	p := mathutil.Vec3{1, 1, 1}
	m := NewModel(&Mesh{Positions: []mathutil.Vec3{p, p, p}, Indices: []uint32{0, 1, 2}})
	m.Normalize(3)
	assert.Equal(t, 1.0, m.Scale)
	assert.False(t, math.IsNaN(m.Transform()[0]))
}

func TestFlipTwiceRestores(t *testing.T) {
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		m := NewModel()
		m.Rotation = mathutil.Vec3{0.3, 1.1, 2.5}
		orig := m.Rotation
		m.Flip(a)
		assert.InDelta(t, math.Pi, math.Abs(m.Rotation[a]-orig[a]), 1e-9)
		m.Flip(a)
		d := math.Mod(m.Rotation[a]-orig[a], 2*math.Pi)
		assert.Less(t, math.Abs(d), 1e-6, "axis %s", a)
	}
}

func TestFlipIsCumulativeOnTheModel(t *testing.T) {
	m := NewModel(box(mathutil.Vec3{-1, -1, -1}, mathutil.Vec3{1, 2, 1}, nil))
	m.Flip(AxisX)
	p := m.Transform().MulPoint(mathutil.Vec3{0, 2, 0})
	assert.True(t, p.ApproxEqual(mathutil.Vec3{0, -2, 0}, 1e-9), "got %v", p)
}

func TestRecolorSkipsNonColorable(t *testing.T) {
	phong := &PhongMaterial{Color: ModelBlue}
	pbr := &PBRMaterial{BaseColor: White}
	m := NewModel(
		box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, phong),
		box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, pbr),
		box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, NormalMaterial{}),
		box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, phong),
		box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, nil),
	)
	red := Palette[1]
	assert.Equal(t, 2, m.Recolor(red))
	assert.Equal(t, red, phong.Color)
	assert.Equal(t, red, pbr.BaseColor)
}

func TestSceneAttachDisposesPrevious(t *testing.T) {
	s := New()
	first := NewModel(box(mathutil.Vec3{}, mathutil.Vec3{1, 1, 1}, &PhongMaterial{}))
	second := NewModel()

	s.Attach(first)
	s.Attach(first)
	assert.False(t, first.Disposed())

	s.Attach(second)
	assert.True(t, first.Disposed())
	assert.Nil(t, first.Meshes[0].Positions)
	assert.Same(t, second, s.Model())

	s.Clear()
	assert.True(t, second.Disposed())
	assert.Nil(t, s.Model())
}

func TestPresets(t *testing.T) {
	for _, v := range Views {
		p, err := PresetPosition(v)
		require.NoError(t, err)
		if v != ViewPerspective {
			assert.InDelta(t, PresetDistance, p.Len(), 1e-9, v)
		}
	}
	_, err := PresetPosition("isometric")
	assert.Error(t, err)
}

func TestOrbitSetViewAndReset(t *testing.T) {
	o := NewOrbit(DefaultCamera(), DefaultOrbitOptions())
	start := o.Camera().Position

	require.NoError(t, o.SetView(ViewTop))
	assert.True(t, o.Camera().Position.ApproxEqual(mathutil.Vec3{0, 8, 0}, 1e-4))

	require.NoError(t, o.SetView(ViewLeft))
	o.Pan(40, 10, 400)
	o.Wheel(100)
	assert.NotEqual(t, mathutil.Vec3{}, o.Camera().Target)

	o.Reset()
	cam := o.Camera()
	assert.True(t, cam.Position.ApproxEqual(start, 1e-9), "got %v", cam.Position)
	assert.Equal(t, mathutil.Vec3{}, cam.Target)
}

func TestOrbitDollyLimits(t *testing.T) {
	o := NewOrbit(DefaultCamera(), DefaultOrbitOptions())
	for i := 0; i < 200; i++ {
		o.Wheel(-1)
	}
	assert.InDelta(t, 2, o.Distance(), 1e-9)
	for i := 0; i < 200; i++ {
		o.Wheel(1)
	}
	assert.InDelta(t, 50, o.Distance(), 1e-9)
}

func TestOrbitDampedRotationSettles(t *testing.T) {
	o := NewOrbit(DefaultCamera(), DefaultOrbitOptions())
	before := o.Camera().Position
	o.Rotate(40, 0, 400)
	require.True(t, o.Moving())

	frames := 0
	for o.Update() && frames < 1000 {
		frames++
	}
	assert.False(t, o.Moving())
	assert.Less(t, frames, 1000)
	after := o.Camera().Position
	assert.False(t, after.ApproxEqual(before, 1e-3))
	assert.InDelta(t, before.Len(), after.Len(), 1e-9)
}

func TestOrbitAutoRotateTurnsAboutVertical(t *testing.T) {
	opts := DefaultOrbitOptions()
	opts.Damping = false
	o := NewOrbit(DefaultCamera(), opts)
	o.SetAutoRotate(true)
	y := o.Camera().Position[1]

	// 2.0 speed: one full turn in 30 s
	for i := 0; i < 15*opts.FPS; i++ {
		o.Update()
	}
	p := o.Camera().Position
	assert.InDelta(t, y, p[1], 1e-9)
	assert.True(t, p.ApproxEqual(mathutil.Vec3{-5, 5, -5}, 1e-6), "half turn: %v", p)
	assert.True(t, o.Moving())
}

func TestOrbitGrabFollowsPointerThenCoasts(t *testing.T) {
	o := NewOrbit(DefaultCamera(), DefaultOrbitOptions())
	start := o.Camera().Position

	o.Grab()
	require.True(t, o.Held())
	o.Rotate(40, 0, 400)
	grabbed := o.Camera().Position
	assert.False(t, grabbed.ApproxEqual(start, 1e-3), "held rotation applies at once")
	assert.False(t, o.Moving())

	o.Release()
	assert.False(t, o.Held())
	require.True(t, o.Moving())
	frames := 0
	for o.Update() && frames < 1000 {
		frames++
	}
	assert.Less(t, frames, 1000)
	assert.False(t, o.Camera().Position.ApproxEqual(grabbed, 1e-3), "release coasts on")
}

func TestOrbitReleaseWithoutDampingStops(t *testing.T) {
	opts := DefaultOrbitOptions()
	opts.Damping = false
	o := NewOrbit(DefaultCamera(), opts)
	o.Grab()
	o.Rotate(40, 10, 400)
	o.Release()
	assert.False(t, o.Moving())

	// releasing twice is harmless
	o.Release()
	assert.False(t, o.Moving())
}

func TestOrbitReleaseAfterRestDoesNotCoast(t *testing.T) {
	o := NewOrbit(DefaultCamera(), DefaultOrbitOptions())
	o.Grab()
	o.Rotate(100, 0, 400)
	o.Rotate(0, 0, 400)
	rested := o.Camera().Position
	o.Release()
	assert.False(t, o.Moving())
	assert.Equal(t, rested, o.Camera().Position)

	// a quarter viewport drag turns the camera a quarter turn about the target
	p := o.Camera().Position
	assert.InDelta(t, -5, p[0], 1e-9)
	assert.InDelta(t, 5, p[2], 1e-9)
}
