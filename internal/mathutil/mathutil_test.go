package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDegrees(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-10, 350},
		{725, 5},
		{-720, 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, WrapDegrees(c.in), 1e-9, "WrapDegrees(%v)", c.in)
	}
}

func TestWrapRadiansStaysInRange(t *testing.T) {
	for _, a := range []float64{-7 * math.Pi, -math.Pi, 0, 2 * math.Pi, 9.5} {
		w := WrapRadians(a)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.Less(t, w, 2*math.Pi)
	}
}

func TestEulerXYZMatchesSingleAxis(t *testing.T) {
	a := Deg2Rad(30)
	assert.Equal(t, RotX(a), EulerXYZ(Vec3{a, 0, 0}))
	assert.Equal(t, RotY(a), EulerXYZ(Vec3{0, a, 0}))
	assert.Equal(t, RotZ(a), EulerXYZ(Vec3{0, 0, a}))
}

func TestHalfTurnTwiceIsIdentity(t *testing.T) {
	m := Mat3Mul(RotY(math.Pi), RotY(math.Pi))
	p := m.MulVec3(Vec3{1, 2, 3})
	assert.True(t, p.ApproxEqual(Vec3{1, 2, 3}, 1e-9), "got %v", p)
}

func TestQuatToMat3(t *testing.T) {
	// 90° about Y
	s := math.Sqrt(0.5)
	m := QuatToMat3(Quat{0, s, 0, s})
	p := m.MulVec3(Vec3{1, 0, 0})
	assert.True(t, p.ApproxEqual(Vec3{0, 0, -1}, 1e-9), "got %v", p)

	assert.Equal(t, Mat3Identity(), QuatToMat3(Quat{}))
}

func TestFromColumnMajor(t *testing.T) {
	assert.Equal(t, Mat4Identity(), FromColumnMajor([16]float64{}))

	c := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}
	p := FromColumnMajor(c).MulPoint(Vec3{1, 1, 1})
	assert.Equal(t, Vec3{5, 6, 7}, p)
}

func TestLookAtMapsTargetOntoNegativeZ(t *testing.T) {
	eye := Vec3{5, 5, 5}
	v := LookAt(eye, Vec3{}, Vec3{0, 1, 0})
	p := v.MulPoint(Vec3{})
	assert.InDelta(t, 0, p[0], 1e-9)
	assert.InDelta(t, 0, p[1], 1e-9)
	assert.InDelta(t, -eye.Len(), p[2], 1e-9)

	// straight down: up vector is parallel to the view direction
	top := LookAt(Vec3{0, 8, 0}, Vec3{}, Vec3{0, 1, 0})
	q := top.MulPoint(Vec3{})
	assert.InDelta(t, -8, q[2], 1e-9)
}

func TestProject(t *testing.T) {
	x, y, d, ok := Project(Vec3{0, 0, -5}, 75, 1, 0.1)
	assert.True(t, ok)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
	assert.Equal(t, 5.0, d)

	_, _, _, ok = Project(Vec3{0, 0, 1}, 75, 1, 0.1)
	assert.False(t, ok)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.1, 0.5, 4))
	assert.Equal(t, 4.0, Clamp(9, 0.5, 4))
	assert.Equal(t, 2.0, Clamp(2, 0.5, 4))
}
