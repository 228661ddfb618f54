package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major. Used for node, model and view transforms.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 linear part and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// FromColumnMajor converts a column-major array (glTF node matrix) to Mat4.
// An all-zero input yields identity.
func FromColumnMajor(c [16]float64) Mat4 {
	if c == ([16]float64{}) {
		return Mat4Identity()
	}
	var m Mat4
	for r := 0; r < 4; r++ {
		for col := 0; col < 4; col++ {
			m[r*4+col] = c[col*4+r]
		}
	}
	return m
}

// TRS composes translation × rotation × scale.
func TRS(t Vec3, r Mat3, s Vec3) Mat4 {
	return FromMat3Translation(r.Scaled(s), t)
}

// LookAt returns a right-handed view matrix looking from eye toward target.
// When the view direction is parallel to up, -Z is used as the up vector.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up)
	if s.Len() < 1e-9 {
		s = f.Cross(Vec3{0, 0, -1})
	}
	s = s.Normalize()
	u := s.Cross(f)
	return Mat4{
		s[0], s[1], s[2], -s.Dot(eye),
		u[0], u[1], u[2], -u.Dot(eye),
		-f[0], -f[1], -f[2], f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Project applies a perspective projection to a view-space point and returns
// normalized device coordinates (x, y in [-1, 1] when visible) and the view depth.
// ok is false when the point lies behind the near plane.
func Project(p Vec3, fovYDeg, aspect, near float64) (ndcX, ndcY, depth float64, ok bool) {
	depth = -p[2]
	if depth < near {
		return 0, 0, depth, false
	}
	f := 1 / math.Tan(Deg2Rad(fovYDeg)/2)
	return p[0] * f / aspect / depth, p[1] * f / depth, depth, true
}
