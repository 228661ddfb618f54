package mathutil

import "math"

// Quat represents a quaternion (x, y, z, w), the glTF node rotation layout.
type Quat [4]float64

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
// The zero quaternion is treated as identity.
func QuatToMat3(q Quat) Mat3 {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n < 1e-12 {
		return Mat3Identity()
	}
	x, y, z, w := q[0]/n, q[1]/n, q[2]/n, q[3]/n
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}
