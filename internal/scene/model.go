package scene

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"product-viewer/internal/mathutil"
)

// Axis names a world axis for Flip.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("scene: unknown axis %q", s)
}

// Model is a set of meshes placed in the world as
// world = R(Rotation) × ((local − Center) × Scale).
type Model struct {
	Meshes   []*Mesh
	Center   mathutil.Vec3
	Scale    float64
	Rotation mathutil.Vec3 // Euler XYZ, radians

	disposed bool
}

// NewModel wraps meshes with an identity placement.
func NewModel(meshes ...*Mesh) *Model {
	return &Model{Meshes: meshes, Scale: 1}
}

// Bounds returns the local-space bounds over every mesh.
func (m *Model) Bounds() (min, max mathutil.Vec3, ok bool) {
	for _, mesh := range m.Meshes {
		lo, hi, has := mesh.Bounds()
		if !has {
			continue
		}
		if !ok {
			min, max, ok = lo, hi, true
			continue
		}
		min, max = min.Min(lo), max.Max(hi)
	}
	return min, max, ok
}

// Normalize recenters the model on its bounding-box centroid and scales it
// uniformly so the largest dimension equals target. A degenerate box keeps
// scale 1.
func (m *Model) Normalize(target float64) {
	lo, hi, ok := m.Bounds()
	if !ok {
		return
	}
	min := r3.Vec{X: lo[0], Y: lo[1], Z: lo[2]}
	max := r3.Vec{X: hi[0], Y: hi[1], Z: hi[2]}
	center := r3.Scale(0.5, r3.Add(min, max))
	size := r3.Sub(max, min)

	m.Center = mathutil.Vec3{center.X, center.Y, center.Z}
	m.Scale = 1
	if dim := math.Max(size.X, math.Max(size.Y, size.Z)); dim > 0 {
		m.Scale = target / dim
	}
}

// Transform returns the local-to-world matrix.
func (m *Model) Transform() mathutil.Mat4 {
	r := mathutil.EulerXYZ(m.Rotation)
	s := mathutil.Vec3{m.Scale, m.Scale, m.Scale}
	t := r.MulVec3(m.Center.Scale(-m.Scale))
	return mathutil.TRS(t, r, s)
}

// WorldBounds returns the axis-aligned bounds of the transformed vertices.
func (m *Model) WorldBounds() (min, max mathutil.Vec3, ok bool) {
	tr := m.Transform()
	for _, mesh := range m.Meshes {
		for _, p := range mesh.Positions {
			w := tr.MulPoint(p)
			if !ok {
				min, max, ok = w, w, true
				continue
			}
			min, max = min.Min(w), max.Max(w)
		}
	}
	return min, max, ok
}

// Flip rotates the model by 180° about the given axis. Two flips on the same
// axis restore the original orientation.
func (m *Model) Flip(a Axis) {
	if a < AxisX || a > AxisZ {
		return
	}
	m.Rotation[a] = mathutil.WrapRadians(m.Rotation[a] + math.Pi)
}

// Recolor sets the base color of every ColorableMaterial and returns how many
// materials changed. Other materials are left untouched.
func (m *Model) Recolor(c Color) int {
	n := 0
	seen := make(map[Material]bool)
	for _, mesh := range m.Meshes {
		if mesh.Material == nil || seen[mesh.Material] {
			continue
		}
		seen[mesh.Material] = true
		cm, ok := mesh.Material.(ColorableMaterial)
		if !ok {
			continue
		}
		cm.SetColor(c)
		n++
	}
	return n
}

// Triangles returns the triangle count over all meshes.
func (m *Model) Triangles() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.Triangles()
	}
	return n
}

// Dispose releases all meshes. It is safe to call more than once.
func (m *Model) Dispose() {
	if m.disposed {
		return
	}
	for _, mesh := range m.Meshes {
		mesh.Dispose()
	}
	m.disposed = true
}

// Disposed reports whether Dispose has run.
func (m *Model) Disposed() bool {
	return m.disposed
}
