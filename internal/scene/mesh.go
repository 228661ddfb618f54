package scene

import (
	"math"

	"product-viewer/internal/mathutil"
)

// Mesh is an indexed triangle list with optional per-vertex texture coordinates.
type Mesh struct {
	Name      string
	Positions []mathutil.Vec3
	UVs       []mathutil.Vec2 // empty or len(Positions)
	Indices   []uint32        // three per triangle
	Material  Material
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounds of the mesh vertices. ok is false
// for an empty mesh.
func (m *Mesh) Bounds() (min, max mathutil.Vec3, ok bool) {
	if len(m.Positions) == 0 {
		return min, max, false
	}
	min = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.Positions {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max, true
}

// Dispose drops vertex data and the material's images.
func (m *Mesh) Dispose() {
	if m.Material != nil {
		m.Material.Dispose()
	}
	m.Positions = nil
	m.UVs = nil
	m.Indices = nil
}
