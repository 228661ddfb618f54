package raster

import (
	"image"

	"product-viewer/internal/mathutil"
	"product-viewer/internal/scene"
)

// RenderScene renders the resident model of s as seen from cam into a
// (w·supersample)×(h·supersample) image over the scene background. Callers
// downsample the result to the display size.
func RenderScene(s *scene.Scene, cam scene.Camera, w, h, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	rw, rh := w*supersample, h*supersample
	fb := NewFrameBuffer(rw, rh)
	fb.Fill(s.Background.NRGBA())

	m := s.Model()
	if m == nil || m.Disposed() || rw == 0 || rh == 0 {
		return fb.Image()
	}

	mv := mathutil.Mat4Mul(cam.ViewMatrix(), m.Transform())
	aspect := float64(rw) / float64(rh)
	lc := DefaultLightConfig()

	for _, mesh := range m.Meshes {
		if len(mesh.Positions) == 0 {
			continue
		}

		// Transform to view space once per vertex
		viewPos := make([]mathutil.Vec3, len(mesh.Positions))
		screen := make([]Vertex, len(mesh.Positions))
		visible := make([]bool, len(mesh.Positions))
		for i, p := range mesh.Positions {
			vp := mv.MulPoint(p)
			viewPos[i] = vp
			nx, ny, depth, ok := mathutil.Project(vp, cam.FOV, aspect, cam.Near)
			if !ok || depth > cam.Far {
				continue
			}
			visible[i] = true
			screen[i] = Vertex{
				X:    (nx + 1) * 0.5 * float64(rw),
				Y:    (1 - ny) * 0.5 * float64(rh),
				InvZ: 1 / depth,
			}
			if i < len(mesh.UVs) {
				screen[i].U = mesh.UVs[i][0]
				screen[i].V = mesh.UVs[i][1]
			}
		}

		surf := surfaceFor(mesh)
		idx := mesh.Indices
		for t := 0; t+2 < len(idx); t += 3 {
			a, b, c := int(idx[t]), int(idx[t+1]), int(idx[t+2])
			if a >= len(screen) || b >= len(screen) || c >= len(screen) {
				continue
			}
			// Triangles crossing the near plane are dropped
			if !visible[a] || !visible[b] || !visible[c] {
				continue
			}
			n := viewPos[b].Sub(viewPos[a]).Cross(viewPos[c].Sub(viewPos[a]))
			if n.Len() < 1e-12 {
				continue
			}
			n = n.Normalize()
			if n[2] < 0 {
				n = n.Scale(-1)
			}
			RasterizeTriangle(fb, [3]Vertex{screen[a], screen[b], screen[c]}, n, surf, &lc)
		}
	}
	return fb.Image()
}

func surfaceFor(mesh *scene.Mesh) *Surface {
	s := &Surface{Wrap: WrapClamp}
	mat := mesh.Material
	if mat == nil {
		s.R, s.G, s.B = scene.White.R, scene.White.G, scene.White.B
		return s
	}
	switch mat.(type) {
	case scene.NormalMaterial, *scene.NormalMaterial:
		s.ByNormal = true
		return s
	}
	base := mat.Base()
	s.R, s.G, s.B = base.R, base.G, base.B
	if tex := mat.Texture(); tex != nil && len(mesh.UVs) == len(mesh.Positions) {
		s.Tex = tex
		for _, uv := range mesh.UVs {
			if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
				s.Wrap = WrapRepeat
				break
			}
		}
	}
	return s
}
