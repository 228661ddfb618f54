package raster

import (
	"image"
	"math"

	"product-viewer/internal/mathutil"
)

// Vertex is a projected vertex: screen position, reciprocal view depth and
// texture coordinates.
type Vertex struct {
	X, Y float64
	InvZ float64
	U, V float64
}

// Surface is the per-mesh shading input.
type Surface struct {
	Tex      *image.NRGBA
	Wrap     Wrap
	R, G, B  uint8 // base color, multiplied with texture samples
	ByNormal bool  // color by view-space normal, unlit
}

// RasterizeTriangle fills one triangle with perspective-correct texturing,
// z-buffering, sRGB-aware flat lighting and ACES tone mapping.
//
// This is the HOT PATH: no allocation in the inner loop.
func RasterizeTriangle(fb *FrameBuffer, v [3]Vertex, normal mathutil.Vec3, s *Surface, lc *LightConfig) {
	x0, y0 := v[0].X, v[0].Y
	x1, y1 := v[1].X, v[1].Y
	x2, y2 := v[2].X, v[2].Y

	// Bounding box, clipped to the buffer
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-9 && det < 1e-9 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	// Flat shading
	shade := 1.0
	var nr, ng, nb uint8
	if s.ByNormal {
		nr = clamp255((normal[0]*0.5 + 0.5) * 255)
		ng = clamp255((normal[1]*0.5 + 0.5) * 255)
		nb = clamp255((normal[2]*0.5 + 0.5) * 255)
	} else {
		shade = lc.ComputeShade(normal) * lc.Exposure
	}
	baseR, baseG, baseB := srgbToLinear[s.R]*shade, srgbToLinear[s.G]*shade, srgbToLinear[s.B]*shade
	hasTex := s.Tex != nil && !s.ByNormal

	// attributes pre-divided by depth
	uz := [3]float64{v[0].U * v[0].InvZ, v[1].U * v[1].InvZ, v[2].U * v[2].InvZ}
	vz := [3]float64{v[0].V * v[0].InvZ, v[1].V * v[1].InvZ, v[2].V * v[2].InvZ}

	for sy := minY; sy <= maxY; sy++ {
		py := float64(sy) + 0.5
		dsy := py - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			px := float64(sx) + 0.5
			dsx := px - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -1e-6 || w1 < -1e-6 || w2 < -1e-6 {
				continue
			}

			invZ := w0*v[0].InvZ + w1*v[1].InvZ + w2*v[2].InvZ
			zIdx := rowOff + sx
			if invZ <= fb.ZBuf[zIdx] {
				continue
			}

			var cr, cg, cb, ca uint8 = 255, 255, 255, 255
			if s.ByNormal {
				cr, cg, cb = nr, ng, nb
			} else if hasTex {
				u := (w0*uz[0] + w1*uz[1] + w2*uz[2]) / invZ
				vv := (w0*vz[0] + w1*vz[1] + w2*vz[2]) / invZ
				cr, cg, cb, ca = SampleTexture(s.Tex, u, vv, s.Wrap)
				// Skip transparent texels
				if ca < 8 {
					continue
				}
			}
			fb.ZBuf[zIdx] = invZ

			pxIdx := zIdx * 4
			if s.ByNormal {
				fb.Color[pxIdx] = cr
				fb.Color[pxIdx+1] = cg
				fb.Color[pxIdx+2] = cb
				fb.Color[pxIdx+3] = 255
				continue
			}

			// sRGB decode → linear (LUT), tint, light, tone map, encode
			lr := srgbToLinear[cr] * baseR
			lg := srgbToLinear[cg] * baseG
			lb := srgbToLinear[cb] * baseB

			fb.Color[pxIdx] = clamp255(math.Pow(ACESTonemap(lr), lc.InvGamma) * 255)
			fb.Color[pxIdx+1] = clamp255(math.Pow(ACESTonemap(lg), lc.InvGamma) * 255)
			fb.Color[pxIdx+2] = clamp255(math.Pow(ACESTonemap(lb), lc.InvGamma) * 255)
			fb.Color[pxIdx+3] = 255
		}
	}
}
