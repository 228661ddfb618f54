package raster

import (
	"math"

	"product-viewer/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters. Directions are in view
// space, so the rig follows the camera.
type LightConfig struct {
	LightDir  mathutil.Vec3
	RimDir    mathutil.Vec3
	HalfMain  mathutil.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns a soft studio rig: key light from the upper
// right, rim light from behind, hemisphere fill.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{0.5, 0.8, 0.6}.Normalize()
	rimDir := mathutil.Vec3{-0.6, 0.4, -0.7}.Normalize()
	viewDir := mathutil.Vec3{0, 0, 1}

	return LightConfig{
		LightDir:  lightDir,
		RimDir:    rimDir,
		HalfMain:  lightDir.Add(viewDir).Normalize(),
		Ambient:   0.45,
		Hemi:      0.35,
		Direct:    0.90,
		Rim:       0.25,
		SpecInt:   0.25,
		SpecPow:   24.0,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit view-space normal.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	// Lambertian (abs for double-sided)
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	// Hemisphere fill, brighter from above
	hemi := (normal[1] + 1) * 0.5
	hemiLight := (0.5 + 0.5*hemi) * lc.Hemi

	// Blinn-Phong specular
	ndh := math.Abs(normal.Dot(lc.HalfMain))
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
