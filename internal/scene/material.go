package scene

import "image"

// Material describes how a mesh surface is shaded.
type Material interface {
	// Base returns the base color the renderer multiplies texture samples with.
	Base() Color
	// Texture returns the color map or nil.
	Texture() *image.NRGBA
	// Dispose releases the material's image data.
	Dispose()
}

// ColorableMaterial is a material whose base color can be replaced.
type ColorableMaterial interface {
	Material
	SetColor(Color)
}

// PhongMaterial is a shiny single-color or textured surface.
type PhongMaterial struct {
	Color     Color
	Map       *image.NRGBA
	Shininess float64
}

func (m *PhongMaterial) Base() Color           { return m.Color }
func (m *PhongMaterial) Texture() *image.NRGBA { return m.Map }
func (m *PhongMaterial) SetColor(c Color)      { m.Color = c }
func (m *PhongMaterial) Dispose()              { m.Map = nil }

// PBRMaterial is a metallic-roughness surface as found in glTF assets.
type PBRMaterial struct {
	BaseColor Color
	Map       *image.NRGBA
	Metallic  float64
	Roughness float64
}

func (m *PBRMaterial) Base() Color           { return m.BaseColor }
func (m *PBRMaterial) Texture() *image.NRGBA { return m.Map }
func (m *PBRMaterial) SetColor(c Color)      { m.BaseColor = c }
func (m *PBRMaterial) Dispose()              { m.Map = nil }

// NormalMaterial colors surfaces by their normal direction. It has no base
// color to replace and is skipped by Recolor.
type NormalMaterial struct{}

func (NormalMaterial) Base() Color           { return White }
func (NormalMaterial) Texture() *image.NRGBA { return nil }
func (NormalMaterial) Dispose()              {}
