package scene

import (
	"fmt"

	"product-viewer/internal/mathutil"
)

// View is a named camera preset.
type View string

const (
	ViewPerspective View = "perspective"
	ViewTop         View = "top"
	ViewBottom      View = "bottom"
	ViewFront       View = "front"
	ViewBack        View = "back"
	ViewLeft        View = "left"
	ViewRight       View = "right"
)

// PresetDistance is the camera distance from the origin for the axis-aligned presets.
const PresetDistance = 8

var presets = map[View]mathutil.Vec3{
	ViewPerspective: {5, 5, 5},
	ViewTop:         {0, PresetDistance, 0},
	ViewBottom:      {0, -PresetDistance, 0},
	ViewFront:       {0, 0, PresetDistance},
	ViewBack:        {0, 0, -PresetDistance},
	ViewLeft:        {-PresetDistance, 0, 0},
	ViewRight:       {PresetDistance, 0, 0},
}

// Views lists the presets in display order.
var Views = []View{ViewPerspective, ViewTop, ViewBottom, ViewFront, ViewBack, ViewLeft, ViewRight}

// PresetPosition returns the camera position for a preset.
func PresetPosition(v View) (mathutil.Vec3, error) {
	p, ok := presets[v]
	if !ok {
		return mathutil.Vec3{}, fmt.Errorf("scene: unknown view %q", v)
	}
	return p, nil
}

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position mathutil.Vec3
	Target   mathutil.Vec3
	FOV      float64 // vertical, degrees
	Near     float64
	Far      float64
}

// DefaultCamera returns the perspective preset camera.
func DefaultCamera() Camera {
	return Camera{
		Position: presets[ViewPerspective],
		FOV:      75,
		Near:     0.1,
		Far:      1000,
	}
}

// ViewMatrix returns the world-to-view transform.
func (c Camera) ViewMatrix() mathutil.Mat4 {
	return mathutil.LookAt(c.Position, c.Target, mathutil.Vec3{0, 1, 0})
}
