package model

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hschendel/stl"

	"product-viewer/internal/mathutil"
	"product-viewer/internal/scene"
)

// DecodeSTL parses ASCII or binary STL into a single-mesh model with the
// default blue Phong material.
func DecodeSTL(data []byte) (*scene.Model, error) {
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	if len(solid.Triangles) == 0 {
		return nil, errors.New("stl: no triangles")
	}

	mesh := &scene.Mesh{
		Name:      solid.Name,
		Positions: make([]mathutil.Vec3, 0, len(solid.Triangles)*3),
		Indices:   make([]uint32, 0, len(solid.Triangles)*3),
		Material:  &scene.PhongMaterial{Color: scene.ModelBlue, Shininess: 100},
	}
	for _, tri := range solid.Triangles {
		for _, v := range tri.Vertices {
			mesh.Indices = append(mesh.Indices, uint32(len(mesh.Positions)))
			mesh.Positions = append(mesh.Positions, mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})
		}
	}
	return scene.NewModel(mesh), nil
}
