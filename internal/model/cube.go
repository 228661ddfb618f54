package model

import (
	"context"
	"image"

	"product-viewer/internal/asset"
	"product-viewer/internal/mathutil"
	"product-viewer/internal/scene"
	"product-viewer/internal/texture"
)

// CubeSize is the edge length of the fallback cube.
const CubeSize = 2

type cubeFace struct {
	normal, right, up mathutil.Vec3
}

// faces in +x, -x, +y, -y, +z, -z order; right × up = normal.
var cubeFaces = [6]cubeFace{
	{mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, -1}, mathutil.Vec3{0, 1, 0}},
	{mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, 0, 1}, mathutil.Vec3{0, 1, 0}},
	{mathutil.Vec3{0, 1, 0}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, -1}},
	{mathutil.Vec3{0, -1, 0}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, 1}},
	{mathutil.Vec3{0, 0, 1}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 1, 0}},
	{mathutil.Vec3{0, 0, -1}, mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, 1, 0}},
}

// Cube synthesizes the fallback box with images[i % len(images)] on face i,
// or the placeholder on every face when images is empty. A face whose image
// fails falls back to the placeholder; only a failing placeholder is an
// error, returned as *asset.FatalError.
func Cube(ctx context.Context, textures texture.Resolver, images []string, placeholder string) (*scene.Model, error) {
	if placeholder == "" {
		placeholder = texture.PlaceholderURI
	}
	meshes := make([]*scene.Mesh, 0, len(cubeFaces))
	for i, f := range cubeFaces {
		uri := placeholder
		if len(images) > 0 {
			uri = images[i%len(images)]
		}
		img, err := faceImage(ctx, textures, uri, placeholder)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, cubeMesh(f, img))
	}
	return scene.NewModel(meshes...), nil
}

func faceImage(ctx context.Context, textures texture.Resolver, uri, placeholder string) (*image.NRGBA, error) {
	img, err := textures.Resolve(ctx, uri)
	if err == nil {
		return img, nil
	}
	if uri != placeholder {
		img, err = textures.Resolve(ctx, placeholder)
		if err == nil {
			return img, nil
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, &asset.FatalError{URI: placeholder, Err: err}
}

func cubeMesh(f cubeFace, img *image.NRGBA) *scene.Mesh {
	h := float64(CubeSize) / 2
	n, r, u := f.normal.Scale(h), f.right.Scale(h), f.up.Scale(h)
	return &scene.Mesh{
		Positions: []mathutil.Vec3{
			n.Sub(r).Sub(u), // bottom left
			n.Add(r).Sub(u),
			n.Add(r).Add(u),
			n.Sub(r).Add(u),
		},
		// image space: v grows downward
		UVs:      []mathutil.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
		Material: &scene.PhongMaterial{Color: scene.White, Map: img, Shininess: 30},
	}
}
