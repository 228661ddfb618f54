package model

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"product-viewer/internal/mathutil"
	"product-viewer/internal/scene"
	"product-viewer/internal/texture"
)

// DecodeGLTF parses a .gltf (JSON, embedded buffers only) or .glb document and
// flattens the default scene into world-space meshes. Only triangle
// primitives are kept.
func DecodeGLTF(data []byte) (*scene.Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}

	d := &gltfDecoder{doc: doc, materials: make(map[int]scene.Material)}
	for _, root := range d.roots() {
		if err := d.walk(root, mathutil.Mat4Identity(), 0); err != nil {
			return nil, err
		}
	}
	if len(d.meshes) == 0 {
		return nil, errors.New("gltf: no triangle meshes")
	}
	return scene.NewModel(d.meshes...), nil
}

const maxNodeDepth = 64

type gltfDecoder struct {
	doc       *gltf.Document
	meshes    []*scene.Mesh
	materials map[int]scene.Material
}

// roots returns the node indices of the default scene, or of the first scene
// when none is marked default.
func (d *gltfDecoder) roots() []int {
	doc := d.doc
	if len(doc.Scenes) == 0 {
		return nil
	}
	idx := 0
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		idx = int(*doc.Scene)
	}
	var out []int
	for _, n := range doc.Scenes[idx].Nodes {
		out = append(out, int(n))
	}
	return out
}

func (d *gltfDecoder) walk(idx int, parent mathutil.Mat4, depth int) error {
	if idx < 0 || idx >= len(d.doc.Nodes) {
		return fmt.Errorf("gltf: node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return errors.New("gltf: node hierarchy too deep")
	}
	node := d.doc.Nodes[idx]
	world := mathutil.Mat4Mul(parent, nodeLocal(node))

	if node.Mesh != nil {
		mi := int(*node.Mesh)
		if mi >= len(d.doc.Meshes) {
			return fmt.Errorf("gltf: mesh %d out of range", mi)
		}
		for pi, prim := range d.doc.Meshes[mi].Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			mesh, err := d.primitive(prim, world)
			if err != nil {
				return fmt.Errorf("gltf: mesh %d primitive %d: %w", mi, pi, err)
			}
			mesh.Name = d.doc.Meshes[mi].Name
			d.meshes = append(d.meshes, mesh)
		}
	}
	for _, c := range node.Children {
		if err := d.walk(int(c), world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeLocal returns the node matrix, or T × R × S when the matrix is identity.
func nodeLocal(n *gltf.Node) mathutil.Mat4 {
	var cm [16]float64
	for i := range n.Matrix {
		cm[i] = float64(n.Matrix[i])
	}
	if m := mathutil.FromColumnMajor(cm); m != mathutil.Mat4Identity() {
		return m
	}

	var t, s mathutil.Vec3
	var q mathutil.Quat
	for i := 0; i < 3; i++ {
		t[i] = float64(n.Translation[i])
		s[i] = float64(n.Scale[i])
	}
	for i := 0; i < 4; i++ {
		q[i] = float64(n.Rotation[i])
	}
	if s == (mathutil.Vec3{}) {
		s = mathutil.Vec3{1, 1, 1}
	}
	return mathutil.TRS(t, mathutil.QuatToMat3(q), s)
}

func (d *gltfDecoder) primitive(prim *gltf.Primitive, world mathutil.Mat4) (*scene.Mesh, error) {
	doc := d.doc
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok || int(posIdx) >= len(doc.Accessors) {
		return nil, errors.New("missing POSITION")
	}
	pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, err
	}

	mesh := &scene.Mesh{Positions: make([]mathutil.Vec3, len(pos))}
	for i, p := range pos {
		mesh.Positions[i] = world.MulPoint(mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
	}

	if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok && int(uvIdx) < len(doc.Accessors) {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err == nil && len(uvs) == len(pos) {
			mesh.UVs = make([]mathutil.Vec2, len(uvs))
			for i, uv := range uvs {
				mesh.UVs[i] = mathutil.Vec2{float64(uv[0]), float64(uv[1])}
			}
		}
	}

	if prim.Indices != nil {
		ii := int(*prim.Indices)
		if ii >= len(doc.Accessors) {
			return nil, fmt.Errorf("indices accessor %d out of range", ii)
		}
		idx, err := modeler.ReadIndices(doc, doc.Accessors[ii], nil)
		if err != nil {
			return nil, err
		}
		for _, v := range idx {
			if int(v) >= len(pos) {
				return nil, fmt.Errorf("index %d out of range", v)
			}
		}
		mesh.Indices = idx
	} else {
		mesh.Indices = make([]uint32, len(pos))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	mesh.Indices = mesh.Indices[:len(mesh.Indices)/3*3]

	mi := -1
	if prim.Material != nil {
		mi = int(*prim.Material)
	}
	mesh.Material = d.material(mi)
	return mesh, nil
}

// material converts a glTF material once per index so primitives keep
// sharing it. -1 is the default white material.
func (d *gltfDecoder) material(idx int) scene.Material {
	if m, ok := d.materials[idx]; ok {
		return m
	}
	out := &scene.PBRMaterial{BaseColor: scene.White, Metallic: 1, Roughness: 1}
	d.materials[idx] = out
	if idx < 0 || idx >= len(d.doc.Materials) {
		return out
	}
	pbr := d.doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil {
		return out
	}
	if f := pbr.BaseColorFactor; f != nil {
		out.BaseColor = scene.Color{
			R: linearToSRGB(float64(f[0])),
			G: linearToSRGB(float64(f[1])),
			B: linearToSRGB(float64(f[2])),
		}
	}
	if pbr.MetallicFactor != nil {
		out.Metallic = float64(*pbr.MetallicFactor)
	}
	if pbr.RoughnessFactor != nil {
		out.Roughness = float64(*pbr.RoughnessFactor)
	}
	if ti := pbr.BaseColorTexture; ti != nil {
		if raw, err := d.textureBytes(int(ti.Index)); err == nil {
			if img, err := texture.Decode(raw); err == nil {
				out.Map = img
			}
		}
	}
	return out
}

// textureBytes returns the encoded image of a texture stored in a buffer view
// or a base64 data URI.
func (d *gltfDecoder) textureBytes(texIdx int) ([]byte, error) {
	doc := d.doc
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil, errors.New("gltf: no texture source")
	}
	src := int(*doc.Textures[texIdx].Source)
	if src >= len(doc.Images) {
		return nil, errors.New("gltf: image out of range")
	}
	img := doc.Images[src]

	if img.BufferView != nil {
		bvIdx := int(*img.BufferView)
		if bvIdx >= len(doc.BufferViews) {
			return nil, errors.New("gltf: buffer view out of range")
		}
		bv := doc.BufferViews[bvIdx]
		buf := int(bv.Buffer)
		if buf >= len(doc.Buffers) {
			return nil, errors.New("gltf: buffer out of range")
		}
		data := doc.Buffers[buf].Data
		start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
		if end > len(data) {
			return nil, errors.New("gltf: buffer view exceeds buffer")
		}
		return data[start:end], nil
	}

	if rest, ok := strings.CutPrefix(img.URI, "data:"); ok {
		if i := strings.Index(rest, ";base64,"); i >= 0 {
			return base64.StdEncoding.DecodeString(rest[i+len(";base64,"):])
		}
	}
	return nil, fmt.Errorf("gltf: external image %q not supported", img.URI)
}

func linearToSRGB(v float64) uint8 {
	v = mathutil.Clamp(v, 0, 1)
	return uint8(math.Round(math.Pow(v, 1/2.2) * 255))
}
