package model

import (
	"path"
	"strings"
)

// Format is a 3D asset format recognized by its file extension.
type Format string

const (
	FormatSTL  Format = "stl"
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
	// FormatCube is the synthesized image cube.
	FormatCube Format = "cube"
)

// Label is the name used in user-facing messages.
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

// DetectFormat returns the lower-cased extension of the URI path without the
// dot, ignoring any query or fragment, and whether it names a loadable format.
func DetectFormat(uri string) (Format, bool) {
	p := uri
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	f := Format(ext)
	switch f {
	case FormatSTL, FormatGLB, FormatGLTF:
		return f, true
	}
	return f, false
}
