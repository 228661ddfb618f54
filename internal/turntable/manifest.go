package turntable

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
)

// ManifestFrame describes one rendered frame.
type ManifestFrame struct {
	Index int     `json:"index"`
	Angle float64 `json:"angle"`
	Image string  `json:"image"`
}

// Manifest lists a turntable's frames in spin order.
type Manifest struct {
	Source string          `json:"source"`
	Format string          `json:"format"`
	Size   int             `json:"size"`
	Frames []ManifestFrame `json:"frames"`
}

// URIs returns the frame image paths joined onto prefix, ready to use as
// spin frames.
func (m Manifest) URIs(prefix string) []string {
	out := make([]string, len(m.Frames))
	for i, f := range m.Frames {
		out[i] = path.Join(prefix, f.Image)
	}
	return out
}

// WriteManifest writes manifest.json.
func WriteManifest(p string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(p string) (Manifest, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Manifest{}, fmt.Errorf("turntable: read %s: %w", p, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("turntable: parse %s: %w", p, err)
	}
	return m, nil
}
