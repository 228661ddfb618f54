package viewer

import (
	"fmt"
	"time"
)

// Mode selects what the viewer presents.
type Mode string

const (
	ModeSpin  Mode = "spin"
	ModeModel Mode = "model"
)

// ParseMode accepts "spin", "360", "model" and "3d".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "spin", "360":
		return ModeSpin, nil
	case "model", "3d":
		return ModeModel, nil
	}
	return "", fmt.Errorf("viewer: unknown mode %q", s)
}

const (
	DefaultWidth  = 400
	DefaultHeight = 400
)

// Input is what the host provides for one product. The viewport size is
// fixed for the lifetime of a viewer.
type Input struct {
	Mode           Mode
	Frames         []string // ordered 360° frame URIs, may be empty
	ModelURI       string   // optional; the extension selects the decoder
	Images         []string // product images for the fallback cube
	Alt            string
	Width, Height  int
	AutoRotate     bool
	RotationPeriod time.Duration
	Display        Display
}

// Display is the initial presentation of a loaded 3D model. It is applied
// once; reset still returns to the perspective view.
type Display struct {
	View  string `json:"view,omitempty" yaml:"view,omitempty"`
	Flip  string `json:"flip,omitempty" yaml:"flip,omitempty"` // axes, e.g. "xz"
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

func (in Input) withDefaults() Input {
	if in.Mode == "" {
		in.Mode = ModeSpin
		if in.ModelURI != "" {
			in.Mode = ModeModel
		}
	}
	if in.Width <= 0 {
		in.Width = DefaultWidth
	}
	if in.Height <= 0 {
		in.Height = DefaultHeight
	}
	return in
}

// State is the externally visible load state.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty"
	StateFatal   State = "fatal"
)

// Status is reported to the host after every change.
type Status struct {
	State    State   `json:"state"`
	Mode     Mode    `json:"mode"`
	Progress float64 `json:"progress"` // 0–100, -1 while indeterminate
	Warning  string  `json:"warning,omitempty"`
	Err      string  `json:"error,omitempty"`
	Alt      string  `json:"alt,omitempty"`

	// spin mode
	Angle        float64 `json:"angle"`
	Frame        int     `json:"frame"`
	Zoom         float64 `json:"zoom"`
	AutoRotating bool    `json:"autoRotating"`

	// model mode
	Format string `json:"format,omitempty"`
}
