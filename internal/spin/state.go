package spin

import (
	"fmt"
	"math"
	"time"

	"product-viewer/internal/mathutil"
)

const (
	MinZoom       = 0.5
	MaxZoom       = 4.0
	WheelStep     = 0.1
	KeyZoomStep   = 0.2
	KeyRotateStep = 10.0 // degrees
	PinchFactor   = 0.01 // zoom per pixel of finger distance
	AutoStep      = 1.0  // degrees per tick

	DefaultRotationSensitivity = 2.0
	DefaultPanSensitivity      = 1.0
	DefaultRotationPeriod      = 2500 * time.Millisecond
)

// Mode is the pointer interaction mode.
type Mode int

const (
	Idle Mode = iota
	Rotating
	Panning
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Panning:
		return "panning"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// LoadState tracks frame preloading.
type LoadState int

const (
	Loading LoadState = iota
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Point is a pointer position in viewport pixels.
type Point struct {
	X, Y float64
}

// Modifiers are the keyboard modifiers held at drag start.
type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// State is the observable view state.
type State struct {
	Angle        float64 // degrees, unbounded
	Frame        int
	Zoom         float64
	Pan          Point
	AutoRotating bool
	Mode         Mode
	Load         LoadState
	Err          string
}

// FrameIndex maps a rotation angle to one of n frames. The angle is reduced
// to [0, 360) and spread over indices 0..n-1; a positive whole turn lands on
// the last frame, which depicts the completed rotation. n <= 0 yields 0.
func FrameIndex(angle float64, n int) int {
	if n <= 0 {
		return 0
	}
	norm := mathutil.WrapDegrees(angle)
	if norm == 0 && angle > 0 {
		norm = 360
	}
	return int(math.Round(norm/360*float64(n-1))) % n
}
