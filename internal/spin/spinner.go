package spin

import (
	"math"
	"time"

	"product-viewer/internal/mathutil"
)

// Options configures a Spinner. Zero values take the defaults.
type Options struct {
	RotationSensitivity float64 // degrees per horizontal pixel
	PanSensitivity      float64
	RotationPeriod      time.Duration // one full auto-rotate turn
	AutoRotate          bool
}

func (o Options) withDefaults() Options {
	if o.RotationSensitivity == 0 {
		o.RotationSensitivity = DefaultRotationSensitivity
	}
	if o.PanSensitivity == 0 {
		o.PanSensitivity = DefaultPanSensitivity
	}
	if o.RotationPeriod <= 0 {
		o.RotationPeriod = DefaultRotationPeriod
	}
	return o
}

// Spinner is the 360° frame-sequence state machine. It is not safe for
// concurrent use; one owner applies every input in order.
type Spinner struct {
	opts   Options
	frames int
	st     State

	last      Point
	touches   int
	pinchDist float64
}

// New creates a Spinner over frames images. With no frames the spinner is
// immediately ready and Empty.
func New(frames int, opts Options) *Spinner {
	opts = opts.withDefaults()
	s := &Spinner{
		opts:   opts,
		frames: frames,
		st: State{
			Zoom:         1,
			AutoRotating: opts.AutoRotate,
			Load:         Loading,
		},
	}
	if frames <= 0 {
		s.frames = 0
		s.st.Load = Ready
	}
	return s
}

// State returns a copy of the current state.
func (s *Spinner) State() State {
	return s.st
}

// Empty reports whether there are no frames to show.
func (s *Spinner) Empty() bool {
	return s.frames == 0
}

// FrameCount returns the number of frames.
func (s *Spinner) FrameCount() int {
	return s.frames
}

// SetReady ends the loading presentation.
func (s *Spinner) SetReady() {
	s.st.Load = Ready
	s.st.Err = ""
}

// SetFailed records a terminal load failure.
func (s *Spinner) SetFailed(msg string) {
	s.st.Load = Failed
	s.st.Err = msg
}

func (s *Spinner) setAngle(a float64) {
	s.st.Angle = a
	if s.frames > 0 {
		s.st.Frame = FrameIndex(a, s.frames)
	}
}

func (s *Spinner) setZoom(z float64) {
	s.st.Zoom = mathutil.Clamp(z, MinZoom, MaxZoom)
}

// BeginDrag starts panning when shift or ctrl is held or the view is zoomed
// in, and rotating otherwise. It always stops auto-rotation.
func (s *Spinner) BeginDrag(p Point, mods Modifiers) {
	if mods.Shift || mods.Ctrl || s.st.Zoom > 1 {
		s.st.Mode = Panning
	} else {
		s.st.Mode = Rotating
	}
	s.last = p
	s.st.AutoRotating = false
}

// ContinueDrag applies the pointer delta since the last sample.
func (s *Spinner) ContinueDrag(p Point) {
	switch s.st.Mode {
	case Panning:
		s.st.Pan.X += (p.X - s.last.X) * s.opts.PanSensitivity
		s.st.Pan.Y += (p.Y - s.last.Y) * s.opts.PanSensitivity
		s.last = p
	case Rotating:
		s.setAngle(s.st.Angle + (p.X-s.last.X)*s.opts.RotationSensitivity)
		s.last.X = p.X
	}
}

// EndDrag returns to Idle.
func (s *Spinner) EndDrag() {
	s.st.Mode = Idle
}

// Wheel zooms in for negative deltaY and out for positive deltaY.
func (s *Spinner) Wheel(deltaY float64) {
	switch {
	case deltaY > 0:
		s.setZoom(s.st.Zoom - WheelStep)
	case deltaY < 0:
		s.setZoom(s.st.Zoom + WheelStep)
	}
}

// Pinch changes zoom in proportion to the change in finger distance.
func (s *Spinner) Pinch(distanceDelta float64) {
	s.setZoom(s.st.Zoom + distanceDelta*PinchFactor)
}

// TouchStart anchors a gesture: one finger rotates, two fingers pinch.
// Any other count ends the gesture.
func (s *Spinner) TouchStart(points []Point) {
	s.touches = len(points)
	switch len(points) {
	case 1:
		s.st.Mode = Rotating
		s.last = points[0]
		s.st.AutoRotating = false
	case 2:
		s.st.Mode = Idle
		s.pinchDist = distance(points[0], points[1])
	default:
		s.touches = 0
		s.st.Mode = Idle
	}
}

// TouchMove continues the gesture. A change in finger count re-anchors the
// gesture without applying a delta.
func (s *Spinner) TouchMove(points []Point) {
	if len(points) != s.touches {
		s.TouchStart(points)
		return
	}
	switch len(points) {
	case 1:
		s.ContinueDrag(points[0])
	case 2:
		d := distance(points[0], points[1])
		s.Pinch(d - s.pinchDist)
		s.pinchDist = d
	}
}

// TouchEnd is called with the fingers still down.
func (s *Spinner) TouchEnd(remaining []Point) {
	if len(remaining) == 0 {
		s.touches = 0
		s.EndDrag()
		return
	}
	s.TouchStart(remaining)
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// ToggleAutoRotate flips auto-rotation.
func (s *Spinner) ToggleAutoRotate() {
	s.st.AutoRotating = !s.st.AutoRotating
}

// Animating reports whether ticks currently advance the rotation.
func (s *Spinner) Animating() bool {
	return s.st.AutoRotating && s.st.Mode == Idle && s.st.Load == Ready && s.frames > 0
}

// TickInterval is the auto-rotate period for one AutoStep.
func (s *Spinner) TickInterval() time.Duration {
	return s.opts.RotationPeriod / 360
}

// Tick advances auto-rotation by one step. Ticks while dragging, loading or
// stopped are dropped. It reports whether the state changed.
func (s *Spinner) Tick() bool {
	if !s.Animating() {
		return false
	}
	s.setAngle(s.st.Angle + AutoStep)
	return true
}

// Reset restores zoom, pan and rotation. Auto-rotation is left alone.
func (s *Spinner) Reset() {
	s.st.Zoom = 1
	s.st.Pan = Point{}
	s.st.Angle = 0
	s.st.Frame = 0
}

// Key applies a keyboard shortcut and reports whether it was handled.
func (s *Spinner) Key(key string) bool {
	switch key {
	case "ArrowLeft":
		s.setAngle(s.st.Angle - KeyRotateStep)
		s.st.AutoRotating = false
	case "ArrowRight":
		s.setAngle(s.st.Angle + KeyRotateStep)
		s.st.AutoRotating = false
	case "+", "=":
		s.setZoom(s.st.Zoom + KeyZoomStep)
	case "-":
		s.setZoom(s.st.Zoom - KeyZoomStep)
	case "0":
		s.Reset()
	case " ":
		s.ToggleAutoRotate()
	default:
		return false
	}
	return true
}

// Progress is the normalized rotation in [0, 1) for the position indicator.
func (s *Spinner) Progress() float64 {
	return mathutil.WrapDegrees(s.st.Angle) / 360
}
