package viewer

import (
	"context"
	"errors"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog"

	"product-viewer/internal/asset"
	"product-viewer/internal/model"
	"product-viewer/internal/scene"
	"product-viewer/internal/spin"
	"product-viewer/internal/texture"
)

// Options holds the collaborators and tuning shared by every viewer.
type Options struct {
	Fetcher     asset.Fetcher
	Textures    texture.Resolver // defaults to a cache over Fetcher
	Placeholder string
	TargetSize  float64
	Spin        spin.Options
	Orbit       scene.OrbitOptions
	Supersample int
	Workers     int
	Log         zerolog.Logger
}

// Update is the outcome of an asynchronous load, delivered on Updates and
// handed back to Apply by the owner.
type Update struct {
	gen      uint64
	progress float64
	done     bool

	frames      *spin.Frames
	placeholder *image.NRGBA
	model       model.Result
	err         error
}

type dragKind int

const (
	dragNone dragKind = iota
	dragRotate
	dragPan
)

// Viewer is the interactive product viewer for one Input. It is owned by a
// single goroutine: every method except Updates must be called from it.
// Loads run in the background and come back through Updates.
type Viewer struct {
	opts     Options
	loader   *model.Loader
	textures texture.Resolver
	log      zerolog.Logger

	in      Input
	gen     uint64
	closed  bool
	cancel  context.CancelFunc
	updates chan Update

	state     State
	progress  float64
	warning   string
	dismissed bool
	err       error

	// spin mode
	spinner     *spin.Spinner
	frames      *spin.Frames
	placeholder *image.NRGBA

	// model mode
	scene   *scene.Scene
	orbit   *scene.Orbit
	format  model.Format
	drag    dragKind
	last    Point
	fingers int
	pinch   float64
}

// New creates a viewer for in. Nothing is fetched until Mount.
func New(in Input, opts Options) *Viewer {
	if opts.Textures == nil {
		opts.Textures = texture.NewCache(opts.Fetcher)
	}
	if opts.Placeholder == "" {
		opts.Placeholder = texture.PlaceholderURI
	}
	if opts.Orbit == (scene.OrbitOptions{}) {
		opts.Orbit = scene.DefaultOrbitOptions()
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	v := &Viewer{
		opts:     opts,
		textures: opts.Textures,
		log:      opts.Log,
		loader: model.NewLoader(opts.Fetcher, opts.Textures, model.Options{
			Placeholder: opts.Placeholder,
			TargetSize:  opts.TargetSize,
		}, opts.Log),
		updates: make(chan Update, 16),
		scene:   scene.New(),
	}
	v.reset(in)
	return v
}

// reset installs in as the current input with fresh interaction state.
func (v *Viewer) reset(in Input) {
	in = in.withDefaults()
	v.in = in
	v.state = StateLoading
	v.progress = -1
	v.warning = ""
	v.dismissed = false
	v.err = nil
	v.frames = nil
	v.placeholder = nil
	v.format = ""
	v.drag = dragNone
	v.fingers = 0

	so := v.opts.Spin
	so.AutoRotate = in.AutoRotate
	if in.RotationPeriod > 0 {
		so.RotationPeriod = in.RotationPeriod
	}
	v.spinner = spin.New(len(in.Frames), so)

	oo := v.opts.Orbit
	v.orbit = scene.NewOrbit(scene.DefaultCamera(), oo)
	v.orbit.SetAutoRotate(in.AutoRotate)
	v.orbit.Save()
}

// Mount starts loading the current input. Mounting twice is a no-op.
func (v *Viewer) Mount(ctx context.Context) {
	if v.closed || v.cancel != nil || v.state != StateLoading {
		return
	}
	v.start(ctx)
}

// SetInput replaces the input. The resident model is disposed and results of
// loads started for the previous input are discarded when they arrive.
func (v *Viewer) SetInput(ctx context.Context, in Input) {
	if v.closed {
		return
	}
	v.stop()
	v.scene.Clear()
	v.reset(in)
	v.start(ctx)
}

// Close tears the viewer down. Pending loads are cancelled and late results
// are dropped. Close is idempotent.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.stop()
	v.scene.Clear()
	v.frames = nil
	v.placeholder = nil
}

// Closed reports whether Close was called.
func (v *Viewer) Closed() bool {
	return v.closed
}

// Updates delivers background load results and progress.
func (v *Viewer) Updates() <-chan Update {
	return v.updates
}

func (v *Viewer) stop() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.gen++
}

func (v *Viewer) start(ctx context.Context) {
	v.gen++
	gen := v.gen
	in := v.in

	if in.Mode == ModeSpin && len(in.Frames) == 0 {
		v.state = StateEmpty
		v.progress = 100
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	switch in.Mode {
	case ModeModel:
		go v.loadModel(ctx, gen, in)
	default:
		go v.loadFrames(ctx, gen, in)
	}
}

func (v *Viewer) send(ctx context.Context, u Update) {
	select {
	case v.updates <- u:
	case <-ctx.Done():
		if u.model.Model != nil {
			u.model.Model.Dispose()
		}
	}
}

func (v *Viewer) loadFrames(ctx context.Context, gen uint64, in Input) {
	frames, err := spin.Preload(ctx, v.textures, in.Frames, v.opts.Workers, v.log)
	if err != nil {
		return
	}
	u := Update{gen: gen, done: true, frames: frames}
	if !frames.Any() {
		v.log.Warn().Int("frames", len(in.Frames)).Msg("no frame loaded, showing placeholder")
		img, err := v.textures.Resolve(ctx, v.opts.Placeholder)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			u.err = &asset.FatalError{URI: v.opts.Placeholder, Err: err}
		}
		u.placeholder = img
	}
	v.send(ctx, u)
}

func (v *Viewer) loadModel(ctx context.Context, gen uint64, in Input) {
	progress := func(pct float64) {
		select {
		case v.updates <- Update{gen: gen, progress: pct}:
		default:
		}
	}
	res, err := v.loader.Load(ctx, model.Request{URI: in.ModelURI, Images: in.Images}, progress)
	if err != nil && ctx.Err() != nil {
		return
	}
	v.send(ctx, Update{gen: gen, done: true, model: res, err: err})
}

// Apply folds a background result into the viewer. Results from a previous
// input or after Close are discarded and their model disposed. It reports
// whether the presentation changed.
func (v *Viewer) Apply(u Update) bool {
	if v.closed || u.gen != v.gen {
		if u.model.Model != nil {
			u.model.Model.Dispose()
		}
		return false
	}
	if !u.done {
		if v.state != StateLoading || u.progress == v.progress {
			return false
		}
		v.progress = u.progress
		return true
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.progress = 100

	if u.err != nil {
		v.fail(u.err)
		return true
	}

	switch v.in.Mode {
	case ModeModel:
		v.scene.Attach(u.model.Model)
		v.format = u.model.Format
		v.warning = u.model.Warning
		v.applyDisplay()
	default:
		v.frames = u.frames
		v.placeholder = u.placeholder
		v.spinner.SetReady()
	}
	v.state = StateReady
	return true
}

// applyDisplay poses a freshly attached model. Invalid settings are skipped.
func (v *Viewer) applyDisplay() {
	d := v.in.Display
	m := v.scene.Model()
	if d.View != "" {
		// a starting view only; reset still returns to perspective
		if err := v.orbit.SetView(scene.View(d.View)); err != nil {
			v.log.Warn().Err(err).Msg("ignored display view")
		}
	}
	for _, r := range d.Flip {
		axis, err := scene.ParseAxis(string(r))
		if err != nil {
			v.log.Warn().Err(err).Msg("ignored display flip")
			continue
		}
		m.Flip(axis)
	}
	if d.Color != "" {
		c, err := scene.ParseHex(d.Color)
		if err != nil {
			v.log.Warn().Err(err).Msg("ignored display color")
			return
		}
		m.Recolor(c)
	}
}

func (v *Viewer) fail(err error) {
	v.err = err
	v.state = StateFatal
	v.spinner.SetFailed(err.Error())
	var fatal *asset.FatalError
	if errors.As(err, &fatal) {
		v.log.Error().Err(err).Msg("viewer failed")
	}
}

// Status returns the host-visible state.
func (v *Viewer) Status() Status {
	st := Status{
		State:    v.state,
		Mode:     v.in.Mode,
		Progress: v.progress,
		Alt:      v.in.Alt,
	}
	if !v.dismissed {
		st.Warning = v.warning
	}
	if v.err != nil {
		st.Err = v.err.Error()
	}
	if v.in.Mode == ModeModel {
		st.Format = string(v.format)
		st.AutoRotating = v.orbit.AutoRotating()
		return st
	}
	s := v.spinner.State()
	st.Angle = s.Angle
	st.Frame = s.Frame
	st.Zoom = s.Zoom
	st.AutoRotating = s.AutoRotating
	return st
}

// Input returns the current input with defaults applied.
func (v *Viewer) Input() Input {
	return v.in
}

// Scene returns the scene holding the resident model.
func (v *Viewer) Scene() *scene.Scene {
	return v.scene
}

// Camera returns the current 3D camera.
func (v *Viewer) Camera() scene.Camera {
	return v.orbit.Camera()
}

// Animating reports whether Tick should be called periodically.
func (v *Viewer) Animating() bool {
	if v.closed || v.state != StateReady {
		return false
	}
	if v.in.Mode == ModeModel {
		if v.orbit.Held() {
			return false
		}
		return v.orbit.Moving()
	}
	return v.spinner.Animating()
}

// TickInterval is the period between ticks while Animating.
func (v *Viewer) TickInterval() time.Duration {
	if v.in.Mode == ModeModel {
		fps := v.opts.Orbit.FPS
		if fps <= 0 {
			fps = scene.DefaultOrbitOptions().FPS
		}
		return time.Second / time.Duration(fps)
	}
	return v.spinner.TickInterval()
}

// Tick advances the animation by one step and reports whether anything moved.
func (v *Viewer) Tick() bool {
	if !v.Animating() {
		return false
	}
	if v.in.Mode == ModeModel {
		return v.orbit.Update()
	}
	return v.spinner.Tick()
}

// Handle applies one host event in order and reports whether the
// presentation changed. Retry reloads the current input.
func (v *Viewer) Handle(ctx context.Context, ev Event) bool {
	if v.closed {
		return false
	}
	switch ev.Type {
	case EventRetry:
		// failed fetches are remembered by the cache; forget them first
		if p, ok := v.textures.(interface{ Purge() }); ok {
			p.Purge()
		}
		v.SetInput(ctx, v.in)
		return true
	case EventDismiss:
		if v.warning == "" || v.dismissed {
			return false
		}
		v.dismissed = true
		return true
	}
	if v.state == StateFatal {
		return false
	}
	if v.in.Mode == ModeModel {
		return v.handleModel(ev)
	}
	return v.handleSpin(ev)
}

func (v *Viewer) handleSpin(ev Event) bool {
	s := v.spinner
	before := s.State()
	switch ev.Type {
	case EventPointerDown:
		s.BeginDrag(ev.point(), spin.Modifiers{Shift: ev.Shift, Ctrl: ev.Ctrl})
	case EventPointerMove:
		s.ContinueDrag(ev.point())
	case EventPointerUp:
		s.EndDrag()
	case EventWheel:
		s.Wheel(ev.DeltaY)
	case EventTouchStart:
		s.TouchStart(ev.touches())
	case EventTouchMove:
		s.TouchMove(ev.touches())
	case EventTouchEnd:
		s.TouchEnd(ev.touches())
	case EventKey:
		s.Key(ev.Key)
	case EventAutoRotate:
		s.ToggleAutoRotate()
	case EventReset:
		s.Reset()
	default:
		return false
	}
	return s.State() != before
}

func (v *Viewer) handleModel(ev Event) bool {
	o := v.orbit
	h := float64(v.in.Height)
	m := v.scene.Model()
	switch ev.Type {
	case EventPointerDown:
		// any drag stops auto-rotation at once
		was := o.AutoRotating()
		o.SetAutoRotate(false)
		o.Grab()
		v.drag = dragRotate
		if ev.Shift || ev.Ctrl || ev.Button == 2 {
			v.drag = dragPan
		}
		v.last = Point{ev.X, ev.Y}
		return was
	case EventPointerMove:
		dx, dy := ev.X-v.last.X, ev.Y-v.last.Y
		v.last = Point{ev.X, ev.Y}
		switch v.drag {
		case dragRotate:
			o.Rotate(dx, dy, h)
		case dragPan:
			o.Pan(dx, dy, h)
		default:
			return false
		}
	case EventPointerUp:
		v.drag = dragNone
		o.Release()
		return false
	case EventWheel:
		if ev.DeltaY == 0 {
			return false
		}
		o.Wheel(ev.DeltaY)
	case EventTouchStart, EventTouchEnd:
		return v.touch(ev.Touches)
	case EventTouchMove:
		if len(ev.Touches) != v.fingers {
			return v.touch(ev.Touches)
		}
		switch len(ev.Touches) {
		case 1:
			p := ev.Touches[0]
			o.Rotate(p.X-v.last.X, p.Y-v.last.Y, h)
			v.last = p
		case 2:
			d := math.Hypot(ev.Touches[1].X-ev.Touches[0].X, ev.Touches[1].Y-ev.Touches[0].Y)
			if v.pinch <= 0 || d <= 0 {
				v.pinch = d
				return false
			}
			o.Dolly(v.pinch / d)
			v.pinch = d
		default:
			return false
		}
	case EventKey:
		switch ev.Key {
		case "0":
			o.Reset()
		case " ":
			o.SetAutoRotate(!o.AutoRotating())
		default:
			return false
		}
	case EventAutoRotate:
		o.SetAutoRotate(!o.AutoRotating())
	case EventReset:
		o.Reset()
	case EventView:
		if err := o.SetView(scene.View(ev.View)); err != nil {
			v.log.Debug().Err(err).Msg("ignored view event")
			return false
		}
	case EventFlip:
		axis, err := scene.ParseAxis(ev.Axis)
		if err != nil || m == nil {
			return false
		}
		m.Flip(axis)
	case EventColor:
		c, err := scene.ParseHex(ev.Color)
		if err != nil || m == nil {
			v.log.Debug().Err(err).Str("color", ev.Color).Msg("ignored color event")
			return false
		}
		return m.Recolor(c) > 0
	default:
		return false
	}
	return true
}

// touch re-anchors a touch gesture on a change of finger count. A one-finger
// drag grabs the camera and stops auto-rotation; touch reports whether that
// changed anything visible.
func (v *Viewer) touch(pts []Point) bool {
	o := v.orbit
	was := o.AutoRotating()
	v.fingers = len(pts)
	v.pinch = 0
	if len(pts) != 1 {
		o.Release()
	}
	switch len(pts) {
	case 1:
		o.SetAutoRotate(false)
		o.Grab()
		v.last = pts[0]
	case 2:
		v.pinch = math.Hypot(pts[1].X-pts[0].X, pts[1].Y-pts[0].Y)
	}
	return was != o.AutoRotating()
}
