package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"product-viewer/internal/mathutil"
)

// OrbitOptions configures Orbit.
type OrbitOptions struct {
	FPS             int
	Damping         bool
	AutoRotateSpeed float64 // 2.0 completes a turn in 30 s
	MinDistance     float64
	MaxDistance     float64
}

// DefaultOrbitOptions matches the product viewer's control rig.
func DefaultOrbitOptions() OrbitOptions {
	return OrbitOptions{
		FPS:             30,
		Damping:         true,
		AutoRotateSpeed: 2.0,
		MinDistance:     2,
		MaxDistance:     50,
	}
}

const (
	phiEps     = 1e-6
	restVel    = 1e-5
	dollyScale = 0.95

	// frames of motion a released drag carries on for
	flingFrames = 4
)

type orbitPose struct {
	target     mathutil.Vec3
	radius     float64
	theta, phi float64
}

// Orbit moves a camera on a sphere around a target. With damping on, rotation
// input moves a goal angle and a critically damped spring eases the camera to it.
type Orbit struct {
	opts OrbitOptions
	cam  Camera
	pose orbitPose

	saved orbitPose

	thetaGoal, phiGoal float64
	thetaVel, phiVel   float64
	spring             harmonica.Spring

	autoRotate bool

	// held while a pointer grabs the camera; fling is the last grabbed step
	held                 bool
	flingTheta, flingPhi float64
}

// NewOrbit starts an orbit from cam and saves it as the reset pose.
func NewOrbit(cam Camera, opts OrbitOptions) *Orbit {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	o := &Orbit{
		opts:   opts,
		cam:    cam,
		spring: harmonica.NewSpring(harmonica.FPS(opts.FPS), 6.0, 1.0),
	}
	o.pose = poseFrom(cam.Position, cam.Target)
	o.saved = o.pose
	o.stop()
	return o
}

func poseFrom(pos, target mathutil.Vec3) orbitPose {
	off := pos.Sub(target)
	r := off.Len()
	p := orbitPose{target: target, radius: r}
	if r > 0 {
		p.theta = math.Atan2(off[0], off[2])
		p.phi = math.Acos(mathutil.Clamp(off[1]/r, -1, 1))
	}
	p.phi = mathutil.Clamp(p.phi, phiEps, math.Pi-phiEps)
	return p
}

// Camera returns the current camera.
func (o *Orbit) Camera() Camera {
	c := o.cam
	p := o.pose
	s := math.Sin(p.phi)
	c.Position = p.target.Add(mathutil.Vec3{
		p.radius * s * math.Sin(p.theta),
		p.radius * math.Cos(p.phi),
		p.radius * s * math.Cos(p.theta),
	})
	c.Target = p.target
	return c
}

// Distance returns the camera distance from the target.
func (o *Orbit) Distance() float64 {
	return o.pose.radius
}

// Rotate turns the camera by a pointer drag of (dx, dy) pixels on a viewport
// of the given height. A full viewport height drag is one turn.
func (o *Orbit) Rotate(dx, dy, viewportH float64) {
	if viewportH <= 0 {
		return
	}
	left := 2 * math.Pi * dx / viewportH
	up := 2 * math.Pi * dy / viewportH
	if o.held {
		phi := clampPhi(o.pose.phi - up)
		o.flingTheta, o.flingPhi = -left, phi-o.pose.phi
		o.pose.theta -= left
		o.pose.phi = phi
		o.stop()
		return
	}
	o.thetaGoal -= left
	o.phiGoal = clampPhi(o.phiGoal - up)
	if !o.opts.Damping {
		o.snap()
	}
}

func clampPhi(phi float64) float64 {
	return mathutil.Clamp(phi, phiEps, math.Pi-phiEps)
}

// Pan moves the target in the camera plane by a drag of (dx, dy) pixels.
func (o *Orbit) Pan(dx, dy, viewportH float64) {
	if viewportH <= 0 {
		return
	}
	cam := o.Camera()
	v := cam.ViewMatrix()
	right := mathutil.Vec3{v[0], v[1], v[2]}
	up := mathutil.Vec3{v[4], v[5], v[6]}

	dist := o.pose.radius * math.Tan(mathutil.Deg2Rad(cam.FOV)/2)
	move := right.Scale(-2 * dx * dist / viewportH).Add(up.Scale(2 * dy * dist / viewportH))
	o.pose.target = o.pose.target.Add(move)
}

// Wheel dollies toward the target for negative deltaY and away for positive.
func (o *Orbit) Wheel(deltaY float64) {
	switch {
	case deltaY > 0:
		o.Dolly(1 / dollyScale)
	case deltaY < 0:
		o.Dolly(dollyScale)
	}
}

// Dolly multiplies the camera distance by factor within the distance limits.
func (o *Orbit) Dolly(factor float64) {
	if factor <= 0 {
		return
	}
	o.pose.radius = mathutil.Clamp(o.pose.radius*factor, o.opts.MinDistance, o.opts.MaxDistance)
}

// Grab starts direct manipulation: Rotate moves the camera at once and any
// easing in progress stops.
func (o *Orbit) Grab() {
	o.stop()
	o.held = true
	o.flingTheta, o.flingPhi = 0, 0
}

// Release ends direct manipulation. With damping on, the camera coasts on
// in the direction of the last grabbed step and settles.
func (o *Orbit) Release() {
	if !o.held {
		return
	}
	o.held = false
	if o.opts.Damping {
		o.thetaGoal = o.pose.theta + flingFrames*o.flingTheta
		o.phiGoal = clampPhi(o.pose.phi + flingFrames*o.flingPhi)
	}
	o.flingTheta, o.flingPhi = 0, 0
}

// Held reports whether a pointer currently grabs the camera.
func (o *Orbit) Held() bool {
	return o.held
}

// SetAutoRotate turns continuous rotation about the vertical axis on or off.
func (o *Orbit) SetAutoRotate(on bool) {
	o.autoRotate = on
}

// AutoRotating reports whether continuous rotation is on.
func (o *Orbit) AutoRotating() bool {
	return o.autoRotate
}

// Update advances one frame: auto-rotation, then velocity decay.
// It reports whether the camera is still moving.
func (o *Orbit) Update() bool {
	if o.autoRotate {
		step := 2 * math.Pi / 60 * o.opts.AutoRotateSpeed / float64(o.opts.FPS)
		o.pose.theta -= step
		o.thetaGoal -= step
	}
	if o.easing() {
		o.pose.theta, o.thetaVel = o.spring.Update(o.pose.theta, o.thetaVel, o.thetaGoal)
		o.pose.phi, o.phiVel = o.spring.Update(o.pose.phi, o.phiVel, o.phiGoal)
		o.pose.phi = clampPhi(o.pose.phi)
		if !o.easing() {
			o.snap()
		}
	}
	return o.Moving()
}

func (o *Orbit) easing() bool {
	return math.Abs(o.pose.theta-o.thetaGoal) > restVel ||
		math.Abs(o.pose.phi-o.phiGoal) > restVel ||
		math.Abs(o.thetaVel) > restVel ||
		math.Abs(o.phiVel) > restVel
}

// Moving reports whether further Update calls would change the camera.
func (o *Orbit) Moving() bool {
	return o.autoRotate || o.easing()
}

// SetView jumps to a preset looking at the origin and stops any motion.
func (o *Orbit) SetView(v View) error {
	pos, err := PresetPosition(v)
	if err != nil {
		return err
	}
	o.pose = poseFrom(pos, mathutil.Vec3{})
	o.stop()
	return nil
}

// Save stores the current pose as the reset pose.
func (o *Orbit) Save() {
	o.saved = o.pose
}

// Reset restores the saved pose, discarding accumulated pan and zoom.
func (o *Orbit) Reset() {
	o.pose = o.saved
	o.stop()
}

// stop drops any easing and makes the current pose the goal.
func (o *Orbit) stop() {
	o.thetaGoal, o.phiGoal = o.pose.theta, o.pose.phi
	o.thetaVel, o.phiVel = 0, 0
}

// snap moves the camera straight to its goal.
func (o *Orbit) snap() {
	o.pose.theta, o.pose.phi = o.thetaGoal, o.phiGoal
	o.thetaVel, o.phiVel = 0, 0
}
