package constraint

import (
	"math"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Joint is a constraint between up to two bodies
type Joint interface {
	Constraint
	// Prepare is called once per step, before the substeps, with the step
	// size and the world softness
	Prepare(dt, erp, cfm float64)
	Bodies() (*actor.RigidBody, *actor.RigidBody)
}

// Axis holds the stop and motor parameters of one joint axis
type Axis struct {
	Lo, Hi        float64
	Vel           float64
	FMax          float64
	Bounce        float64
	StopERP       float64
	StopCFM       float64
	SuspensionERP float64
	SuspensionCFM float64
	Torque        float64
}

// DefaultAxis has no stops, no motor, and the world softness
func DefaultAxis(erp, cfm float64) Axis {
	return Axis{
		Lo:            math.Inf(-1),
		Hi:            math.Inf(1),
		StopERP:       erp,
		StopCFM:       cfm,
		SuspensionERP: erp,
		SuspensionCFM: cfm,
	}
}

// limitCorrection returns how far value must move to get back inside the stops
func (a *Axis) limitCorrection(value float64) float64 {
	if value < a.Lo {
		return a.Lo - value
	}
	if value > a.Hi {
		return a.Hi - value
	}
	return 0
}

// Frame is the attachment shared by every joint kind: one anchor expressed in
// each body's local frame.
type Frame struct {
	BodyA        *actor.RigidBody
	BodyB        *actor.RigidBody
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	dt         float64
	compliance float64
}

func (f *Frame) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return f.BodyA, f.BodyB
}

// SetAnchor places the anchor at a world point, on both bodies
func (f *Frame) SetAnchor(p mgl64.Vec3) {
	f.LocalAnchorA = localPoint(f.BodyA, p)
	f.LocalAnchorB = localPoint(f.BodyB, p)
}

func (f *Frame) AnchorA() mgl64.Vec3 {
	return worldPoint(f.BodyA, f.LocalAnchorA)
}

func (f *Frame) AnchorB() mgl64.Vec3 {
	return worldPoint(f.BodyB, f.LocalAnchorB)
}

func (f *Frame) Prepare(dt, erp, cfm float64) {
	f.dt = dt
	f.compliance = Compliance(erp, cfm, dt)
}

// solveAnchor drives the two anchors together, the component along
// softAxis (when non zero) using softCompliance
func (f *Frame) solveAnchor(h float64, softAxis mgl64.Vec3, softCompliance float64) {
	pa, pb := f.AnchorA(), f.AnchorB()
	dx := pb.Sub(pa)

	if softAxis.LenSqr() > 0 {
		along := softAxis.Mul(dx.Dot(softAxis))
		applyPositional(f.BodyA, f.BodyB, pa.Sub(f.BodyA.Position()), pb.Sub(f.BodyB.Position()), along, softCompliance, h)
		pa, pb = f.AnchorA(), f.AnchorB()
		dx = pb.Sub(pa)
		dx = dx.Sub(softAxis.Mul(dx.Dot(softAxis)))
	}

	applyPositional(f.BodyA, f.BodyB, pa.Sub(f.BodyA.Position()), pb.Sub(f.BodyB.Position()), dx, f.compliance, h)
}

func (f *Frame) relativeAngularVelocity() mgl64.Vec3 {
	return f.BodyA.AngularVelocityOf().Sub(f.BodyB.AngularVelocityOf())
}

// ============================================================================
// Ball
// ============================================================================

// Ball keeps the two anchors together
type Ball struct {
	Frame
}

func (j *Ball) SolvePosition(h float64) {
	j.solveAnchor(h, mgl64.Vec3{}, 0)
}

func (j *Ball) SolveVelocity(float64) {}

// ============================================================================
// Hinge
// ============================================================================

// Hinge allows rotation about one axis shared by both bodies
type Hinge struct {
	Frame
	LocalAxisA mgl64.Vec3
	LocalAxisB mgl64.Vec3
	LocalRefA  mgl64.Vec3
	LocalRefB  mgl64.Vec3
	Axis       Axis
}

// SetAxis fixes the world axis on both bodies; the current pose becomes angle zero
func (j *Hinge) SetAxis(axis mgl64.Vec3) {
	if axis.LenSqr() == 0 {
		return
	}
	axis = axis.Normalize()
	ref := perpendicular(axis)
	j.LocalAxisA = localVector(j.BodyA, axis)
	j.LocalAxisB = localVector(j.BodyB, axis)
	j.LocalRefA = localVector(j.BodyA, ref)
	j.LocalRefB = localVector(j.BodyB, ref)
}

func (j *Hinge) AxisWorld() mgl64.Vec3 {
	return worldVector(j.BodyA, j.LocalAxisA)
}

// Angle is the rotation of BodyA relative to BodyB about the axis
func (j *Hinge) Angle() float64 {
	return signedAngle(worldVector(j.BodyB, j.LocalRefB), worldVector(j.BodyA, j.LocalRefA), j.AxisWorld())
}

func (j *Hinge) AngleRate() float64 {
	return j.relativeAngularVelocity().Dot(j.AxisWorld())
}

func (j *Hinge) SolvePosition(h float64) {
	a := j.AxisWorld()
	b := worldVector(j.BodyB, j.LocalAxisB)
	applyAngular(j.BodyA, j.BodyB, a.Cross(b), j.compliance, h)

	if d := j.Axis.limitCorrection(j.Angle()); d != 0 {
		applyAngular(j.BodyA, j.BodyB, j.AxisWorld().Mul(d), Compliance(j.Axis.StopERP, j.Axis.StopCFM, j.dt), h)
	}

	j.solveAnchor(h, mgl64.Vec3{}, 0)
}

func (j *Hinge) SolveVelocity(h float64) {
	driveAngular(j.BodyA, j.BodyB, j.AxisWorld(), j.Axis.Vel, j.Axis.FMax*h)
}

// ============================================================================
// Two axis joints
// ============================================================================

// twoAxis keeps axis 1 (fixed in BodyA) and axis 2 (fixed in BodyB) at a
// constant angle, leaving rotation free about both
type twoAxis struct {
	Frame
	LocalAxis1 mgl64.Vec3
	LocalAxis2 mgl64.Vec3
	localRef1A mgl64.Vec3
	localRef1B mgl64.Vec3
	localRef2A mgl64.Vec3
	localRef2B mgl64.Vec3
	target     float64
	Axes       [2]Axis
}

func (j *twoAxis) SetAxis(n int, axis mgl64.Vec3) {
	if axis.LenSqr() == 0 {
		return
	}
	axis = axis.Normalize()
	if n == 1 {
		j.LocalAxis1 = localVector(j.BodyA, axis)
	} else {
		j.LocalAxis2 = localVector(j.BodyB, axis)
	}
	j.resetReferences()
}

func (j *twoAxis) resetReferences() {
	a1, a2 := j.AxisWorld(1), j.AxisWorld(2)

	ref1 := a2.Sub(a1.Mul(a2.Dot(a1)))
	if ref1.LenSqr() < epsilon {
		ref1 = perpendicular(a1)
	}
	ref2 := a1.Sub(a2.Mul(a1.Dot(a2)))
	if ref2.LenSqr() < epsilon {
		ref2 = perpendicular(a2)
	}

	j.localRef1A = localVector(j.BodyA, ref1)
	j.localRef1B = localVector(j.BodyB, ref1)
	j.localRef2A = localVector(j.BodyA, ref2)
	j.localRef2B = localVector(j.BodyB, ref2)
}

func (j *twoAxis) AxisWorld(n int) mgl64.Vec3 {
	if n == 1 {
		return worldVector(j.BodyA, j.LocalAxis1)
	}
	return worldVector(j.BodyB, j.LocalAxis2)
}

func (j *twoAxis) Angle(n int) float64 {
	if n == 1 {
		return signedAngle(worldVector(j.BodyB, j.localRef1B), worldVector(j.BodyA, j.localRef1A), j.AxisWorld(1))
	}
	return signedAngle(worldVector(j.BodyB, j.localRef2B), worldVector(j.BodyA, j.localRef2A), j.AxisWorld(2))
}

func (j *twoAxis) AngleRate(n int) float64 {
	return j.relativeAngularVelocity().Dot(j.AxisWorld(n))
}

func (j *twoAxis) solveAxes(h float64) {
	a1, a2 := j.AxisWorld(1), j.AxisWorld(2)
	n := a1.Cross(a2)
	if n.LenSqr() < epsilon {
		return
	}
	current := math.Acos(clamp(a1.Dot(a2), -1, 1))
	applyAngular(j.BodyA, j.BodyB, n.Normalize().Mul(current-j.target), j.compliance, h)
}

func (j *twoAxis) solveStops(h float64) {
	for i := range j.Axes {
		axis := &j.Axes[i]
		if d := axis.limitCorrection(j.Angle(i + 1)); d != 0 {
			applyAngular(j.BodyA, j.BodyB, j.AxisWorld(i+1).Mul(d), Compliance(axis.StopERP, axis.StopCFM, j.dt), h)
		}
	}
}

func (j *twoAxis) SolveVelocity(h float64) {
	for i := range j.Axes {
		driveAngular(j.BodyA, j.BodyB, j.AxisWorld(i+1), j.Axes[i].Vel, j.Axes[i].FMax*h)
	}
}

// Hinge2 is a double axis hinge: steering about axis 1, spinning about axis 2,
// with a suspension along axis 1
type Hinge2 struct {
	twoAxis
}

// SetAxis also records the current angle between the axes as the one to keep
func (j *Hinge2) SetAxis(n int, axis mgl64.Vec3) {
	j.twoAxis.SetAxis(n, axis)
	j.target = math.Acos(clamp(j.AxisWorld(1).Dot(j.AxisWorld(2)), -1, 1))
}

func (j *Hinge2) SolvePosition(h float64) {
	j.solveAxes(h)
	j.solveStops(h)

	suspension := Compliance(j.Axes[0].SuspensionERP, j.Axes[0].SuspensionCFM, j.dt)
	j.solveAnchor(h, j.AxisWorld(1), suspension)
}

// Universal keeps its two axes perpendicular
type Universal struct {
	twoAxis
}

func (j *Universal) SetAxis(n int, axis mgl64.Vec3) {
	j.twoAxis.SetAxis(n, axis)
	j.target = math.Pi / 2
}

func (j *Universal) SolvePosition(h float64) {
	j.solveAxes(h)
	j.solveStops(h)
	j.solveAnchor(h, mgl64.Vec3{}, 0)
}

// ============================================================================
// Slider
// ============================================================================

// Slider locks the relative orientation and allows translation along one axis
// fixed in BodyA
type Slider struct {
	Frame
	LocalAxis   mgl64.Vec3
	relRotation mgl64.Quat
	Axis        Axis
}

// SetAxis fixes the axis and takes the current pose as separation zero
func (j *Slider) SetAxis(axis mgl64.Vec3) {
	if axis.LenSqr() == 0 {
		return
	}
	j.LocalAxis = localVector(j.BodyA, axis.Normalize())
	j.LocalAnchorA = mgl64.Vec3{}
	j.LocalAnchorB = localPoint(j.BodyB, j.BodyA.Position())
	j.relRotation = j.BodyB.Rotation().Conjugate().Mul(j.BodyA.Rotation()).Normalize()
}

func (j *Slider) AxisWorld() mgl64.Vec3 {
	return worldVector(j.BodyA, j.LocalAxis)
}

// Position is the separation of the bodies along the axis
func (j *Slider) Position() float64 {
	return j.AnchorA().Sub(j.AnchorB()).Dot(j.AxisWorld())
}

func (j *Slider) PositionRate() float64 {
	pa := j.AnchorA()
	return j.BodyA.VelocityAt(pa.Sub(j.BodyA.Position())).
		Sub(j.BodyB.VelocityAt(pa.Sub(j.BodyB.Position()))).
		Dot(j.AxisWorld())
}

func (j *Slider) SolvePosition(h float64) {
	if j.relRotation == (mgl64.Quat{}) {
		j.relRotation = mgl64.QuatIdent()
	}
	target := j.BodyB.Rotation().Mul(j.relRotation)
	dq := target.Mul(j.BodyA.Rotation().Conjugate()).Normalize()
	if dq.W < 0 {
		dq = dq.Scale(-1)
	}
	applyAngular(j.BodyA, j.BodyB, dq.V.Mul(2), j.compliance, h)

	a := j.AxisWorld()
	pa, pb := j.AnchorA(), j.AnchorB()
	d := pa.Sub(pb)
	s := d.Dot(a)
	perp := d.Sub(a.Mul(s))
	applyPositional(j.BodyA, j.BodyB, pa.Sub(j.BodyA.Position()), pb.Sub(j.BodyB.Position()), perp.Mul(-1), j.compliance, h)

	if c := j.Axis.limitCorrection(j.Position()); c != 0 {
		pa, pb = j.AnchorA(), j.AnchorB()
		applyPositional(j.BodyA, j.BodyB, pa.Sub(j.BodyA.Position()), pb.Sub(j.BodyB.Position()), a.Mul(c),
			Compliance(j.Axis.StopERP, j.Axis.StopCFM, j.dt), h)
	}
}

func (j *Slider) SolveVelocity(h float64) {
	pa := j.AnchorA()
	driveLinear(j.BodyA, j.BodyB, pa.Sub(j.BodyA.Position()), pa.Sub(j.BodyB.Position()), j.AxisWorld(), j.Axis.Vel, j.Axis.FMax*h)
}

// ============================================================================
// Angular motor
// ============================================================================

// AMotor drives the relative angular velocity about up to three axes
type AMotor struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
	Euler bool
	// NumAxes is the number of active axes, 0 to 3
	NumAxes    int
	LocalAxes  [3]mgl64.Vec3
	UserAngles [3]float64
	Axes       [3]Axis

	localRefA [3]mgl64.Vec3
	localRefB [3]mgl64.Vec3
	dt        float64
}

func (j *AMotor) Bodies() (*actor.RigidBody, *actor.RigidBody) {
	return j.BodyA, j.BodyB
}

// SetAxis fixes axis n (1 based) on BodyA, or in the world when BodyA is nil
func (j *AMotor) SetAxis(n int, axis mgl64.Vec3) {
	if n < 1 || n > 3 || axis.LenSqr() == 0 {
		return
	}
	axis = axis.Normalize()
	ref := perpendicular(axis)
	j.LocalAxes[n-1] = localVector(j.BodyA, axis)
	j.localRefA[n-1] = localVector(j.BodyA, ref)
	j.localRefB[n-1] = localVector(j.BodyB, ref)
}

// AxisWorld returns axis n; in Euler mode axis 2 is derived from axes 1 and 3
func (j *AMotor) AxisWorld(n int) mgl64.Vec3 {
	if n < 1 || n > 3 {
		return mgl64.Vec3{}
	}
	if j.Euler && n == 2 {
		a := j.AxisWorld(3).Cross(j.AxisWorld(1))
		if a.LenSqr() < epsilon {
			return mgl64.Vec3{}
		}
		return a.Normalize()
	}
	return worldVector(j.BodyA, j.LocalAxes[n-1])
}

// Angle returns the user angle, or the measured one in Euler mode
func (j *AMotor) Angle(n int) float64 {
	if n < 1 || n > 3 {
		return 0
	}
	if !j.Euler {
		return j.UserAngles[n-1]
	}
	axis := j.AxisWorld(n)
	if axis.LenSqr() == 0 {
		return 0
	}
	return signedAngle(worldVector(j.BodyB, j.localRefB[n-1]), worldVector(j.BodyA, j.localRefA[n-1]), axis)
}

func (j *AMotor) AngleRate(n int) float64 {
	return j.BodyA.AngularVelocityOf().Sub(j.BodyB.AngularVelocityOf()).Dot(j.AxisWorld(n))
}

func (j *AMotor) activeAxes() int {
	if j.Euler {
		return 3
	}
	return j.NumAxes
}

// Prepare applies the persistent axis torques for the coming step
func (j *AMotor) Prepare(dt, _, _ float64) {
	j.dt = dt
	for i := 0; i < j.activeAxes(); i++ {
		t := j.AxisWorld(i + 1).Mul(j.Axes[i].Torque)
		if j.BodyA.IsDynamic() {
			j.BodyA.AddTorque(t)
		}
		if j.BodyB.IsDynamic() {
			j.BodyB.AddTorque(t.Mul(-1))
		}
	}
}

func (j *AMotor) SolvePosition(h float64) {
	if !j.Euler {
		return
	}
	for i := 0; i < 3; i++ {
		axis := &j.Axes[i]
		if d := axis.limitCorrection(j.Angle(i + 1)); d != 0 {
			applyAngular(j.BodyA, j.BodyB, j.AxisWorld(i+1).Mul(d), Compliance(axis.StopERP, axis.StopCFM, j.dt), h)
		}
	}
}

func (j *AMotor) SolveVelocity(h float64) {
	for i := 0; i < j.activeAxes(); i++ {
		axis := j.AxisWorld(i + 1)
		if axis.LenSqr() == 0 {
			continue
		}
		driveAngular(j.BodyA, j.BodyB, axis, j.Axes[i].Vel, j.Axes[i].FMax*h)
	}
}
