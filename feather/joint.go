package feather

import (
	"slices"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/constraint"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// Joint keeps the world space description of a joint and rebuilds its
// constraint whenever the attachment changes
type Joint struct {
	world  *World
	group  *JointGroup
	kind   engine.JointKind
	bodies [2]*Body

	anchor  mgl64.Vec3
	axes    [engine.MaxAxes]mgl64.Vec3
	axisSet [engine.MaxAxes]bool
	params  [engine.MaxAxes]constraint.Axis
	numAxes int
	mode    engine.MotorMode
	angles  [engine.MaxAxes]float64

	c         constraint.Joint
	destroyed bool
}

func newJoint(w *World, kind engine.JointKind) *Joint {
	j := &Joint{
		world: w,
		kind:  kind,
		axes:  [engine.MaxAxes]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
	for i := range j.params {
		j.params[i] = constraint.DefaultAxis(w.erp, w.cfm)
	}
	j.rebuild()

	return j
}

func (j *Joint) Kind() engine.JointKind {
	return j.kind
}

// Attach binds the joint to b1 and b2, nil standing for the static environment
func (j *Joint) Attach(b1, b2 engine.Body) {
	j.bodies = [2]*Body{asBody(b1), asBody(b2)}
	j.rebuild()
}

func asBody(b engine.Body) *Body {
	body, ok := b.(*Body)
	if !ok || body == nil || body.destroyed {
		return nil
	}
	return body
}

func (j *Joint) Body(n int) engine.Body {
	if n < 0 || n > 1 || j.bodies[n] == nil {
		return nil
	}
	return j.bodies[n]
}

func (j *Joint) rigidBody(n int) *actor.RigidBody {
	if j.bodies[n] == nil {
		return nil
	}
	return j.bodies[n].rb
}

// rebuild creates the constraint for the current bodies and replays the
// anchor, the axes and the parameters
func (j *Joint) rebuild() {
	frame := constraint.Frame{BodyA: j.rigidBody(0), BodyB: j.rigidBody(1)}

	switch j.kind {
	case engine.JointBall:
		j.c = &constraint.Ball{Frame: frame}
	case engine.JointHinge:
		j.c = &constraint.Hinge{Frame: frame}
	case engine.JointHinge2:
		h := &constraint.Hinge2{}
		h.Frame = frame
		j.c = h
	case engine.JointSlider:
		j.c = &constraint.Slider{Frame: frame}
	case engine.JointUniversal:
		u := &constraint.Universal{}
		u.Frame = frame
		j.c = u
	case engine.JointAMotor:
		j.c = &constraint.AMotor{BodyA: frame.BodyA, BodyB: frame.BodyB}
	}

	j.applyAnchor()
	for n := 1; n <= engine.MaxAxes; n++ {
		j.applyAxis(n)
	}
	j.syncParams()
}

func (j *Joint) SetAnchor(p mgl64.Vec3) {
	j.anchor = p
	j.applyAnchor()
}

func (j *Joint) applyAnchor() {
	switch c := j.c.(type) {
	case *constraint.Ball:
		c.SetAnchor(j.anchor)
	case *constraint.Hinge:
		c.SetAnchor(j.anchor)
	case *constraint.Hinge2:
		c.SetAnchor(j.anchor)
	case *constraint.Universal:
		c.SetAnchor(j.anchor)
	}
}

func (j *Joint) Anchor() mgl64.Vec3 {
	if f := j.frame(); f != nil {
		return f.AnchorA()
	}
	return j.anchor
}

func (j *Joint) Anchor2() mgl64.Vec3 {
	if f := j.frame(); f != nil {
		return f.AnchorB()
	}
	return j.anchor
}

func (j *Joint) frame() *constraint.Frame {
	switch c := j.c.(type) {
	case *constraint.Ball:
		return &c.Frame
	case *constraint.Hinge:
		return &c.Frame
	case *constraint.Hinge2:
		return &c.Frame
	case *constraint.Universal:
		return &c.Frame
	case *constraint.Slider:
		return &c.Frame
	}
	return nil
}

// SetAxis sets axis n (1 based) in world coordinates
func (j *Joint) SetAxis(n int, axis mgl64.Vec3) {
	if n < 1 || n > engine.MaxAxes || axis.LenSqr() == 0 {
		return
	}
	j.axes[n-1] = axis
	j.axisSet[n-1] = true
	j.applyAxis(n)
}

func (j *Joint) applyAxis(n int) {
	axis := j.axes[n-1]
	switch c := j.c.(type) {
	case *constraint.Hinge:
		if n == 1 {
			c.SetAxis(axis)
		}
	case *constraint.Slider:
		if n == 1 {
			c.SetAxis(axis)
		}
	case *constraint.Hinge2:
		if n <= 2 {
			c.SetAxis(n, axis)
		}
	case *constraint.Universal:
		if n <= 2 {
			c.SetAxis(n, axis)
		}
	case *constraint.AMotor:
		if j.axisSet[n-1] {
			c.SetAxis(n, axis)
		}
	}
}

func (j *Joint) Axis(n int) mgl64.Vec3 {
	switch c := j.c.(type) {
	case *constraint.Hinge:
		return c.AxisWorld()
	case *constraint.Slider:
		return c.AxisWorld()
	case *constraint.Hinge2:
		return c.AxisWorld(n)
	case *constraint.Universal:
		return c.AxisWorld(n)
	case *constraint.AMotor:
		return c.AxisWorld(n)
	}
	return mgl64.Vec3{}
}

func axisIndex(axis int) int {
	if axis < 1 || axis > engine.MaxAxes {
		return 0
	}
	return axis - 1
}

func (j *Joint) SetParam(p engine.Param, axis int, v float64) {
	a := &j.params[axisIndex(axis)]
	switch p {
	case engine.ParamLoStop:
		a.Lo = v
	case engine.ParamHiStop:
		a.Hi = v
	case engine.ParamVel:
		a.Vel = v
	case engine.ParamFMax:
		a.FMax = v
	case engine.ParamBounce:
		a.Bounce = v
	case engine.ParamStopERP:
		a.StopERP = v
	case engine.ParamStopCFM:
		a.StopCFM = v
	case engine.ParamSuspensionERP:
		a.SuspensionERP = v
	case engine.ParamSuspensionCFM:
		a.SuspensionCFM = v
	}
	j.syncParams()
}

func (j *Joint) Param(p engine.Param, axis int) float64 {
	a := j.params[axisIndex(axis)]
	switch p {
	case engine.ParamLoStop:
		return a.Lo
	case engine.ParamHiStop:
		return a.Hi
	case engine.ParamVel:
		return a.Vel
	case engine.ParamFMax:
		return a.FMax
	case engine.ParamBounce:
		return a.Bounce
	case engine.ParamStopERP:
		return a.StopERP
	case engine.ParamStopCFM:
		return a.StopCFM
	case engine.ParamSuspensionERP:
		return a.SuspensionERP
	case engine.ParamSuspensionCFM:
		return a.SuspensionCFM
	}
	return 0
}

// syncParams copies the stored parameters and motor settings into the constraint
func (j *Joint) syncParams() {
	switch c := j.c.(type) {
	case *constraint.Hinge:
		c.Axis = j.params[0]
	case *constraint.Slider:
		c.Axis = j.params[0]
	case *constraint.Hinge2:
		c.Axes = [2]constraint.Axis{j.params[0], j.params[1]}
	case *constraint.Universal:
		c.Axes = [2]constraint.Axis{j.params[0], j.params[1]}
	case *constraint.AMotor:
		c.Axes = j.params
		c.NumAxes = j.numAxes
		c.Euler = j.mode == engine.MotorEuler
		c.UserAngles = j.angles
	}
}

func (j *Joint) Angle(n int) float64 {
	switch c := j.c.(type) {
	case *constraint.Hinge:
		return c.Angle()
	case *constraint.Hinge2:
		return c.Angle(n)
	case *constraint.Universal:
		return c.Angle(n)
	case *constraint.AMotor:
		return c.Angle(n)
	}
	return 0
}

func (j *Joint) AngleRate(n int) float64 {
	switch c := j.c.(type) {
	case *constraint.Hinge:
		return c.AngleRate()
	case *constraint.Hinge2:
		return c.AngleRate(n)
	case *constraint.Universal:
		return c.AngleRate(n)
	case *constraint.AMotor:
		return c.AngleRate(n)
	}
	return 0
}

func (j *Joint) Position() float64 {
	if c, ok := j.c.(*constraint.Slider); ok {
		return c.Position()
	}
	return 0
}

func (j *Joint) PositionRate() float64 {
	if c, ok := j.c.(*constraint.Slider); ok {
		return c.PositionRate()
	}
	return 0
}

func (j *Joint) SetNumAxes(n int) {
	j.numAxes = max(0, min(engine.MaxAxes, n))
	j.syncParams()
}

func (j *Joint) NumAxes() int {
	return j.numAxes
}

func (j *Joint) SetMode(m engine.MotorMode) {
	j.mode = m
	j.syncParams()
}

func (j *Joint) SetAngle(n int, angle float64) {
	j.angles[axisIndex(n)] = angle
	j.syncParams()
}

// SetTorque sets the persistent torque of motor axis n
func (j *Joint) SetTorque(n int, torque float64) {
	j.params[axisIndex(n)].Torque = torque
	j.syncParams()
}

// active reports whether the solver has anything to move
func (j *Joint) active() bool {
	return !j.destroyed && (j.rigidBody(0).IsDynamic() || j.rigidBody(1).IsDynamic())
}

// detachBody replaces a body being deleted by the static environment
func (j *Joint) detachBody(b *Body) {
	if !slices.Contains(j.bodies[:], b) {
		return
	}
	for i := range j.bodies {
		if j.bodies[i] == b {
			j.bodies[i] = nil
		}
	}
	j.rebuild()
}

func (j *Joint) Destroy() {
	if j.destroyed {
		return
	}
	j.world.removeJoint(j)
	if j.group != nil {
		j.group.remove(j)
	}
	j.destroyed = true
}

// JointGroup owns joints for bulk destruction
type JointGroup struct {
	world     *World
	joints    []*Joint
	destroyed bool
}

func (g *JointGroup) remove(j *Joint) {
	if i := slices.Index(g.joints, j); i >= 0 {
		g.joints = slices.Delete(g.joints, i, i+1)
	}
}

// Empty destroys every joint of the group
func (g *JointGroup) Empty() {
	for _, j := range slices.Clone(g.joints) {
		j.Destroy()
	}
	g.joints = nil
}

func (g *JointGroup) Destroy() {
	if g.destroyed {
		return
	}
	g.Empty()
	g.world.removeGroup(g)
	g.destroyed = true
}
