package feather

import (
	"math"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// Body wraps the solver state of one rigid body
type Body struct {
	id        uint64
	world     *World
	rb        *actor.RigidBody
	mass      engine.Mass
	geoms     []*Geom
	destroyed bool
}

func newBody(w *World, id uint64) *Body {
	rb := actor.NewRigidBody()
	rb.AutoDisable = w.autoDisable

	return &Body{
		id:    id,
		world: w,
		rb:    rb,
		mass:  engine.Mass{Mass: 1, Inertia: [6]float64{1, 1, 1, 0, 0, 0}},
	}
}

func (b *Body) SetPosition(p mgl64.Vec3) {
	b.rb.Transform.Position = p
	b.rb.PreviousTransform.Position = p
}

func (b *Body) Position() mgl64.Vec3 {
	return b.rb.Transform.Position
}

func (b *Body) SetQuaternion(q mgl64.Quat) {
	q = q.Normalize()
	b.rb.Transform.Rotation = q
	b.rb.PreviousTransform.Rotation = q
}

func (b *Body) Quaternion() mgl64.Quat {
	return b.rb.Transform.Rotation
}

func (b *Body) SetAxisAngle(axis mgl64.Vec3, angle float64) {
	b.SetQuaternion(quatFromAxisAngle(axis, angle))
}

func (b *Body) AxisAngle() (mgl64.Vec3, float64) {
	return axisAngleFromQuat(b.rb.Transform.Rotation)
}

func (b *Body) SetLinearVel(v mgl64.Vec3) {
	b.rb.Velocity = v
}

func (b *Body) LinearVel() mgl64.Vec3 {
	return b.rb.Velocity
}

func (b *Body) SetAngularVel(w mgl64.Vec3) {
	b.rb.AngularVelocity = w
}

func (b *Body) AngularVel() mgl64.Vec3 {
	return b.rb.AngularVelocity
}

func (b *Body) SetMass(m engine.Mass) {
	b.mass = m
	b.rb.SetMass(m.Mass, m.InertiaMatrix())
	b.rb.CenterOfMass = m.Center
}

func (b *Body) Mass() engine.Mass {
	return b.mass
}

func (b *Body) SetFiniteRotationMode(enabled bool) {
	b.rb.FiniteRotation = enabled
}

func (b *Body) SetFiniteRotationAxis(axis mgl64.Vec3) {
	b.rb.FiniteRotationAxis = axis
}

func (b *Body) SetGravityMode(enabled bool) {
	b.rb.UseGravity = enabled
}

func (b *Body) SetAutoDisableFlag(enabled bool) {
	b.rb.AutoDisable.Enabled = enabled
}

func (b *Body) SetAutoDisableLinearThreshold(v float64) {
	b.rb.AutoDisable.LinearThreshold = v
}

func (b *Body) SetAutoDisableAngularThreshold(v float64) {
	b.rb.AutoDisable.AngularThreshold = v
}

func (b *Body) SetAutoDisableTime(t float64) {
	b.rb.AutoDisable.Time = t
}

func (b *Body) AddForce(f mgl64.Vec3) {
	b.rb.AddForce(f)
}

func (b *Body) AddTorque(t mgl64.Vec3) {
	b.rb.AddTorque(t)
}

func (b *Body) SetForce(f mgl64.Vec3) {
	b.rb.Force = f
}

func (b *Body) SetTorque(t mgl64.Vec3) {
	b.rb.Torque = t
}

// AddGeom makes g follow this body, taking it from any previous body
func (b *Body) AddGeom(g engine.Geom) {
	geom, ok := g.(*Geom)
	if !ok || geom.destroyed {
		return
	}
	if geom.body == b {
		return
	}
	if geom.body != nil {
		geom.body.removeGeom(geom)
	}
	geom.body = b
	b.geoms = append(b.geoms, geom)
}

// RemoveGeom detaches g, leaving it at the pose it had on the body
func (b *Body) RemoveGeom(g engine.Geom) {
	if geom, ok := g.(*Geom); ok && geom.body == b {
		b.removeGeom(geom)
	}
}

func (b *Body) removeGeom(g *Geom) {
	for i, geom := range b.geoms {
		if geom == g {
			b.geoms = append(b.geoms[:i], b.geoms[i+1:]...)
			break
		}
	}
	g.transform = b.rb.Transform
	g.body = nil
}

func (b *Body) Enable() {
	b.rb.Enable()
}

func (b *Body) Disable() {
	b.rb.Disable()
}

func (b *Body) IsEnabled() bool {
	return b.rb.Enabled
}

func (b *Body) Destroy() {
	b.world.DeleteBody(b)
}

// quatFromAxisAngle treats a zero axis as no rotation
func quatFromAxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	if axis.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis.Normalize())
}

// axisAngleFromQuat returns (0, 0, 1) and 0 for the identity
func axisAngleFromQuat(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := q.V.Len()
	if s < 1e-12 {
		return mgl64.Vec3{0, 0, 1}, 0
	}
	return q.V.Mul(1 / s), 2 * math.Atan2(s, q.W)
}
