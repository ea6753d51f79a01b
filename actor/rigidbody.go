package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AutoDisable holds the thresholds under which a body is put to rest
type AutoDisable struct {
	Enabled          bool
	LinearThreshold  float64
	AngularThreshold float64
	Time             float64
}

// RigidBody is the solver state of one body
type RigidBody struct {
	PreviousTransform Transform
	Transform         Transform

	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // m/s

	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s

	mass                float64
	inverseMass         float64
	CenterOfMass        mgl64.Vec3
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	Force  mgl64.Vec3
	Torque mgl64.Vec3

	UseGravity         bool
	Enabled            bool
	FiniteRotation     bool
	FiniteRotationAxis mgl64.Vec3

	AutoDisable  AutoDisable
	IdleTime     float64
	AutoDisabled bool
}

// NewRigidBody creates an enabled body of unit mass and identity inertia at the origin
func NewRigidBody() *RigidBody {
	rb := &RigidBody{
		PreviousTransform: NewTransform(),
		Transform:         NewTransform(),
		UseGravity:        true,
		Enabled:           true,
	}
	rb.SetMass(1, mgl64.Ident3())

	return rb
}

// SetMass sets the total mass and the local inertia tensor. A non-positive
// mass makes the body immovable.
func (rb *RigidBody) SetMass(mass float64, inertia mgl64.Mat3) {
	rb.mass = mass
	rb.InertiaLocal = inertia
	if mass <= 0 || math.IsInf(mass, 1) {
		rb.inverseMass = 0
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}
	rb.inverseMass = 1 / mass
	rb.InverseInertiaLocal = invert3(inertia)
}

// invert3 inverts m without the absolute determinant threshold of Mat3.Inv,
// which rejects the tiny tensors of small light bodies
func invert3(m mgl64.Mat3) mgl64.Mat3 {
	det := m.Det()
	if det == 0 {
		return mgl64.Mat3{}
	}
	adj := mgl64.Mat3{
		m[4]*m[8] - m[5]*m[7],
		m[2]*m[7] - m[1]*m[8],
		m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8],
		m[0]*m[8] - m[2]*m[6],
		m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6],
		m[1]*m[6] - m[0]*m[7],
		m[0]*m[4] - m[1]*m[3],
	}
	return adj.Mul(1 / det)
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

// IsDynamic reports whether the solver may move the body. It is safe on a nil
// body, which stands for the static environment.
func (rb *RigidBody) IsDynamic() bool {
	return rb != nil && rb.Enabled && rb.inverseMass > 0
}

// InverseMass returns 0 for anything the solver must not move
func (rb *RigidBody) InverseMass() float64 {
	if !rb.IsDynamic() {
		return 0
	}
	return rb.inverseMass
}

// InverseInertiaWorld returns R * I_local^-1 * R^T, or zero when not dynamic
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if !rb.IsDynamic() {
		return mgl64.Mat3{}
	}
	r := rb.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(rb.InverseInertiaLocal).Mul3(r.Transpose())
}

// InertiaWorld returns R * I_local * R^T
func (rb *RigidBody) InertiaWorld() mgl64.Mat3 {
	r := rb.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(rb.InertiaLocal).Mul3(r.Transpose())
}

// Integrate predicts the pose after h seconds from velocities and the
// accumulated force and torque
func (rb *RigidBody) Integrate(h float64, gravity mgl64.Vec3) {
	if !rb.IsDynamic() {
		return
	}

	rb.PreviousTransform = rb.Transform

	accel := rb.Force.Mul(rb.inverseMass)
	if rb.UseGravity {
		accel = accel.Add(gravity)
	}
	rb.Velocity = rb.Velocity.Add(accel.Mul(h))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(h))

	// gyroscopic term keeps spinning bodies stable
	iw := rb.InertiaWorld()
	gyro := rb.AngularVelocity.Cross(iw.Mul3x1(rb.AngularVelocity))
	angularAccel := rb.InverseInertiaWorld().Mul3x1(rb.Torque.Sub(gyro))
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(h))

	rb.Transform.Rotation = rb.rotate(rb.Transform.Rotation, rb.AngularVelocity.Mul(h))

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity
}

func (rb *RigidBody) rotate(q mgl64.Quat, phi mgl64.Vec3) mgl64.Quat {
	if !rb.FiniteRotation {
		return addRotation(q, phi)
	}

	axis := rb.FiniteRotationAxis
	if axis.LenSqr() > 0 {
		axis = axis.Normalize()
		along := axis.Mul(phi.Dot(axis))
		q = exactRotation(q, along)
		return addRotation(q, phi.Sub(along))
	}
	return exactRotation(q, phi)
}

func addRotation(q mgl64.Quat, phi mgl64.Vec3) mgl64.Quat {
	dq := mgl64.Quat{W: 0, V: phi}.Mul(q).Scale(0.5)
	return q.Add(dq).Normalize()
}

func exactRotation(q mgl64.Quat, phi mgl64.Vec3) mgl64.Quat {
	angle := phi.Len()
	if angle < 1e-12 {
		return q
	}
	return mgl64.QuatRotate(angle, phi.Mul(1/angle)).Mul(q).Normalize()
}

// Update derives the velocities from the pose change of the last substep
func (rb *RigidBody) Update(h float64) {
	if !rb.IsDynamic() {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / h)
	dq := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate()).Normalize()
	if dq.W >= 0 {
		rb.AngularVelocity = dq.V.Mul(2.0 / h)
	} else {
		rb.AngularVelocity = dq.V.Mul(-2.0 / h)
	}
}

// ApplyPositionCorrection moves the body by the position impulse p applied at
// the world offset r from its centre
func (rb *RigidBody) ApplyPositionCorrection(p, r mgl64.Vec3) {
	if !rb.IsDynamic() {
		return
	}
	rb.Transform.Position = rb.Transform.Position.Add(p.Mul(rb.inverseMass))
	rb.ApplyRotationCorrection(r.Cross(p))
}

// ApplyRotationCorrection rotates the body by the angular impulse l
func (rb *RigidBody) ApplyRotationCorrection(l mgl64.Vec3) {
	if !rb.IsDynamic() {
		return
	}
	phi := rb.InverseInertiaWorld().Mul3x1(l)
	rb.Transform.Rotation = addRotation(rb.Transform.Rotation, phi)
}

// ApplyImpulse changes the velocities by the impulse p applied at world offset r
func (rb *RigidBody) ApplyImpulse(p, r mgl64.Vec3) {
	if !rb.IsDynamic() {
		return
	}
	rb.Velocity = rb.Velocity.Add(p.Mul(rb.inverseMass))
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.InverseInertiaWorld().Mul3x1(r.Cross(p)))
}

// ApplyAngularImpulse changes the angular velocity by the angular impulse l
func (rb *RigidBody) ApplyAngularImpulse(l mgl64.Vec3) {
	if !rb.IsDynamic() {
		return
	}
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.InverseInertiaWorld().Mul3x1(l))
}

// VelocityAt returns the velocity of the body point at world offset r
func (rb *RigidBody) VelocityAt(r mgl64.Vec3) mgl64.Vec3 {
	if rb == nil || !rb.Enabled {
		return mgl64.Vec3{}
	}
	return rb.Velocity.Add(rb.AngularVelocity.Cross(r))
}

// PresolveVelocityAt is VelocityAt before the position solve of the substep
func (rb *RigidBody) PresolveVelocityAt(r mgl64.Vec3) mgl64.Vec3 {
	if rb == nil || !rb.Enabled {
		return mgl64.Vec3{}
	}
	return rb.PresolveVelocity.Add(rb.PresolveAngularVelocity.Cross(r))
}

// Position is the world centre of the body, or the origin for a nil body
func (rb *RigidBody) Position() mgl64.Vec3 {
	if rb == nil {
		return mgl64.Vec3{}
	}
	return rb.Transform.Position
}

// Rotation is the world orientation, or identity for a nil body
func (rb *RigidBody) Rotation() mgl64.Quat {
	if rb == nil {
		return mgl64.QuatIdent()
	}
	return rb.Transform.Rotation
}

// AngularVelocityOf is nil safe
func (rb *RigidBody) AngularVelocityOf() mgl64.Vec3 {
	if rb == nil || !rb.Enabled {
		return mgl64.Vec3{}
	}
	return rb.AngularVelocity
}

func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	rb.Force = rb.Force.Add(force)
}

func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	rb.Torque = rb.Torque.Add(torque)
}

func (rb *RigidBody) ClearForces() {
	rb.Force = mgl64.Vec3{}
	rb.Torque = mgl64.Vec3{}
}

// TryAutoDisable accumulates idle time while both speeds stay under their
// thresholds and disables the body once the idle time is reached
func (rb *RigidBody) TryAutoDisable(dt float64) bool {
	if !rb.AutoDisable.Enabled || !rb.Enabled {
		return false
	}
	if rb.Velocity.Len() > rb.AutoDisable.LinearThreshold ||
		rb.AngularVelocity.Len() > rb.AutoDisable.AngularThreshold {
		rb.IdleTime = 0
		return false
	}

	rb.IdleTime += dt
	if rb.IdleTime < rb.AutoDisable.Time {
		return false
	}

	rb.Disable()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
	rb.AutoDisabled = true
	return true
}

// Disable freezes the body where it is
func (rb *RigidBody) Disable() {
	rb.Enabled = false
}

func (rb *RigidBody) Enable() {
	rb.Enabled = true
	rb.AutoDisabled = false
	rb.IdleTime = 0
}

// Wake re-enables a body that was put to rest by auto-disable
func (rb *RigidBody) Wake() {
	if rb != nil && rb.AutoDisabled {
		rb.Enable()
	}
}
