// Package constraint holds the XPBD constraints solved by the feather engine:
// the contact constraint produced by collision detection and one constraint
// per joint kind.
//
// Every constraint is solved once per substep, positions first, then
// velocities once the bodies have derived their new velocities from the pose
// change (Müller et al., "Detailed Rigid Body Simulation with Extended
// Position Based Dynamics", 2020).
//
// A nil body stands for the static environment: it never moves and its local
// frame is the world frame.
package constraint

import (
	"math"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-12

// Constraint is solved once per substep
type Constraint interface {
	SolvePosition(h float64)
	SolveVelocity(h float64)
}

// Compliance converts an error reduction parameter and a constant force mix,
// defined over a step of dt seconds, into an XPBD compliance. A non-positive
// erp disables the correction.
func Compliance(erp, cfm, dt float64) float64 {
	if erp <= 0 {
		return math.Inf(1)
	}
	return dt * cfm / erp
}

// positionalWeight is the generalized inverse mass of body at world offset r along n
func positionalWeight(body *actor.RigidBody, r, n mgl64.Vec3) float64 {
	if !body.IsDynamic() {
		return 0
	}
	rn := r.Cross(n)
	return body.InverseMass() + body.InverseInertiaWorld().Mul3x1(rn).Dot(rn)
}

func angularWeight(body *actor.RigidBody, n mgl64.Vec3) float64 {
	if !body.IsDynamic() {
		return 0
	}
	return body.InverseInertiaWorld().Mul3x1(n).Dot(n)
}

// applyPositional moves the attachment of a (world offset ra) by dx relative
// to the attachment of b (world offset rb), splitting the motion by
// generalized inverse mass. It returns the applied Lagrange multiplier.
func applyPositional(a, b *actor.RigidBody, ra, rb, dx mgl64.Vec3, compliance, h float64) float64 {
	c := dx.Len()
	if c < epsilon || math.IsInf(compliance, 1) {
		return 0
	}
	n := dx.Mul(1 / c)

	w := positionalWeight(a, ra, n) + positionalWeight(b, rb, n)
	alpha := compliance / (h * h)
	if w+alpha < epsilon {
		return 0
	}

	lambda := c / (w + alpha)
	p := n.Mul(lambda)
	a.ApplyPositionCorrection(p, ra)
	b.ApplyPositionCorrection(p.Mul(-1), rb)

	return lambda
}

// applyAngular rotates a by the rotation vector omega relative to b
func applyAngular(a, b *actor.RigidBody, omega mgl64.Vec3, compliance, h float64) float64 {
	theta := omega.Len()
	if theta < epsilon || math.IsInf(compliance, 1) {
		return 0
	}
	n := omega.Mul(1 / theta)

	w := angularWeight(a, n) + angularWeight(b, n)
	alpha := compliance / (h * h)
	if w+alpha < epsilon {
		return 0
	}

	lambda := theta / (w + alpha)
	l := n.Mul(lambda)
	a.ApplyRotationCorrection(l)
	b.ApplyRotationCorrection(l.Mul(-1))

	return lambda
}

// applyVelocity changes the relative velocity of a's point with respect to
// b's point by dv along n
func applyVelocity(a, b *actor.RigidBody, ra, rb, n mgl64.Vec3, dv float64) {
	w := positionalWeight(a, ra, n) + positionalWeight(b, rb, n)
	if w < epsilon {
		return
	}
	p := n.Mul(dv / w)
	a.ApplyImpulse(p, ra)
	b.ApplyImpulse(p.Mul(-1), rb)
}

// driveAngular pushes the relative angular velocity of a about axis toward
// target, with an impulse bounded by maxImpulse
func driveAngular(a, b *actor.RigidBody, axis mgl64.Vec3, target, maxImpulse float64) {
	if maxImpulse <= 0 {
		return
	}
	w := angularWeight(a, axis) + angularWeight(b, axis)
	if w < epsilon {
		return
	}
	current := a.AngularVelocityOf().Sub(b.AngularVelocityOf()).Dot(axis)
	j := clamp((target-current)/w, -maxImpulse, maxImpulse)
	l := axis.Mul(j)
	a.ApplyAngularImpulse(l)
	b.ApplyAngularImpulse(l.Mul(-1))
}

// driveLinear pushes the relative velocity of a's point along axis toward target
func driveLinear(a, b *actor.RigidBody, ra, rb, axis mgl64.Vec3, target, maxImpulse float64) {
	if maxImpulse <= 0 {
		return
	}
	w := positionalWeight(a, ra, axis) + positionalWeight(b, rb, axis)
	if w < epsilon {
		return
	}
	current := a.VelocityAt(ra).Sub(b.VelocityAt(rb)).Dot(axis)
	j := clamp((target-current)/w, -maxImpulse, maxImpulse)
	p := axis.Mul(j)
	a.ApplyImpulse(p, ra)
	b.ApplyImpulse(p.Mul(-1), rb)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// signedAngle returns the angle turning from onto to about axis, after
// projecting both on the plane orthogonal to axis
func signedAngle(from, to, axis mgl64.Vec3) float64 {
	from = from.Sub(axis.Mul(from.Dot(axis)))
	to = to.Sub(axis.Mul(to.Dot(axis)))
	return math.Atan2(from.Cross(to).Dot(axis), from.Dot(to))
}

// perpendicular returns a unit vector orthogonal to v
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	t, _ := actor.TangentBasis(v)
	return t
}

func worldPoint(body *actor.RigidBody, local mgl64.Vec3) mgl64.Vec3 {
	if body == nil {
		return local
	}
	return body.Transform.PointToWorld(local)
}

func localPoint(body *actor.RigidBody, world mgl64.Vec3) mgl64.Vec3 {
	if body == nil {
		return world
	}
	return body.Transform.PointToLocal(world)
}

func worldVector(body *actor.RigidBody, local mgl64.Vec3) mgl64.Vec3 {
	if body == nil {
		return local
	}
	return body.Transform.VectorToWorld(local)
}

func localVector(body *actor.RigidBody, world mgl64.Vec3) mgl64.Vec3 {
	if body == nil {
		return world
	}
	return body.Transform.VectorToLocal(world)
}
