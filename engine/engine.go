// Package engine declares the call surface the scene binding requires from a
// rigid body physics engine.
//
// The binding never reaches past these interfaces: worlds, bodies, joints,
// collision geometry, spaces and the bulk contact buffer are all handles owned
// by the engine. The feather package provides the default implementation;
// enginetest wraps any implementation to count handle lifetimes.
package engine

import "github.com/go-gl/mathgl/mgl64"

// QuadTreeDepth is the recursion depth used for bounded spaces.
const QuadTreeDepth = 5

// Engine creates the top level handles.
type Engine interface {
	NewWorld() World
	// NewHashSpace creates an unbounded space. A nil parent creates a root space.
	NewHashSpace(parent Space) Space
	// NewQuadTreeSpace creates a bounded space covering center ± extents.
	NewQuadTreeSpace(parent Space, center, extents mgl64.Vec3, depth int) Space
	NewGeom(shape Shape) (Geom, error)
}

// World is the global simulation context.
type World interface {
	SetGravity(g mgl64.Vec3)
	Gravity() mgl64.Vec3
	SetIterations(n int)
	SetERP(erp float64)
	SetCFM(cfm float64)
	// SetMaxCorrectingVelocity bounds the velocity introduced by error
	// correction. A negative value removes the bound.
	SetMaxCorrectingVelocity(v float64)
	SetContactSurfaceLayer(depth float64)
	SetAutoDisableFlag(enabled bool)
	SetAutoDisableLinearThreshold(v float64)
	SetAutoDisableAngularThreshold(v float64)
	SetAutoDisableTime(t float64)

	// Step advances the world by dt with the accurate solver.
	Step(dt float64)
	// QuickStep advances the world by dt with the fast iterative solver.
	QuickStep(dt float64)

	NewBody() Body
	DeleteBody(b Body)
	NewJointGroup() JointGroup
	NewJoint(kind JointKind, group JointGroup) Joint
	// NewCollider creates the narrow phase collider and its contact buffer.
	NewCollider(capacity int) Collider

	Destroy()
}

// Body is one simulated rigid object.
type Body interface {
	SetPosition(p mgl64.Vec3)
	Position() mgl64.Vec3
	SetQuaternion(q mgl64.Quat)
	Quaternion() mgl64.Quat
	SetAxisAngle(axis mgl64.Vec3, angle float64)
	AxisAngle() (mgl64.Vec3, float64)
	SetLinearVel(v mgl64.Vec3)
	LinearVel() mgl64.Vec3
	SetAngularVel(w mgl64.Vec3)
	AngularVel() mgl64.Vec3

	SetMass(m Mass)
	Mass() Mass

	SetFiniteRotationMode(enabled bool)
	SetFiniteRotationAxis(axis mgl64.Vec3)
	SetGravityMode(enabled bool)
	SetAutoDisableFlag(enabled bool)
	SetAutoDisableLinearThreshold(v float64)
	SetAutoDisableAngularThreshold(v float64)
	SetAutoDisableTime(t float64)

	AddForce(f mgl64.Vec3)
	AddTorque(t mgl64.Vec3)
	SetForce(f mgl64.Vec3)
	SetTorque(t mgl64.Vec3)

	AddGeom(g Geom)
	RemoveGeom(g Geom)

	Enable()
	Disable()
	IsEnabled() bool

	Destroy()
}

// Geom is one piece of collision geometry.
type Geom interface {
	Shape() Shape
	// Body returns the body the geom follows, or nil.
	Body() Body
	SetPosition(p mgl64.Vec3)
	Position() mgl64.Vec3
	SetQuaternion(q mgl64.Quat)
	Quaternion() mgl64.Quat
	Enable()
	Disable()
	IsEnabled() bool
	// Space returns the space the geom is registered in, or nil.
	Space() Space
	Destroy()
}

// Space is a spatial partition of geoms. Child spaces are registered in their
// parent when created.
type Space interface {
	Add(g Geom)
	Remove(g Geom)
	// Geoms returns the geoms directly registered in this space.
	Geoms() []Geom
	Parent() Space
	// SetCleanup controls whether Destroy also destroys the registered geoms
	// and child spaces.
	SetCleanup(enabled bool)
	Destroy()
}

// Collider runs collision detection and owns the bulk contact buffer.
type Collider interface {
	// SetSurface sets the surface parameters stamped on every new contact.
	SetSurface(s Surface)
	Surface() Surface
	// Reset empties the buffer and starts a new detection pass.
	Reset()
	// Collide tests every pair of geoms registered directly in space.
	Collide(space Space)
	// CollideBetween tests every geom of a against every geom of b.
	CollideBetween(a, b Space)
	Contacts() ContactBuffer
	// Apply commits the contacts not ignored to the next world step.
	Apply()
	Destroy()
}

// ContactBuffer is the engine owned, frame lifetime array of contacts.
type ContactBuffer interface {
	Len() int
	Capacity() int
	// Generation changes every time the collider starts a new pass.
	Generation() uint64
	Contact(i int) Contact
	SetContact(i int, c Contact)
	Body1(i int) Body
	Body2(i int) Body
	Ignore(i int)
	IsIgnored(i int) bool
}

// JointGroup allows bulk destruction of joints.
type JointGroup interface {
	Empty()
	Destroy()
}

// Joint is one constraint between up to two bodies. A nil body stands for
// the static environment.
type Joint interface {
	Kind() JointKind
	Attach(b1, b2 Body)
	Body(n int) Body

	SetAnchor(p mgl64.Vec3)
	Anchor() mgl64.Vec3
	Anchor2() mgl64.Vec3
	// SetAxis sets axis n (1 based) in world coordinates.
	SetAxis(n int, axis mgl64.Vec3)
	Axis(n int) mgl64.Vec3

	SetParam(p Param, axis int, v float64)
	Param(p Param, axis int) float64

	Angle(n int) float64
	AngleRate(n int) float64
	// Position and PositionRate report the slider separation.
	Position() float64
	PositionRate() float64

	// Motor only.
	SetNumAxes(n int)
	NumAxes() int
	SetMode(m MotorMode)
	SetAngle(n int, angle float64)
	SetTorque(n int, torque float64)

	Destroy()
}
