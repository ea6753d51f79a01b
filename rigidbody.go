package rigidscene

import (
	"math"
	"slices"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyField identifies a field of a RigidBody.
type BodyField int

const (
	BodyAngularDampingFactor BodyField = iota
	BodyAngularVelocity
	BodyAutoDamp
	BodyAutoDisable
	BodyCenterOfMass
	BodyDisableAngularSpeed
	BodyDisableLinearSpeed
	BodyDisableTime
	BodyEnabled
	BodyFiniteRotationAxis
	BodyFixed
	BodyForces
	BodyGeometry
	BodyInertia
	BodyLinearDampingFactor
	BodyLinearVelocity
	BodyMass
	BodyMassDensityModel
	BodyOrientation
	BodyPosition
	BodyTorques
	BodyUseFiniteRotation
	BodyUseGlobalGravity
)

// RigidBody mirrors its fields onto one engine body. The body exists while
// the node is attached to a world and not fixed.
type RigidBody struct {
	node[BodyField]

	world      engine.World
	body       engine.Body
	collection *RigidBodyCollection

	position           mgl64.Vec3
	orientation        Rotation
	linearVelocity     mgl64.Vec3
	angularVelocity    mgl64.Vec3
	mass               float64
	centerOfMass       mgl64.Vec3
	inertia            mgl64.Mat3
	massDensityModel   engine.Shape
	forces             []mgl64.Vec3
	torques            []mgl64.Vec3
	geometry           []*CollidableShape
	finiteRotationAxis mgl64.Vec3

	autoDamp            bool
	linearDamping       float64
	angularDamping      float64
	autoDisable         bool
	disableLinearSpeed  float64
	disableAngularSpeed float64
	disableTime         float64

	enabled           bool
	fixed             bool
	useFiniteRotation bool
	useGlobalGravity  bool
}

func NewRigidBody() *RigidBody {
	return &RigidBody{
		node:             newNode[BodyField](),
		orientation:      DefaultRotation,
		mass:             1,
		inertia:          mgl64.Ident3(),
		linearDamping:    0.001,
		angularDamping:   0.001,
		enabled:          true,
		useGlobalGravity: true,
	}
}

// EngineBody returns the engine body, nil while detached or fixed.
func (b *RigidBody) EngineBody() engine.Body {
	if b == nil {
		return nil
	}
	return b.body
}

// live reports whether mutations are pushed to the engine right away
func (b *RigidBody) live() bool {
	return b.ready && b.body != nil
}

// SetWorld creates the engine body in w and pushes every field onto it, or
// deletes it when w is nil.
func (b *RigidBody) SetWorld(w engine.World) {
	if b.body != nil {
		b.world.DeleteBody(b.body)
		b.body = nil
	}
	b.world = w
	if w == nil || b.fixed {
		return
	}

	b.body = w.NewBody()
	b.pushState()
}

func (b *RigidBody) pushState() {
	body := b.body
	body.SetPosition(b.position)
	body.SetAxisAngle(b.orientation.Axis, b.orientation.Angle)
	body.SetLinearVel(b.linearVelocity)
	body.SetAngularVel(b.angularVelocity)
	body.SetFiniteRotationAxis(b.finiteRotationAxis)
	body.SetFiniteRotationMode(b.useFiniteRotation)
	body.SetGravityMode(b.useGlobalGravity)
	body.SetAutoDisableAngularThreshold(b.disableAngularSpeed)
	body.SetAutoDisableLinearThreshold(b.disableLinearSpeed)
	body.SetAutoDisableTime(b.disableTime)
	body.SetAutoDisableFlag(b.autoDisable)
	b.pushMass()
	for _, shape := range b.geometry {
		if shape.geom != nil {
			body.AddGeom(shape.geom)
		}
	}
	if b.enabled {
		body.Enable()
	} else {
		body.Disable()
	}
}

// pushMass derives the mass parameters from the density model when one is
// set, from mass, centre of mass and inertia otherwise
func (b *RigidBody) pushMass() {
	if b.massDensityModel != nil {
		if m, err := densityMass(b.massDensityModel, b.mass); err == nil {
			b.body.SetMass(m)
			return
		}
	}
	b.body.SetMass(engine.Mass{
		Mass:   b.mass,
		Center: b.centerOfMass,
		Inertia: [6]float64{
			b.inertia.At(0, 0), b.inertia.At(1, 1), b.inertia.At(2, 2),
			b.inertia.At(0, 1), b.inertia.At(0, 2), b.inertia.At(1, 2),
		},
	})
}

// densityMass spreads total over the volume of shape
func densityMass(shape engine.Shape, total float64) (engine.Mass, error) {
	switch s := shape.(type) {
	case engine.Box:
		volume := s.Size.X() * s.Size.Y() * s.Size.Z()
		if volume <= 0 {
			return engine.Mass{}, ErrNonPositive
		}
		return engine.BoxMass(total/volume, s.Size).Adjust(total), nil
	case engine.Sphere:
		if s.Radius <= 0 {
			return engine.Mass{}, ErrNonPositive
		}
		volume := 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
		return engine.SphereMass(total/volume, s.Radius).Adjust(total), nil
	}
	return engine.Mass{}, ErrUnsupportedMassModel
}

// SetupFinished ends the setup of the body and its geometry, and pushes the
// buffered fields when the body already exists.
func (b *RigidBody) SetupFinished() {
	if !b.finishSetup() {
		return
	}
	for _, shape := range b.geometry {
		shape.SetupFinished()
	}
	if b.body != nil {
		b.pushState()
	}
}

// UpdateEngineFromNode applies the persistent forces and torques, which the
// engine clears every step, plus the damping when enabled.
func (b *RigidBody) UpdateEngineFromNode() {
	if b.body == nil {
		return
	}
	for _, f := range b.forces {
		b.body.AddForce(f)
	}
	for _, t := range b.torques {
		b.body.AddTorque(t)
	}

	if b.autoDamp {
		if b.linearDamping != 0 {
			b.body.AddForce(b.linearVelocity.Mul(-b.linearDamping))
		}
		if b.angularDamping != 0 {
			b.body.AddTorque(b.angularVelocity.Mul(-b.angularDamping))
		}
	}
}

// UpdateNodeFromEngine reads the pose and velocities back and notifies them.
func (b *RigidBody) UpdateNodeFromEngine() {
	if !b.enabled || b.body == nil {
		return
	}

	b.position = b.body.Position()
	b.changed(BodyPosition)

	axis, angle := b.body.AxisAngle()
	b.orientation = Rotation{Axis: axis, Angle: angle}
	b.changed(BodyOrientation)

	b.linearVelocity = b.body.LinearVel()
	b.changed(BodyLinearVelocity)

	b.angularVelocity = b.body.AngularVel()
	b.changed(BodyAngularVelocity)
}

func (b *RigidBody) Position() mgl64.Vec3 {
	return b.position
}

func (b *RigidBody) SetPosition(p mgl64.Vec3) {
	b.position = p
	if b.live() {
		b.body.SetPosition(p)
	}
	b.changed(BodyPosition)
}

func (b *RigidBody) Orientation() Rotation {
	return b.orientation
}

func (b *RigidBody) SetOrientation(r Rotation) {
	b.orientation = r
	if b.live() {
		b.body.SetAxisAngle(r.Axis, r.Angle)
	}
	b.changed(BodyOrientation)
}

func (b *RigidBody) LinearVelocity() mgl64.Vec3 {
	return b.linearVelocity
}

func (b *RigidBody) SetLinearVelocity(v mgl64.Vec3) {
	b.linearVelocity = v
	if b.live() {
		b.body.SetLinearVel(v)
	}
	b.changed(BodyLinearVelocity)
}

func (b *RigidBody) AngularVelocity() mgl64.Vec3 {
	return b.angularVelocity
}

func (b *RigidBody) SetAngularVelocity(w mgl64.Vec3) {
	b.angularVelocity = w
	if b.live() {
		b.body.SetAngularVel(w)
	}
	b.changed(BodyAngularVelocity)
}

func (b *RigidBody) Mass() float64 {
	return b.mass
}

// SetMass rejects non-positive values.
func (b *RigidBody) SetMass(mass float64) error {
	if err := checkPositive("RigidBody", "mass", mass); err != nil {
		return err
	}
	b.mass = mass
	if b.live() {
		b.pushMass()
	}
	b.changed(BodyMass)
	return nil
}

func (b *RigidBody) CenterOfMass() mgl64.Vec3 {
	return b.centerOfMass
}

func (b *RigidBody) SetCenterOfMass(c mgl64.Vec3) {
	b.centerOfMass = c
	if b.live() {
		b.pushMass()
	}
	b.changed(BodyCenterOfMass)
}

func (b *RigidBody) Inertia() mgl64.Mat3 {
	return b.inertia
}

// SetInertia stores the full matrix; only its upper triangle reaches the
// engine.
func (b *RigidBody) SetInertia(m mgl64.Mat3) {
	b.inertia = m
	if b.live() {
		b.pushMass()
	}
	b.changed(BodyInertia)
}

func (b *RigidBody) MassDensityModel() engine.Shape {
	return b.massDensityModel
}

// SetMassDensityModel derives the mass parameters from a box or a sphere
// holding the declared mass. Templates are resolved; nil removes the model.
func (b *RigidBody) SetMassDensityModel(model any) error {
	shape, err := Resolve[engine.Shape](model)
	if err != nil {
		return fieldError("RigidBody", "massDensityModel", model, ErrUnsupportedMassModel)
	}
	if shape != nil {
		if _, err := densityMass(shape, b.mass); err != nil {
			return fieldError("RigidBody", "massDensityModel", model, err)
		}
	}

	b.massDensityModel = shape
	if b.live() {
		b.pushMass()
	}
	b.changed(BodyMassDensityModel)
	return nil
}

func (b *RigidBody) Forces() []mgl64.Vec3 {
	return b.forces
}

// SetForces replaces the forces applied on every step.
func (b *RigidBody) SetForces(forces []mgl64.Vec3) {
	b.forces = append(b.forces[:0], forces...)
	b.changed(BodyForces)
}

func (b *RigidBody) Torques() []mgl64.Vec3 {
	return b.torques
}

// SetTorques replaces the torques applied on every step.
func (b *RigidBody) SetTorques(torques []mgl64.Vec3) {
	b.torques = append(b.torques[:0], torques...)
	b.changed(BodyTorques)
}

func (b *RigidBody) AutoDamp() bool {
	return b.autoDamp
}

func (b *RigidBody) SetAutoDamp(enabled bool) {
	b.autoDamp = enabled
	b.changed(BodyAutoDamp)
}

func (b *RigidBody) LinearDampingFactor() float64 {
	return b.linearDamping
}

func (b *RigidBody) SetLinearDampingFactor(factor float64) {
	b.linearDamping = factor
	b.changed(BodyLinearDampingFactor)
}

func (b *RigidBody) AngularDampingFactor() float64 {
	return b.angularDamping
}

func (b *RigidBody) SetAngularDampingFactor(factor float64) {
	b.angularDamping = factor
	b.changed(BodyAngularDampingFactor)
}

func (b *RigidBody) AutoDisable() bool {
	return b.autoDisable
}

func (b *RigidBody) SetAutoDisable(enabled bool) {
	b.autoDisable = enabled
	if b.live() {
		b.body.SetAutoDisableFlag(enabled)
	}
	b.changed(BodyAutoDisable)
}

func (b *RigidBody) DisableLinearSpeed() float64 {
	return b.disableLinearSpeed
}

func (b *RigidBody) SetDisableLinearSpeed(speed float64) error {
	if err := checkNonNegative("RigidBody", "disableLinearSpeed", speed); err != nil {
		return err
	}
	b.disableLinearSpeed = speed
	if b.live() {
		b.body.SetAutoDisableLinearThreshold(speed)
	}
	b.changed(BodyDisableLinearSpeed)
	return nil
}

func (b *RigidBody) DisableAngularSpeed() float64 {
	return b.disableAngularSpeed
}

func (b *RigidBody) SetDisableAngularSpeed(speed float64) error {
	if err := checkNonNegative("RigidBody", "disableAngularSpeed", speed); err != nil {
		return err
	}
	b.disableAngularSpeed = speed
	if b.live() {
		b.body.SetAutoDisableAngularThreshold(speed)
	}
	b.changed(BodyDisableAngularSpeed)
	return nil
}

func (b *RigidBody) DisableTime() float64 {
	return b.disableTime
}

func (b *RigidBody) SetDisableTime(t float64) error {
	if err := checkNonNegative("RigidBody", "disableTime", t); err != nil {
		return err
	}
	b.disableTime = t
	if b.live() {
		b.body.SetAutoDisableTime(t)
	}
	b.changed(BodyDisableTime)
	return nil
}

func (b *RigidBody) IsEnabled() bool {
	return b.enabled
}

// SetEnabled clears the engine force and torque before enabling the body.
func (b *RigidBody) SetEnabled(enabled bool) {
	b.enabled = enabled
	if b.live() {
		if enabled {
			b.body.SetForce(mgl64.Vec3{})
			b.body.SetTorque(mgl64.Vec3{})
			b.body.Enable()
		} else {
			b.body.Disable()
		}
	}
	b.changed(BodyEnabled)
}

func (b *RigidBody) IsFixed() bool {
	return b.fixed
}

// SetFixed removes the body from the engine, or brings it back. The geometry
// of a fixed body stays where it is. Joints of the owning collection holding
// the body follow the new engine body.
func (b *RigidBody) SetFixed(fixed bool) {
	if fixed == b.fixed {
		return
	}
	b.fixed = fixed
	if b.world != nil {
		b.SetWorld(b.world)
		if b.collection != nil {
			b.collection.reattachJoints(b)
		}
	}
	b.changed(BodyFixed)
}

func (b *RigidBody) FiniteRotationAxis() mgl64.Vec3 {
	return b.finiteRotationAxis
}

func (b *RigidBody) SetFiniteRotationAxis(axis mgl64.Vec3) {
	b.finiteRotationAxis = axis
	if b.live() {
		b.body.SetFiniteRotationAxis(axis)
	}
	b.changed(BodyFiniteRotationAxis)
}

func (b *RigidBody) UseFiniteRotation() bool {
	return b.useFiniteRotation
}

func (b *RigidBody) SetUseFiniteRotation(enabled bool) {
	b.useFiniteRotation = enabled
	if b.live() {
		b.body.SetFiniteRotationMode(enabled)
	}
	b.changed(BodyUseFiniteRotation)
}

func (b *RigidBody) UseGlobalGravity() bool {
	return b.useGlobalGravity
}

func (b *RigidBody) SetUseGlobalGravity(enabled bool) {
	b.useGlobalGravity = enabled
	if b.live() {
		b.body.SetGravityMode(enabled)
	}
	b.changed(BodyUseGlobalGravity)
}

func (b *RigidBody) Geometry() []*CollidableShape {
	return b.geometry
}

// SetGeometry replaces the collidables attached to the body. The previous
// geoms are detached from the engine body before the new ones are attached.
// A shape held by another body is taken from it first.
func (b *RigidBody) SetGeometry(nodes []any) error {
	shapes, err := resolveAll[*CollidableShape](nodes)
	if err != nil {
		return fieldError("RigidBody", "geometry", nodes, err)
	}

	for _, shape := range b.geometry {
		if b.live() && shape.geom != nil {
			b.body.RemoveGeom(shape.geom)
		}
		if shape.body == b {
			shape.body = nil
		}
	}

	b.geometry = shapes
	for _, shape := range shapes {
		if shape.body != nil && shape.body != b {
			shape.body.detachShape(shape)
		}
		shape.body = b
		if b.live() && shape.geom != nil {
			b.body.AddGeom(shape.geom)
		}
	}
	b.changed(BodyGeometry)
	return nil
}

// detachShape drops shape from the geometry of b.
func (b *RigidBody) detachShape(shape *CollidableShape) {
	i := slices.Index(b.geometry, shape)
	if i < 0 {
		return
	}
	if b.live() && shape.geom != nil {
		b.body.RemoveGeom(shape.geom)
	}
	b.geometry = slices.Delete(slices.Clone(b.geometry), i, i+1)
	shape.body = nil
	b.changed(BodyGeometry)
}

// destroyGeometry releases the geoms of every attached shape
func (b *RigidBody) destroyGeometry() {
	for _, shape := range b.geometry {
		shape.Destroy()
	}
}
