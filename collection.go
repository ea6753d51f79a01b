package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// CollectionField identifies a field of a RigidBodyCollection.
type CollectionField int

const (
	CollectionAutoDisable CollectionField = iota
	CollectionBodies
	CollectionCollider
	CollectionConstantForceMix
	CollectionContactSurfaceThickness
	CollectionDisableAngularSpeed
	CollectionDisableLinearSpeed
	CollectionDisableTime
	CollectionEnabled
	CollectionErrorCorrection
	CollectionGravity
	CollectionIterations
	CollectionJoints
	CollectionMaxCorrectionSpeed
	CollectionPreferAccuracy
)

// DefaultTimestep is the step used until the frame rate is measured.
const DefaultTimestep = 0.02

// RigidBodyCollection owns one engine world with its bodies and joints, and
// drives it through the frame cycle together with its collision collection.
type RigidBodyCollection struct {
	node[CollectionField]

	engine engine.Engine
	world  engine.World
	group  engine.JointGroup

	bodies   []*RigidBody
	joints   []Joint
	collider *CollisionCollection

	autoDisable             bool
	constantForceMix        float64
	contactSurfaceThickness float64
	disableAngularSpeed     float64
	disableLinearSpeed      float64
	disableTime             float64
	enabled                 bool
	errorCorrection         float64
	gravity                 mgl64.Vec3
	iterations              int
	maxCorrectionSpeed      float64
	preferAccuracy          bool

	timestep float64

	// pass whose contacts were last committed
	processedBuffer     engine.ContactBuffer
	processedGeneration uint64
}

func NewRigidBodyCollection(eng engine.Engine) *RigidBodyCollection {
	return &RigidBodyCollection{
		node:               newNode[CollectionField](),
		engine:             eng,
		constantForceMix:   0.0001,
		enabled:            true,
		errorCorrection:    0.8,
		gravity:            mgl64.Vec3{0, -9.8, 0},
		iterations:         10,
		maxCorrectionSpeed: -1,
		timestep:           DefaultTimestep,
	}
}

// World returns the engine world, nil before SetupFinished and after Destroy.
func (c *RigidBodyCollection) World() engine.World {
	return c.world
}

func (c *RigidBodyCollection) live() bool {
	return c.ready && c.world != nil
}

// SetupFinished creates the world and the joint group, then attaches the
// bodies, the joints and the collision collection.
func (c *RigidBodyCollection) SetupFinished() {
	if !c.finishSetup() {
		return
	}

	c.world = c.engine.NewWorld()
	c.pushWorld()
	c.group = c.world.NewJointGroup()

	for _, b := range c.bodies {
		c.attachBody(b)
	}
	for _, j := range c.joints {
		c.attachJoint(j)
	}
	if c.collider != nil {
		c.attachCollider(c.collider)
	}
}

func (c *RigidBodyCollection) pushWorld() {
	w := c.world
	w.SetGravity(c.gravity)
	w.SetIterations(c.iterations)
	w.SetERP(c.errorCorrection)
	w.SetCFM(c.constantForceMix)
	w.SetMaxCorrectingVelocity(c.maxCorrectionSpeed)
	w.SetContactSurfaceLayer(c.contactSurfaceThickness)
	w.SetAutoDisableFlag(c.autoDisable)
	w.SetAutoDisableLinearThreshold(c.disableLinearSpeed)
	w.SetAutoDisableAngularThreshold(c.disableAngularSpeed)
	w.SetAutoDisableTime(c.disableTime)
}

func (c *RigidBodyCollection) attachBody(b *RigidBody) {
	b.collection = c
	b.SetLogger(c.logger)
	b.SetupFinished()
	b.SetWorld(c.world)
}

// reattachJoints binds the joints holding b to its current engine body.
func (c *RigidBodyCollection) reattachJoints(b *RigidBody) {
	for _, j := range c.joints {
		if j.Body1() == b || j.Body2() == b {
			j.Reattach()
		}
	}
}

func (c *RigidBodyCollection) attachJoint(j Joint) {
	j.SetLogger(c.logger)
	j.SetupFinished()
	j.SetWorld(c.world, c.group)
}

func (c *RigidBodyCollection) attachCollider(cc *CollisionCollection) {
	cc.SetLogger(c.logger)
	cc.SetupFinished()
	cc.SetOwningWorld(c.world)
}

func (c *RigidBodyCollection) Bodies() []*RigidBody {
	return c.bodies
}

// SetBodies replaces the bodies. Every entry must resolve to a *RigidBody;
// otherwise nothing changes. The old bodies leave the world before the new
// ones enter it, and the joints are reattached to the new engine bodies.
func (c *RigidBodyCollection) SetBodies(nodes []any) error {
	bodies, err := resolveAll[*RigidBody](nodes)
	if err != nil {
		return fieldError("RigidBodyCollection", "bodies", nodes, err)
	}

	if c.live() {
		for _, b := range c.bodies {
			b.SetWorld(nil)
			if b.collection == c {
				b.collection = nil
			}
		}
	}
	c.bodies = bodies
	if c.live() {
		for _, b := range bodies {
			c.attachBody(b)
		}
		for _, j := range c.joints {
			j.Reattach()
		}
	}
	c.changed(CollectionBodies)
	return nil
}

func (c *RigidBodyCollection) Joints() []Joint {
	return c.joints
}

// SetJoints replaces the joints. The old ones are destroyed and the joint
// group emptied before the new ones are created.
func (c *RigidBodyCollection) SetJoints(nodes []any) error {
	joints, err := resolveAll[Joint](nodes)
	if err != nil {
		return fieldError("RigidBodyCollection", "joints", nodes, err)
	}

	if c.live() {
		for _, j := range c.joints {
			j.SetWorld(nil, nil)
		}
		c.group.Empty()
	}
	c.joints = joints
	if c.live() {
		for _, j := range joints {
			c.attachJoint(j)
		}
	}
	c.changed(CollectionJoints)
	return nil
}

func (c *RigidBodyCollection) Collider() *CollisionCollection {
	return c.collider
}

// SetCollider selects the collision collection supplying the contacts. The
// previous one is released from the world but not destroyed.
func (c *RigidBodyCollection) SetCollider(n any) error {
	cc, err := Resolve[*CollisionCollection](n)
	if err != nil {
		return fieldError("RigidBodyCollection", "collider", n, err)
	}

	if c.live() && c.collider != nil && c.collider != cc {
		c.collider.SetOwningWorld(nil)
	}
	c.collider = cc
	if c.live() && cc != nil {
		c.attachCollider(cc)
	}
	c.changed(CollectionCollider)
	return nil
}

// ProcessInputContacts keeps the contacts of edits and suppresses every other
// contact of the current pass, then commits them. Contacts from another
// collection or from an earlier pass are ignored. Suppression cannot be
// undone, so only the first call of a detection pass has an effect.
func (c *RigidBodyCollection) ProcessInputContacts(edits []*Contact) {
	cc := c.collider
	if cc == nil || cc.collider == nil {
		return
	}

	buffer := cc.Buffer()
	if buffer == c.processedBuffer && buffer.Generation() == c.processedGeneration {
		c.logger.V(1).Info("contacts of this pass already committed")
		return
	}
	c.processedBuffer, c.processedGeneration = buffer, buffer.Generation()

	retained := make([]bool, buffer.Len())
	for _, ct := range edits {
		if ct == nil {
			continue
		}
		if !cc.owns(ct) {
			c.logger.V(1).Info("foreign contact ignored", "index", ct.Index())
			continue
		}
		retained[ct.index] = true
	}
	for i, keep := range retained {
		if !keep {
			buffer.Ignore(i)
		}
	}
	cc.ApplyContacts()
}

// EvaluateModel pushes the body forces and steps the world by the current
// timestep. A disabled collection does nothing.
func (c *RigidBodyCollection) EvaluateModel() {
	if !c.enabled {
		return
	}
	if c.world == nil {
		panic("rigidscene: EvaluateModel called before SetupFinished")
	}

	for _, b := range c.bodies {
		b.UpdateEngineFromNode()
	}
	if c.preferAccuracy {
		c.world.Step(c.timestep)
	} else {
		c.world.QuickStep(c.timestep)
	}
	c.logger.V(1).Info("world stepped", "dt", c.timestep, "bodies", len(c.bodies))
}

// UpdatePostSimulation reads the solved state back into the bodies and fires
// their notifications.
func (c *RigidBodyCollection) UpdatePostSimulation() {
	if c.world == nil {
		return
	}
	for _, b := range c.bodies {
		b.UpdateNodeFromEngine()
	}
}

func (c *RigidBodyCollection) Timestep() float64 {
	return c.timestep
}

// SetTimestep changes the step used by the next EvaluateModel.
func (c *RigidBodyCollection) SetTimestep(dt float64) error {
	if err := checkPositive("RigidBodyCollection", "timestep", dt); err != nil {
		return err
	}
	c.timestep = dt
	return nil
}

func (c *RigidBodyCollection) IsEnabled() bool {
	return c.enabled
}

func (c *RigidBodyCollection) SetEnabled(enabled bool) {
	c.enabled = enabled
	c.changed(CollectionEnabled)
}

func (c *RigidBodyCollection) PreferAccuracy() bool {
	return c.preferAccuracy
}

func (c *RigidBodyCollection) SetPreferAccuracy(prefer bool) {
	c.preferAccuracy = prefer
	c.changed(CollectionPreferAccuracy)
}

func (c *RigidBodyCollection) Gravity() mgl64.Vec3 {
	return c.gravity
}

func (c *RigidBodyCollection) SetGravity(g mgl64.Vec3) {
	c.gravity = g
	if c.live() {
		c.world.SetGravity(g)
	}
	c.changed(CollectionGravity)
}

func (c *RigidBodyCollection) Iterations() int {
	return c.iterations
}

func (c *RigidBodyCollection) SetIterations(n int) error {
	if n < 0 {
		return fieldError("RigidBodyCollection", "iterations", n, ErrNegative)
	}
	c.iterations = n
	if c.live() {
		c.world.SetIterations(n)
	}
	c.changed(CollectionIterations)
	return nil
}

func (c *RigidBodyCollection) ErrorCorrection() float64 {
	return c.errorCorrection
}

func (c *RigidBodyCollection) SetErrorCorrection(erp float64) error {
	if err := checkNonNegative("RigidBodyCollection", "errorCorrection", erp); err != nil {
		return err
	}
	c.errorCorrection = erp
	if c.live() {
		c.world.SetERP(erp)
	}
	c.changed(CollectionErrorCorrection)
	return nil
}

func (c *RigidBodyCollection) ConstantForceMix() float64 {
	return c.constantForceMix
}

func (c *RigidBodyCollection) SetConstantForceMix(cfm float64) error {
	if err := checkNonNegative("RigidBodyCollection", "constantForceMix", cfm); err != nil {
		return err
	}
	c.constantForceMix = cfm
	if c.live() {
		c.world.SetCFM(cfm)
	}
	c.changed(CollectionConstantForceMix)
	return nil
}

func (c *RigidBodyCollection) MaxCorrectionSpeed() float64 {
	return c.maxCorrectionSpeed
}

// SetMaxCorrectionSpeed accepts -1 for an unbounded speed.
func (c *RigidBodyCollection) SetMaxCorrectionSpeed(v float64) error {
	if v < 0 && v != -1 {
		return fieldError("RigidBodyCollection", "maxCorrectionSpeed", v, ErrOutOfRange)
	}
	c.maxCorrectionSpeed = v
	if c.live() {
		c.world.SetMaxCorrectingVelocity(v)
	}
	c.changed(CollectionMaxCorrectionSpeed)
	return nil
}

func (c *RigidBodyCollection) ContactSurfaceThickness() float64 {
	return c.contactSurfaceThickness
}

func (c *RigidBodyCollection) SetContactSurfaceThickness(depth float64) error {
	if err := checkNonNegative("RigidBodyCollection", "contactSurfaceThickness", depth); err != nil {
		return err
	}
	c.contactSurfaceThickness = depth
	if c.live() {
		c.world.SetContactSurfaceLayer(depth)
	}
	c.changed(CollectionContactSurfaceThickness)
	return nil
}

func (c *RigidBodyCollection) AutoDisable() bool {
	return c.autoDisable
}

func (c *RigidBodyCollection) SetAutoDisable(enabled bool) {
	c.autoDisable = enabled
	if c.live() {
		c.world.SetAutoDisableFlag(enabled)
	}
	c.changed(CollectionAutoDisable)
}

func (c *RigidBodyCollection) DisableLinearSpeed() float64 {
	return c.disableLinearSpeed
}

func (c *RigidBodyCollection) SetDisableLinearSpeed(v float64) error {
	if err := checkNonNegative("RigidBodyCollection", "disableLinearSpeed", v); err != nil {
		return err
	}
	c.disableLinearSpeed = v
	if c.live() {
		c.world.SetAutoDisableLinearThreshold(v)
	}
	c.changed(CollectionDisableLinearSpeed)
	return nil
}

func (c *RigidBodyCollection) DisableAngularSpeed() float64 {
	return c.disableAngularSpeed
}

func (c *RigidBodyCollection) SetDisableAngularSpeed(v float64) error {
	if err := checkNonNegative("RigidBodyCollection", "disableAngularSpeed", v); err != nil {
		return err
	}
	c.disableAngularSpeed = v
	if c.live() {
		c.world.SetAutoDisableAngularThreshold(v)
	}
	c.changed(CollectionDisableAngularSpeed)
	return nil
}

func (c *RigidBodyCollection) DisableTime() float64 {
	return c.disableTime
}

func (c *RigidBodyCollection) SetDisableTime(t float64) error {
	if err := checkNonNegative("RigidBodyCollection", "disableTime", t); err != nil {
		return err
	}
	c.disableTime = t
	if c.live() {
		c.world.SetAutoDisableTime(t)
	}
	c.changed(CollectionDisableTime)
	return nil
}

// Destroy tears the world down in order: joints and their group, the
// collision collection, the bodies and their geometry, then the world.
// Further calls do nothing.
func (c *RigidBodyCollection) Destroy() {
	if c.world == nil {
		return
	}

	for _, j := range c.joints {
		j.Destroy()
	}
	c.group.Destroy()
	c.group = nil

	if c.collider != nil {
		c.collider.Destroy()
	}
	for _, b := range c.bodies {
		b.SetWorld(nil)
		b.destroyGeometry()
	}

	c.world.Destroy()
	c.world = nil
}
