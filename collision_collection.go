package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
)

// Applied parameter names accepted by SetAppliedParameters.
const (
	ParamBounce              = "BOUNCE"
	ParamUserFriction        = "USER_FRICTION"
	ParamFrictionCoefficient = "FRICTION_COEFFICIENT-2"
	ParamErrorReduction      = "ERROR_REDUCTION"
	ParamConstantForce       = "CONSTANT_FORCE"
	ParamSpeed1              = "SPEED-1"
	ParamSpeed2              = "SPEED-2"
	ParamSlip1               = "SLIP-1"
	ParamSlip2               = "SLIP-2"
)

// surfaceParameter is the mode bit a parameter name enables and the value it
// copies from the collection onto every contact
type surfaceParameter struct {
	mode  engine.SurfaceMode
	apply func(c *CollisionCollection, s *engine.Surface)
}

var surfaceParameters = map[string]surfaceParameter{
	ParamBounce: {engine.ModeBounce, func(c *CollisionCollection, s *engine.Surface) {
		s.Bounce = c.bounce
		s.BounceVel = c.minBounceSpeed
	}},
	ParamUserFriction: {engine.ModeFDir1, nil},
	ParamFrictionCoefficient: {engine.ModeMu2, func(c *CollisionCollection, s *engine.Surface) {
		s.Mu2 = c.friction[1]
	}},
	ParamErrorReduction: {engine.ModeSoftERP, func(c *CollisionCollection, s *engine.Surface) {
		s.SoftERP = c.softERP
	}},
	ParamConstantForce: {engine.ModeSoftCFM, func(c *CollisionCollection, s *engine.Surface) {
		s.SoftCFM = c.softCFM
	}},
	ParamSpeed1: {engine.ModeMotion1, func(c *CollisionCollection, s *engine.Surface) {
		s.Motion1 = c.surfaceSpeed[0]
	}},
	ParamSpeed2: {engine.ModeMotion2, func(c *CollisionCollection, s *engine.Surface) {
		s.Motion2 = c.surfaceSpeed[1]
	}},
	ParamSlip1: {engine.ModeSlip1, func(c *CollisionCollection, s *engine.Surface) {
		s.Slip1 = c.slip[0]
	}},
	ParamSlip2: {engine.ModeSlip2, func(c *CollisionCollection, s *engine.Surface) {
		s.Slip2 = c.slip[1]
	}},
}

// surfaceMode translates parameter names into a mode. Friction
// approximation is always on; unknown names are ignored.
func surfaceMode(names []string) engine.SurfaceMode {
	mode := engine.ModeApprox1
	for _, name := range names {
		if p, ok := surfaceParameters[name]; ok {
			mode |= p.mode
		}
	}
	return mode
}

// CollisionField identifies a field of a CollisionCollection.
type CollisionField int

const (
	CollisionCollidables CollisionField = iota
	CollisionEnabled
	CollisionBounce
	CollisionMinBounceSpeed
	CollisionFrictionCoefficients
	CollisionSlipFactors
	CollisionSurfaceSpeed
	CollisionSoftnessErrorCorrection
	CollisionSoftnessConstantForceMix
	CollisionAppliedParameters
)

// CollisionCollection is the root collision domain of a simulation. It owns
// the root space, the narrow phase collider of one world and the policy that
// stamps surface parameters on every contact.
type CollisionCollection struct {
	node[CollisionField]

	engine   engine.Engine
	world    engine.World
	root     engine.Space
	collider engine.Collider
	children collidableSet
	contacts []*Contact

	enabled        bool
	bounce         float64
	minBounceSpeed float64
	friction       [2]float64
	slip           [2]float64
	surfaceSpeed   [2]float64
	softERP        float64
	softCFM        float64
	applied        []string
	mode           engine.SurfaceMode
}

func NewCollisionCollection(eng engine.Engine) *CollisionCollection {
	c := &CollisionCollection{
		node:           newNode[CollisionField](),
		engine:         eng,
		enabled:        true,
		minBounceSpeed: 0.1,
		softERP:        0.8,
		softCFM:        0.0001,
	}
	c.applied = []string{ParamBounce}
	c.mode = surfaceMode(c.applied)
	return c
}

// Collidables returns the children in insertion order.
func (c *CollisionCollection) Collidables() []any {
	return c.children.all
}

// AddCollidable appends a CollidableShape or a CollisionSpace.
func (c *CollisionCollection) AddCollidable(n any) error {
	if err := c.children.add(n); err != nil {
		return fieldError("CollisionCollection", "collidables", n, err)
	}
	if c.root != nil {
		c.register()
	}
	c.changed(CollisionCollidables)
	return nil
}

// SetCollidables replaces every child.
func (c *CollisionCollection) SetCollidables(nodes []any) error {
	old := c.children
	if err := c.children.replace(nodes); err != nil {
		return fieldError("CollisionCollection", "collidables", nodes, err)
	}
	if c.root != nil {
		for _, shape := range old.shapes {
			if shape.geom != nil {
				c.root.Remove(shape.geom)
			}
		}
		for _, space := range old.spaces {
			space.SetParentSpace(nil)
		}
		c.register()
	}
	c.changed(CollisionCollidables)
	return nil
}

// register adds the children to the root space and finishes their setup.
func (c *CollisionCollection) register() {
	for _, shape := range c.children.shapes {
		if shape.geom != nil && shape.geom.Space() != c.root {
			c.root.Add(shape.geom)
		}
		shape.SetupFinished()
	}
	for _, space := range c.children.spaces {
		if space.space == nil || space.space.Parent() != c.root {
			space.SetParentSpace(c.root)
		}
		space.SetupFinished()
	}
}

func (c *CollisionCollection) IsEnabled() bool {
	return c.enabled
}

func (c *CollisionCollection) SetEnabled(enabled bool) {
	c.enabled = enabled
	c.changed(CollisionEnabled)
}

func (c *CollisionCollection) Bounce() float64 {
	return c.bounce
}

func (c *CollisionCollection) SetBounce(bounce float64) error {
	if err := checkNonNegative("CollisionCollection", "bounce", bounce); err != nil {
		return err
	}
	c.bounce = bounce
	c.pushSurface()
	c.changed(CollisionBounce)
	return nil
}

func (c *CollisionCollection) MinBounceSpeed() float64 {
	return c.minBounceSpeed
}

func (c *CollisionCollection) SetMinBounceSpeed(speed float64) error {
	if err := checkNonNegative("CollisionCollection", "minBounceSpeed", speed); err != nil {
		return err
	}
	c.minBounceSpeed = speed
	c.pushSurface()
	c.changed(CollisionMinBounceSpeed)
	return nil
}

// FrictionCoefficients returns the primary and secondary friction.
func (c *CollisionCollection) FrictionCoefficients() [2]float64 {
	return c.friction
}

func (c *CollisionCollection) SetFrictionCoefficients(mu [2]float64) {
	c.friction = mu
	c.pushSurface()
	c.changed(CollisionFrictionCoefficients)
}

func (c *CollisionCollection) SlipFactors() [2]float64 {
	return c.slip
}

func (c *CollisionCollection) SetSlipFactors(slip [2]float64) {
	c.slip = slip
	c.pushSurface()
	c.changed(CollisionSlipFactors)
}

func (c *CollisionCollection) SurfaceSpeed() [2]float64 {
	return c.surfaceSpeed
}

func (c *CollisionCollection) SetSurfaceSpeed(speed [2]float64) {
	c.surfaceSpeed = speed
	c.pushSurface()
	c.changed(CollisionSurfaceSpeed)
}

func (c *CollisionCollection) SoftnessErrorCorrection() float64 {
	return c.softERP
}

func (c *CollisionCollection) SetSoftnessErrorCorrection(erp float64) error {
	if err := checkNonNegative("CollisionCollection", "softnessErrorCorrection", erp); err != nil {
		return err
	}
	c.softERP = erp
	c.pushSurface()
	c.changed(CollisionSoftnessErrorCorrection)
	return nil
}

func (c *CollisionCollection) SoftnessConstantForceMix() float64 {
	return c.softCFM
}

func (c *CollisionCollection) SetSoftnessConstantForceMix(cfm float64) error {
	if err := checkNonNegative("CollisionCollection", "softnessConstantForceMix", cfm); err != nil {
		return err
	}
	c.softCFM = cfm
	c.pushSurface()
	c.changed(CollisionSoftnessConstantForceMix)
	return nil
}

// AppliedParameters returns the names as given, unknown ones included.
func (c *CollisionCollection) AppliedParameters() []string {
	return c.applied
}

func (c *CollisionCollection) SetAppliedParameters(names []string) {
	c.applied = append([]string(nil), names...)
	c.mode = surfaceMode(c.applied)
	c.pushSurface()
	c.changed(CollisionAppliedParameters)
}

// SurfaceMode returns the mode stamped on every contact.
func (c *CollisionCollection) SurfaceMode() engine.SurfaceMode {
	return c.mode
}

// surface is the template every new contact starts from
func (c *CollisionCollection) surface() engine.Surface {
	return engine.Surface{
		Mode:      c.mode,
		Mu:        c.friction[0],
		Mu2:       c.friction[1],
		BounceVel: c.minBounceSpeed,
		SoftERP:   c.softERP,
		SoftCFM:   c.softCFM,
		Motion1:   c.surfaceSpeed[0],
		Motion2:   c.surfaceSpeed[1],
		Slip1:     c.slip[0],
		Slip2:     c.slip[1],
	}
}

func (c *CollisionCollection) pushSurface() {
	if c.ready && c.collider != nil {
		c.collider.SetSurface(c.surface())
	}
}

// SetupFinished creates the root space and registers every child in it.
func (c *CollisionCollection) SetupFinished() {
	if !c.finishSetup() {
		return
	}
	c.root = c.engine.NewHashSpace(nil)
	c.root.SetCleanup(false)
	c.register()
}

// SetOwningWorld binds the collection to w and creates its collider. A
// second call replaces the collider.
func (c *CollisionCollection) SetOwningWorld(w engine.World) {
	if c.collider != nil {
		c.collider.Destroy()
		c.collider = nil
	}
	c.world = w
	c.contacts = nil
	if w == nil {
		return
	}
	c.collider = w.NewCollider(0)
	c.collider.SetSurface(c.surface())
}

// EvaluateCollisions runs the detection over the root space and every nested
// space, then applies the parameter policy to each contact. Nested spaces are
// tested against each other explicitly since the engine does not recurse.
func (c *CollisionCollection) EvaluateCollisions() {
	if c.collider == nil {
		panic("rigidscene: EvaluateCollisions called before SetOwningWorld")
	}

	c.collider.Reset()
	c.contacts = nil
	if c.root == nil {
		return
	}

	spaces := []engine.Space{c.root}
	for _, space := range c.children.spaces {
		spaces = space.engineSpaces(spaces)
	}
	for i, s := range spaces {
		c.collider.Collide(s)
		for _, other := range spaces[i+1:] {
			c.collider.CollideBetween(s, other)
		}
	}

	buffer := c.collider.Contacts()
	for i := range buffer.Len() {
		contact := buffer.Contact(i)
		contact.Surface.Mode = c.mode
		contact.Surface.Mu = c.friction[0]
		for _, name := range c.applied {
			if p, ok := surfaceParameters[name]; ok && p.apply != nil {
				p.apply(c, &contact.Surface)
			}
		}
		buffer.SetContact(i, contact)
	}
}

// NumContacts returns the size of the current contact set.
func (c *CollisionCollection) NumContacts() int {
	if c.collider == nil {
		return 0
	}
	return c.collider.Contacts().Len()
}

// Contacts returns views onto the current contact set. They stay valid until
// the next EvaluateCollisions.
func (c *CollisionCollection) Contacts() []*Contact {
	if c.collider == nil {
		return nil
	}
	buffer := c.collider.Contacts()
	n := buffer.Len()
	generation := buffer.Generation()
	if len(c.contacts) == n && (n == 0 || c.contacts[0].generation == generation) {
		return c.contacts
	}

	// a fresh slice, so views handed out earlier keep their pass
	c.contacts = make([]*Contact, n)
	for i := range n {
		c.contacts[i] = &Contact{owner: c, buffer: buffer, generation: generation, index: i}
	}
	return c.contacts
}

// Buffer returns the engine contact buffer, or nil before SetOwningWorld.
func (c *CollisionCollection) Buffer() engine.ContactBuffer {
	if c.collider == nil {
		return nil
	}
	return c.collider.Contacts()
}

// ApplyContacts commits the contacts not ignored to the next world step.
func (c *CollisionCollection) ApplyContacts() {
	if c.collider != nil {
		c.collider.Apply()
	}
}

// owns reports whether ct comes from the current pass of this collection.
func (c *CollisionCollection) owns(ct *Contact) bool {
	return ct != nil && ct.owner == c && c.collider != nil && ct.buffer == c.collider.Contacts() && ct.Valid()
}

func (c *CollisionCollection) shapeFor(geom engine.Geom) *CollidableShape {
	if c == nil {
		return nil
	}
	return c.children.find(geom)
}

// UpdateCollidables reads the geom poses back into the shapes.
func (c *CollisionCollection) UpdateCollidables() {
	c.children.updateFromEngine()
}

// Destroy detaches the geoms from their spaces, destroys the spaces, the
// collider and the geoms. Further calls do nothing.
func (c *CollisionCollection) Destroy() {
	if c.root != nil {
		for _, shape := range c.children.shapes {
			if shape.geom != nil && shape.geom.Space() == c.root {
				c.root.Remove(shape.geom)
			}
		}
		for _, space := range c.children.spaces {
			space.SetParentSpace(nil)
		}
		c.root.Destroy()
		c.root = nil
	}
	if c.collider != nil {
		c.collider.Destroy()
		c.collider = nil
	}
	c.children.destroyShapes()
	c.contacts = nil
	c.world = nil
}
