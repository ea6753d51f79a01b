package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// Contact is a view onto one slot of a collision collection's contact
// buffer. It is valid until the next detection pass of that collection;
// afterwards getters return the zero value and setters ErrStaleContact.
type Contact struct {
	owner      *CollisionCollection
	buffer     engine.ContactBuffer
	generation uint64
	index      int
}

// Index returns the slot of the contact in its buffer.
func (c *Contact) Index() int {
	return c.index
}

// Valid reports whether the contact still refers to the current pass.
func (c *Contact) Valid() bool {
	return c.buffer != nil && c.buffer.Generation() == c.generation && c.index < c.buffer.Len()
}

func (c *Contact) load() engine.Contact {
	if !c.Valid() {
		return engine.Contact{}
	}
	return c.buffer.Contact(c.index)
}

func (c *Contact) store(field string, value any, edit func(*engine.Contact)) error {
	if !c.Valid() {
		return fieldError("Contact", field, value, ErrStaleContact)
	}
	contact := c.buffer.Contact(c.index)
	edit(&contact)
	c.buffer.SetContact(c.index, contact)
	return nil
}

func (c *Contact) Position() mgl64.Vec3 {
	return c.load().Geom.Position
}

func (c *Contact) SetPosition(p mgl64.Vec3) error {
	return c.store("position", p, func(ct *engine.Contact) { ct.Geom.Position = p })
}

// Normal points from the second geometry toward the first.
func (c *Contact) Normal() mgl64.Vec3 {
	return c.load().Geom.Normal
}

func (c *Contact) SetNormal(n mgl64.Vec3) error {
	return c.store("contactNormal", n, func(ct *engine.Contact) { ct.Geom.Normal = n })
}

func (c *Contact) Depth() float64 {
	return c.load().Geom.Depth
}

func (c *Contact) SetDepth(d float64) error {
	return c.store("depth", d, func(ct *engine.Contact) { ct.Geom.Depth = d })
}

// FrictionCoefficients returns the primary and secondary friction.
func (c *Contact) FrictionCoefficients() [2]float64 {
	s := c.load().Surface
	return [2]float64{s.Mu, s.Mu2}
}

func (c *Contact) SetFrictionCoefficients(mu [2]float64) error {
	return c.store("frictionCoefficients", mu, func(ct *engine.Contact) {
		ct.Surface.Mu, ct.Surface.Mu2 = mu[0], mu[1]
	})
}

func (c *Contact) FrictionDirection() mgl64.Vec3 {
	return c.load().FrictionDir
}

func (c *Contact) SetFrictionDirection(dir mgl64.Vec3) error {
	return c.store("frictionDirection", dir, func(ct *engine.Contact) { ct.FrictionDir = dir })
}

func (c *Contact) SlipCoefficients() [2]float64 {
	s := c.load().Surface
	return [2]float64{s.Slip1, s.Slip2}
}

func (c *Contact) SetSlipCoefficients(slip [2]float64) error {
	return c.store("slipCoefficients", slip, func(ct *engine.Contact) {
		ct.Surface.Slip1, ct.Surface.Slip2 = slip[0], slip[1]
	})
}

func (c *Contact) SurfaceSpeed() [2]float64 {
	s := c.load().Surface
	return [2]float64{s.Motion1, s.Motion2}
}

func (c *Contact) SetSurfaceSpeed(speed [2]float64) error {
	return c.store("surfaceSpeed", speed, func(ct *engine.Contact) {
		ct.Surface.Motion1, ct.Surface.Motion2 = speed[0], speed[1]
	})
}

func (c *Contact) Bounce() float64 {
	return c.load().Surface.Bounce
}

func (c *Contact) SetBounce(bounce float64) error {
	if err := checkNonNegative("Contact", "bounce", bounce); err != nil {
		return err
	}
	return c.store("bounce", bounce, func(ct *engine.Contact) { ct.Surface.Bounce = bounce })
}

func (c *Contact) MinBounceSpeed() float64 {
	return c.load().Surface.BounceVel
}

func (c *Contact) SetMinBounceSpeed(speed float64) error {
	if err := checkNonNegative("Contact", "minBounceSpeed", speed); err != nil {
		return err
	}
	return c.store("minBounceSpeed", speed, func(ct *engine.Contact) { ct.Surface.BounceVel = speed })
}

func (c *Contact) SoftnessErrorCorrection() float64 {
	return c.load().Surface.SoftERP
}

func (c *Contact) SetSoftnessErrorCorrection(erp float64) error {
	if err := checkNonNegative("Contact", "softnessErrorCorrection", erp); err != nil {
		return err
	}
	return c.store("softnessErrorCorrection", erp, func(ct *engine.Contact) { ct.Surface.SoftERP = erp })
}

func (c *Contact) SoftnessConstantForceMix() float64 {
	return c.load().Surface.SoftCFM
}

func (c *Contact) SetSoftnessConstantForceMix(cfm float64) error {
	if err := checkNonNegative("Contact", "softnessConstantForceMix", cfm); err != nil {
		return err
	}
	return c.store("softnessConstantForceMix", cfm, func(ct *engine.Contact) { ct.Surface.SoftCFM = cfm })
}

// Mode returns the surface mode the solver will use for this contact.
func (c *Contact) Mode() engine.SurfaceMode {
	return c.load().Surface.Mode
}

// SetAppliedParameters replaces the surface mode of this contact only.
// Unknown names are ignored.
func (c *Contact) SetAppliedParameters(names []string) error {
	mode := surfaceMode(names)
	return c.store("appliedParameters", names, func(ct *engine.Contact) { ct.Surface.Mode = mode })
}

// Geometry1 returns the first colliding shape when the owning collection
// knows it.
func (c *Contact) Geometry1() *CollidableShape {
	return c.owner.shapeFor(c.load().Geom.Geom1)
}

func (c *Contact) Geometry2() *CollidableShape {
	return c.owner.shapeFor(c.load().Geom.Geom2)
}

// Body1 returns the rigid body of the first geometry, nil for static geometry.
func (c *Contact) Body1() *RigidBody {
	if shape := c.Geometry1(); shape != nil {
		return shape.body
	}
	return nil
}

func (c *Contact) Body2() *RigidBody {
	if shape := c.Geometry2(); shape != nil {
		return shape.body
	}
	return nil
}
