package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// CollidableField identifies a field of a CollidableShape.
type CollidableField int

const (
	CollidableTranslation CollidableField = iota
	CollidableRotation
	CollidableEnabled
)

// CollidableShape wraps one engine geom. It can be registered in a collision
// space and attached to a rigid body, whose pose it then follows.
type CollidableShape struct {
	node[CollidableField]

	geom  engine.Geom
	shape engine.Shape
	body  *RigidBody

	translation mgl64.Vec3
	rotation    Rotation
	enabled     bool
}

// NewCollidableShape creates the engine geom for shape.
func NewCollidableShape(eng engine.Engine, shape engine.Shape) (*CollidableShape, error) {
	geom, err := eng.NewGeom(shape)
	if err != nil {
		return nil, fieldError("CollidableShape", "shape", shape, err)
	}

	return &CollidableShape{
		node:     newNode[CollidableField](),
		geom:     geom,
		shape:    shape,
		rotation: DefaultRotation,
		enabled:  true,
	}, nil
}

// Geom returns the engine geom, or nil once the shape is destroyed.
func (c *CollidableShape) Geom() engine.Geom {
	return c.geom
}

func (c *CollidableShape) Shape() engine.Shape {
	return c.shape
}

// Body returns the rigid body the shape is attached to, if any.
func (c *CollidableShape) Body() *RigidBody {
	return c.body
}

func (c *CollidableShape) Translation() mgl64.Vec3 {
	return c.translation
}

func (c *CollidableShape) SetTranslation(t mgl64.Vec3) {
	c.translation = t
	if c.ready && c.geom != nil {
		c.geom.SetPosition(t)
	}
	c.changed(CollidableTranslation)
}

func (c *CollidableShape) Rotation() Rotation {
	return c.rotation
}

func (c *CollidableShape) SetRotation(r Rotation) {
	c.rotation = r
	if c.ready && c.geom != nil {
		c.geom.SetQuaternion(r.Quat())
	}
	c.changed(CollidableRotation)
}

func (c *CollidableShape) IsEnabled() bool {
	return c.enabled
}

func (c *CollidableShape) SetEnabled(enabled bool) {
	if enabled == c.enabled {
		return
	}
	c.enabled = enabled
	if c.ready && c.geom != nil {
		c.pushEnabled()
	}
	c.changed(CollidableEnabled)
}

func (c *CollidableShape) pushEnabled() {
	if c.enabled {
		c.geom.Enable()
	} else {
		c.geom.Disable()
	}
}

// SetupFinished places the geom and applies the enabled flag.
func (c *CollidableShape) SetupFinished() {
	if !c.finishSetup() || c.geom == nil {
		return
	}
	if c.body == nil {
		c.geom.SetPosition(c.translation)
		c.geom.SetQuaternion(c.rotation.Quat())
	}
	c.pushEnabled()
}

// UpdateFromEngine copies the geom pose back into the fields.
func (c *CollidableShape) UpdateFromEngine() {
	if !c.enabled || c.geom == nil {
		return
	}
	c.translation = c.geom.Position()
	c.rotation = rotationFromQuat(c.geom.Quaternion())
	c.changed(CollidableTranslation)
	c.changed(CollidableRotation)
}

// Destroy releases the engine geom. Further calls do nothing.
func (c *CollidableShape) Destroy() {
	if c.geom == nil {
		return
	}
	c.geom.Destroy()
	c.geom = nil
	c.body = nil
}
