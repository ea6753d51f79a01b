package feather

import (
	"fmt"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// Geom is one collision shape, placed by its body when it has one
type Geom struct {
	id        uint64
	shape     engine.Shape
	collision actor.Shape
	transform actor.Transform
	body      *Body
	space     *Space
	enabled   bool
	destroyed bool
}

func newGeom(id uint64, shape engine.Shape, collision actor.Shape) *Geom {
	return &Geom{
		id:        id,
		shape:     shape,
		collision: collision,
		transform: actor.NewTransform(),
		enabled:   true,
	}
}

// toActorShape converts a shape descriptor into its narrow phase shape
func toActorShape(shape engine.Shape) (actor.Shape, error) {
	switch s := shape.(type) {
	case engine.Box:
		if s.Size.X() <= 0 || s.Size.Y() <= 0 || s.Size.Z() <= 0 {
			return nil, fmt.Errorf("%w: box size %v", ErrUnsupportedShape, s.Size)
		}
		return &actor.Box{HalfExtents: s.Size.Mul(0.5)}, nil
	case engine.Sphere:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere radius %v", ErrUnsupportedShape, s.Radius)
		}
		return &actor.Sphere{Radius: s.Radius}, nil
	case engine.Plane:
		length := s.Normal.Len()
		if length == 0 {
			return nil, fmt.Errorf("%w: plane with a zero normal", ErrUnsupportedShape)
		}
		return &actor.Plane{Normal: s.Normal.Mul(1 / length), Distance: s.Distance / length}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, shape)
}

func (g *Geom) ID() uint64 {
	return g.id
}

func (g *Geom) Shape() engine.Shape {
	return g.shape
}

func (g *Geom) Body() engine.Body {
	if g.body == nil {
		return nil
	}
	return g.body
}

func (g *Geom) SetPosition(p mgl64.Vec3) {
	if g.body != nil {
		g.body.SetPosition(p)
		return
	}
	g.transform.Position = p
}

func (g *Geom) Position() mgl64.Vec3 {
	return g.pose().Position
}

func (g *Geom) SetQuaternion(q mgl64.Quat) {
	if g.body != nil {
		g.body.SetQuaternion(q)
		return
	}
	g.transform.Rotation = q.Normalize()
}

func (g *Geom) Quaternion() mgl64.Quat {
	return g.pose().Rotation
}

func (g *Geom) Enable() {
	g.enabled = true
}

func (g *Geom) Disable() {
	g.enabled = false
}

func (g *Geom) IsEnabled() bool {
	return g.enabled
}

func (g *Geom) Space() engine.Space {
	if g.space == nil {
		return nil
	}
	return g.space
}

// Destroy unregisters the geom from its space and body
func (g *Geom) Destroy() {
	if g.destroyed {
		return
	}
	if g.space != nil {
		g.space.remove(g)
	}
	if g.body != nil {
		g.body.removeGeom(g)
	}
	g.destroyed = true
}

func (g *Geom) pose() actor.Transform {
	if g.body != nil {
		return g.body.rb.Transform
	}
	return g.transform
}

func (g *Geom) collidable() actor.Collidable {
	return actor.Collidable{Shape: g.collision, Transform: g.pose()}
}

func (g *Geom) aabb() actor.AABB {
	return g.collision.ComputeAABB(g.pose())
}

// dynamic reports whether the solver can move this geom
func (g *Geom) dynamic() bool {
	return g.body != nil && g.body.rb.IsDynamic()
}

func (g *Geom) rigidBody() *actor.RigidBody {
	if g.body == nil {
		return nil
	}
	return g.body.rb
}
