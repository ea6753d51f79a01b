package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// collidableSet keeps the children of a space in insertion order, classified
// once into geometry and space children.
type collidableSet struct {
	all    []any
	shapes []*CollidableShape
	spaces []*CollisionSpace
}

func (s *collidableSet) add(n any) error {
	for {
		t, ok := n.(Template)
		if !ok {
			break
		}
		n = t.Instance()
	}

	switch v := n.(type) {
	case nil:
		return nil
	case *CollidableShape:
		s.all = append(s.all, v)
		s.shapes = append(s.shapes, v)
	case *CollisionSpace:
		s.all = append(s.all, v)
		s.spaces = append(s.spaces, v)
	default:
		return ErrInvalidNode
	}
	return nil
}

func (s *collidableSet) clear() {
	s.all = nil
	s.shapes = nil
	s.spaces = nil
}

// replace swaps the content for nodes, leaving it untouched on error.
func (s *collidableSet) replace(nodes []any) error {
	var next collidableSet
	for _, n := range nodes {
		if err := next.add(n); err != nil {
			return err
		}
	}
	*s = next
	return nil
}

// find walks the tree for the shape owning geom.
func (s *collidableSet) find(geom engine.Geom) *CollidableShape {
	if geom == nil {
		return nil
	}
	for _, shape := range s.shapes {
		if shape.geom == geom {
			return shape
		}
	}
	for _, space := range s.spaces {
		if shape := space.children.find(geom); shape != nil {
			return shape
		}
	}
	return nil
}

// destroyShapes destroys every geom in the tree.
func (s *collidableSet) destroyShapes() {
	for _, shape := range s.shapes {
		shape.Destroy()
	}
	for _, space := range s.spaces {
		space.children.destroyShapes()
	}
}

func (s *collidableSet) updateFromEngine() {
	for _, shape := range s.shapes {
		shape.UpdateFromEngine()
	}
	for _, space := range s.spaces {
		space.children.updateFromEngine()
	}
}

// CollisionSpaceField identifies a field of a CollisionSpace.
type CollisionSpaceField int

const (
	SpaceCollidables CollisionSpaceField = iota
	SpaceEnabled
	SpaceUseGeometry
)

// CollisionSpace groups collidables and nested spaces. Its engine space is a
// quad tree when a bounding box was declared, a hash space otherwise.
type CollisionSpace struct {
	node[CollisionSpaceField]

	engine   engine.Engine
	space    engine.Space
	children collidableSet

	enabled     bool
	useGeometry bool
	bboxCenter  mgl64.Vec3
	bboxSize    mgl64.Vec3
}

// NewCollisionSpace creates an unbounded space. The engine space is created
// once a parent is set.
func NewCollisionSpace(eng engine.Engine) *CollisionSpace {
	return &CollisionSpace{
		node:     newNode[CollisionSpaceField](),
		engine:   eng,
		enabled:  true,
		bboxSize: mgl64.Vec3{-1, -1, -1},
	}
}

// EngineSpace returns the engine space, or nil while detached.
func (s *CollisionSpace) EngineSpace() engine.Space {
	return s.space
}

// Collidables returns the children in insertion order.
func (s *CollisionSpace) Collidables() []any {
	return s.children.all
}

// AddCollidable appends a CollidableShape or a CollisionSpace, resolving
// templates first.
func (s *CollisionSpace) AddCollidable(n any) error {
	if err := s.children.add(n); err != nil {
		return fieldError("CollisionSpace", "collidables", n, err)
	}
	if s.space != nil {
		s.register()
	}
	s.changed(SpaceCollidables)
	return nil
}

// SetCollidables replaces every child.
func (s *CollisionSpace) SetCollidables(nodes []any) error {
	old := s.children
	if err := s.children.replace(nodes); err != nil {
		return fieldError("CollisionSpace", "collidables", nodes, err)
	}
	if s.space != nil {
		for _, shape := range old.shapes {
			if shape.geom != nil {
				s.space.Remove(shape.geom)
			}
		}
		for _, child := range old.spaces {
			child.SetParentSpace(nil)
		}
		s.register()
	}
	s.changed(SpaceCollidables)
	return nil
}

// ClearCollidables removes every child.
func (s *CollisionSpace) ClearCollidables() {
	_ = s.SetCollidables(nil)
}

func (s *CollisionSpace) IsEnabled() bool {
	return s.enabled
}

func (s *CollisionSpace) SetEnabled(enabled bool) {
	s.enabled = enabled
	s.changed(SpaceEnabled)
}

func (s *CollisionSpace) UseGeometry() bool {
	return s.useGeometry
}

func (s *CollisionSpace) SetUseGeometry(use bool) {
	s.useGeometry = use
	s.changed(SpaceUseGeometry)
}

// SetBBox declares the bounds of the space. A size with a component of -1
// leaves the space unbounded. Only allowed during setup.
func (s *CollisionSpace) SetBBox(center, size mgl64.Vec3) error {
	if s.ready {
		return fieldError("CollisionSpace", "bboxSize", size, ErrInitializeOnly)
	}
	for _, v := range size {
		if v < 0 && v != -1 {
			return fieldError("CollisionSpace", "bboxSize", size, ErrOutOfRange)
		}
	}
	s.bboxCenter = center
	s.bboxSize = size
	return nil
}

func (s *CollisionSpace) bounded() bool {
	return s.bboxSize.X() != -1 && s.bboxSize.Y() != -1 && s.bboxSize.Z() != -1
}

// SetParentSpace creates the engine space as a child of parent, destroying
// the previous one first. A nil parent tears the space down.
func (s *CollisionSpace) SetParentSpace(parent engine.Space) {
	s.teardown()
	if parent == nil {
		return
	}

	if s.bounded() {
		s.space = s.engine.NewQuadTreeSpace(parent, s.bboxCenter, s.bboxSize.Mul(0.5), engine.QuadTreeDepth)
	} else {
		s.space = s.engine.NewHashSpace(parent)
	}
	s.space.SetCleanup(false)
	s.register()
}

// register adds the geoms not yet in the engine space and attaches the
// child spaces still waiting for a parent. Children arriving once the space
// is past setup finish their own setup here.
func (s *CollisionSpace) register() {
	for _, shape := range s.children.shapes {
		if shape.geom != nil && shape.geom.Space() != s.space {
			s.space.Add(shape.geom)
		}
		if s.ready {
			shape.SetupFinished()
		}
	}
	for _, child := range s.children.spaces {
		if child.space == nil || child.space.Parent() != s.space {
			child.SetParentSpace(s.space)
		}
		if s.ready {
			child.SetupFinished()
		}
	}
}

// teardown detaches the geoms, then the child spaces, then destroys the
// engine space.
func (s *CollisionSpace) teardown() {
	if s.space == nil {
		return
	}
	for _, shape := range s.children.shapes {
		if shape.geom != nil && shape.geom.Space() == s.space {
			s.space.Remove(shape.geom)
		}
	}
	for _, child := range s.children.spaces {
		child.teardown()
	}
	s.space.Destroy()
	s.space = nil
}

// SetupFinished ends the setup of the space and its children.
func (s *CollisionSpace) SetupFinished() {
	if !s.finishSetup() {
		return
	}
	for _, shape := range s.children.shapes {
		shape.SetupFinished()
	}
	for _, child := range s.children.spaces {
		child.SetupFinished()
	}
}

// engineSpaces lists the engine spaces of the enabled subtree, parents first.
func (s *CollisionSpace) engineSpaces(out []engine.Space) []engine.Space {
	if !s.enabled || s.space == nil {
		return out
	}
	out = append(out, s.space)
	for _, child := range s.children.spaces {
		out = child.engineSpaces(out)
	}
	return out
}
