package rigidscene

import (
	"math"
	"testing"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

const frame = 1.0 / 60

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func vecAlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return a.ApproxFuncEqual(b, func(x, y float64) bool { return almostEqual(x, y, tolerance) })
}

// template stands for a node reached through one level of indirection
type template struct {
	node any
}

func (t template) Instance() any {
	return t.node
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// sphereBody builds a body carrying one sphere collidable.
func sphereBody(t *testing.T, eng engine.Engine, position mgl64.Vec3, radius float64) (*RigidBody, *CollidableShape) {
	t.Helper()
	shape, err := NewCollidableShape(eng, engine.Sphere{Radius: radius})
	must(t, err)
	b := NewRigidBody()
	b.SetPosition(position)
	must(t, b.SetGeometry([]any{shape}))
	return b, shape
}

// newScene builds a running collection with one unit sphere body per
// position, every sphere registered in the root space of its collision
// collection.
func newScene(t *testing.T, eng engine.Engine, positions ...mgl64.Vec3) (*RigidBodyCollection, *CollisionCollection, []*RigidBody) {
	t.Helper()
	c := NewRigidBodyCollection(eng)
	cc := NewCollisionCollection(eng)

	var bodies []*RigidBody
	var bodyNodes, shapeNodes []any
	for _, p := range positions {
		b, shape := sphereBody(t, eng, p, 1)
		bodies = append(bodies, b)
		bodyNodes = append(bodyNodes, b)
		shapeNodes = append(shapeNodes, shape)
	}
	must(t, c.SetBodies(bodyNodes))
	must(t, cc.SetCollidables(shapeNodes))
	must(t, c.SetCollider(cc))
	c.SetupFinished()
	return c, cc, bodies
}
