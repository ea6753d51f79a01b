// Package scenario builds the demonstration scenes of the rigidscene command.
// Scenes are assembled in code from scene nodes; they leave setup open so
// that configuration can still be applied before Start.
package scenario

import (
	"errors"
	"fmt"
	"slices"

	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownScenario = errors.New("scenario: unknown scenario")

// Scene is a ready to run set of nodes.
type Scene struct {
	Name       string
	Collection *rigidscene.RigidBodyCollection
	// Collision and Sensor are nil for scenes without collision detection.
	Collision *rigidscene.CollisionCollection
	Sensor    *rigidscene.CollisionSensor
	Joints    []rigidscene.Joint
	Bodies    []*rigidscene.RigidBody

	// Probe samples the quantity plotted for the scene, named by ProbeName.
	Probe     func() float64
	ProbeName string
}

// Nodes lists what a manager must drive for the scene.
func (s *Scene) Nodes() []any {
	nodes := []any{s.Collection}
	if s.Collision != nil {
		nodes = append(nodes, s.Collision)
	}
	if s.Sensor != nil {
		nodes = append(nodes, s.Sensor)
	}
	for _, j := range s.Joints {
		nodes = append(nodes, j)
	}
	return nodes
}

// Start ends the setup of every node.
func (s *Scene) Start() {
	s.Collection.SetupFinished()
	if s.Sensor != nil {
		s.Sensor.SetupFinished()
	}
}

// Register adds the nodes of the scene to m.
func (s *Scene) Register(m *rigidscene.Manager) error {
	for _, n := range s.Nodes() {
		if err := m.Add(n); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

type builder func(eng engine.Engine) (*Scene, error)

type entry struct {
	description string
	build       builder
}

var scenarios = map[string]entry{
	"drop":     {"spheres and a box falling on the ground", buildDrop},
	"stack":    {"three boxes stacked on the ground", buildStack},
	"pendulum": {"double pendulum made of two hinges", buildPendulum},
	"cradle":   {"newton's cradle hanging from ball joints", buildCradle},
	"slider":   {"a box driven along a rail by a slider motor", buildSlider},
}

// Names returns the scenario names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func Describe(name string) string {
	return scenarios[name].description
}

// Build assembles the named scenario on eng.
func Build(name string, eng engine.Engine) (*Scene, error) {
	e, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScenario, name, Names())
	}
	s, err := e.build(eng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s.Name = name
	return s, nil
}

// ============================================================================
// Helpers
// ============================================================================

// body creates a body at position whose mass follows shape, carrying one
// collidable of the same shape when eng is not nil.
func body(eng engine.Engine, shape engine.Shape, position mgl64.Vec3) (*rigidscene.RigidBody, *rigidscene.CollidableShape, error) {
	b := rigidscene.NewRigidBody()
	b.SetPosition(position)
	if err := b.SetMassDensityModel(shape); err != nil {
		return nil, nil, err
	}
	if eng == nil {
		return b, nil, nil
	}

	collidable, err := rigidscene.NewCollidableShape(eng, shape)
	if err != nil {
		return nil, nil, err
	}
	if err := b.SetGeometry([]any{collidable}); err != nil {
		return nil, nil, err
	}
	return b, collidable, nil
}

func ground(eng engine.Engine) (*rigidscene.CollidableShape, error) {
	return rigidscene.NewCollidableShape(eng, engine.Plane{Normal: mgl64.Vec3{0, 1, 0}})
}

// collisionScene wires bodies and collidables into a collection with a
// collision collection and a sensor watching it.
func collisionScene(eng engine.Engine, bodies []*rigidscene.RigidBody, collidables []any) (*Scene, error) {
	cc := rigidscene.NewCollisionCollection(eng)
	if err := cc.SetCollidables(collidables); err != nil {
		return nil, err
	}

	c := rigidscene.NewRigidBodyCollection(eng)
	nodes := make([]any, len(bodies))
	for i, b := range bodies {
		nodes[i] = b
	}
	if err := c.SetBodies(nodes); err != nil {
		return nil, err
	}
	if err := c.SetCollider(cc); err != nil {
		return nil, err
	}

	sensor := rigidscene.NewCollisionSensor()
	if err := sensor.SetCollider(cc); err != nil {
		return nil, err
	}

	return &Scene{Collection: c, Collision: cc, Sensor: sensor, Bodies: bodies}, nil
}

func height(b *rigidscene.RigidBody) func() float64 {
	return func() float64 { return b.Position().Y() }
}
