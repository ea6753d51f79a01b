package scenario

import (
	"math"

	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// buildDrop registers the falling spheres in a bounded space nested in the
// root space, the box and the ground directly in the root space.
func buildDrop(eng engine.Engine) (*Scene, error) {
	floor, err := ground(eng)
	if err != nil {
		return nil, err
	}

	var bodies []*rigidscene.RigidBody
	var spheres []any
	for i := range 3 {
		b, shape, err := body(eng, engine.Sphere{Radius: 0.5}, mgl64.Vec3{float64(i)*1.5 - 1.5, 2 + float64(i), 0})
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
		spheres = append(spheres, shape)
	}

	space := rigidscene.NewCollisionSpace(eng)
	if err := space.SetBBox(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{20, 20, 20}); err != nil {
		return nil, err
	}
	if err := space.SetCollidables(spheres); err != nil {
		return nil, err
	}

	box, boxShape, err := body(eng, engine.Box{Size: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{3, 4, 0})
	if err != nil {
		return nil, err
	}
	box.SetOrientation(rigidscene.Rotation{Axis: mgl64.Vec3{0, 0, 1}, Angle: math.Pi / 6})
	bodies = append(bodies, box)

	s, err := collisionScene(eng, bodies, []any{floor, space, boxShape})
	if err != nil {
		return nil, err
	}
	s.Probe, s.ProbeName = height(bodies[2]), "height"
	return s, nil
}

func buildStack(eng engine.Engine) (*Scene, error) {
	floor, err := ground(eng)
	if err != nil {
		return nil, err
	}

	var bodies []*rigidscene.RigidBody
	collidables := []any{floor}
	for i := range 3 {
		// chaque boîte légèrement décalée
		position := mgl64.Vec3{0.1 * float64(i), 0.5 + 1.05*float64(i), 0}
		b, shape, err := body(eng, engine.Box{Size: mgl64.Vec3{1, 1, 1}}, position)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
		collidables = append(collidables, shape)
	}

	s, err := collisionScene(eng, bodies, collidables)
	if err != nil {
		return nil, err
	}
	s.Probe, s.ProbeName = height(bodies[2]), "height"
	return s, nil
}

// buildPendulum hangs the first link from the static environment.
func buildPendulum(eng engine.Engine) (*Scene, error) {
	pivot := mgl64.Vec3{0, 5, 0}
	link := engine.Sphere{Radius: 0.1}

	upper, _, err := body(nil, link, pivot.Add(mgl64.Vec3{1, 0, 0}))
	if err != nil {
		return nil, err
	}
	lower, _, err := body(nil, link, pivot.Add(mgl64.Vec3{2, 0, 0}))
	if err != nil {
		return nil, err
	}

	top := rigidscene.NewSingleAxisHingeJoint()
	top.SetAnchorPoint(pivot)
	top.SetAxis(mgl64.Vec3{0, 0, 1})
	middle := rigidscene.NewSingleAxisHingeJoint()
	middle.SetAnchorPoint(upper.Position())
	middle.SetAxis(mgl64.Vec3{0, 0, 1})

	for _, err := range []error{
		top.SetBody1(upper),
		middle.SetBody1(upper),
		middle.SetBody2(lower),
		top.SetMustOutput([]string{"angle", "angleRate"}),
		middle.SetMustOutput([]string{"angle"}),
	} {
		if err != nil {
			return nil, err
		}
	}

	c := rigidscene.NewRigidBodyCollection(eng)
	if err := c.SetBodies([]any{upper, lower}); err != nil {
		return nil, err
	}
	if err := c.SetJoints([]any{top, middle}); err != nil {
		return nil, err
	}

	return &Scene{
		Collection: c,
		Joints:     []rigidscene.Joint{top, middle},
		Bodies:     []*rigidscene.RigidBody{upper, lower},
		Probe:      top.Angle,
		ProbeName:  "angle",
	}, nil
}

// buildCradle launches the leftmost ball into the row.
func buildCradle(eng engine.Engine) (*Scene, error) {
	const (
		balls  = 4
		radius = 0.5
		length = 3.0
	)

	var bodies []*rigidscene.RigidBody
	var collidables []any
	var joints []rigidscene.Joint
	var jointNodes []any
	for i := range balls {
		x := float64(i) * 2 * radius
		b, shape, err := body(eng, engine.Sphere{Radius: radius}, mgl64.Vec3{x, 1, 0})
		if err != nil {
			return nil, err
		}
		j := rigidscene.NewBallJoint()
		j.SetAnchorPoint(mgl64.Vec3{x, 1 + length, 0})
		if err := j.SetBody1(b); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
		collidables = append(collidables, shape)
		joints = append(joints, j)
		jointNodes = append(jointNodes, j)
	}
	bodies[0].SetLinearVelocity(mgl64.Vec3{3, 0, 0})

	s, err := collisionScene(eng, bodies, collidables)
	if err != nil {
		return nil, err
	}
	if err := s.Collection.SetJoints(jointNodes); err != nil {
		return nil, err
	}
	if err := s.Collision.SetBounce(0.9); err != nil {
		return nil, err
	}
	s.Joints = joints

	last := bodies[len(bodies)-1]
	s.Probe, s.ProbeName = func() float64 { return last.Position().X() }, "x"
	return s, nil
}

func buildSlider(eng engine.Engine) (*Scene, error) {
	cart, _, err := body(nil, engine.Box{Size: mgl64.Vec3{1, 0.5, 0.5}}, mgl64.Vec3{0, 1, 0})
	if err != nil {
		return nil, err
	}
	cart.SetUseGlobalGravity(false)

	rail := rigidscene.NewSliderJoint()
	rail.SetAxis(mgl64.Vec3{1, 0, 0})
	rail.SetDesiredVelocity(1)
	for _, err := range []error{
		rail.SetBody1(cart),
		rail.SetMaxSeparation(4),
		rail.SetMaxForce(10),
		rail.SetMustOutput([]string{"ALL"}),
	} {
		if err != nil {
			return nil, err
		}
	}

	c := rigidscene.NewRigidBodyCollection(eng)
	if err := c.SetBodies([]any{cart}); err != nil {
		return nil, err
	}
	if err := c.SetJoints([]any{rail}); err != nil {
		return nil, err
	}

	return &Scene{
		Collection: c,
		Joints:     []rigidscene.Joint{rail},
		Bodies:     []*rigidscene.RigidBody{cart},
		Probe:      rail.Separation,
		ProbeName:  "separation",
	}, nil
}
