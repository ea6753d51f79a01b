package rigidscene

import (
	"errors"
	"testing"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/akmonengine/rigidscene/enginetest"
	"github.com/akmonengine/rigidscene/feather"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ============================================================================
// Stepping
// ============================================================================

func TestRigidBodyCollection_FreeFall(t *testing.T) {
	tests := []struct {
		name           string
		preferAccuracy bool
	}{
		{"quick step", false},
		{"accurate step", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{0, 100, 0})
			defer c.Destroy()
			c.SetPreferAccuracy(tt.preferAccuracy)
			must(t, c.SetTimestep(frame))

			for range 60 {
				c.EvaluateModel()
				c.UpdatePostSimulation()
			}

			v := bodies[0].LinearVelocity()
			if !almostEqual(v.Y(), -9.8, 1e-6) {
				t.Errorf("vy = %v after 1 s, want -9.8", v.Y())
			}
			if v.X() != 0 || v.Z() != 0 {
				t.Errorf("velocity = %v, free fall should stay vertical", v)
			}
			if bodies[0].Position().Y() >= 100-4.9 {
				t.Errorf("y = %v, the body should have fallen about 4.9 m", bodies[0].Position().Y())
			}
		})
	}
}

func TestRigidBodyCollection_GravityPushedLive(t *testing.T) {
	c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{})
	defer c.Destroy()
	must(t, c.SetTimestep(frame))

	c.SetGravity(mgl64.Vec3{2, 0, 0})
	if c.World().Gravity() != (mgl64.Vec3{2, 0, 0}) {
		t.Fatalf("world gravity = %v", c.World().Gravity())
	}

	for range 30 {
		c.EvaluateModel()
	}
	c.UpdatePostSimulation()

	if !vecAlmostEqual(bodies[0].LinearVelocity(), mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("velocity = %v, want (1,0,0)", bodies[0].LinearVelocity())
	}
}

// both solvers integrate gravity exactly on the velocity
func TestRigidBodyCollection_SolversAgreeOnVelocity(t *testing.T) {
	velocities := func(accurate bool) []mgl64.Vec3 {
		c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{0, 100, 0})
		defer c.Destroy()
		must(t, c.SetTimestep(frame))
		c.SetPreferAccuracy(accurate)

		var out []mgl64.Vec3
		for range 30 {
			c.EvaluateModel()
			c.UpdatePostSimulation()
			out = append(out, bodies[0].LinearVelocity())
		}
		return out
	}

	if diff := cmp.Diff(velocities(false), velocities(true), cmpopts.EquateApprox(0, 1e-8)); diff != "" {
		t.Errorf("velocities differ (-quick +accurate):\n%s", diff)
	}
}

func TestRigidBodyCollection_DisabledDoesNotStep(t *testing.T) {
	c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{0, 10, 0})
	defer c.Destroy()
	c.SetEnabled(false)

	c.EvaluateModel()
	c.UpdatePostSimulation()

	if bodies[0].Position() != (mgl64.Vec3{0, 10, 0}) {
		t.Errorf("Position = %v, a disabled collection must not step", bodies[0].Position())
	}
}

func TestRigidBodyCollection_EvaluateBeforeSetupPanics(t *testing.T) {
	c := NewRigidBodyCollection(feather.New())
	defer func() {
		if recover() == nil {
			t.Error("EvaluateModel before SetupFinished should panic")
		}
	}()
	c.EvaluateModel()
}

func TestRigidBodyCollection_BodyGravityMode(t *testing.T) {
	c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
	defer c.Destroy()
	bodies[1].SetUseGlobalGravity(false)

	c.EvaluateModel()
	c.UpdatePostSimulation()

	if bodies[0].LinearVelocity().Y() >= 0 {
		t.Error("the first body should fall")
	}
	if bodies[1].LinearVelocity() != (mgl64.Vec3{}) {
		t.Errorf("velocity = %v, the second body ignores gravity", bodies[1].LinearVelocity())
	}
}

// ============================================================================
// Fields
// ============================================================================

func TestRigidBodyCollection_Defaults(t *testing.T) {
	c := NewRigidBodyCollection(feather.New())

	got := []any{c.Gravity(), c.Iterations(), c.ErrorCorrection(), c.ConstantForceMix(),
		c.MaxCorrectionSpeed(), c.Timestep(), c.IsEnabled(), c.PreferAccuracy(), c.AutoDisable()}
	want := []any{mgl64.Vec3{0, -9.8, 0}, 10, 0.8, 0.0001, -1.0, DefaultTimestep, true, false, false}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
}

func TestRigidBodyCollection_Validation(t *testing.T) {
	c := NewRigidBodyCollection(feather.New())

	tests := []struct {
		name    string
		set     func() error
		wantErr error
	}{
		{"negative iterations", func() error { return c.SetIterations(-1) }, ErrNegative},
		{"negative erp", func() error { return c.SetErrorCorrection(-0.2) }, ErrNegative},
		{"negative cfm", func() error { return c.SetConstantForceMix(-1) }, ErrNegative},
		{"correction speed", func() error { return c.SetMaxCorrectionSpeed(-0.5) }, ErrOutOfRange},
		{"surface thickness", func() error { return c.SetContactSurfaceThickness(-0.01) }, ErrNegative},
		{"linear speed", func() error { return c.SetDisableLinearSpeed(-1) }, ErrNegative},
		{"angular speed", func() error { return c.SetDisableAngularSpeed(-1) }, ErrNegative},
		{"disable time", func() error { return c.SetDisableTime(-1) }, ErrNegative},
		{"zero timestep", func() error { return c.SetTimestep(0) }, ErrNonPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	must(t, c.SetMaxCorrectionSpeed(-1))
	must(t, c.SetMaxCorrectionSpeed(0))
	if c.Iterations() != 10 || c.Timestep() != DefaultTimestep {
		t.Error("rejected values should leave the defaults")
	}
}

func TestRigidBodyCollection_SetBodies(t *testing.T) {
	c := NewRigidBodyCollection(feather.New())
	b := NewRigidBody()

	must(t, c.SetBodies([]any{template{b}, nil}))
	if len(c.Bodies()) != 1 || c.Bodies()[0] != b {
		t.Fatalf("Bodies = %v, want the resolved body only", c.Bodies())
	}

	err := c.SetBodies([]any{NewRigidBody(), NewBallJoint()})
	if !errors.Is(err, ErrInvalidNode) {
		t.Fatalf("error = %v, want ErrInvalidNode", err)
	}
	if len(c.Bodies()) != 1 || c.Bodies()[0] != b {
		t.Error("a rejected assignment must not change the bodies")
	}
}

func TestRigidBodyCollection_SetBodiesWhileRunning(t *testing.T) {
	c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{0, 0, 0})
	defer c.Destroy()
	old := bodies[0]

	replacement := NewRigidBody()
	must(t, c.SetBodies([]any{replacement}))

	if old.EngineBody() != nil {
		t.Error("removed body should leave the world")
	}
	if replacement.EngineBody() == nil || replacement.InSetup() {
		t.Error("new body should be set up and in the world")
	}
}

func TestRigidBodyCollection_SetCollider(t *testing.T) {
	eng := feather.New()
	c, first, _ := newScene(t, eng, mgl64.Vec3{})
	defer c.Destroy()
	if first.Buffer() == nil {
		t.Fatal("the collider should own a contact buffer once attached")
	}

	second := NewCollisionCollection(eng)
	must(t, c.SetCollider(second))
	defer first.Destroy()

	if first.Buffer() != nil {
		t.Error("the previous collision collection should be released")
	}
	if second.Buffer() == nil || second.InSetup() {
		t.Error("the new collision collection should be attached")
	}

	if err := c.SetCollider(NewCollisionSpace(eng)); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("error = %v, want ErrInvalidNode", err)
	}
	if c.Collider() != second {
		t.Error("collider should keep its prior value")
	}
}

// ============================================================================
// Teardown
// ============================================================================

// fullScene builds every kind of node over eng: a plane in the root space,
// a hash space and a quad tree space holding spheres, a box body without
// registered geometry, a fixed body, a hinge and a ball joint.
func fullScene(t *testing.T, eng engine.Engine) *RigidBodyCollection {
	t.Helper()

	ground, err := NewCollidableShape(eng, engine.Plane{Normal: mgl64.Vec3{0, 1, 0}})
	must(t, err)
	b1, s1 := sphereBody(t, eng, mgl64.Vec3{0, 0.5, 0}, 1)
	b2, s2 := sphereBody(t, eng, mgl64.Vec3{1.5, 0.5, 0}, 1)
	b3, s3 := sphereBody(t, eng, mgl64.Vec3{-1.5, 0.5, 0}, 1)

	hash := NewCollisionSpace(eng)
	must(t, hash.SetCollidables([]any{s2}))
	tree := NewCollisionSpace(eng)
	must(t, tree.SetBBox(mgl64.Vec3{}, mgl64.Vec3{50, 50, 50}))
	must(t, tree.SetCollidables([]any{s3}))
	must(t, hash.AddCollidable(tree))

	cc := NewCollisionCollection(eng)
	must(t, cc.SetCollidables([]any{ground, s1, hash}))

	box, err := NewCollidableShape(eng, engine.Box{Size: mgl64.Vec3{1, 1, 1}})
	must(t, err)
	b4 := NewRigidBody()
	must(t, b4.SetGeometry([]any{box}))
	fixed := NewRigidBody()
	fixed.SetFixed(true)

	hinge := NewSingleAxisHingeJoint()
	must(t, hinge.SetBody1(b1))
	must(t, hinge.SetBody2(b2))
	ball := NewBallJoint()
	must(t, ball.SetBody1(b3))

	c := NewRigidBodyCollection(eng)
	must(t, c.SetBodies([]any{b1, b2, b3, b4, fixed}))
	must(t, c.SetJoints([]any{hinge, ball}))
	must(t, c.SetCollider(cc))
	c.SetupFinished()
	return c
}

func TestRigidBodyCollection_DestroyReleasesEveryHandle(t *testing.T) {
	rec := enginetest.New(feather.New())
	c := fullScene(t, rec)

	want := map[enginetest.Kind]int{
		enginetest.KindWorld:      1,
		enginetest.KindBody:       4,
		enginetest.KindGeom:       5,
		enginetest.KindSpace:      3,
		enginetest.KindJoint:      2,
		enginetest.KindJointGroup: 1,
		enginetest.KindCollider:   1,
	}
	if diff := cmp.Diff(want, rec.Live()); diff != "" {
		t.Fatalf("live handles before teardown (-want +got):\n%s", diff)
	}

	// quelques frames pour remplir le tampon de contacts
	cc := c.Collider()
	for range 5 {
		cc.EvaluateCollisions()
		c.ProcessInputContacts(cc.Contacts())
		c.EvaluateModel()
		c.UpdatePostSimulation()
	}

	c.Destroy()
	if rec.LiveTotal() != 0 {
		t.Errorf("live handles after teardown: %v", rec.Live())
	}
	if len(rec.DoubleFrees()) != 0 {
		t.Errorf("double frees: %v", rec.DoubleFrees())
	}

	c.Destroy()
	cc.Destroy()
	if len(rec.DoubleFrees()) != 0 || rec.LiveTotal() != 0 {
		t.Errorf("repeated teardown: live %v, double frees %v", rec.Live(), rec.DoubleFrees())
	}
	if c.World() != nil {
		t.Error("World should be nil after Destroy")
	}
}

func TestRigidBodyCollection_ReplaceJointsReleasesHandles(t *testing.T) {
	rec := enginetest.New(feather.New())
	c := fullScene(t, rec)
	defer c.Destroy()

	must(t, c.SetJoints([]any{NewBallJoint()}))
	must(t, c.SetJoints(nil))

	if got := rec.Live()[enginetest.KindJoint]; got != 0 {
		t.Errorf("live joints = %d, want 0", got)
	}
	if got := rec.Created(enginetest.KindJoint); got != 3 {
		t.Errorf("created joints = %d, want 3", got)
	}
}
