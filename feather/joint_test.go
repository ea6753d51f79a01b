package feather

import (
	"math"
	"testing"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

func TestJointDefaults(t *testing.T) {
	w := New().NewWorld().(*World)
	w.SetERP(0.4)
	w.SetCFM(1e-3)
	j := w.NewJoint(engine.JointHinge, nil)

	if j.Kind() != engine.JointHinge {
		t.Errorf("Kind = %v, want hinge", j.Kind())
	}
	if lo := j.Param(engine.ParamLoStop, 1); !math.IsInf(lo, -1) {
		t.Errorf("lo stop = %v, want -Inf", lo)
	}
	if hi := j.Param(engine.ParamHiStop, 1); !math.IsInf(hi, 1) {
		t.Errorf("hi stop = %v, want +Inf", hi)
	}
	if erp := j.Param(engine.ParamStopERP, 1); erp != 0.4 {
		t.Errorf("stop erp = %v, want the world erp", erp)
	}
	if cfm := j.Param(engine.ParamSuspensionCFM, 2); cfm != 1e-3 {
		t.Errorf("suspension cfm = %v, want the world cfm", cfm)
	}
}

func TestJointParamRoundTrip(t *testing.T) {
	w := New().NewWorld()
	j := w.NewJoint(engine.JointHinge2, nil)

	params := []engine.Param{
		engine.ParamLoStop, engine.ParamHiStop, engine.ParamVel, engine.ParamFMax, engine.ParamBounce,
		engine.ParamStopERP, engine.ParamStopCFM, engine.ParamSuspensionERP, engine.ParamSuspensionCFM,
	}

	for axis := 1; axis <= 2; axis++ {
		for i, p := range params {
			v := float64(axis*10 + i)
			j.SetParam(p, axis, v)
			if got := j.Param(p, axis); got != v {
				t.Errorf("Param(%v, %d) = %v, want %v", p, axis, got, v)
			}
		}
	}
	if got := j.Param(engine.ParamVel, 1); got != 12 {
		t.Errorf("axis 2 writes leaked into axis 1: %v", got)
	}
}

func TestJointAttach(t *testing.T) {
	w := New().NewWorld()
	b1, b2 := w.NewBody(), w.NewBody()
	j := w.NewJoint(engine.JointBall, nil)

	j.Attach(b1, b2)
	if j.Body(0) != b1 || j.Body(1) != b2 {
		t.Error("bodies not attached")
	}

	j.Attach(nil, nil)
	if j.Body(0) != nil || j.Body(1) != nil || j.Body(2) != nil {
		t.Error("detached joint still reports bodies")
	}
}

func TestJointAxisValidation(t *testing.T) {
	w := New().NewWorld()
	b := w.NewBody()
	j := w.NewJoint(engine.JointHinge, nil)
	j.Attach(b, nil)
	j.SetAxis(1, mgl64.Vec3{0, 0, 3})

	j.SetAxis(1, mgl64.Vec3{})
	j.SetAxis(4, mgl64.Vec3{1, 0, 0})

	if got := j.Axis(1); !got.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("Axis = %v, want (0, 0, 1)", got)
	}
}

func TestBallJointPendulum(t *testing.T) {
	w := New().NewWorld()
	w.SetGravity(mgl64.Vec3{0, -9.8, 0})
	b := w.NewBody()
	b.SetPosition(mgl64.Vec3{1, 0, 0})

	j := w.NewJoint(engine.JointBall, nil)
	j.Attach(b, nil)
	j.SetAnchor(mgl64.Vec3{})

	for range 60 {
		w.Step(frame)
	}

	if d := b.Position().Len(); !almostEqual(d, 1, 0.02) {
		t.Errorf("pendulum length = %v, want 1", d)
	}
	if b.Position().Y() > -0.1 {
		t.Errorf("pendulum at %v, want swung down", b.Position())
	}
}

func TestHingeAngle(t *testing.T) {
	w := New().NewWorld()
	b := w.NewBody()
	j := w.NewJoint(engine.JointHinge, nil)
	j.Attach(b, nil)
	j.SetAnchor(mgl64.Vec3{})
	j.SetAxis(1, mgl64.Vec3{0, 0, 1})
	b.SetAngularVel(mgl64.Vec3{0, 0, 1})

	for range 60 {
		w.Step(frame)
	}

	if got := j.Angle(1); !almostEqual(got, 1, 0.01) {
		t.Errorf("Angle = %v, want ≈1", got)
	}
	if got := j.AngleRate(1); !almostEqual(got, 1, 0.01) {
		t.Errorf("AngleRate = %v, want ≈1", got)
	}
}

func TestHingeMotorDrives(t *testing.T) {
	w := New().NewWorld()
	b := w.NewBody()
	j := w.NewJoint(engine.JointHinge, nil)
	j.Attach(b, nil)
	j.SetAxis(1, mgl64.Vec3{0, 1, 0})
	j.SetParam(engine.ParamVel, 1, 2)
	j.SetParam(engine.ParamFMax, 1, 1000)

	w.Step(frame)

	if got := j.AngleRate(1); !almostEqual(got, 2, 0.01) {
		t.Errorf("AngleRate = %v, want the motor velocity 2", got)
	}
}

func TestSliderPosition(t *testing.T) {
	w := New().NewWorld()
	b := w.NewBody()
	j := w.NewJoint(engine.JointSlider, nil)
	j.Attach(b, nil)
	j.SetAxis(1, mgl64.Vec3{1, 0, 0})
	b.SetLinearVel(mgl64.Vec3{1, 0.5, 0})

	for range 60 {
		w.Step(frame)
	}

	if got := j.Position(); !almostEqual(got, 1, 0.01) {
		t.Errorf("Position = %v, want ≈1", got)
	}
	if y := b.Position().Y(); !almostEqual(y, 0, 0.01) {
		t.Errorf("slider left its axis: y = %v", y)
	}
	if got := j.PositionRate(); !almostEqual(got, 1, 0.01) {
		t.Errorf("PositionRate = %v, want ≈1", got)
	}
}

func TestMotorAxes(t *testing.T) {
	w := New().NewWorld()
	b := w.NewBody()
	j := w.NewJoint(engine.JointAMotor, nil)
	j.Attach(b, nil)

	j.SetNumAxes(5)
	if j.NumAxes() != 3 {
		t.Errorf("NumAxes = %d, want 3", j.NumAxes())
	}
	j.SetNumAxes(-1)
	if j.NumAxes() != 0 {
		t.Errorf("NumAxes = %d, want 0", j.NumAxes())
	}

	j.SetNumAxes(1)
	j.SetAxis(1, mgl64.Vec3{0, 1, 0})
	j.SetAngle(1, 0.5)
	if got := j.Angle(1); got != 0.5 {
		t.Errorf("Angle = %v, want the user angle", got)
	}

	j.SetTorque(1, 1)
	w.Step(frame)
	if got := b.AngularVel().Y(); !almostEqual(got, frame, 1e-6) {
		t.Errorf("angular velocity = %v, want %v after one frame of unit torque", got, frame)
	}
}

func TestJointGroupEmpty(t *testing.T) {
	w := New().NewWorld().(*World)
	g := w.NewJointGroup()
	w.NewJoint(engine.JointBall, g)
	w.NewJoint(engine.JointHinge, g)
	w.NewJoint(engine.JointSlider, nil)

	g.Empty()
	if len(w.joints) != 1 {
		t.Errorf("joints = %d, want the one outside the group", len(w.joints))
	}

	g.Destroy()
	if len(w.groups) != 0 {
		t.Error("destroyed group still owned by the world")
	}
}

// chainRun simulates a hinged box hit by a sphere and returns its final pose
func chainRun(t *testing.T, detachFirst bool) (mgl64.Vec3, mgl64.Quat) {
	e := New()
	w := e.NewWorld().(*World)
	w.SetGravity(mgl64.Vec3{0, -9.8, 0})
	s := e.NewHashSpace(nil).(*Space)

	box, bb := createDynamic(t, e, w, engine.Box{Size: mgl64.Vec3{1, 0.2, 1}}, mgl64.Vec3{0.5, 1, 0})
	ball, _ := createDynamic(t, e, w, engine.Sphere{Radius: 0.3}, mgl64.Vec3{0.8, 1.6, 0.1})
	s.Add(box)
	s.Add(ball)

	j := w.NewJoint(engine.JointHinge, nil)
	if detachFirst {
		j.Attach(bb, nil)
		j.Attach(nil, nil)
	}
	j.Attach(bb, nil)
	j.SetAnchor(mgl64.Vec3{0, 1, 0})
	j.SetAxis(1, mgl64.Vec3{0, 0, 1})

	c := w.NewCollider(0)
	for range 90 {
		c.Reset()
		c.Collide(s)
		c.Apply()
		w.QuickStep(frame)
	}

	return bb.Position(), bb.Quaternion()
}

func TestSimulationReproducible(t *testing.T) {
	p1, q1 := chainRun(t, false)
	p2, q2 := chainRun(t, true)

	if p1 != p2 || q1 != q2 {
		t.Errorf("runs diverged: %v %v and %v %v", p1, q1, p2, q2)
	}
}
