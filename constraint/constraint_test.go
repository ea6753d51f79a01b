package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func createBody(position mgl64.Vec3) *actor.RigidBody {
	rb := actor.NewRigidBody()
	rb.Transform.Position = position
	rb.PreviousTransform.Position = position
	return rb
}

// ============================================================================
// Helpers
// ============================================================================

func TestCompliance(t *testing.T) {
	tests := []struct {
		name     string
		erp, cfm float64
		dt       float64
		expected float64
	}{
		{"rigid", 0.2, 0, 0.01, 0},
		{"soft", 0.5, 1e-3, 0.01, 2e-5},
		{"no correction", 0, 1e-5, 0.01, math.Inf(1)},
		{"negative erp", -1, 1e-5, 0.01, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compliance(tt.erp, tt.cfm, tt.dt)
			if got != tt.expected && !almostEqual(got, tt.expected, 1e-15) {
				t.Errorf("Compliance(%v, %v, %v) = %v, want %v", tt.erp, tt.cfm, tt.dt, got, tt.expected)
			}
		})
	}
}

func TestSignedAngle(t *testing.T) {
	z := mgl64.Vec3{0, 0, 1}

	tests := []struct {
		name     string
		to       mgl64.Vec3
		expected float64
	}{
		{"zero", mgl64.Vec3{1, 0, 0}, 0},
		{"quarter", mgl64.Vec3{0, 1, 0}, math.Pi / 2},
		{"negative quarter", mgl64.Vec3{0, -1, 0}, -math.Pi / 2},
		{"off plane", mgl64.Vec3{0, 1, 5}, math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signedAngle(mgl64.Vec3{1, 0, 0}, tt.to, z); !almostEqual(got, tt.expected, eps) {
				t.Errorf("signedAngle = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAxisLimitCorrection(t *testing.T) {
	a := DefaultAxis(0.2, 1e-5)
	if a.limitCorrection(1e9) != 0 || a.limitCorrection(-1e9) != 0 {
		t.Error("default axis must have no stops")
	}

	a.Lo, a.Hi = -0.5, 0.5
	if got := a.limitCorrection(0.75); !almostEqual(got, -0.25, eps) {
		t.Errorf("above hi: %v, want -0.25", got)
	}
	if got := a.limitCorrection(-1); !almostEqual(got, 0.5, eps) {
		t.Errorf("below lo: %v, want 0.5", got)
	}
	if got := a.limitCorrection(0.1); got != 0 {
		t.Errorf("inside: %v, want 0", got)
	}
}

// ============================================================================
// Contact
// ============================================================================

func TestContactSolvePosition(t *testing.T) {
	// unit sphere sunk 0.1 into the ground at y = 0
	ball := createBody(mgl64.Vec3{0, 0.4, 0})
	normal := mgl64.Vec3{0, 1, 0}
	surface := Surface{CorrectionFactor: 1}

	c := NewContact(ball, nil, mgl64.Vec3{0, -0.05, 0}, normal, 0.1, surface)
	if got := c.Penetration(); !almostEqual(got, 0.1, eps) {
		t.Fatalf("Penetration = %v, want 0.1", got)
	}

	c.SolvePosition(1.0 / 60)

	if got := c.Penetration(); !almostEqual(got, 0, 1e-9) {
		t.Errorf("Penetration after solve = %v, want 0", got)
	}
	if !almostEqual(ball.Transform.Position.Y(), 0.5, 1e-9) {
		t.Errorf("ball y = %v, want 0.5", ball.Transform.Position.Y())
	}
}

func TestContactMaxCorrectingVelocity(t *testing.T) {
	ball := createBody(mgl64.Vec3{0, 0.4, 0})
	c := NewContact(ball, nil, mgl64.Vec3{0, -0.05, 0}, mgl64.Vec3{0, 1, 0}, 0.1, Surface{CorrectionFactor: 1})
	c.MaxCorrectingVelocity = 1

	h := 0.01
	c.SolvePosition(h)

	if !almostEqual(ball.Transform.Position.Y(), 0.41, 1e-9) {
		t.Errorf("ball y = %v, want 0.41", ball.Transform.Position.Y())
	}
}

func TestContactSeparated(t *testing.T) {
	ball := createBody(mgl64.Vec3{0, 2, 0})
	c := NewContact(ball, nil, mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{0, 1, 0}, 0.1, Surface{CorrectionFactor: 1})
	ball.Transform.Position = mgl64.Vec3{0, 3, 0}

	c.SolvePosition(0.01)
	c.SolveVelocity(0.01)

	if ball.Transform.Position.Y() != 3 {
		t.Errorf("separated contact moved the body to %v", ball.Transform.Position)
	}
}

func TestContactStaticPair(t *testing.T) {
	a := createBody(mgl64.Vec3{})
	a.Disable()
	c := NewContact(a, nil, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 0.5, Surface{CorrectionFactor: 1})

	c.SolvePosition(0.01)
	if a.Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("static pair moved: %v", a.Transform.Position)
	}
}

func TestContactFriction(t *testing.T) {
	tests := []struct {
		name     string
		friction float64
		stops    bool
	}{
		{"frictionless", 0, false},
		{"infinite", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := createBody(mgl64.Vec3{0, 0.4, 0})
			ball.SetMass(1, mgl64.Ident3().Mul(1e9))
			c := NewContact(ball, nil, mgl64.Vec3{0, -0.05, 0}, mgl64.Vec3{0, 1, 0}, 0.1, Surface{
				CorrectionFactor: 1,
				Friction1:        tt.friction,
				Friction2:        tt.friction,
			})

			h := 0.01
			c.SolvePosition(h)
			ball.Velocity = mgl64.Vec3{2, 0, 0}
			c.SolveVelocity(h)

			stopped := almostEqual(ball.Velocity.X(), 0, 1e-6)
			if stopped != tt.stops {
				t.Errorf("tangential velocity = %v, stopped = %v, want %v", ball.Velocity.X(), stopped, tt.stops)
			}
		})
	}
}

func TestContactFrictionDirection(t *testing.T) {
	c := &Contact{Normal: mgl64.Vec3{0, 1, 0}, Surface: Surface{FrictionDir: mgl64.Vec3{0, 3, 2}}}

	t1, t2 := c.tangents()
	if !t1.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, eps) {
		t.Errorf("t1 = %v, want the projected direction (0, 0, 1)", t1)
	}
	if !almostEqual(t2.Dot(c.Normal), 0, eps) || !almostEqual(t2.Dot(t1), 0, eps) {
		t.Errorf("t2 = %v not orthogonal", t2)
	}
}

// ============================================================================
// Joints
// ============================================================================

func TestBallJoint(t *testing.T) {
	body := createBody(mgl64.Vec3{1, 0, 0})
	j := &Ball{Frame: Frame{BodyA: body}}
	j.SetAnchor(mgl64.Vec3{})
	j.Prepare(1.0/60, 1, 0)

	body.Transform.Position = mgl64.Vec3{1.2, 0, 0}
	j.SolvePosition(1.0 / 60)

	if got := j.AnchorA(); !got.ApproxEqualThreshold(mgl64.Vec3{}, 1e-9) {
		t.Errorf("AnchorA = %v, want the origin", got)
	}
	if got := j.AnchorB(); got != (mgl64.Vec3{}) {
		t.Errorf("AnchorB = %v, want the origin", got)
	}
}

func TestHingeAngle(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Hinge{Frame: Frame{BodyA: body}, Axis: DefaultAxis(0.2, 0)}
	j.SetAnchor(mgl64.Vec3{})
	j.SetAxis(mgl64.Vec3{0, 0, 2})

	if got := j.Angle(); !almostEqual(got, 0, eps) {
		t.Errorf("initial angle = %v, want 0", got)
	}

	body.Transform.Rotation = mgl64.QuatRotate(0.3, mgl64.Vec3{0, 0, 1})
	if got := j.Angle(); !almostEqual(got, 0.3, 1e-9) {
		t.Errorf("angle = %v, want 0.3", got)
	}

	body.AngularVelocity = mgl64.Vec3{1, 0, 4}
	if got := j.AngleRate(); !almostEqual(got, 4, eps) {
		t.Errorf("angle rate = %v, want 4", got)
	}
}

func TestHingeStops(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Hinge{Frame: Frame{BodyA: body}, Axis: DefaultAxis(1, 0)}
	j.SetAnchor(mgl64.Vec3{})
	j.SetAxis(mgl64.Vec3{0, 0, 1})
	j.Axis.Lo, j.Axis.Hi = -0.1, 0.1
	j.Prepare(1.0/60, 1, 0)

	body.Transform.Rotation = mgl64.QuatRotate(0.3, mgl64.Vec3{0, 0, 1})
	j.SolvePosition(1.0 / 60)

	if got := j.Angle(); !almostEqual(got, 0.1, 0.01) {
		t.Errorf("angle after stop = %v, want ≈0.1", got)
	}
}

func TestHingeMotor(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Hinge{Frame: Frame{BodyA: body}, Axis: DefaultAxis(0.2, 0)}
	j.SetAxis(mgl64.Vec3{0, 1, 0})
	j.Axis.Vel = 2
	j.Axis.FMax = 1e6

	j.SolveVelocity(0.01)
	if got := body.AngularVelocity.Y(); !almostEqual(got, 2, 1e-9) {
		t.Errorf("motor angular velocity = %v, want 2", got)
	}
}

func TestSliderPosition(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Slider{Frame: Frame{BodyA: body}, Axis: DefaultAxis(0.2, 0)}
	j.SetAxis(mgl64.Vec3{1, 0, 0})

	body.Transform.Position = mgl64.Vec3{0.5, 0.2, 0}
	if got := j.Position(); !almostEqual(got, 0.5, eps) {
		t.Errorf("Position = %v, want 0.5", got)
	}

	body.Velocity = mgl64.Vec3{3, 1, 0}
	if got := j.PositionRate(); !almostEqual(got, 3, eps) {
		t.Errorf("PositionRate = %v, want 3", got)
	}
}

func TestSliderKeepsAxis(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Slider{Frame: Frame{BodyA: body}, Axis: DefaultAxis(1, 0)}
	j.SetAxis(mgl64.Vec3{1, 0, 0})
	j.Prepare(1.0/60, 1, 0)

	body.Transform.Position = mgl64.Vec3{0.5, 0.2, 0}
	j.SolvePosition(1.0 / 60)

	p := body.Transform.Position
	if !almostEqual(p.X(), 0.5, 1e-9) || !almostEqual(p.Y(), 0, 1e-9) {
		t.Errorf("position after solve = %v, want (0.5, 0, 0)", p)
	}
}

func TestUniversalAxes(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Universal{}
	j.BodyA = body
	j.SetAxis(1, mgl64.Vec3{1, 0, 0})
	j.SetAxis(2, mgl64.Vec3{0, 1, 0})

	if got := j.AxisWorld(1); got != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("axis 1 = %v", got)
	}
	if got := j.AxisWorld(2); got != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("axis 2 = %v", got)
	}
	if j.target != math.Pi/2 {
		t.Errorf("target = %v, want π/2", j.target)
	}
	if got := j.Angle(1); !almostEqual(got, 0, eps) {
		t.Errorf("angle 1 = %v, want 0", got)
	}
}

func TestHinge2KeepsInitialAngle(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &Hinge2{}
	j.BodyA = body
	j.SetAxis(1, mgl64.Vec3{0, 1, 0})
	j.SetAxis(2, mgl64.Vec3{1, 1, 0})

	if !almostEqual(j.target, math.Pi/4, 1e-9) {
		t.Errorf("target = %v, want π/4", j.target)
	}
}

func TestAMotorUserMode(t *testing.T) {
	body := createBody(mgl64.Vec3{})
	j := &AMotor{BodyA: body, NumAxes: 1}
	j.SetAxis(1, mgl64.Vec3{0, 0, 1})
	j.UserAngles[0] = 0.7
	j.Axes[0].Torque = 2

	if got := j.Angle(1); got != 0.7 {
		t.Errorf("Angle = %v, want the user angle 0.7", got)
	}

	j.Prepare(0.01, 0.2, 0)
	if got := body.Torque; got != (mgl64.Vec3{0, 0, 2}) {
		t.Errorf("torque = %v, want (0, 0, 2)", got)
	}
}

func TestAMotorEulerAxis(t *testing.T) {
	j := &AMotor{Euler: true}
	j.SetAxis(1, mgl64.Vec3{1, 0, 0})
	j.SetAxis(3, mgl64.Vec3{0, 0, 1})

	if got := j.AxisWorld(2); !got.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, eps) {
		t.Errorf("derived axis 2 = %v, want (0, 1, 0)", got)
	}
	if got := j.AxisWorld(4); got != (mgl64.Vec3{}) {
		t.Errorf("out of range axis = %v, want zero", got)
	}
}
