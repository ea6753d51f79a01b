package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func vecAlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return a.ApproxEqualThreshold(b, tolerance)
}

// ============================================================================
// Transform
// ============================================================================

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{0, 1, 0}),
	}

	tests := []struct {
		name  string
		point mgl64.Vec3
	}{
		{"origin", mgl64.Vec3{0, 0, 0}},
		{"axis", mgl64.Vec3{1, 0, 0}},
		{"arbitrary", mgl64.Vec3{-2.5, 0.3, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := tr.PointToLocal(tr.PointToWorld(tt.point))
			if !vecAlmostEqual(back, tt.point, eps) {
				t.Errorf("PointToLocal(PointToWorld(%v)) = %v", tt.point, back)
			}
			v := tr.VectorToLocal(tr.VectorToWorld(tt.point))
			if !vecAlmostEqual(v, tt.point, eps) {
				t.Errorf("VectorToLocal(VectorToWorld(%v)) = %v", tt.point, v)
			}
		})
	}
}

func TestTransformCompose(t *testing.T) {
	parent := Transform{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})}
	child := Transform{Position: mgl64.Vec3{1, 0, 0}, Rotation: mgl64.QuatIdent()}

	got := parent.Compose(child)
	if !vecAlmostEqual(got.Position, mgl64.Vec3{0, 2, 0}, eps) {
		t.Errorf("Compose position = %v, want (0, 2, 0)", got.Position)
	}
	if !got.Rotation.ApproxEqualThreshold(parent.Rotation, eps) {
		t.Errorf("Compose rotation = %v, want %v", got.Rotation, parent.Rotation)
	}
}

// ============================================================================
// AABB
// ============================================================================

func TestAABBOverlaps(t *testing.T) {
	base := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

	tests := []struct {
		name     string
		other    AABB
		expected bool
	}{
		{"inside", AABB{Min: mgl64.Vec3{0.2, 0.2, 0.2}, Max: mgl64.Vec3{0.8, 0.8, 0.8}}, true},
		{"touching", AABB{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, true},
		{"apart on x", AABB{Min: mgl64.Vec3{1.1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}, false},
		{"apart on z", AABB{Min: mgl64.Vec3{0, 0, -3}, Max: mgl64.Vec3{1, 1, -0.1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.expected {
				t.Errorf("Overlaps = %v, want %v", got, tt.expected)
			}
			if got := tt.other.Overlaps(base); got != tt.expected {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAABBHelpers(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{-1, 0, 2}, Max: mgl64.Vec3{1, 2, 4}}

	if !a.ContainsPoint(mgl64.Vec3{0, 1, 3}) {
		t.Error("centre should be contained")
	}
	if a.ContainsPoint(mgl64.Vec3{0, 3, 3}) {
		t.Error("point above should not be contained")
	}
	if c := a.Center(); c != (mgl64.Vec3{0, 1, 3}) {
		t.Errorf("Center = %v", c)
	}
	grown := a.Expand(0.5)
	if grown.Min != (mgl64.Vec3{-1.5, -0.5, 1.5}) || grown.Max != (mgl64.Vec3{1.5, 2.5, 4.5}) {
		t.Errorf("Expand = %v", grown)
	}
	if !a.IsBounded() {
		t.Error("finite box should be bounded")
	}
	if (&Plane{Normal: mgl64.Vec3{0, 1, 0}}).ComputeAABB(NewTransform()).IsBounded() {
		t.Error("plane bounds should be unbounded")
	}
}

// ============================================================================
// Shapes
// ============================================================================

func TestBoxSupport(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"+++", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 2, 3}},
		{"-+-", mgl64.Vec3{-1, 0.5, -2}, mgl64.Vec3{-1, 2, -3}},
		{"---", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{-1, -2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Support(tt.direction); got != tt.expected {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestBoxAABBRotated(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}
	tr := Transform{Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})}

	aabb := box.ComputeAABB(tr)
	want := math.Sqrt2
	if !almostEqual(aabb.Max.X(), want, eps) || !almostEqual(aabb.Min.Z(), -want, eps) {
		t.Errorf("rotated AABB = %v, want x and z extents of %v", aabb, want)
	}
	if !almostEqual(aabb.Max.Y(), 1, eps) {
		t.Errorf("rotated AABB y = %v, want 1", aabb.Max.Y())
	}
}

func TestBoxContactFeature(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}

	face := box.ContactFeature(mgl64.Vec3{0, -1, 0.1})
	if len(face) != 4 {
		t.Fatalf("face has %d points, want 4", len(face))
	}
	for _, p := range face {
		if p.Y() != -2 {
			t.Errorf("point %v not on the -y face", p)
		}
	}

	// counter-clockwise seen from outside
	normal := face[1].Sub(face[0]).Cross(face[2].Sub(face[0]))
	if normal.Y() >= 0 {
		t.Errorf("face winding normal = %v, want pointing to -y", normal)
	}
}

func TestSphereSupport(t *testing.T) {
	s := &Sphere{Radius: 2}

	if got := s.Support(mgl64.Vec3{0, 3, 0}); !vecAlmostEqual(got, mgl64.Vec3{0, 2, 0}, eps) {
		t.Errorf("Support = %v", got)
	}
	if got := s.Support(mgl64.Vec3{}); got.Len() != 2 {
		t.Errorf("Support of zero direction = %v, want a point of the surface", got)
	}
}

func TestPlane(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 1}

	if d := p.SignedDistance(mgl64.Vec3{5, 3, -2}); !almostEqual(d, 2, eps) {
		t.Errorf("SignedDistance = %v, want 2", d)
	}
	if s := p.Support(mgl64.Vec3{0, 1, 0}); !almostEqual(s.Y(), 1, eps) {
		t.Errorf("Support up = %v, want on the plane", s)
	}
	if s := p.Support(mgl64.Vec3{0, -1, 0}); s.Y() >= 1 {
		t.Errorf("Support down = %v, want below the plane", s)
	}
}

func TestTangentBasis(t *testing.T) {
	normals := []mgl64.Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, -1},
		mgl64.Vec3{1, 1, 1}.Normalize(),
	}

	for _, n := range normals {
		t1, t2 := TangentBasis(n)
		if !almostEqual(t1.Len(), 1, eps) || !almostEqual(t2.Len(), 1, eps) {
			t.Errorf("basis of %v not unit: %v %v", n, t1, t2)
		}
		if !almostEqual(t1.Dot(n), 0, eps) || !almostEqual(t2.Dot(n), 0, eps) || !almostEqual(t1.Dot(t2), 0, eps) {
			t.Errorf("basis of %v not orthogonal: %v %v", n, t1, t2)
		}
	}
}

func TestCollidableWorld(t *testing.T) {
	c := Collidable{
		Shape:     &Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		Transform: Transform{Position: mgl64.Vec3{10, 0, 0}, Rotation: mgl64.QuatIdent()},
	}

	if got := c.SupportWorld(mgl64.Vec3{1, 1, 1}); got != (mgl64.Vec3{11, 1, 1}) {
		t.Errorf("SupportWorld = %v", got)
	}
	if got := c.Center(); got != (mgl64.Vec3{10, 0, 0}) {
		t.Errorf("Center = %v", got)
	}
	for _, p := range c.FeatureWorld(mgl64.Vec3{-1, 0, 0}) {
		if p.X() != 9 {
			t.Errorf("feature point %v not on the -x face", p)
		}
	}
}

// ============================================================================
// RigidBody
// ============================================================================

func TestNewRigidBody(t *testing.T) {
	rb := NewRigidBody()

	if rb.Mass() != 1 || rb.InverseMass() != 1 {
		t.Errorf("mass = %v, inverse = %v, want 1 and 1", rb.Mass(), rb.InverseMass())
	}
	if !rb.IsDynamic() || !rb.UseGravity {
		t.Error("new body should be dynamic and use gravity")
	}
}

func TestSetMassNonPositive(t *testing.T) {
	rb := NewRigidBody()
	rb.SetMass(0, mgl64.Ident3())

	if rb.IsDynamic() {
		t.Error("massless body should not be dynamic")
	}
	if rb.InverseInertiaWorld() != (mgl64.Mat3{}) {
		t.Error("massless body should have no inverse inertia")
	}
}

func TestSetMassSmallInertia(t *testing.T) {
	rb := NewRigidBody()
	rb.SetMass(1e-3, mgl64.Diag3(mgl64.Vec3{1e-6, 1e-6, 1e-6}))

	got := rb.InverseInertiaLocal.At(0, 0)
	if !almostEqual(got, 1e6, 1e-3) {
		t.Errorf("inverse inertia = %v, want 1e6", got)
	}
}

func TestIntegrateFreeFall(t *testing.T) {
	rb := NewRigidBody()
	g := mgl64.Vec3{0, -9.8, 0}
	h := 1.0 / 600

	for range 600 {
		rb.Integrate(h, g)
		rb.Update(h)
	}

	if !almostEqual(rb.Velocity.Y(), -9.8, 1e-6) {
		t.Errorf("velocity after 1s = %v, want -9.8", rb.Velocity.Y())
	}
}

func TestIntegrateNoGravity(t *testing.T) {
	rb := NewRigidBody()
	rb.UseGravity = false
	rb.Velocity = mgl64.Vec3{1, 0, 0}

	rb.Integrate(0.5, mgl64.Vec3{0, -9.8, 0})
	if !vecAlmostEqual(rb.Transform.Position, mgl64.Vec3{0.5, 0, 0}, eps) {
		t.Errorf("position = %v, want (0.5, 0, 0)", rb.Transform.Position)
	}
}

func TestIntegrateForce(t *testing.T) {
	rb := NewRigidBody()
	rb.SetMass(2, mgl64.Ident3())
	rb.AddForce(mgl64.Vec3{4, 0, 0})

	rb.Integrate(1, mgl64.Vec3{})
	if !almostEqual(rb.Velocity.X(), 2, eps) {
		t.Errorf("velocity = %v, want 2", rb.Velocity.X())
	}

	rb.ClearForces()
	if rb.Force != (mgl64.Vec3{}) || rb.Torque != (mgl64.Vec3{}) {
		t.Error("ClearForces should reset force and torque")
	}
}

func TestUpdateAngularVelocity(t *testing.T) {
	rb := NewRigidBody()
	rb.UseGravity = false
	rb.AngularVelocity = mgl64.Vec3{0, 2, 0}
	h := 1.0 / 120

	rb.Integrate(h, mgl64.Vec3{})
	rb.Update(h)

	if !almostEqual(rb.AngularVelocity.Y(), 2, 1e-3) {
		t.Errorf("angular velocity = %v, want ≈2", rb.AngularVelocity)
	}
}

func TestFiniteRotation(t *testing.T) {
	rb := NewRigidBody()
	rb.UseGravity = false
	rb.FiniteRotation = true
	rb.AngularVelocity = mgl64.Vec3{0, 0, math.Pi}

	rb.Integrate(0.5, mgl64.Vec3{})

	want := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	if !rb.Transform.Rotation.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("rotation = %v, want %v", rb.Transform.Rotation, want)
	}
}

func TestStaticBodyIgnoresCorrections(t *testing.T) {
	rb := NewRigidBody()
	rb.Disable()

	rb.ApplyPositionCorrection(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	rb.ApplyImpulse(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	rb.Integrate(1, mgl64.Vec3{0, -10, 0})

	if rb.Transform.Position != (mgl64.Vec3{}) || rb.Velocity != (mgl64.Vec3{}) {
		t.Errorf("disabled body moved: %v %v", rb.Transform.Position, rb.Velocity)
	}
}

func TestNilBody(t *testing.T) {
	var rb *RigidBody

	if rb.IsDynamic() || rb.InverseMass() != 0 {
		t.Error("nil body must be static")
	}
	if rb.Position() != (mgl64.Vec3{}) || rb.Rotation() != mgl64.QuatIdent() {
		t.Error("nil body must sit at the world origin")
	}
	if rb.VelocityAt(mgl64.Vec3{1, 0, 0}) != (mgl64.Vec3{}) {
		t.Error("nil body must not move")
	}
	rb.Wake()
}

func TestTryAutoDisable(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		velocity mgl64.Vec3
		steps    int
		expected bool
	}{
		{"disabled flag", false, mgl64.Vec3{}, 10, false},
		{"fast body", true, mgl64.Vec3{1, 0, 0}, 10, false},
		{"idle long enough", true, mgl64.Vec3{0.001, 0, 0}, 10, true},
		{"idle too short", true, mgl64.Vec3{0.001, 0, 0}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRigidBody()
			rb.AutoDisable = AutoDisable{Enabled: tt.enabled, LinearThreshold: 0.01, AngularThreshold: 0.01, Time: 0.05}
			rb.Velocity = tt.velocity

			slept := false
			for range tt.steps {
				if rb.TryAutoDisable(0.01) {
					slept = true
				}
			}

			if slept != tt.expected {
				t.Errorf("slept = %v, want %v", slept, tt.expected)
			}
			if slept && (rb.Enabled || !rb.AutoDisabled) {
				t.Error("a body put to rest must be disabled and flagged")
			}
		})
	}
}

func TestWake(t *testing.T) {
	rb := NewRigidBody()
	rb.Disable()
	rb.Wake()
	if rb.Enabled {
		t.Error("Wake must not enable a body disabled by the user")
	}

	rb.AutoDisabled = true
	rb.IdleTime = 3
	rb.Wake()
	if !rb.Enabled || rb.AutoDisabled || rb.IdleTime != 0 {
		t.Errorf("Wake left enabled=%v autoDisabled=%v idle=%v", rb.Enabled, rb.AutoDisabled, rb.IdleTime)
	}
}
