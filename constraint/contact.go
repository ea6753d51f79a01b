package constraint

import (
	"math"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Surface carries the solver view of the contact parameters
type Surface struct {
	Friction1 float64 // along the first tangent, math.Inf(1) for no slip
	Friction2 float64
	// Restitution applies when the approach speed exceeds BounceVelocity
	Restitution    float64
	BounceVelocity float64
	// CorrectionFactor scales the penetration removed per substep, in [0, 1]
	CorrectionFactor float64
	Compliance       float64
	Motion1          float64
	Motion2          float64
	FrictionDir      mgl64.Vec3 // zero selects an arbitrary tangent
}

// Contact keeps two bodies from interpenetrating at one point. The normal
// points from BodyB toward BodyA.
type Contact struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3
	Normal mgl64.Vec3

	Surface Surface
	// MaxCorrectingVelocity bounds the correction speed, negative for no bound
	MaxCorrectingVelocity float64

	lambdaNormal float64
}

// NewContact anchors the deepest point of each body at the time of detection
func NewContact(a, b *actor.RigidBody, position, normal mgl64.Vec3, depth float64, surface Surface) *Contact {
	half := normal.Mul(depth / 2)
	return &Contact{
		BodyA:                 a,
		BodyB:                 b,
		LocalA:                localPoint(a, position.Sub(half)),
		LocalB:                localPoint(b, position.Add(half)),
		Normal:                normal,
		Surface:               surface,
		MaxCorrectingVelocity: -1,
	}
}

// Penetration is how deep the anchored points currently overlap along the normal
func (c *Contact) Penetration() float64 {
	pa := worldPoint(c.BodyA, c.LocalA)
	pb := worldPoint(c.BodyB, c.LocalB)
	return pb.Sub(pa).Dot(c.Normal)
}

func (c *Contact) offsets() (mgl64.Vec3, mgl64.Vec3) {
	pa := worldPoint(c.BodyA, c.LocalA)
	pb := worldPoint(c.BodyB, c.LocalB)
	return pa.Sub(c.BodyA.Position()), pb.Sub(c.BodyB.Position())
}

// SolvePosition pushes the bodies apart along the normal
func (c *Contact) SolvePosition(h float64) {
	c.lambdaNormal = 0
	if !c.BodyA.IsDynamic() && !c.BodyB.IsDynamic() {
		return
	}

	depth := c.Penetration()
	if depth <= 0 {
		return
	}

	correction := depth * c.Surface.CorrectionFactor
	if c.MaxCorrectingVelocity >= 0 {
		correction = math.Min(correction, c.MaxCorrectingVelocity*h)
	}

	ra, rb := c.offsets()
	c.lambdaNormal = applyPositional(c.BodyA, c.BodyB, ra, rb, c.Normal.Mul(correction), c.Surface.Compliance, h)
}

// SolveVelocity applies dynamic friction, then restitution
func (c *Contact) SolveVelocity(h float64) {
	if c.lambdaNormal <= 0 {
		return
	}

	ra, rb := c.offsets()
	n := c.Normal

	// ========== Friction ==========
	t1, t2 := c.tangents()
	frictions := [2]float64{c.Surface.Friction1, c.Surface.Friction2}
	motions := [2]float64{c.Surface.Motion1, c.Surface.Motion2}
	normalForce := c.lambdaNormal / h
	for k, t := range [2]mgl64.Vec3{t1, t2} {
		mu := frictions[k]
		if mu <= 0 {
			continue
		}
		v := c.BodyA.VelocityAt(ra).Sub(c.BodyB.VelocityAt(rb))
		slide := v.Dot(t) - motions[k]
		dv := -slide
		if !math.IsInf(mu, 1) {
			limit := mu * normalForce
			dv = clamp(dv, -limit, limit)
		}
		applyVelocity(c.BodyA, c.BodyB, ra, rb, t, dv)
	}

	// ========== Restitution ==========
	v := c.BodyA.VelocityAt(ra).Sub(c.BodyB.VelocityAt(rb))
	vn := v.Dot(n)
	vnPrev := c.BodyA.PresolveVelocityAt(ra).Sub(c.BodyB.PresolveVelocityAt(rb)).Dot(n)

	restitution := c.Surface.Restitution
	if -vnPrev <= c.Surface.BounceVelocity {
		restitution = 0
	}
	target := math.Max(-restitution*vnPrev, 0)
	applyVelocity(c.BodyA, c.BodyB, ra, rb, n, target-vn)
}

func (c *Contact) tangents() (mgl64.Vec3, mgl64.Vec3) {
	dir := c.Surface.FrictionDir
	dir = dir.Sub(c.Normal.Mul(dir.Dot(c.Normal)))
	if dir.LenSqr() < epsilon {
		return actor.TangentBasis(c.Normal)
	}
	t1 := dir.Normalize()
	return t1, c.Normal.Cross(t1)
}
