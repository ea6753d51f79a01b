package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mass holds the mass parameters of a body.
type Mass struct {
	Mass   float64
	Center mgl64.Vec3
	// Inertia stores the symmetric tensor as I11, I22, I33, I12, I13, I23.
	Inertia [6]float64
}

// BoxMass returns the mass of a solid box of the given density and full size.
func BoxMass(density float64, size mgl64.Vec3) Mass {
	m := density * size.X() * size.Y() * size.Z()
	x2, y2, z2 := size.X()*size.X(), size.Y()*size.Y(), size.Z()*size.Z()

	return Mass{
		Mass: m,
		Inertia: [6]float64{
			m / 12 * (y2 + z2),
			m / 12 * (x2 + z2),
			m / 12 * (x2 + y2),
			0, 0, 0,
		},
	}
}

// SphereMass returns the mass of a solid sphere of the given density.
func SphereMass(density, radius float64) Mass {
	m := density * 4.0 / 3.0 * math.Pi * radius * radius * radius
	i := 2.0 / 5.0 * m * radius * radius

	return Mass{Mass: m, Inertia: [6]float64{i, i, i, 0, 0, 0}}
}

// Adjust scales the parameters so that the total mass becomes total.
func (m Mass) Adjust(total float64) Mass {
	if m.Mass == 0 {
		return m
	}
	scale := total / m.Mass
	m.Mass = total
	for i := range m.Inertia {
		m.Inertia[i] *= scale
	}

	return m
}

// InertiaMatrix expands the stored tensor into a full matrix.
func (m Mass) InertiaMatrix() mgl64.Mat3 {
	i := m.Inertia
	return mgl64.Mat3{
		i[0], i[3], i[4],
		i[3], i[1], i[5],
		i[4], i[5], i[2],
	}
}

// ShapeKind identifies a collision shape.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapePlane:
		return "plane"
	}
	return "unknown"
}

// Shape describes the geometry of a Geom.
type Shape interface {
	Kind() ShapeKind
}

// Box is a box of full size Size centred on the geom origin.
type Box struct {
	Size mgl64.Vec3
}

func (Box) Kind() ShapeKind { return ShapeBox }

type Sphere struct {
	Radius float64
}

func (Sphere) Kind() ShapeKind { return ShapeSphere }

// Plane is the half space Normal·p <= Distance. Planes are always static.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

func (Plane) Kind() ShapeKind { return ShapePlane }

// SurfaceMode selects which surface parameters of a contact are in effect.
type SurfaceMode uint32

const (
	ModeMu2 SurfaceMode = 1 << iota
	ModeFDir1
	ModeBounce
	ModeSoftERP
	ModeSoftCFM
	ModeMotion1
	ModeMotion2
	ModeSlip1
	ModeSlip2
	ModeApprox1
)

// Has reports whether every bit of flag is set.
func (m SurfaceMode) Has(flag SurfaceMode) bool {
	return m&flag == flag
}

// Surface carries the physical parameters of one contact.
type Surface struct {
	Mode      SurfaceMode
	Mu        float64
	Mu2       float64
	Bounce    float64
	BounceVel float64
	SoftERP   float64
	SoftCFM   float64
	Motion1   float64
	Motion2   float64
	Slip1     float64
	Slip2     float64
}

// ContactGeom is the geometric part of a contact. The normal points from
// Geom2 toward Geom1: moving Geom1 by Normal*Depth separates the pair.
type ContactGeom struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Depth    float64
	Geom1    Geom
	Geom2    Geom
}

// Contact is one slot of the bulk contact buffer.
type Contact struct {
	Surface     Surface
	Geom        ContactGeom
	FrictionDir mgl64.Vec3
}

// JointKind identifies a joint constructor.
type JointKind int

const (
	JointBall JointKind = iota
	JointHinge
	JointHinge2
	JointSlider
	JointUniversal
	JointAMotor
)

func (k JointKind) String() string {
	switch k {
	case JointBall:
		return "ball"
	case JointHinge:
		return "hinge"
	case JointHinge2:
		return "hinge2"
	case JointSlider:
		return "slider"
	case JointUniversal:
		return "universal"
	case JointAMotor:
		return "amotor"
	}
	return "unknown"
}

// Param names a per-axis joint parameter.
type Param int

const (
	ParamLoStop Param = iota
	ParamHiStop
	ParamVel
	ParamFMax
	ParamBounce
	ParamStopERP
	ParamStopCFM
	ParamSuspensionERP
	ParamSuspensionCFM
)

// MaxAxes is the highest axis number a joint accepts.
const MaxAxes = 3

// MotorMode selects how an angular motor computes its angles.
type MotorMode int

const (
	// MotorUser leaves the angles to the caller.
	MotorUser MotorMode = iota
	// MotorEuler derives axis 2 and all angles from the body orientations.
	MotorEuler
)
