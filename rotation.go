package rigidscene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotation is an axis and an angle in radians around it.
type Rotation struct {
	Axis  mgl64.Vec3
	Angle float64
}

// DefaultRotation is the identity, expressed around +Z.
var DefaultRotation = Rotation{Axis: mgl64.Vec3{0, 0, 1}}

// Quat converts r to a unit quaternion. A zero axis means no rotation.
func (r Rotation) Quat() mgl64.Quat {
	if r.Axis.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(r.Angle, r.Axis.Normalize())
}

func rotationFromQuat(q mgl64.Quat) Rotation {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := math.Sqrt(1 - q.W*q.W)
	if s < 1e-9 {
		return DefaultRotation
	}
	return Rotation{Axis: q.V.Mul(1 / s), Angle: 2 * math.Acos(math.Min(1, q.W))}
}
