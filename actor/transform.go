package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid placement in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// PointToWorld maps a local point to world space
func (t Transform) PointToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// PointToLocal maps a world point to local space
func (t Transform) PointToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Position))
}

// VectorToWorld rotates a local direction to world space
func (t Transform) VectorToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(v)
}

// VectorToLocal rotates a world direction to local space
func (t Transform) VectorToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(v)
}

// Compose returns the placement of a child expressed in t's frame
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.PointToWorld(child.Position),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
	}
}
