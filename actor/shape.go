package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the narrow phase view of a collision shape, in local space
type Shape interface {
	// ComputeAABB returns the world bounds of the shape placed at transform
	ComputeAABB(transform Transform) AABB
	// Support returns the farthest local point along direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// ContactFeature returns the local point, edge or face most aligned with direction
	ContactFeature(direction mgl64.Vec3) []mgl64.Vec3
}

// Box is an oriented box defined by its half-extents
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) corners() [8]mgl64.Vec3 {
	h := b.HalfExtents
	var out [8]mgl64.Vec3
	for i := range out {
		out[i] = mgl64.Vec3{h[0], h[1], h[2]}
		if i&1 == 0 {
			out[i][0] = -h[0]
		}
		if i&2 == 0 {
			out[i][1] = -h[1]
		}
		if i&4 == 0 {
			out[i][2] = -h[2]
		}
	}
	return out
}

// WorldCorners returns the eight corners of the box placed at transform
func (b *Box) WorldCorners(transform Transform) [8]mgl64.Vec3 {
	corners := b.corners()
	for i := range corners {
		corners[i] = transform.PointToWorld(corners[i])
	}
	return corners
}

func (b *Box) ComputeAABB(transform Transform) AABB {
	corners := b.WorldCorners(transform)
	aabb := AABB{Min: corners[0], Max: corners[0]}
	for _, c := range corners[1:] {
		for k := 0; k < 3; k++ {
			aabb.Min[k] = math.Min(aabb.Min[k], c[k])
			aabb.Max[k] = math.Max(aabb.Max[k], c[k])
		}
	}
	return aabb
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	s := b.HalfExtents
	for k := 0; k < 3; k++ {
		if direction[k] < 0 {
			s[k] = -s[k]
		}
	}
	return s
}

// ContactFeature returns the face whose normal is closest to direction,
// wound counter-clockwise seen from outside.
func (b *Box) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	axis := 0
	for k := 1; k < 3; k++ {
		if math.Abs(direction[k]) > math.Abs(direction[axis]) {
			axis = k
		}
	}
	sign := 1.0
	if direction[axis] < 0 {
		sign = -1.0
	}

	u, v := (axis+1)%3, (axis+2)%3
	h := b.HalfExtents
	face := make([]mgl64.Vec3, 4)
	offsets := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, o := range offsets {
		var p mgl64.Vec3
		p[axis] = sign * h[axis]
		p[u] = o[0] * h[u]
		p[v] = sign * o[1] * h[v]
		face[i] = p
	}
	return face
}

// Sphere is a ball of the given radius
type Sphere struct {
	Radius float64
}

func (s *Sphere) ComputeAABB(transform Transform) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{
		Min: transform.Position.Sub(r),
		Max: transform.Position.Add(r),
	}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-20 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

// Plane is the static half space Normal·p <= Distance, always in world space
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// planeHalfSize bounds the finite stand-in used when a plane has to answer support queries
const planeHalfSize = 1000.0

func (p *Plane) ComputeAABB(Transform) AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{-inf, -inf, -inf},
		Max: mgl64.Vec3{inf, inf, inf},
	}
}

// SignedDistance returns how far point lies above the plane
func (p *Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) - p.Distance
}

func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	t1, t2 := TangentBasis(p.Normal)
	center := p.Normal.Mul(p.Distance)
	s := center
	if direction.Dot(t1) >= 0 {
		s = s.Add(t1.Mul(planeHalfSize))
	} else {
		s = s.Sub(t1.Mul(planeHalfSize))
	}
	if direction.Dot(t2) >= 0 {
		s = s.Add(t2.Mul(planeHalfSize))
	} else {
		s = s.Sub(t2.Mul(planeHalfSize))
	}
	if direction.Dot(p.Normal) < 0 {
		s = s.Sub(p.Normal.Mul(planeHalfSize))
	}
	return s
}

func (p *Plane) ContactFeature(mgl64.Vec3) []mgl64.Vec3 {
	t1, t2 := TangentBasis(p.Normal)
	center := p.Normal.Mul(p.Distance)
	return []mgl64.Vec3{
		center.Add(t1.Mul(-planeHalfSize)).Add(t2.Mul(-planeHalfSize)),
		center.Add(t1.Mul(planeHalfSize)).Add(t2.Mul(-planeHalfSize)),
		center.Add(t1.Mul(planeHalfSize)).Add(t2.Mul(planeHalfSize)),
		center.Add(t1.Mul(-planeHalfSize)).Add(t2.Mul(planeHalfSize)),
	}
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// Collidable is a shape placed in the world
type Collidable struct {
	Shape     Shape
	Transform Transform
}

// SupportWorld returns the farthest world point along direction
func (c Collidable) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	if _, ok := c.Shape.(*Plane); ok {
		return c.Shape.Support(direction)
	}
	local := c.Shape.Support(c.Transform.VectorToLocal(direction))
	return c.Transform.PointToWorld(local)
}

// Center returns the world origin of the shape
func (c Collidable) Center() mgl64.Vec3 {
	return c.Transform.Position
}

// FeatureWorld returns the contact feature along a world direction, in world space
func (c Collidable) FeatureWorld(direction mgl64.Vec3) []mgl64.Vec3 {
	if _, ok := c.Shape.(*Plane); ok {
		return c.Shape.ContactFeature(direction)
	}
	feature := c.Shape.ContactFeature(c.Transform.VectorToLocal(direction))
	for i := range feature {
		feature[i] = c.Transform.PointToWorld(feature[i])
	}
	return feature
}

func (c Collidable) AABB() AABB {
	return c.Shape.ComputeAABB(c.Transform)
}
