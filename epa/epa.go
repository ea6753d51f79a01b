// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA runs after GJK has found an overlap. Starting from the GJK tetrahedron it
// repeatedly pushes the face of the Minkowski difference closest to the origin
// outward, until the support point in that face's normal no longer improves the
// distance. That face gives the minimum translation vector: its normal is the
// contact normal and its distance the penetration depth. A contact manifold is
// then clipped from the features of both shapes along that normal.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"math"

	"github.com/akmonengine/rigidscene/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	MaxIterations        = 32
	ConvergenceTolerance = 0.001
	// MinFaceDistance discards faces passing through the origin.
	MinFaceDistance = 0.0001
	// NormalSnapThreshold zeroes tiny normal components.
	NormalSnapThreshold = 1e-8
	// DegeneratePenetration is used when GJK ends on a touching simplex.
	DegeneratePenetration = 0.01
)

var ErrNoConvergence = errors.New("epa: polytope expansion did not converge")

// Shape is a convex shape able to describe its contact feature in world space
type Shape interface {
	gjk.Convex
	FeatureWorld(direction mgl64.Vec3) []mgl64.Vec3
}

// Result describes the penetration of A into B. Normal points from A toward B:
// moving B by Normal*Depth separates the shapes.
type Result struct {
	Normal mgl64.Vec3
	Depth  float64
	Points []mgl64.Vec3
}

// Penetrate computes the penetration of two overlapping shapes from the final
// GJK simplex.
func Penetrate(a, b Shape, simplex *gjk.Simplex) (Result, error) {
	if simplex.Count < 4 {
		return degenerate(a, b, simplex), nil
	}

	p := polytopePool.Get().(*polytope)
	defer polytopePool.Put(p)
	p.reset(simplex)

	for i := 0; i < MaxIterations; i++ {
		if len(p.faces) == 0 {
			break
		}

		index := p.closest()
		face := p.faces[index]
		if face.distance < MinFaceDistance && len(p.faces) > 1 {
			p.removeFace(index)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, face.normal)
		if support.Dot(face.normal)-face.distance < ConvergenceTolerance {
			return result(a, b, snap(face.normal), face.distance), nil
		}

		if !p.expand(support) {
			return result(a, b, snap(face.normal), face.distance), nil
		}
	}

	return Result{}, ErrNoConvergence
}

func result(a, b Shape, normal mgl64.Vec3, depth float64) Result {
	return Result{
		Normal: normal,
		Depth:  depth,
		Points: Manifold(a, b, normal),
	}
}

// degenerate estimates a contact when the shapes merely touch and GJK could
// not build a tetrahedron
func degenerate(a, b Shape, simplex *gjk.Simplex) Result {
	var normal mgl64.Vec3
	depth := DegeneratePenetration

	if simplex.Count >= 2 {
		closest := simplex.Points[0]
		for _, point := range simplex.Points[1:simplex.Count] {
			if point.LenSqr() < closest.LenSqr() {
				closest = point
			}
		}
		if closest.LenSqr() > 1e-16 {
			depth = closest.Len()
			normal = closest.Mul(-1 / depth)
		}
	}

	if normal.LenSqr() == 0 {
		normal = b.Center().Sub(a.Center())
		if normal.LenSqr() < 1e-16 {
			normal = mgl64.Vec3{0, 1, 0}
		}
		normal = normal.Normalize()
	}

	return result(a, b, snap(normal), depth)
}

func snap(normal mgl64.Vec3) mgl64.Vec3 {
	for i := range normal {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}
	return normal.Normalize()
}
