package epa

import (
	"math"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Manifold clips the contact features of a and b along normal (from A toward
// B) and returns up to 4 world contact points.
//
// The feature with fewer vertices is the incident one; it is clipped against
// the side planes of the reference feature (Sutherland-Hodgman), then against
// the reference face itself.
func Manifold(a, b Shape, normal mgl64.Vec3) []mgl64.Vec3 {
	featureA := a.FeatureWorld(normal)
	featureB := b.FeatureWorld(normal.Mul(-1))

	incident, reference := featureB, featureA
	referenceNormal := normal
	if len(featureA) < len(featureB) {
		incident, reference = featureA, featureB
		referenceNormal = normal.Mul(-1)
	}

	if len(incident) == 1 {
		return []mgl64.Vec3{incident[0]}
	}

	clipped := clipToSides(incident, reference, normal)

	var points []mgl64.Vec3
	if len(reference) >= 3 {
		faceNormal := reference[1].Sub(reference[0]).Cross(reference[2].Sub(reference[0]))
		if faceNormal.LenSqr() > 1e-16 {
			faceNormal = faceNormal.Normalize()
			if faceNormal.Dot(referenceNormal) < 0 {
				faceNormal = faceNormal.Mul(-1)
			}
			offset := reference[0].Dot(faceNormal)
			for _, point := range clipped {
				if point.Dot(faceNormal)-offset <= 0 {
					points = append(points, point)
				}
			}
		}
	} else {
		points = clipped
	}

	if len(points) == 0 {
		points = append(points, b.SupportWorld(normal.Mul(-1)))
	}
	if len(points) > 4 {
		points = reduce(points, normal)
	}

	return points
}

func clipToSides(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	if len(reference) < 3 || isUnbounded(reference) {
		return incident
	}

	center := centroid(reference)
	output := incident
	for i := range reference {
		if len(output) == 0 {
			break
		}
		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		side := v2.Sub(v1).Cross(normal)
		if side.LenSqr() < 1e-16 {
			continue
		}
		side = side.Normalize()
		if center.Sub(v1).Dot(side) < 0 {
			side = side.Mul(-1)
		}
		output = clipPolygon(output, v1, side)
	}

	return output
}

// clipPolygon keeps the part of polygon on the positive side of the plane
func clipPolygon(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	const tolerance = 1e-6

	output := make([]mgl64.Vec3, 0, len(polygon)+1)
	for i, current := range polygon {
		next := polygon[(i+1)%len(polygon)]
		currentDistance := current.Sub(planePoint).Dot(planeNormal)
		nextDistance := next.Sub(planePoint).Dot(planeNormal)

		if currentDistance >= -tolerance {
			output = append(output, current)
			if nextDistance < -tolerance {
				output = append(output, intersect(current, next, currentDistance, nextDistance))
			}
		} else if nextDistance >= -tolerance {
			output = append(output, intersect(current, next, currentDistance, nextDistance))
		}
	}

	return output
}

func intersect(p1, p2 mgl64.Vec3, d1, d2 float64) mgl64.Vec3 {
	denominator := d1 - d2
	if math.Abs(denominator) < 1e-12 {
		return p1
	}
	t := math.Max(0, math.Min(1, d1/denominator))
	return p1.Add(p2.Sub(p1).Mul(t))
}

func centroid(points []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// isUnbounded detects the finite stand-in of a plane
func isUnbounded(feature []mgl64.Vec3) bool {
	for i := range feature {
		for j := i + 1; j < len(feature); j++ {
			if feature[i].Sub(feature[j]).Len() > 100 {
				return true
			}
		}
	}
	return false
}

// reduce keeps the extreme points along the two tangent directions
func reduce(points []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	t1, t2 := actor.TangentBasis(normal)

	extremes := [4]int{}
	values := [4]float64{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for i, p := range points {
		x, y := p.Dot(t1), p.Dot(t2)
		if x < values[0] {
			values[0], extremes[0] = x, i
		}
		if x > values[1] {
			values[1], extremes[1] = x, i
		}
		if y < values[2] {
			values[2], extremes[2] = y, i
		}
		if y > values[3] {
			values[3], extremes[3] = y, i
		}
	}

	result := make([]mgl64.Vec3, 0, 4)
	seen := map[int]bool{}
	for _, index := range extremes {
		if !seen[index] {
			seen[index] = true
			result = append(result, points[index])
		}
	}
	return result
}
