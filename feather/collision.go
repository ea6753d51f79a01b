package feather

import (
	"cmp"
	"math"
	"slices"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/akmonengine/rigidscene/epa"
	"github.com/akmonengine/rigidscene/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// NarrowPhase computes the contacts of each pair, at most maxPerPair each.
// Pairs are processed in parallel; the result for pair i lands in slot i.
func NarrowPhase(pairs [][2]*Geom, maxPerPair, workersCount int) [][]engine.ContactGeom {
	results := make([][]engine.ContactGeom, len(pairs))

	taskIndexed(workersCount, len(pairs), func(i int) {
		results[i] = collide(pairs[i][0], pairs[i][1], maxPerPair)
	})

	return results
}

// collide dispatches a pair to its analytic routine, falling back to GJK/EPA.
// Normals point from g2 toward g1.
func collide(g1, g2 *Geom, maxPerPair int) []engine.ContactGeom {
	if !shouldCollide(g1, g2) {
		return nil
	}

	var contacts []engine.ContactGeom
	switch a := g1.collision.(type) {
	case *actor.Sphere:
		switch b := g2.collision.(type) {
		case *actor.Sphere:
			contacts = collideSpheres(g1.pose().Position, a.Radius, g2.pose().Position, b.Radius)
		case *actor.Plane:
			contacts = collideSpherePlane(g1.pose().Position, a.Radius, b)
		case *actor.Box:
			contacts = collideSphereBox(g1.pose().Position, a.Radius, b, g2.pose())
		}
	case *actor.Box:
		switch b := g2.collision.(type) {
		case *actor.Plane:
			contacts = collideBoxPlane(a, g1.pose(), b)
		case *actor.Sphere:
			contacts = flip(collideSphereBox(g2.pose().Position, b.Radius, a, g1.pose()))
		case *actor.Box:
			contacts = collideConvex(g1.collidable(), g2.collidable())
		}
	case *actor.Plane:
		switch b := g2.collision.(type) {
		case *actor.Sphere:
			contacts = flip(collideSpherePlane(g2.pose().Position, b.Radius, a))
		case *actor.Box:
			contacts = flip(collideBoxPlane(b, g2.pose(), a))
		}
	}

	if len(contacts) > maxPerPair {
		slices.SortStableFunc(contacts, func(x, y engine.ContactGeom) int {
			return cmp.Compare(y.Depth, x.Depth)
		})
		contacts = contacts[:maxPerPair]
	}
	for i := range contacts {
		contacts[i].Geom1 = g1
		contacts[i].Geom2 = g2
	}

	return contacts
}

// shouldCollide rejects pairs that cannot produce a useful contact
func shouldCollide(g1, g2 *Geom) bool {
	if g1 == g2 || !g1.enabled || !g2.enabled || g1.destroyed || g2.destroyed {
		return false
	}
	if g1.body != nil && g1.body == g2.body {
		return false
	}
	return g1.dynamic() || g2.dynamic()
}

func flip(contacts []engine.ContactGeom) []engine.ContactGeom {
	for i := range contacts {
		contacts[i].Normal = contacts[i].Normal.Mul(-1)
	}
	return contacts
}

// contactAt places the contact midway through the overlap: the deepest point of
// geom1 is position - normal*depth/2
func contactAt(deepest1, normal mgl64.Vec3, depth float64) engine.ContactGeom {
	return engine.ContactGeom{
		Position: deepest1.Add(normal.Mul(depth / 2)),
		Normal:   normal,
		Depth:    depth,
	}
}

func collideSpheres(c1 mgl64.Vec3, r1 float64, c2 mgl64.Vec3, r2 float64) []engine.ContactGeom {
	d := c1.Sub(c2)
	distance := d.Len()
	if distance >= r1+r2 {
		return nil
	}

	normal := mgl64.Vec3{0, 1, 0}
	if distance > 1e-12 {
		normal = d.Mul(1 / distance)
	}
	depth := r1 + r2 - distance

	return []engine.ContactGeom{contactAt(c1.Sub(normal.Mul(r1)), normal, depth)}
}

func collideSpherePlane(center mgl64.Vec3, radius float64, plane *actor.Plane) []engine.ContactGeom {
	depth := radius - plane.SignedDistance(center)
	if depth <= 0 {
		return nil
	}

	return []engine.ContactGeom{contactAt(center.Sub(plane.Normal.Mul(radius)), plane.Normal, depth)}
}

// collideSphereBox uses the closest point of the box to the sphere centre
func collideSphereBox(center mgl64.Vec3, radius float64, box *actor.Box, pose actor.Transform) []engine.ContactGeom {
	local := pose.PointToLocal(center)
	h := box.HalfExtents

	closest := local
	inside := true
	for k := 0; k < 3; k++ {
		if closest[k] < -h[k] {
			closest[k], inside = -h[k], false
		} else if closest[k] > h[k] {
			closest[k], inside = h[k], false
		}
	}

	var localNormal mgl64.Vec3
	var depth float64
	if inside {
		// push out through the nearest face
		axis, gap := 0, math.Inf(1)
		for k := 0; k < 3; k++ {
			if g := h[k] - math.Abs(local[k]); g < gap {
				axis, gap = k, g
			}
		}
		localNormal[axis] = 1
		if local[axis] < 0 {
			localNormal[axis] = -1
		}
		depth = radius + gap
	} else {
		d := local.Sub(closest)
		distance := d.Len()
		if distance >= radius {
			return nil
		}
		localNormal = d.Mul(1 / distance)
		depth = radius - distance
	}

	normal := pose.VectorToWorld(localNormal)
	return []engine.ContactGeom{contactAt(center.Sub(normal.Mul(radius)), normal, depth)}
}

// collideBoxPlane returns one contact per corner below the plane
func collideBoxPlane(box *actor.Box, pose actor.Transform, plane *actor.Plane) []engine.ContactGeom {
	var contacts []engine.ContactGeom
	for _, corner := range box.WorldCorners(pose) {
		depth := -plane.SignedDistance(corner)
		if depth > 0 {
			contacts = append(contacts, contactAt(corner, plane.Normal, depth))
		}
	}
	return contacts
}

// collideConvex runs GJK, then EPA for the penetration
func collideConvex(a, b actor.Collidable) []engine.ContactGeom {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.Intersect(a, b, simplex) {
		return nil
	}

	result, err := epa.Penetrate(a, b, simplex)
	if err != nil || result.Depth <= 0 {
		return nil
	}

	// EPA reports the normal from a toward b
	normal := result.Normal.Mul(-1)
	contacts := make([]engine.ContactGeom, len(result.Points))
	for i, p := range result.Points {
		contacts[i] = engine.ContactGeom{Position: p, Normal: normal, Depth: result.Depth}
	}
	return contacts
}
