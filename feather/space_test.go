package feather

import (
	"testing"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

func pairIDs(pairs [][2]*Geom) [][2]uint64 {
	ids := make([][2]uint64, len(pairs))
	for i, p := range pairs {
		ids[i] = [2]uint64{p[0].id, p[1].id}
	}
	return ids
}

// ============================================================================
// Membership
// ============================================================================

func TestSpaceAddRemove(t *testing.T) {
	e := New()
	s1 := e.NewHashSpace(nil).(*Space)
	s2 := e.NewHashSpace(nil).(*Space)
	g := createGeom(t, e, engine.Sphere{Radius: 1}, mgl64.Vec3{})

	s1.Add(g)
	if g.Space() != engine.Space(s1) || len(s1.Geoms()) != 1 {
		t.Fatal("geom not registered in s1")
	}

	// moving to another space leaves the first one
	s2.Add(g)
	if g.Space() != engine.Space(s2) || len(s1.Geoms()) != 0 || len(s2.Geoms()) != 1 {
		t.Error("geom should only be registered in s2")
	}

	s1.Remove(g)
	if len(s2.Geoms()) != 1 {
		t.Error("Remove from a foreign space must not unregister the geom")
	}

	s2.Remove(g)
	if g.Space() != nil || len(s2.Geoms()) != 0 {
		t.Error("geom still registered after Remove")
	}
}

func TestSpaceHierarchy(t *testing.T) {
	e := New()
	root := e.NewHashSpace(nil).(*Space)
	child := e.NewQuadTreeSpace(root, mgl64.Vec3{}, mgl64.Vec3{10, 10, 10}, engine.QuadTreeDepth).(*Space)

	if child.Parent() != engine.Space(root) {
		t.Error("child parent not recorded")
	}
	if root.Parent() != nil {
		t.Error("root space should have no parent")
	}
	if len(root.children) != 1 || root.children[0] != child {
		t.Error("child not registered in the parent")
	}
}

func TestSpaceDestroyCleanup(t *testing.T) {
	tests := []struct {
		name    string
		cleanup bool
	}{
		{"cleanup", true},
		{"release", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			root := e.NewHashSpace(nil).(*Space)
			child := e.NewHashSpace(root).(*Space)
			g := createGeom(t, e, engine.Sphere{Radius: 1}, mgl64.Vec3{})
			inner := createGeom(t, e, engine.Sphere{Radius: 1}, mgl64.Vec3{})
			root.Add(g)
			child.Add(inner)

			root.SetCleanup(tt.cleanup)
			root.Destroy()

			if g.destroyed != tt.cleanup || inner.destroyed != tt.cleanup || child.destroyed != tt.cleanup {
				t.Errorf("destroyed geom=%v inner=%v child=%v, want %v", g.destroyed, inner.destroyed, child.destroyed, tt.cleanup)
			}
			if g.Space() != nil {
				t.Error("geom still points to the destroyed space")
			}
			if !tt.cleanup && child.Parent() != nil {
				t.Error("released child still points to the destroyed parent")
			}
		})
	}
}

func TestGeomDestroyUnregisters(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s := e.NewHashSpace(nil).(*Space)
	g, b := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{})
	s.Add(g)

	g.Destroy()

	if len(s.geoms) != 0 || len(b.geoms) != 0 {
		t.Error("destroyed geom still referenced")
	}
	s.Add(g)
	if len(s.geoms) != 0 {
		t.Error("a destroyed geom must not be added")
	}
}

// ============================================================================
// Candidate pairs
// ============================================================================

func fillScene(t *testing.T, e *Engine, w *World, s engine.Space) {
	t.Helper()
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			pos := mgl64.Vec3{float64(i) * 1.5, 0.8, float64(j) * 1.5}
			g, _ := createDynamic(t, e, w, engine.Sphere{Radius: 0.8}, pos)
			s.Add(g)
		}
	}
	s.Add(groundPlane(t, e))
}

func TestQuadTreeMatchesHash(t *testing.T) {
	hashEngine := New()
	hash := hashEngine.NewHashSpace(nil).(*Space)
	fillScene(t, hashEngine, hashEngine.NewWorld().(*World), hash)

	quadEngine := New()
	quad := quadEngine.NewQuadTreeSpace(nil, mgl64.Vec3{3, 0, 3}, mgl64.Vec3{4, 4, 4}, engine.QuadTreeDepth).(*Space)
	fillScene(t, quadEngine, quadEngine.NewWorld().(*World), quad)

	hashPairs := pairIDs(hash.candidatePairs())
	quadPairs := pairIDs(quad.candidatePairs())

	// 72 neighbour pairs of the 5x5 grid, diagonals included, and 25 with the plane
	if len(hashPairs) != 97 {
		t.Errorf("hash space found %d pairs, want 97", len(hashPairs))
	}
	if len(hashPairs) != len(quadPairs) {
		t.Fatalf("hash found %d pairs, quadtree %d", len(hashPairs), len(quadPairs))
	}
	for i := range hashPairs {
		if hashPairs[i] != quadPairs[i] {
			t.Errorf("pair %d: hash %v, quadtree %v", i, hashPairs[i], quadPairs[i])
		}
	}
}

func TestCandidatePairsSorted(t *testing.T) {
	e := New(WithWorkers(3))
	s := e.NewHashSpace(nil).(*Space)
	fillScene(t, e, e.NewWorld().(*World), s)

	pairs := pairIDs(s.candidatePairs())
	for i, p := range pairs {
		if p[0] >= p[1] {
			t.Errorf("pair %v is not canonical", p)
		}
		if i > 0 {
			prev := pairs[i-1]
			if prev[0] > p[0] || (prev[0] == p[0] && prev[1] >= p[1]) {
				t.Errorf("pairs %v and %v out of order", prev, p)
			}
		}
	}
}

func TestCandidatePairsSkipDisabled(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s := e.NewHashSpace(nil).(*Space)
	g1, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{})
	g2, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{1, 0, 0})
	s.Add(g1)
	s.Add(g2)

	if n := len(s.candidatePairs()); n != 1 {
		t.Fatalf("got %d pairs, want 1", n)
	}
	g2.Disable()
	if n := len(s.candidatePairs()); n != 0 {
		t.Errorf("got %d pairs with a disabled geom, want 0", n)
	}
}

func TestCrossPairs(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	a := e.NewHashSpace(nil).(*Space)
	b := e.NewHashSpace(nil).(*Space)

	ga, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{})
	gb, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{1, 0, 0})
	far, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{10, 0, 0})
	a.Add(ga)
	b.Add(gb)
	b.Add(far)

	pairs := crossPairs(b, a)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0][0] != ga || pairs[0][1] != gb {
		t.Error("cross pair is not canonical")
	}
}

func TestQuadTreeOutsideBounds(t *testing.T) {
	q := newQuadTree(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, 3)
	aabbs := []actor.AABB{
		{Min: mgl64.Vec3{4, 0, 4}, Max: mgl64.Vec3{6, 1, 6}},
		{Min: mgl64.Vec3{5, 0, 5}, Max: mgl64.Vec3{7, 1, 7}},
		{Min: mgl64.Vec3{-0.5, 0, -0.5}, Max: mgl64.Vec3{-0.4, 1, -0.4}},
	}

	pairs := q.pairs(aabbs, 1)
	if len(pairs) != 1 || pairs[0] != (Pair{A: 0, B: 1}) {
		t.Errorf("pairs = %v, want [{0 1}]", pairs)
	}
}
