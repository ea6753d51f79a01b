package feather

import (
	"slices"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/engine"
)

// spatialIndex finds the candidate pairs among bounded geoms
type spatialIndex interface {
	pairs(aabbs []actor.AABB, workers int) []Pair
}

// hashIndex is the unbounded index backed by a spatial hash grid
type hashIndex struct {
	grid *SpatialGrid
}

func (h *hashIndex) pairs(aabbs []actor.AABB, workers int) []Pair {
	h.grid.Clear()
	for i, aabb := range aabbs {
		h.grid.Insert(i, aabb)
	}
	h.grid.SortCells()

	if workers <= 1 {
		return h.grid.FindPairs(aabbs)
	}

	var pairs []Pair
	for p := range h.grid.FindPairsParallel(aabbs, workers) {
		pairs = append(pairs, p)
	}
	return pairs
}

// Space groups geoms and child spaces
type Space struct {
	engine    *Engine
	index     spatialIndex
	parent    *Space
	geoms     []*Geom
	children  []*Space
	cleanup   bool
	destroyed bool
}

func newSpace(e *Engine, index spatialIndex) *Space {
	return &Space{engine: e, index: index, cleanup: true}
}

func (s *Space) attachTo(parent engine.Space) {
	p, ok := parent.(*Space)
	if !ok || p == nil || p.destroyed {
		return
	}
	s.parent = p
	p.children = append(p.children, s)
}

// Add registers g, moving it out of any other space
func (s *Space) Add(g engine.Geom) {
	geom, ok := g.(*Geom)
	if !ok || geom.destroyed || s.destroyed || geom.space == s {
		return
	}
	if geom.space != nil {
		geom.space.remove(geom)
	}
	geom.space = s
	s.geoms = append(s.geoms, geom)
}

func (s *Space) Remove(g engine.Geom) {
	if geom, ok := g.(*Geom); ok && geom.space == s {
		s.remove(geom)
	}
}

func (s *Space) remove(g *Geom) {
	if i := slices.Index(s.geoms, g); i >= 0 {
		s.geoms = slices.Delete(s.geoms, i, i+1)
	}
	g.space = nil
}

func (s *Space) Geoms() []engine.Geom {
	geoms := make([]engine.Geom, len(s.geoms))
	for i, g := range s.geoms {
		geoms[i] = g
	}
	return geoms
}

func (s *Space) Parent() engine.Space {
	if s.parent == nil {
		return nil
	}
	return s.parent
}

func (s *Space) SetCleanup(enabled bool) {
	s.cleanup = enabled
}

// Destroy unregisters the space from its parent. With cleanup enabled the
// geoms and child spaces are destroyed too, otherwise they are only released.
func (s *Space) Destroy() {
	if s.destroyed {
		return
	}

	for _, g := range slices.Clone(s.geoms) {
		if s.cleanup {
			g.Destroy()
		} else {
			s.remove(g)
		}
	}
	for _, child := range slices.Clone(s.children) {
		if s.cleanup {
			child.Destroy()
		} else {
			child.parent = nil
		}
	}
	s.children = nil

	if s.parent != nil {
		if i := slices.Index(s.parent.children, s); i >= 0 {
			s.parent.children = slices.Delete(s.parent.children, i, i+1)
		}
		s.parent = nil
	}
	s.destroyed = true
}

// candidatePairs returns the overlapping pairs of enabled geoms registered
// directly in this space, sorted by geom id. Unbounded geoms bypass the index
// and are tested against everything.
func (s *Space) candidatePairs() [][2]*Geom {
	var bounded, unbounded []*Geom
	var aabbs []actor.AABB
	for _, g := range s.geoms {
		if !g.enabled {
			continue
		}
		aabb := g.aabb()
		if aabb.IsBounded() {
			bounded = append(bounded, g)
			aabbs = append(aabbs, aabb)
		} else {
			unbounded = append(unbounded, g)
		}
	}

	var pairs [][2]*Geom
	for _, p := range s.index.pairs(aabbs, s.engine.workers) {
		pairs = append(pairs, canonical(bounded[p.A], bounded[p.B]))
	}
	for i, u := range unbounded {
		for _, other := range unbounded[i+1:] {
			pairs = append(pairs, canonical(u, other))
		}
		for _, other := range bounded {
			pairs = append(pairs, canonical(u, other))
		}
	}

	sortPairs(pairs)
	return pairs
}

// crossPairs returns the overlapping pairs made of one enabled geom of a and
// one of b
func crossPairs(a, b *Space) [][2]*Geom {
	var pairs [][2]*Geom
	for _, ga := range a.geoms {
		if !ga.enabled {
			continue
		}
		boxA := ga.aabb()
		for _, gb := range b.geoms {
			if !gb.enabled || ga == gb {
				continue
			}
			if boxA.Overlaps(gb.aabb()) {
				pairs = append(pairs, canonical(ga, gb))
			}
		}
	}

	sortPairs(pairs)
	return pairs
}

func canonical(a, b *Geom) [2]*Geom {
	if b.id < a.id {
		a, b = b, a
	}
	return [2]*Geom{a, b}
}

func sortPairs(pairs [][2]*Geom) {
	slices.SortFunc(pairs, func(p, q [2]*Geom) int {
		if p[0].id != q[0].id {
			if p[0].id < q[0].id {
				return -1
			}
			return 1
		}
		if p[1].id < q[1].id {
			return -1
		}
		if p[1].id > q[1].id {
			return 1
		}
		return 0
	})
}
