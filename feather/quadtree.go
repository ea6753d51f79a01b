package feather

import (
	"github.com/akmonengine/rigidscene/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// quadNode covers a rectangle of the X/Z plane. Items are stored in the
// deepest node whose rectangle contains their bounds.
type quadNode struct {
	min, max [2]float64
	children []*quadNode
	items    []int
}

// quadTree is the bounded index: a fixed depth subdivision of center ±
// extents on X and Z
type quadTree struct {
	root *quadNode
}

func newQuadTree(center, extents mgl64.Vec3, depth int) *quadTree {
	root := &quadNode{
		min: [2]float64{center.X() - extents.X(), center.Z() - extents.Z()},
		max: [2]float64{center.X() + extents.X(), center.Z() + extents.Z()},
	}
	root.subdivide(max(0, depth))

	return &quadTree{root: root}
}

func (n *quadNode) subdivide(depth int) {
	if depth == 0 {
		return
	}
	mid := [2]float64{(n.min[0] + n.max[0]) / 2, (n.min[1] + n.max[1]) / 2}
	n.children = make([]*quadNode, 4)
	for i := range n.children {
		child := &quadNode{min: n.min, max: mid}
		if i&1 != 0 {
			child.min[0], child.max[0] = mid[0], n.max[0]
		}
		if i&2 != 0 {
			child.min[1], child.max[1] = mid[1], n.max[1]
		}
		child.subdivide(depth - 1)
		n.children[i] = child
	}
}

func (n *quadNode) contains(aabb actor.AABB) bool {
	return aabb.Min.X() >= n.min[0] && aabb.Max.X() <= n.max[0] &&
		aabb.Min.Z() >= n.min[1] && aabb.Max.Z() <= n.max[1]
}

func (n *quadNode) clear() {
	n.items = n.items[:0]
	for _, child := range n.children {
		child.clear()
	}
}

func (n *quadNode) insert(index int, aabb actor.AABB) {
	for _, child := range n.children {
		if child.contains(aabb) {
			child.insert(index, aabb)
			return
		}
	}
	n.items = append(n.items, index)
}

// collect appends every pair stored in this subtree, each item being tested
// against its own node and every ancestor
func (n *quadNode) collect(pairs []Pair, aabbs []actor.AABB, ancestors []int) []Pair {
	for i, a := range n.items {
		for _, b := range n.items[i+1:] {
			if aabbs[a].Overlaps(aabbs[b]) {
				pairs = append(pairs, orderedPair(a, b))
			}
		}
		for _, b := range ancestors {
			if aabbs[a].Overlaps(aabbs[b]) {
				pairs = append(pairs, orderedPair(a, b))
			}
		}
	}

	if len(n.children) > 0 {
		below := append(ancestors[:len(ancestors):len(ancestors)], n.items...)
		for _, child := range n.children {
			pairs = child.collect(pairs, aabbs, below)
		}
	}

	return pairs
}

func (q *quadTree) pairs(aabbs []actor.AABB, _ int) []Pair {
	q.root.clear()
	for i, aabb := range aabbs {
		q.root.insert(i, aabb)
	}

	return q.root.collect(nil, aabbs, nil)
}

func orderedPair(a, b int) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}
