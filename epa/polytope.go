package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/rigidscene/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

type face struct {
	indices  [3]int
	normal   mgl64.Vec3
	distance float64
}

type edge struct {
	a, b int
}

// polytope is the convex hull being expanded, faces wound counter clockwise
// seen from outside
type polytope struct {
	vertices []mgl64.Vec3
	faces    []face
	horizon  []edge
}

var polytopePool = sync.Pool{
	New: func() interface{} {
		return &polytope{
			vertices: make([]mgl64.Vec3, 0, 16),
			faces:    make([]face, 0, 32),
			horizon:  make([]edge, 0, 16),
		}
	},
}

func (p *polytope) reset(simplex *gjk.Simplex) {
	p.vertices = append(p.vertices[:0], simplex.Points[:4]...)
	p.faces = p.faces[:0]
	p.horizon = p.horizon[:0]

	p.addFace(0, 1, 2)
	p.addFace(0, 3, 1)
	p.addFace(0, 2, 3)
	p.addFace(1, 3, 2)
}

// addFace appends the triangle, flipping it so that its normal points away
// from the origin
func (p *polytope) addFace(i, j, k int) {
	a, b, c := p.vertices[i], p.vertices[j], p.vertices[k]
	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < 1e-12 {
		return
	}
	normal = normal.Mul(1 / length)

	distance := normal.Dot(a)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
		j, k = k, j
	}

	p.faces = append(p.faces, face{indices: [3]int{i, j, k}, normal: normal, distance: distance})
}

func (p *polytope) closest() int {
	index := 0
	best := math.Inf(1)
	for i, f := range p.faces {
		if f.distance < best {
			best = f.distance
			index = i
		}
	}
	return index
}

func (p *polytope) removeFace(i int) {
	last := len(p.faces) - 1
	p.faces[i] = p.faces[last]
	p.faces = p.faces[:last]
}

// expand adds support to the hull, replacing every face it can see by a fan
// around the horizon. It returns false when nothing could be added.
func (p *polytope) expand(support mgl64.Vec3) bool {
	p.horizon = p.horizon[:0]

	for i := 0; i < len(p.faces); {
		f := p.faces[i]
		if f.normal.Dot(support.Sub(p.vertices[f.indices[0]])) > 0 {
			for e := 0; e < 3; e++ {
				p.toggleEdge(f.indices[e], f.indices[(e+1)%3])
			}
			p.removeFace(i)
			continue
		}
		i++
	}

	if len(p.horizon) == 0 {
		return false
	}

	p.vertices = append(p.vertices, support)
	index := len(p.vertices) - 1
	for _, e := range p.horizon {
		p.addFace(e.a, e.b, index)
	}
	return true
}

// toggleEdge records a silhouette edge, cancelling it when the neighbouring
// face already shared it in the opposite direction
func (p *polytope) toggleEdge(a, b int) {
	for i, e := range p.horizon {
		if e.a == b && e.b == a {
			last := len(p.horizon) - 1
			p.horizon[i] = p.horizon[last]
			p.horizon = p.horizon[:last]
			return
		}
	}
	p.horizon = append(p.horizon, edge{a, b})
}
