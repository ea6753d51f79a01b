// Package enginetest wraps an engine.Engine to count the handles it creates
// and destroys.
//
// Every handle handed out by a Recorder is a wrapper; arguments are unwrapped
// before reaching the inner engine, so the inner engine never sees them.
// Destroying a handle twice is recorded as a double free. Handles released
// by the inner engine on its own, such as everything left in a world when
// the world is destroyed, stay live in the counts.
package enginetest

import (
	"fmt"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind names a handle type.
type Kind string

const (
	KindWorld      Kind = "world"
	KindBody       Kind = "body"
	KindGeom       Kind = "geom"
	KindSpace      Kind = "space"
	KindJoint      Kind = "joint"
	KindJointGroup Kind = "jointgroup"
	KindCollider   Kind = "collider"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindWorld, KindBody, KindGeom, KindSpace, KindJoint, KindJointGroup, KindCollider}

type handle struct {
	kind  Kind
	id    int
	freed bool
}

// Recorder is an engine.Engine counting create and destroy calls per kind.
type Recorder struct {
	inner engine.Engine

	nextID      int
	created     map[Kind]int
	destroyed   map[Kind]int
	doubleFrees []string

	bodies map[engine.Body]*Body
	geoms  map[engine.Geom]*Geom
	spaces map[engine.Space]*Space
}

// New wraps inner.
func New(inner engine.Engine) *Recorder {
	return &Recorder{
		inner:     inner,
		created:   make(map[Kind]int),
		destroyed: make(map[Kind]int),
		bodies:    make(map[engine.Body]*Body),
		geoms:     make(map[engine.Geom]*Geom),
		spaces:    make(map[engine.Space]*Space),
	}
}

func (r *Recorder) track(kind Kind) handle {
	r.nextID++
	r.created[kind]++
	return handle{kind: kind, id: r.nextID}
}

// free records the destruction of h and reports whether it was the first one
func (r *Recorder) free(h *handle) bool {
	if h.freed {
		r.doubleFrees = append(r.doubleFrees, fmt.Sprintf("%s#%d", h.kind, h.id))
		return false
	}
	h.freed = true
	r.destroyed[h.kind]++
	return true
}

// Created returns how many handles of kind were created.
func (r *Recorder) Created(kind Kind) int {
	return r.created[kind]
}

// Destroyed returns how many handles of kind were destroyed.
func (r *Recorder) Destroyed(kind Kind) int {
	return r.destroyed[kind]
}

// Live returns the number of handles created but not destroyed, per kind.
// Kinds with no live handle are left out.
func (r *Recorder) Live() map[Kind]int {
	live := make(map[Kind]int)
	for _, kind := range Kinds {
		if n := r.created[kind] - r.destroyed[kind]; n != 0 {
			live[kind] = n
		}
	}
	return live
}

// LiveTotal returns the number of live handles of every kind.
func (r *Recorder) LiveTotal() int {
	total := 0
	for _, n := range r.Live() {
		total += n
	}
	return total
}

// DoubleFrees lists the handles destroyed more than once.
func (r *Recorder) DoubleFrees() []string {
	return r.doubleFrees
}

func (r *Recorder) NewWorld() engine.World {
	return &World{handle: r.track(KindWorld), r: r, inner: r.inner.NewWorld()}
}

func (r *Recorder) NewHashSpace(parent engine.Space) engine.Space {
	return r.wrapSpace(r.inner.NewHashSpace(unwrapSpace(parent)), parent)
}

func (r *Recorder) NewQuadTreeSpace(parent engine.Space, center, extents mgl64.Vec3, depth int) engine.Space {
	return r.wrapSpace(r.inner.NewQuadTreeSpace(unwrapSpace(parent), center, extents, depth), parent)
}

func (r *Recorder) NewGeom(shape engine.Shape) (engine.Geom, error) {
	inner, err := r.inner.NewGeom(shape)
	if err != nil {
		return nil, err
	}
	g := &Geom{handle: r.track(KindGeom), r: r, inner: inner}
	r.geoms[inner] = g
	return g, nil
}

func (r *Recorder) wrapSpace(inner engine.Space, parent engine.Space) *Space {
	s := &Space{handle: r.track(KindSpace), r: r, inner: inner, cleanup: true}
	if p, ok := parent.(*Space); ok && p != nil {
		s.parent = p
		p.children = append(p.children, s)
	}
	r.spaces[inner] = s
	return s
}

// lookups from inner handles back to their wrappers

func (r *Recorder) body(inner engine.Body) engine.Body {
	if b, ok := r.bodies[inner]; ok && inner != nil {
		return b
	}
	return nil
}

func (r *Recorder) geom(inner engine.Geom) engine.Geom {
	if g, ok := r.geoms[inner]; ok && inner != nil {
		return g
	}
	return nil
}

func (r *Recorder) space(inner engine.Space) engine.Space {
	if s, ok := r.spaces[inner]; ok && inner != nil {
		return s
	}
	return nil
}

func unwrapBody(b engine.Body) engine.Body {
	if w, ok := b.(*Body); ok {
		if w == nil {
			return nil
		}
		return w.inner
	}
	return b
}

func unwrapGeom(g engine.Geom) engine.Geom {
	if w, ok := g.(*Geom); ok {
		if w == nil {
			return nil
		}
		return w.inner
	}
	return g
}

func unwrapSpace(s engine.Space) engine.Space {
	if w, ok := s.(*Space); ok {
		if w == nil {
			return nil
		}
		return w.inner
	}
	return s
}

func unwrapGroup(g engine.JointGroup) engine.JointGroup {
	if w, ok := g.(*JointGroup); ok {
		if w == nil {
			return nil
		}
		return w.inner
	}
	return g
}
