package feather

import (
	"github.com/akmonengine/rigidscene/engine"
)

// ContactBuffer is the fixed capacity contact array of one collider. The
// bodies of each slot are recorded at detection time and cannot be edited.
type ContactBuffer struct {
	contacts   []engine.Contact
	bodies     [][2]*Body
	ignored    []bool
	capacity   int
	generation uint64
}

func (cb *ContactBuffer) Len() int {
	return len(cb.contacts)
}

func (cb *ContactBuffer) Capacity() int {
	return cb.capacity
}

func (cb *ContactBuffer) Generation() uint64 {
	return cb.generation
}

func (cb *ContactBuffer) valid(i int) bool {
	return i >= 0 && i < len(cb.contacts)
}

// Contact returns slot i, or the zero contact when i is out of range
func (cb *ContactBuffer) Contact(i int) engine.Contact {
	if !cb.valid(i) {
		return engine.Contact{}
	}
	return cb.contacts[i]
}

// SetContact overwrites the surface and geometry of slot i, keeping the geoms
// recorded by detection
func (cb *ContactBuffer) SetContact(i int, c engine.Contact) {
	if !cb.valid(i) {
		return
	}
	c.Geom.Geom1 = cb.contacts[i].Geom.Geom1
	c.Geom.Geom2 = cb.contacts[i].Geom.Geom2
	cb.contacts[i] = c
}

func (cb *ContactBuffer) Body1(i int) engine.Body {
	if !cb.valid(i) || cb.bodies[i][0] == nil {
		return nil
	}
	return cb.bodies[i][0]
}

func (cb *ContactBuffer) Body2(i int) engine.Body {
	if !cb.valid(i) || cb.bodies[i][1] == nil {
		return nil
	}
	return cb.bodies[i][1]
}

func (cb *ContactBuffer) Ignore(i int) {
	if cb.valid(i) {
		cb.ignored[i] = true
	}
}

func (cb *ContactBuffer) IsIgnored(i int) bool {
	return cb.valid(i) && cb.ignored[i]
}

func (cb *ContactBuffer) reset() {
	cb.contacts = cb.contacts[:0]
	cb.bodies = cb.bodies[:0]
	cb.ignored = cb.ignored[:0]
	cb.generation++
}

// push appends a contact unless the buffer is full
func (cb *ContactBuffer) push(geom engine.ContactGeom, surface engine.Surface, b1, b2 *Body) bool {
	if len(cb.contacts) >= cb.capacity {
		return false
	}
	cb.contacts = append(cb.contacts, engine.Contact{Surface: surface, Geom: geom})
	cb.bodies = append(cb.bodies, [2]*Body{b1, b2})
	cb.ignored = append(cb.ignored, false)
	return true
}

// Collider runs the narrow phase of one world
type Collider struct {
	world     *World
	surface   engine.Surface
	buffer    *ContactBuffer
	destroyed bool
}

func newCollider(w *World, capacity int) *Collider {
	if capacity <= 0 {
		capacity = w.engine.contactCapacity
	}
	return &Collider{
		world: w,
		buffer: &ContactBuffer{
			contacts: make([]engine.Contact, 0, min(capacity, 256)),
			capacity: capacity,
		},
	}
}

func (c *Collider) SetSurface(s engine.Surface) {
	c.surface = s
}

func (c *Collider) Surface() engine.Surface {
	return c.surface
}

func (c *Collider) Reset() {
	c.buffer.reset()
}

// Collide tests the geoms registered directly in space
func (c *Collider) Collide(space engine.Space) {
	s, ok := space.(*Space)
	if !ok || s.destroyed {
		return
	}
	c.fill(s.candidatePairs())
}

// CollideBetween tests the geoms of a against those of b
func (c *Collider) CollideBetween(a, b engine.Space) {
	sa, okA := a.(*Space)
	sb, okB := b.(*Space)
	if !okA || !okB || sa == sb || sa.destroyed || sb.destroyed {
		return
	}
	c.fill(crossPairs(sa, sb))
}

func (c *Collider) fill(pairs [][2]*Geom) {
	e := c.world.engine
	results := NarrowPhase(pairs, e.contactsPerPair, e.workers)

	for i, contacts := range results {
		g1, g2 := pairs[i][0], pairs[i][1]
		for _, contact := range contacts {
			if !c.buffer.push(contact, c.surface, g1.body, g2.body) {
				return
			}
		}
	}
}

func (c *Collider) Contacts() engine.ContactBuffer {
	return c.buffer
}

// Apply hands the contacts not ignored to the world for its next step
func (c *Collider) Apply() {
	for i, contact := range c.buffer.contacts {
		if c.buffer.ignored[i] {
			continue
		}
		bodies := c.buffer.bodies[i]
		if bodies[0] != nil && bodies[0].destroyed || bodies[1] != nil && bodies[1].destroyed {
			continue
		}
		c.world.addContact(contact, bodies[0], bodies[1])
	}
}

func (c *Collider) Destroy() {
	if c.destroyed {
		return
	}
	c.world.removeCollider(c)
	c.destroyed = true
}
