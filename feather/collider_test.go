package feather

import (
	"testing"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// overlappingPair builds a space holding two touching spheres
func overlappingPair(t *testing.T, e *Engine, w *World) (*Space, *Body, *Body) {
	t.Helper()
	s := e.NewHashSpace(nil).(*Space)
	g1, b1 := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{0, 0, 0})
	g2, b2 := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{1.5, 0, 0})
	s.Add(g1)
	s.Add(g2)
	return s, b1, b2
}

func TestColliderCollide(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s, b1, b2 := overlappingPair(t, e, w)
	c := w.NewCollider(0)

	c.Reset()
	c.Collide(s)

	buf := c.Contacts()
	if buf.Len() != 1 {
		t.Fatalf("Len = %d, want 1", buf.Len())
	}
	if buf.Capacity() != DEFAULT_CONTACT_CAPACITY {
		t.Errorf("Capacity = %d, want %d", buf.Capacity(), DEFAULT_CONTACT_CAPACITY)
	}
	if buf.Body1(0) != engine.Body(b1) || buf.Body2(0) != engine.Body(b2) {
		t.Error("slot bodies do not follow the geom order")
	}
	contact := buf.Contact(0)
	if !almostEqual(contact.Geom.Normal.Len(), 1, 1e-12) || contact.Geom.Depth <= 0 {
		t.Errorf("contact = %+v, want a unit normal and a positive depth", contact.Geom)
	}
}

func TestColliderSurface(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s, _, _ := overlappingPair(t, e, w)
	c := w.NewCollider(0)

	surface := engine.Surface{Mode: engine.ModeBounce, Mu: 0.4, Bounce: 0.3}
	c.SetSurface(surface)
	if c.Surface() != surface {
		t.Fatal("Surface does not return what was set")
	}

	c.Reset()
	c.Collide(s)
	if got := c.Contacts().Contact(0).Surface; got != surface {
		t.Errorf("stamped surface = %+v, want %+v", got, surface)
	}
}

func TestContactBufferCapacity(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s := e.NewHashSpace(nil).(*Space)
	box, _ := createDynamic(t, e, w, engine.Box{Size: mgl64.Vec3{2, 2, 2}}, mgl64.Vec3{0, 0.9, 0})
	s.Add(box)
	s.Add(groundPlane(t, e))

	c := w.NewCollider(2)
	c.Reset()
	c.Collide(s)

	if c.Contacts().Len() != 2 {
		t.Errorf("Len = %d, want the capacity 2", c.Contacts().Len())
	}
}

func TestContactBufferGeneration(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s, _, _ := overlappingPair(t, e, w)
	c := w.NewCollider(0)

	c.Reset()
	c.Collide(s)
	first := c.Contacts().Generation()

	c.Reset()
	if c.Contacts().Generation() == first {
		t.Error("Generation must change on Reset")
	}
	if c.Contacts().Len() != 0 {
		t.Error("Reset must empty the buffer")
	}
}

func TestContactBufferEdit(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s, _, _ := overlappingPair(t, e, w)
	c := w.NewCollider(0)
	c.Reset()
	c.Collide(s)
	buf := c.Contacts()

	original := buf.Contact(0)
	edited := original
	edited.Surface.Mu = 7
	edited.Geom.Depth = 0.25
	edited.Geom.Geom1 = nil
	edited.Geom.Geom2 = nil
	buf.SetContact(0, edited)

	got := buf.Contact(0)
	if got.Surface.Mu != 7 || got.Geom.Depth != 0.25 {
		t.Errorf("edit not stored: %+v", got)
	}
	if got.Geom.Geom1 != original.Geom.Geom1 || got.Geom.Geom2 != original.Geom.Geom2 {
		t.Error("SetContact must keep the detected geoms")
	}

	if buf.Contact(5) != (engine.Contact{}) {
		t.Error("out of range slot should be the zero contact")
	}
	buf.SetContact(-1, edited)
	buf.Ignore(9)
	if buf.IsIgnored(9) || buf.Body1(9) != nil {
		t.Error("out of range slots must be ignored silently")
	}
}

func TestColliderApplyIgnored(t *testing.T) {
	tests := []struct {
		name     string
		ignore   bool
		expected int
	}{
		{"applied", false, 1},
		{"ignored", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			w := e.NewWorld().(*World)
			s, _, _ := overlappingPair(t, e, w)
			c := w.NewCollider(0)
			c.Reset()
			c.Collide(s)

			if tt.ignore {
				c.Contacts().Ignore(0)
			}
			c.Apply()

			if len(w.contacts) != tt.expected {
				t.Errorf("pending contacts = %d, want %d", len(w.contacts), tt.expected)
			}
		})
	}
}

func TestColliderApplySkipsDeletedBody(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	s, b1, _ := overlappingPair(t, e, w)
	c := w.NewCollider(0)
	c.Reset()
	c.Collide(s)

	w.DeleteBody(b1)
	c.Apply()

	if len(w.contacts) != 0 {
		t.Errorf("pending contacts = %d, want 0", len(w.contacts))
	}
}

func TestCollideBetween(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	a := e.NewHashSpace(nil).(*Space)
	b := e.NewHashSpace(nil).(*Space)
	g1, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{})
	g2, _ := createDynamic(t, e, w, engine.Sphere{Radius: 1}, mgl64.Vec3{1.5, 0, 0})
	a.Add(g1)
	b.Add(g2)
	c := w.NewCollider(0)

	c.Reset()
	c.Collide(a)
	c.Collide(b)
	if c.Contacts().Len() != 0 {
		t.Fatal("geoms in different spaces collided within a space")
	}

	c.CollideBetween(a, b)
	if c.Contacts().Len() != 1 {
		t.Errorf("Len = %d after CollideBetween, want 1", c.Contacts().Len())
	}
}

func TestColliderDestroy(t *testing.T) {
	e := New()
	w := e.NewWorld().(*World)
	c := w.NewCollider(0)

	c.Destroy()
	c.Destroy()
	if len(w.colliders) != 0 {
		t.Error("destroyed collider still owned by the world")
	}
}
