package rigidscene

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/rigidscene/enginetest"
	"github.com/akmonengine/rigidscene/feather"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr/funcr"
)

// fakeClock advances by tick on every reading.
type fakeClock struct {
	now  time.Time
	tick time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(c.tick)
	return c.now
}

// ============================================================================
// Registration
// ============================================================================

func TestManager_Add(t *testing.T) {
	eng := feather.New()
	m := NewManager()

	tests := []struct {
		name    string
		node    any
		wantErr error
	}{
		{"collection", NewRigidBodyCollection(eng), nil},
		{"collision collection", NewCollisionCollection(eng), nil},
		{"sensor", NewCollisionSensor(), nil},
		{"joint", NewUniversalJoint(), nil},
		{"template", template{NewMotorJoint()}, nil},
		{"body", NewRigidBody(), ErrInvalidNode},
		{"space", NewCollisionSpace(eng), ErrInvalidNode},
		{"nil", nil, ErrInvalidNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Add(tt.node); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_AddTwiceStepsOnce(t *testing.T) {
	c, _, bodies := newScene(t, feather.New(), mgl64.Vec3{})
	defer c.Destroy()

	m := NewManager(WithFixedTimestep(frame))
	must(t, m.Add(c))
	must(t, m.Add(template{c}))

	m.PostFrame(nil)
	m.PreFrame()

	if vy := bodies[0].LinearVelocity().Y(); !almostEqual(vy, -9.8*frame, 1e-9) {
		t.Errorf("vy = %v, want one step of gravity", vy)
	}
	if c.Timestep() != frame {
		t.Errorf("Timestep = %v, want the fixed step", c.Timestep())
	}

	m.Remove(c)
	m.PostFrame(nil)
	c.UpdatePostSimulation()
	if vy := bodies[0].LinearVelocity().Y(); !almostEqual(vy, -9.8*frame, 1e-9) {
		t.Errorf("vy = %v, a removed collection must not step", vy)
	}
}

// ============================================================================
// Timestep
// ============================================================================

func TestManager_RecalculatesTimestep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), tick: 25 * time.Millisecond}
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	m := NewManager(WithClock(clock.Now), WithRecalcInterval(4), WithLogger(logger))
	c := NewRigidBodyCollection(feather.New())
	c.SetupFinished()
	defer c.Destroy()
	must(t, m.Add(c))

	for i := range 4 {
		m.PostFrame(nil)
		if m.Timestep() != DefaultTimestep {
			t.Fatalf("frame %d: timestep changed to %v before the interval", i, m.Timestep())
		}
	}

	m.PostFrame(nil)
	if !almostEqual(m.Timestep(), 0.025, 1e-12) {
		t.Errorf("Timestep = %v, want 0.025", m.Timestep())
	}
	if c.Timestep() != m.Timestep() {
		t.Errorf("collection timestep = %v, want %v", c.Timestep(), m.Timestep())
	}

	found := false
	for _, line := range lines {
		if strings.Contains(line, "timestep updated") {
			found = true
		}
	}
	if !found {
		t.Errorf("log lines = %q, want a timestep update", lines)
	}
}

func TestManager_FixedTimestepIgnoresClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), tick: time.Second}
	m := NewManager(WithClock(clock.Now), WithRecalcInterval(1), WithFixedTimestep(0.01))

	for range 5 {
		m.PostFrame(nil)
	}
	if m.Timestep() != 0.01 {
		t.Errorf("Timestep = %v, want 0.01", m.Timestep())
	}
}

// ============================================================================
// Frame cycle
// ============================================================================

func TestManager_PostFrameEdits(t *testing.T) {
	tests := []struct {
		name        string
		edits       func(c *RigidBodyCollection, cc *CollisionCollection) map[*RigidBodyCollection][]*Contact
		wantIgnored bool
	}{
		{"no map", func(*RigidBodyCollection, *CollisionCollection) map[*RigidBodyCollection][]*Contact {
			return nil
		}, false},
		{"missing key", func(*RigidBodyCollection, *CollisionCollection) map[*RigidBodyCollection][]*Contact {
			return map[*RigidBodyCollection][]*Contact{}
		}, false},
		{"empty batch", func(c *RigidBodyCollection, _ *CollisionCollection) map[*RigidBodyCollection][]*Contact {
			return map[*RigidBodyCollection][]*Contact{c: {}}
		}, true},
		{"full batch", func(c *RigidBodyCollection, cc *CollisionCollection) map[*RigidBodyCollection][]*Contact {
			return map[*RigidBodyCollection][]*Contact{c: cc.Contacts()}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, cc, _ := newScene(t, feather.New(), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1.5, 0, 0})
			defer c.Destroy()
			m := NewManager(WithFixedTimestep(frame))
			must(t, m.Add(c))
			must(t, m.Add(cc))

			m.PreFrame()
			if cc.NumContacts() != 1 {
				t.Fatalf("NumContacts = %d, want 1", cc.NumContacts())
			}
			m.PostFrame(tt.edits(c, cc))

			if got := cc.Buffer().IsIgnored(0); got != tt.wantIgnored {
				t.Errorf("IsIgnored(0) = %v, want %v", got, tt.wantIgnored)
			}
		})
	}
}

func TestManager_DisabledColliderSkipsDetection(t *testing.T) {
	c, cc, _ := newScene(t, feather.New(), mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1.5, 0, 0})
	defer c.Destroy()
	m := NewManager()
	must(t, m.Add(cc))

	cc.SetEnabled(false)
	m.PreFrame()

	if cc.NumContacts() != 0 {
		t.Errorf("NumContacts = %d, a disabled collection is not evaluated", cc.NumContacts())
	}
}

func TestManager_PreFramePublishes(t *testing.T) {
	c, j, b := pendulum(t)
	defer c.Destroy()
	must(t, j.SetMustOutput([]string{"angle"}))

	s := NewCollisionSensor()
	m := NewManager(WithFixedTimestep(frame))
	for _, n := range []any{c, j, s} {
		must(t, m.Add(n))
	}

	var published int
	b.Observe(func(f BodyField) {
		if f == BodyPosition {
			published++
		}
	})

	for range 10 {
		m.PreFrame()
		m.PostFrame(nil)
	}
	m.PreFrame()

	if published != 11 {
		t.Errorf("position published %d times, want 11", published)
	}
	if j.Angle() == 0 || j.Angle() != j.EngineJoint().Angle(1) {
		t.Errorf("Angle = %v, want the engine angle %v", j.Angle(), j.EngineJoint().Angle(1))
	}
	if s.IsActive() {
		t.Error("a sensor without collider stays inactive")
	}
}

func TestManager_ClearReleasesEveryHandle(t *testing.T) {
	rec := enginetest.New(feather.New())
	c := fullScene(t, rec)

	m := NewManager(WithFixedTimestep(frame))
	must(t, m.Add(c))
	must(t, m.Add(c.Collider()))
	for _, j := range c.Joints() {
		must(t, m.Add(j))
	}

	for range 10 {
		m.PreFrame()
		m.PostFrame(nil)
	}
	m.Clear()

	if rec.LiveTotal() != 0 {
		t.Errorf("live handles after Clear: %v", rec.Live())
	}
	if len(rec.DoubleFrees()) != 0 {
		t.Errorf("double frees: %v", rec.DoubleFrees())
	}

	// un gestionnaire vide ne fait rien
	m.PreFrame()
	m.PostFrame(nil)
}
