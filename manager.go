package rigidscene

import (
	"slices"
	"time"

	"github.com/go-logr/logr"
)

// DefaultRecalcInterval is the number of frames between two timestep
// measurements.
const DefaultRecalcInterval = 10

// Manager drives every registered node through the frame: PreFrame before
// the scene is evaluated, PostFrame after.
type Manager struct {
	collections []*RigidBodyCollection
	colliders   []*CollisionCollection
	sensors     []*CollisionSensor
	joints      []Joint

	clock          func() time.Time
	recalcInterval int
	fixedTimestep  float64
	logger         logr.Logger

	frames    int
	lastCheck time.Time
	timestep  float64
}

type ManagerOption func(*Manager)

// WithClock replaces the wall clock used to measure the frame rate.
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithRecalcInterval sets how many frames pass between two measurements.
func WithRecalcInterval(frames int) ManagerOption {
	return func(m *Manager) {
		if frames > 0 {
			m.recalcInterval = frames
		}
	}
}

// WithFixedTimestep disables the measurement and steps every collection by dt.
func WithFixedTimestep(dt float64) ManagerOption {
	return func(m *Manager) {
		if dt > 0 {
			m.fixedTimestep = dt
		}
	}
}

func WithLogger(logger logr.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		clock:          time.Now,
		recalcInterval: DefaultRecalcInterval,
		logger:         logr.Discard(),
		timestep:       DefaultTimestep,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fixedTimestep > 0 {
		m.timestep = m.fixedTimestep
	}
	return m
}

// Timestep returns the step applied to the collections.
func (m *Manager) Timestep() float64 {
	return m.timestep
}

// Add registers a node by its kind, resolved once. Adding a node twice has
// no effect.
func (m *Manager) Add(n any) error {
	n, err := Resolve[any](n)
	if err != nil {
		return err
	}

	switch v := n.(type) {
	case *RigidBodyCollection:
		if !slices.Contains(m.collections, v) {
			v.SetLogger(m.logger)
			_ = v.SetTimestep(m.timestep)
			m.collections = append(m.collections, v)
		}
	case *CollisionCollection:
		if !slices.Contains(m.colliders, v) {
			m.colliders = append(m.colliders, v)
		}
	case *CollisionSensor:
		if !slices.Contains(m.sensors, v) {
			m.sensors = append(m.sensors, v)
		}
	case Joint:
		if !slices.Contains(m.joints, v) {
			m.joints = append(m.joints, v)
		}
	default:
		return ErrInvalidNode
	}
	return nil
}

// Remove unregisters a node without destroying it.
func (m *Manager) Remove(n any) {
	n, err := Resolve[any](n)
	if err != nil {
		return
	}

	switch v := n.(type) {
	case *RigidBodyCollection:
		m.collections = slices.DeleteFunc(m.collections, func(c *RigidBodyCollection) bool { return c == v })
	case *CollisionCollection:
		m.colliders = slices.DeleteFunc(m.colliders, func(c *CollisionCollection) bool { return c == v })
	case *CollisionSensor:
		m.sensors = slices.DeleteFunc(m.sensors, func(s *CollisionSensor) bool { return s == v })
	case Joint:
		m.joints = slices.DeleteFunc(m.joints, func(j Joint) bool { return j == v })
	}
}

// PreFrame runs the detection of every enabled collision collection, then
// publishes the joint outputs, the sensors and the body states solved during
// the previous PostFrame.
func (m *Manager) PreFrame() {
	for _, cc := range m.colliders {
		if cc.IsEnabled() && cc.collider != nil {
			cc.EvaluateCollisions()
		}
	}
	for _, j := range m.joints {
		if j.NumOutputs() != 0 {
			j.UpdateRequestedOutputs()
		}
	}
	for _, s := range m.sensors {
		s.Update()
	}
	for _, c := range m.collections {
		if c.IsEnabled() {
			c.UpdatePostSimulation()
		}
	}
}

// PostFrame applies the contact edits and steps every enabled collection.
// A collection absent from edits keeps all of its contacts; one present with
// an empty batch loses all of them.
func (m *Manager) PostFrame(edits map[*RigidBodyCollection][]*Contact) {
	m.updateTimestep()

	for _, c := range m.collections {
		if !c.IsEnabled() {
			continue
		}
		if cc := c.Collider(); cc != nil && cc.IsEnabled() && cc.collider != nil {
			batch, ok := edits[c]
			if !ok {
				batch = cc.Contacts()
			}
			c.ProcessInputContacts(batch)
		}
		c.EvaluateModel()
	}

	for _, cc := range m.colliders {
		cc.UpdateCollidables()
	}
}

// updateTimestep averages the wall clock time of the last frames
func (m *Manager) updateTimestep() {
	if m.fixedTimestep > 0 {
		return
	}

	now := m.clock()
	if m.frames == 0 {
		m.lastCheck = now
	}
	m.frames++
	if m.frames <= m.recalcInterval {
		return
	}

	elapsed := now.Sub(m.lastCheck).Seconds()
	m.frames = 1
	m.lastCheck = now
	if elapsed <= 0 {
		return
	}

	m.timestep = elapsed / float64(m.recalcInterval)
	m.logger.V(1).Info("timestep updated", "dt", m.timestep)
	for _, c := range m.collections {
		_ = c.SetTimestep(m.timestep)
	}
}

// Clear destroys the joints, the collision collections, then the
// collections, and forgets every node.
func (m *Manager) Clear() {
	for _, j := range m.joints {
		j.Destroy()
	}
	for _, cc := range m.colliders {
		cc.Destroy()
	}
	for _, c := range m.collections {
		c.Destroy()
	}

	m.collections = nil
	m.colliders = nil
	m.sensors = nil
	m.joints = nil
	m.frames = 0
}
