package rigidscene

// SensorField identifies a field of a CollisionSensor.
type SensorField int

const (
	SensorCollider SensorField = iota
	SensorEnabled
	SensorIsActive
	SensorContacts
	SensorIntersections
)

// CollisionSensor reports the contacts found by one collision collection
// without changing them.
type CollisionSensor struct {
	node[SensorField]

	collider      *CollisionCollection
	enabled       bool
	active        bool
	contacts      []*Contact
	intersections []*CollidableShape
}

func NewCollisionSensor() *CollisionSensor {
	return &CollisionSensor{
		node:    newNode[SensorField](),
		enabled: true,
	}
}

func (s *CollisionSensor) SetupFinished() {
	s.finishSetup()
}

func (s *CollisionSensor) Collider() *CollisionCollection {
	return s.collider
}

// SetCollider resolves n to the collision collection to watch.
func (s *CollisionSensor) SetCollider(n any) error {
	cc, err := Resolve[*CollisionCollection](n)
	if err != nil {
		return fieldError("CollisionSensor", "collider", n, err)
	}
	s.collider = cc
	s.changed(SensorCollider)
	return nil
}

func (s *CollisionSensor) IsEnabled() bool {
	return s.enabled
}

func (s *CollisionSensor) SetEnabled(enabled bool) {
	s.enabled = enabled
	s.changed(SensorEnabled)
}

// IsActive reports whether the last update found at least one contact.
func (s *CollisionSensor) IsActive() bool {
	return s.active
}

// Contacts returns the contacts of the last update.
func (s *CollisionSensor) Contacts() []*Contact {
	return s.contacts
}

// Intersections returns each collidable touched in the last update, once.
func (s *CollisionSensor) Intersections() []*CollidableShape {
	return s.intersections
}

// Update reads the current contact set of the collision collection. It must
// run after the detection pass of the frame.
func (s *CollisionSensor) Update() {
	if !s.enabled || s.collider == nil {
		return
	}

	s.contacts = s.collider.Contacts()
	s.intersections = s.intersections[:0]
	seen := make(map[*CollidableShape]struct{})
	for _, ct := range s.contacts {
		for _, shape := range []*CollidableShape{ct.Geometry1(), ct.Geometry2()} {
			if shape == nil {
				continue
			}
			if _, ok := seen[shape]; ok {
				continue
			}
			seen[shape] = struct{}{}
			s.intersections = append(s.intersections, shape)
		}
	}

	active := len(s.contacts) > 0
	if active || s.active {
		s.changed(SensorContacts)
		s.changed(SensorIntersections)
	}
	if active != s.active {
		s.active = active
		s.changed(SensorIsActive)
	}
}
