package feather

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

type EventType uint8

// Event is implemented by every event the world emits
type Event interface {
	Type() EventType
}

// pairKey orders the bodies of a touching pair by id, nil (the static
// environment) first
type pairKey struct {
	bodyA *Body
	bodyB *Body
}

func makePairKey(a, b *Body) pairKey {
	if a == nil || (b != nil && b.id < a.id) {
		a, b = b, a
	}
	return pairKey{bodyA: a, bodyB: b}
}

type CollisionEnterEvent struct {
	BodyA *Body
	BodyB *Body
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *Body
	BodyB *Body
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *Body
	BodyB *Body
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// SleepEvent is emitted when auto-disable puts a body to rest
type SleepEvent struct {
	Body *Body
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

// WakeEvent is emitted when a contact re-enables an auto-disabled body
type WakeEvent struct {
	Body *Body
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

type EventListener func(event Event)

// Events buffers what happens during a step and dispatches it once the step
// is over
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event

	previousPairs []pairKey
	currentPairs  []pairKey
	current       map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
		current:   make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContact marks the pair as touching during the current step
func (e *Events) recordContact(a, b *Body) {
	key := makePairKey(a, b)
	if e.current[key] {
		return
	}
	e.current[key] = true
	e.currentPairs = append(e.currentPairs, key)
}

func (e *Events) emitSleep(body *Body) {
	e.buffer = append(e.buffer, SleepEvent{Body: body})
}

func (e *Events) emitWake(body *Body) {
	e.buffer = append(e.buffer, WakeEvent{Body: body})
}

// forget drops a deleted body from the pair tracking
func (e *Events) forget(body *Body) {
	keep := func(pairs []pairKey) []pairKey {
		n := 0
		for _, p := range pairs {
			if p.bodyA != body && p.bodyB != body {
				pairs[n] = p
				n++
			}
		}
		return pairs[:n]
	}
	e.previousPairs = keep(e.previousPairs)
	e.currentPairs = keep(e.currentPairs)
	for key := range e.current {
		if key.bodyA == body || key.bodyB == body {
			delete(e.current, key)
		}
	}
}

// processCollisionEvents compares the pairs of this step with the previous one
func (e *Events) processCollisionEvents() {
	previous := make(map[pairKey]bool, len(e.previousPairs))
	for _, pair := range e.previousPairs {
		previous[pair] = true
	}

	for _, pair := range e.currentPairs {
		if previous[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}
	for _, pair := range e.previousPairs {
		if !e.current[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	e.previousPairs, e.currentPairs = e.currentPairs, e.previousPairs[:0]
	clear(e.current)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
