// Package feather is an in-process rigid body engine implementing the engine
// interfaces with XPBD substepping.
//
// Bodies are integrated in parallel over a small worker pool; constraints
// (contacts and joints) are solved sequentially so that a simulation is
// bit-for-bit reproducible for a given sequence of calls.
package feather

import (
	"errors"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS           = 1
	DEFAULT_CONTACT_CAPACITY  = 4096
	DEFAULT_CONTACTS_PER_PAIR = 4
	DEFAULT_CELL_SIZE         = 2.0
	DEFAULT_HASH_CELLS        = 1024
	DEFAULT_ERP               = 0.2
	DEFAULT_CFM               = 1e-5
	DEFAULT_ITERATIONS        = 10
)

// Engine creates worlds, spaces and geoms
type Engine struct {
	workers         int
	contactCapacity int
	contactsPerPair int
	cellSize        float64
	nextGeomID      uint64
	listeners       []subscription
}

type subscription struct {
	eventType EventType
	listener  EventListener
}

type Option func(*Engine)

// WithWorkers sets the number of goroutines used for integration and the narrow phase
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(DEFAULT_WORKERS, n)
	}
}

// WithContactCapacity sets the buffer size used when a collider is created
// without an explicit capacity
func WithContactCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.contactCapacity = n
		}
	}
}

// WithMaxContactsPerPair bounds the manifold size of one geom pair
func WithMaxContactsPerPair(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.contactsPerPair = n
		}
	}
}

// WithCellSize sets the cell edge of hash spaces
func WithCellSize(size float64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cellSize = size
		}
	}
}

// WithEventListener subscribes listener to eventType in every world created
// by the engine
func WithEventListener(eventType EventType, listener EventListener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, subscription{eventType: eventType, listener: listener})
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		workers:         DEFAULT_WORKERS,
		contactCapacity: DEFAULT_CONTACT_CAPACITY,
		contactsPerPair: DEFAULT_CONTACTS_PER_PAIR,
		cellSize:        DEFAULT_CELL_SIZE,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) NewWorld() engine.World {
	return newWorld(e)
}

func (e *Engine) NewHashSpace(parent engine.Space) engine.Space {
	s := newSpace(e, &hashIndex{grid: NewSpatialGrid(e.cellSize, DEFAULT_HASH_CELLS)})
	s.attachTo(parent)
	return s
}

func (e *Engine) NewQuadTreeSpace(parent engine.Space, center, extents mgl64.Vec3, depth int) engine.Space {
	s := newSpace(e, newQuadTree(center, extents, depth))
	s.attachTo(parent)
	return s
}

func (e *Engine) NewGeom(shape engine.Shape) (engine.Geom, error) {
	collision, err := toActorShape(shape)
	if err != nil {
		return nil, err
	}
	e.nextGeomID++

	return newGeom(e.nextGeomID, shape, collision), nil
}

// ErrUnsupportedShape is returned by NewGeom for invalid descriptors
var ErrUnsupportedShape = errors.New("feather: unsupported shape")
