package rigidscene

import (
	"github.com/go-logr/logr"
)

// Observer is called with the field that changed.
type Observer[F comparable] func(field F)

// Notifier dispatches field changes of one node to its observers.
type Notifier[F comparable] struct {
	observers []Observer[F]
}

// Observe registers fn for every later change of the node.
func (n *Notifier[F]) Observe(fn Observer[F]) {
	n.observers = append(n.observers, fn)
}

func (n *Notifier[F]) notify(field F) {
	for _, fn := range n.observers {
		fn(field)
	}
}

// node carries what every scene node shares: the setup flag, the observers
// and the logger used for structural warnings.
type node[F comparable] struct {
	Notifier[F]
	ready  bool
	logger logr.Logger
}

func newNode[F comparable]() node[F] {
	return node[F]{logger: logr.Discard()}
}

// InSetup reports whether SetupFinished has not been called yet.
func (n *node[F]) InSetup() bool {
	return !n.ready
}

// SetLogger replaces the logger used for warnings.
func (n *node[F]) SetLogger(logger logr.Logger) {
	n.logger = logger
}

// finishSetup ends the setup phase and reports whether it was still running.
func (n *node[F]) finishSetup() bool {
	if n.ready {
		return false
	}
	n.ready = true
	return true
}

// changed notifies the observers once the node is past setup.
func (n *node[F]) changed(field F) {
	if n.ready {
		n.notify(field)
	}
}
