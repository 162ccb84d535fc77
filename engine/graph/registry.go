package graph

import (
	"fmt"
	"sync"
)

// Factory creates a new node of one kind with its endpoints registered and defaults applied.
type Factory func() Node

// Registry maps node kinds to factories so saved graphs can be reconstructed.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register associates a factory with a kind, replacing any previous factory.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	r.factories[kind] = f
	r.mu.Unlock()
}

// New creates a node of the given kind.
//
// Parameters:
//   - kind: the node kind
//
// Returns:
//   - Node: the new node
//   - error: ErrUnknownKind if no factory is registered
func (r *Registry) New(kind Kind) (Node, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return f(), nil
}

// Kinds returns every registered kind in declaration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Kind
	for _, k := range Kinds() {
		if _, ok := r.factories[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
