package endpoint

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danmuck/framelink/internal/link"
)

var (
	ErrEndpointExists = errors.New("endpoint: already registered")
	ErrNilHandler     = errors.New("endpoint: handler is nil")
)

// Descriptor identifies one registered endpoint.
type Descriptor struct {
	Protocol uint16
	Name     string
}

type entry struct {
	name    string
	handler link.Handler
}

// Registry maps wire protocol identifiers to their handlers. It satisfies
// link.Resolver; the dispatch loop consults it and never mutates it.
type Registry struct {
	mu    sync.RWMutex
	items map[uint16]entry
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[uint16]entry)}
}

// Register binds a handler to a protocol id.
func (r *Registry) Register(protocol uint16, name string, h link.Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[protocol]; ok {
		return fmt.Errorf("%w: 0x%04x", ErrEndpointExists, protocol)
	}
	r.items[protocol] = entry{name: name, handler: h}
	return nil
}

// Resolve returns the handler for a protocol id.
func (r *Registry) Resolve(protocol uint16) (link.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[protocol]
	return e.handler, ok
}

// List returns registered endpoints in deterministic protocol order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Descriptor, 0, len(r.items))
	for protocol, e := range r.items {
		list = append(list, Descriptor{Protocol: protocol, Name: e.name})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Protocol < list[j].Protocol
	})
	return list
}
