package chain

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds constructed clients keyed by chain. It lets callers work
// against the Client interface without knowing which adapters were wired up.
type Registry struct {
	mu      sync.RWMutex
	clients map[ID]Client
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[ID]Client)}
}

// Register adds a client, replacing any previous client for the same chain.
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.Chain()] = c
}

// Get returns the client for a chain.
func (r *Registry) Get(id ID) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotRegistered, id)
	}
	return c, nil
}

// Chains returns the registered chain IDs in lexical order.
func (r *Registry) Chains() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ID, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
