package wm

import (
	"fmt"
	"slices"
)

// Registry is the set of managed clients. It is a pure data store: the
// dispatcher issues all server requests after mutating it.
type Registry struct {
	clients map[WindowID]*Client
	order   []WindowID // insertion order
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[WindowID]*Client)}
}

// Add registers c. It fails if the window is already known.
func (r *Registry) Add(c *Client) error {
	if _, ok := r.clients[c.ID]; ok {
		return fmt.Errorf("add %#x: %w", c.ID, ErrClientExists)
	}
	r.clients[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// Remove unregisters id and returns the removed client.
func (r *Registry) Remove(id WindowID) (*Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, fmt.Errorf("remove %#x: %w", id, ErrUnknownClient)
	}
	delete(r.clients, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return c, nil
}

// Get returns the client for id.
func (r *Registry) Get(id WindowID) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Len returns the number of managed clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// IDs returns all managed windows in insertion order.
func (r *Registry) IDs() []WindowID {
	return slices.Clone(r.order)
}

// All returns all clients in insertion order.
func (r *Registry) All() []*Client {
	out := make([]*Client, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.clients[id])
	}
	return out
}

// InWorkspace returns the clients on workspace ws in insertion order.
func (r *Registry) InWorkspace(ws int) []*Client {
	var out []*Client
	for _, id := range r.order {
		if c := r.clients[id]; c.Workspace == ws {
			out = append(out, c)
		}
	}
	return out
}
