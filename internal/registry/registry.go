// Package registry holds explicitly registered handlers by role name.
//
// Roles are logical serving responsibilities ("ping", "invoke",
// "register_adapter", ...). Entries are written during bootstrap by
// registration helpers and consulted by the resolver as the second source in
// the priority chain. Pure mapping semantics: last write wins, entries never
// expire, no validation of the callable's shape.
package registry

import (
	"sync"

	"github.com/modelhost/containerstd/internal/api"
)

// Registry is a concurrency-safe role-to-handler map.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]api.Handler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]api.Handler)}
}

// Set registers a handler for a role, replacing any previous entry.
func (r *Registry) Set(role string, h api.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[role] = h
}

// Get returns the handler for a role, or nil when none is registered.
func (r *Registry) Get(role string) api.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[role]
}

// Has reports whether a handler is registered for a role.
func (r *Registry) Has(role string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[role]
	return ok
}

// Remove deletes a role's entry, if any.
func (r *Registry) Remove(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, role)
}

// List returns the registered role names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roles := make([]string, 0, len(r.handlers))
	for role := range r.handlers {
		roles = append(roles, role)
	}
	return roles
}

// Clear removes all entries.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string]api.Handler)
}
