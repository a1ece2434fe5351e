package middleware

import (
	"context"
	"strings"
	"sync"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/errs"
)

// Registry holds the middleware entries and formatter slots. It is populated
// during single-threaded bootstrap; registration failures are fatal there so
// a middleware is never silently dropped.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry

	inputFormatter  RequestFormatter
	outputFormatter ResponseFormatter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a middleware under an allow-listed name. mw must be a Func
// (or a bare function of the same shape) or a Handler. A name may be
// registered at most once: re-registration fails, reporting the existing
// entry's kind against the attempted one, even when the kinds match.
func (r *Registry) Register(name string, mw any) error {
	if !allowed(name) {
		return errs.New(errs.KindRegistration,
			"middleware name %q is not allowed, allowed names: %s",
			name, strings.Join(AllowedNames, ", "))
	}

	entry, err := newEntry(name, mw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[name]; ok {
		return errs.New(errs.KindRegistration,
			"middleware %q is already registered as a %s, cannot register as %s",
			name, existing.Kind, entry.Kind)
	}
	r.entries[name] = entry
	return nil
}

func newEntry(name string, mw any) (Entry, error) {
	switch m := mw.(type) {
	case Func:
		return Entry{Name: name, Kind: KindFunction, fn: m}, nil
	case func(ctx context.Context, req *api.Request, next Next) (*api.Response, error):
		return Entry{Name: name, Kind: KindFunction, fn: Func(m)}, nil
	case Handler:
		return Entry{Name: name, Kind: KindObject, fn: m.Process}, nil
	default:
		return Entry{}, errs.New(errs.KindRegistration,
			"middleware %q must be a middleware function or handler object", name)
	}
}

func allowed(name string) bool {
	for _, n := range AllowedNames {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns the entry registered under a name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Has reports whether a name is occupied.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the registered names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Ordered returns the registered entries in allow-list execution order.
func (r *Registry) Ordered() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ordered := make([]Entry, 0, len(r.entries))
	for _, name := range AllowedNames {
		if e, ok := r.entries[name]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

// SetInputFormatter installs the input formatter. The slot holds at most one
// formatter; a second call fails.
func (r *Registry) SetInputFormatter(f RequestFormatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inputFormatter != nil {
		return errs.New(errs.KindRegistration,
			"input formatter is already registered, only one input formatter is allowed")
	}
	r.inputFormatter = f
	return nil
}

// SetOutputFormatter installs the output formatter, same slot semantics.
func (r *Registry) SetOutputFormatter(f ResponseFormatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outputFormatter != nil {
		return errs.New(errs.KindRegistration,
			"output formatter is already registered, only one output formatter is allowed")
	}
	r.outputFormatter = f
	return nil
}

// HasFormatters reports whether either formatter slot is occupied.
func (r *Registry) HasFormatters() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inputFormatter != nil || r.outputFormatter != nil
}
