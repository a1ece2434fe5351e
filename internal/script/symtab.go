package script

import (
	"fmt"
	"sync"
)

// Module is implemented by compiled-in packages that contribute symbols.
// Registration happens during single-threaded bootstrap, before any script
// loads; it is the Go analog of code registering itself on import.
type Module interface {
	Register(t *SymbolTable)
}

// SymbolTable maps dotted module names to their namespaces. Script handler
// blocks and module-function references both bind against it.
type SymbolTable struct {
	mu      sync.RWMutex
	modules map[string]*Namespace
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{modules: make(map[string]*Namespace)}
}

// RegisterModule publishes a namespace under a dotted name. Registering the
// same name twice is a programmer error.
func (t *SymbolTable) RegisterModule(name string, ns *Namespace) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.modules[name]; exists {
		panic(fmt.Sprintf("module %q already registered", name))
	}
	t.modules[name] = ns
}

// Module looks up a registered namespace by dotted name.
func (t *SymbolTable) Module(name string) (*Namespace, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ns, ok := t.modules[name]
	return ns, ok
}

// ModuleNames lists registered module names, for diagnostics.
func (t *SymbolTable) ModuleNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.modules))
	for name := range t.modules {
		names = append(names, name)
	}
	return names
}
