package script

import (
	"sort"
	"strings"

	"github.com/modelhost/containerstd/internal/errs"
)

// Namespace is an attribute table supporting ordered lookup by name. Loaded
// scripts and built-in modules both expose one.
type Namespace struct {
	attrs map[string]Value
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{attrs: make(map[string]Value)}
}

// Set binds an attribute. Namespaces are populated while a single goroutine
// loads the script or registers the module, then treated as read-only.
func (n *Namespace) Set(name string, v Value) {
	n.attrs[name] = v
}

// Attr looks up a single attribute.
func (n *Namespace) Attr(name string) (Value, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Names lists attribute names in sorted order.
func (n *Namespace) Names() []string {
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk dereferences an access path left to right, descending into nested
// namespaces. It fails at the first missing segment, and treats descending
// into a non-namespace the same way: the requested attribute does not exist.
func (n *Namespace) Walk(path []string) (Value, error) {
	cur := n
	for i, seg := range path {
		v, ok := cur.Attr(seg)
		if !ok {
			return Value{}, errs.New(errs.KindNotFound,
				"attribute %q not found (resolving %q)", seg, strings.Join(path, "."))
		}
		if i == len(path)-1 {
			return v, nil
		}
		next, ok := v.Namespace()
		if !ok {
			return Value{}, errs.New(errs.KindNotFound,
				"attribute %q is a %s, not a namespace (resolving %q)",
				seg, v.TypeName(), strings.Join(path, "."))
		}
		cur = next
	}
	return Value{}, errs.New(errs.KindNotFound, "empty access path")
}
