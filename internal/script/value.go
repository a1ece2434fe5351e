package script

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/errs"
)

// Factory builds a handler from script-supplied arguments. Built-in modules
// register factories for symbols whose behavior depends on configuration
// (e.g. a proxy endpoint); plain handlers take no arguments.
type Factory func(args map[string]cty.Value) (api.Handler, error)

// ValueKind tags what an attribute holds.
type ValueKind int

const (
	// KindHandler is a ready callable.
	KindHandler ValueKind = iota
	// KindFactory is a callable constructor awaiting arguments.
	KindFactory
	// KindNamespace is a nested attribute table.
	KindNamespace
	// KindConst is a plain cty constant.
	KindConst
)

// Value is one attribute of a namespace.
type Value struct {
	kind    ValueKind
	handler api.Handler
	factory Factory
	ns      *Namespace
	val     cty.Value
}

// HandlerValue wraps a ready callable.
func HandlerValue(h api.Handler) Value { return Value{kind: KindHandler, handler: h} }

// FactoryValue wraps a handler constructor.
func FactoryValue(f Factory) Value { return Value{kind: KindFactory, factory: f} }

// NamespaceValue wraps a nested namespace.
func NamespaceValue(ns *Namespace) Value { return Value{kind: KindNamespace, ns: ns} }

// ConstValue wraps a plain constant.
func ConstValue(v cty.Value) Value { return Value{kind: KindConst, val: v} }

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// Namespace returns the nested namespace for KindNamespace values.
func (v Value) Namespace() (*Namespace, bool) {
	return v.ns, v.kind == KindNamespace
}

// Const returns the constant for KindConst values.
func (v Value) Const() (cty.Value, bool) {
	return v.val, v.kind == KindConst
}

// TypeName describes the value for diagnostics. Null constants report their
// cty type explicitly so a caller reading the error can tell an absence
// sentinel from a real value.
func (v Value) TypeName() string {
	switch v.kind {
	case KindHandler:
		return "handler"
	case KindFactory:
		return "handler factory"
	case KindNamespace:
		return "namespace"
	default:
		if v.val.IsNull() {
			return "null value of type " + v.val.Type().FriendlyName()
		}
		return "value of type " + v.val.Type().FriendlyName()
	}
}

// Callable resolves the value to an invokable handler. Factories are built
// with no arguments, so a factory that requires configuration fails here.
// Anything else is a not-callable error naming the value's type.
func (v Value) Callable() (api.Handler, error) {
	switch v.kind {
	case KindHandler:
		return v.handler, nil
	case KindFactory:
		h, err := v.factory(nil)
		if err != nil {
			return nil, errs.Wrap(errs.KindNotCallable, err, "handler factory rejected empty arguments")
		}
		return h, nil
	default:
		return nil, errs.New(errs.KindNotCallable, "resolved value is not callable: %s", v.TypeName())
	}
}

// Bind specializes the value with script-supplied arguments. Handlers accept
// only empty arguments; factories are invoked with them.
func (v Value) Bind(args map[string]cty.Value) (api.Handler, error) {
	switch v.kind {
	case KindHandler:
		if len(args) > 0 {
			return nil, errs.New(errs.KindModuleLoad, "symbol does not accept args")
		}
		return v.handler, nil
	case KindFactory:
		h, err := v.factory(args)
		if err != nil {
			return nil, errs.Wrap(errs.KindModuleLoad, err, "handler factory failed")
		}
		return h, nil
	default:
		return nil, errs.New(errs.KindModuleLoad, "symbol is not callable: %s", v.TypeName())
	}
}
