// Package middleware provides the ordered, name-constrained middleware
// registry and the formatter-driven pre/post-process middleware synthesized
// from it.
package middleware

import (
	"context"

	"github.com/modelhost/containerstd/internal/api"
)

// Next invokes the downstream stage of the request pipeline.
type Next func(ctx context.Context, req *api.Request) (*api.Response, error)

// Func is a function-style middleware.
type Func func(ctx context.Context, req *api.Request, next Next) (*api.Response, error)

// Handler is an object-style middleware.
type Handler interface {
	Process(ctx context.Context, req *api.Request, next Next) (*api.Response, error)
}

// RequestFormatter transforms an inbound request before the main handler. A
// nil result leaves the original request unmodified. Formatters are shared
// across concurrent requests and must not hold per-request state.
type RequestFormatter func(ctx context.Context, req *api.Request) (*api.Request, error)

// ResponseFormatter transforms a response after the main handler. A nil
// result leaves the original response unmodified.
type ResponseFormatter func(ctx context.Context, resp *api.Response) (*api.Response, error)

// Allowed middleware names, in execution order.
const (
	NameThrottle       = "throttle"
	NamePrePostProcess = "pre_post_process"
)

// AllowedNames is the fixed allow-list, in execution order.
var AllowedNames = []string{NameThrottle, NamePrePostProcess}

// MiddlewareKind tags how a middleware was implemented.
type MiddlewareKind string

const (
	KindFunction MiddlewareKind = "function"
	KindObject   MiddlewareKind = "object"
)

// Entry is one registered middleware.
type Entry struct {
	Name string
	Kind MiddlewareKind
	fn   Func
}

// Func returns the entry's middleware as a function, regardless of how it
// was registered.
func (e Entry) Func() Func { return e.fn }
