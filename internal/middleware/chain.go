package middleware

import (
	"context"

	"github.com/modelhost/containerstd/internal/api"
)

// Chain composes entries around a terminal handler, in slice order: the
// first entry sees the request first and the response last.
func Chain(entries []Entry, final Next) Next {
	next := final
	for i := len(entries) - 1; i >= 0; i-- {
		fn := entries[i].Func()
		inner := next
		next = func(ctx context.Context, req *api.Request) (*api.Response, error) {
			return fn(ctx, req, inner)
		}
	}
	return next
}
