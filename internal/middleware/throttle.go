package middleware

import (
	"context"
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/modelhost/containerstd/internal/api"
)

// NewThrottle builds the canonical occupant of the throttle slot: a
// middleware bounding the number of in-flight requests. Requests beyond the
// limit are rejected immediately with 429 rather than queued, so a slow
// model cannot pile up work.
func NewThrottle(limit int64) Func {
	sem := semaphore.NewWeighted(limit)
	return func(ctx context.Context, req *api.Request, next Next) (*api.Response, error) {
		if !sem.TryAcquire(1) {
			return api.Text(http.StatusTooManyRequests, "too many in-flight requests"), nil
		}
		defer sem.Release(1)
		return next(ctx, req)
	}
}
