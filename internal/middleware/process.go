package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
)

// GenerateProcessMiddleware synthesizes the pre/post-process middleware from
// the registered formatters and registers it under NamePrePostProcess.
//
// It is a no-op when no formatter is set, and idempotent: an occupied
// pre/post-process slot (explicit or previously synthesized) is left alone.
func (r *Registry) GenerateProcessMiddleware() {
	if !r.HasFormatters() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[NamePrePostProcess]; ok {
		return
	}
	r.entries[NamePrePostProcess] = Entry{
		Name: NamePrePostProcess,
		Kind: KindFunction,
		fn:   r.processMiddleware,
	}
}

// processMiddleware applies the input formatter, calls the downstream stage,
// and applies the output formatter. Any error or panic from the formatters
// or the downstream stage becomes a generic server-error response instead of
// propagating into the framework's own error handling.
func (r *Registry) processMiddleware(ctx context.Context, req *api.Request, next Next) (resp *api.Response, err error) {
	logger := ctxlog.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Panic in process middleware.", "panic", rec)
			resp, err = genericServerError("panic in process middleware"), nil
		}
	}()

	r.mu.RLock()
	input := r.inputFormatter
	output := r.outputFormatter
	r.mu.RUnlock()

	if input != nil {
		formatted, ferr := input(ctx, req)
		if ferr != nil {
			logger.Error("Input formatter failed.", "error", ferr)
			return genericServerError(ferr.Error()), nil
		}
		// An empty formatter result leaves the original request unmodified.
		if formatted != nil {
			req = formatted
		}
	}

	resp, err = next(ctx, req)
	if err != nil {
		logger.Error("Downstream stage failed in process middleware.", "error", err)
		return genericServerError(err.Error()), nil
	}

	// A stage may legitimately return (nil, nil); there is nothing for the
	// output formatter to reshape then.
	if output != nil && resp != nil {
		formatted, ferr := output(ctx, resp)
		if ferr != nil {
			logger.Error("Output formatter failed.", "error", ferr)
			return genericServerError(ferr.Error()), nil
		}
		if formatted != nil {
			resp = formatted
		}
	}

	return resp, nil
}

func genericServerError(message string) *api.Response {
	body, _ := json.Marshal(map[string]string{
		"error":   "Internal server error in process middleware",
		"message": message,
	})
	return api.JSON(http.StatusInternalServerError, body)
}
