package lora

import (
	"context"
	"encoding/json"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/middleware"
)

// HeaderToBodyFormatter returns an input formatter folding the adapter
// identity headers into the JSON request body, so engines that select
// adapters by body field work with header-addressed requests.
//
// Requests without adapter headers, with empty bodies, or with non-object
// bodies are left untouched (the formatter returns nil, which the process
// middleware treats as "keep the original request").
func HeaderToBodyFormatter() middleware.RequestFormatter {
	return func(ctx context.Context, req *api.Request) (*api.Request, error) {
		if req.Header == nil {
			return nil, nil
		}
		adapterID := req.Header.Get(HeaderAdapterID)
		if adapterID == "" {
			return nil, nil
		}

		var body map[string]any
		if len(req.Body) > 0 {
			if err := json.Unmarshal(req.Body, &body); err != nil {
				ctxlog.FromContext(ctx).Debug("Request body is not a JSON object, leaving as is.")
				return nil, nil
			}
		} else {
			body = map[string]any{}
		}

		body["model"] = adapterID
		if source := req.Header.Get(HeaderAdapterSource); source != "" {
			body["adapterSource"] = source
		}

		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		cp := req.Clone()
		cp.Body = encoded
		return cp, nil
	}
}
