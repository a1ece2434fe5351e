// Package proxy provides a built-in handler factory that forwards requests
// to an HTTP inference engine running in the same container, for images
// where the model server is a separate process behind a local port.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/script"
)

// Module implements the script.Module interface for this package.
type Module struct{}

// Name is the dotted name scripts use, e.g. "proxy:forward".
const Name = "proxy"

// forward builds a handler that relays the request body to a fixed endpoint
// and returns the engine's response verbatim.
//
// Script arguments:
//
//	endpoint        (required) full URL to forward to
//	timeout_seconds (optional) per-request timeout, default 60
func forward(args map[string]cty.Value) (api.Handler, error) {
	ep, ok := args["endpoint"]
	if !ok || ep.IsNull() || ep.Type() != cty.String {
		return nil, fmt.Errorf("proxy:forward requires a string 'endpoint' argument")
	}
	endpoint := ep.AsString()

	timeout := 60 * time.Second
	if v, ok := args["timeout_seconds"]; ok && !v.IsNull() {
		secs, _ := v.AsBigFloat().Int64()
		if secs <= 0 {
			return nil, fmt.Errorf("timeout_seconds must be positive")
		}
		timeout = time.Duration(secs) * time.Second
	}

	client := resty.New().SetTimeout(timeout)

	return func(ctx context.Context, req *api.Request) (*api.Response, error) {
		r := client.R().SetContext(ctx).SetBody(req.Body)
		for name, values := range req.Header {
			for _, v := range values {
				r.SetHeader(name, v)
			}
		}

		method := req.Method
		if method == "" {
			method = http.MethodPost
		}
		res, err := r.Execute(method, endpoint)
		if err != nil {
			return nil, fmt.Errorf("forwarding to %s: %w", endpoint, err)
		}
		ctxlog.FromContext(ctx).Debug("Forwarded request.",
			"endpoint", endpoint, "status", res.StatusCode())

		return &api.Response{
			StatusCode: res.StatusCode(),
			Header:     res.Header().Clone(),
			Body:       res.Bytes(),
		}, nil
	}, nil
}

// Register publishes the module's symbols.
func (m *Module) Register(t *script.SymbolTable) {
	ns := script.NewNamespace()
	ns.Set("forward", script.FactoryValue(forward))
	t.RegisterModule(Name, ns)
}
