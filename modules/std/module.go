// Package std provides the built-in handlers customer scripts can bind
// without writing any Go: fixed responses, echoes, and simple probes.
package std

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/script"
)

// Module implements the script.Module interface for this package.
type Module struct{}

// Name is the dotted name scripts use, e.g. "std:echo".
const Name = "std"

func ok(ctx context.Context, req *api.Request) (*api.Response, error) {
	return &api.Response{StatusCode: http.StatusOK}, nil
}

func echo(ctx context.Context, req *api.Request) (*api.Response, error) {
	resp := &api.Response{StatusCode: http.StatusOK, Body: req.Body}
	if req.Header != nil {
		if ct := req.Header.Get("Content-Type"); ct != "" {
			resp.Header = http.Header{"Content-Type": []string{ct}}
		}
	}
	return resp, nil
}

func notImplemented(ctx context.Context, req *api.Request) (*api.Response, error) {
	body := []byte(`{"error": "no handler configured for this operation"}`)
	return api.JSON(http.StatusNotImplemented, body), nil
}

// respond builds a handler returning a fixed status and body from script
// arguments.
func respond(args map[string]cty.Value) (api.Handler, error) {
	status := http.StatusOK
	if v, ok := args["status"]; ok && !v.IsNull() {
		if v.Type() != cty.Number {
			return nil, fmt.Errorf("std:respond 'status' must be a number, got %s", v.Type().FriendlyName())
		}
		s, _ := v.AsBigFloat().Int64()
		status = int(s)
	}
	body := ""
	if v, ok := args["body"]; ok && !v.IsNull() {
		if v.Type() != cty.String {
			return nil, fmt.Errorf("std:respond 'body' must be a string, got %s", v.Type().FriendlyName())
		}
		body = v.AsString()
	}
	return func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return api.Text(status, body), nil
	}, nil
}

// Register publishes the module's symbols.
func (m *Module) Register(t *script.SymbolTable) {
	probe := script.NewNamespace()
	probe.Set("live", script.HandlerValue(ok))
	probe.Set("ready", script.HandlerValue(ok))

	ns := script.NewNamespace()
	ns.Set("ok", script.HandlerValue(ok))
	ns.Set("echo", script.HandlerValue(echo))
	ns.Set("not_implemented", script.HandlerValue(notImplemented))
	ns.Set("respond", script.FactoryValue(respond))
	ns.Set("probe", script.NamespaceValue(probe))

	t.RegisterModule(Name, ns)
}
