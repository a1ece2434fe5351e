// Package env provides a diagnostics handler exposing the container's
// environment variables, typically bound to a debug route by a customer
// script.
package env

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/script"
)

// Module implements the script.Module interface for this package.
type Module struct{}

// Name is the dotted name scripts use, e.g. "env:dump".
const Name = "env"

// dump builds a handler returning environment variables as a JSON object.
//
// Script arguments:
//
//	prefix (optional) only variables with this prefix are included
func dump(args map[string]cty.Value) (api.Handler, error) {
	prefix := ""
	if v, ok := args["prefix"]; ok && !v.IsNull() {
		if v.Type() != cty.String {
			return nil, fmt.Errorf("env:dump 'prefix' must be a string, got %s", v.Type().FriendlyName())
		}
		prefix = v.AsString()
	}

	return func(ctx context.Context, req *api.Request) (*api.Response, error) {
		envMap := make(map[string]string)
		for _, e := range os.Environ() {
			pair := strings.SplitN(e, "=", 2)
			if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
				envMap[pair[0]] = pair[1]
			}
		}
		body, err := json.Marshal(envMap)
		if err != nil {
			return nil, err
		}
		return api.JSON(200, body), nil
	}, nil
}

// Register publishes the module's symbols.
func (m *Module) Register(t *script.SymbolTable) {
	ns := script.NewNamespace()
	ns.Set("dump", script.FactoryValue(dump))
	t.RegisterModule(Name, ns)
}
