// Package artifact provides a handler factory that downloads adapter
// artifacts from pre-signed URLs into the container, the usual customer
// binding for the register_adapter and update_adapter roles.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/script"
)

// Module implements the script.Module interface for this package.
type Module struct{}

// Name is the dotted name scripts use, e.g. "artifact:download".
const Name = "artifact"

// downloadRequest is the lifecycle payload the handler accepts. The source
// must be a pre-signed or otherwise directly fetchable URL.
type downloadRequest struct {
	AdapterName   string `json:"adapterName"`
	AdapterSource string `json:"adapterSource"`
}

// download builds a handler fetching the adapter artifact named in the
// request body into a fixed destination directory.
//
// Script arguments:
//
//	dest_dir (required) directory the artifacts are stored under
func download(args map[string]cty.Value) (api.Handler, error) {
	dd, ok := args["dest_dir"]
	if !ok || dd.IsNull() || dd.Type() != cty.String {
		return nil, fmt.Errorf("artifact:download requires a string 'dest_dir' argument")
	}
	destDir := dd.AsString()

	client := resty.New()

	return func(ctx context.Context, req *api.Request) (*api.Response, error) {
		var dl downloadRequest
		if err := json.Unmarshal(req.Body, &dl); err != nil {
			return api.JSON(http.StatusBadRequest,
				[]byte(`{"error": "request body is not a valid adapter payload"}`)), nil
		}
		logger := ctxlog.FromContext(ctx).With("adapter", dl.AdapterName)

		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating artifact directory %s: %w", destDir, err)
		}
		dest := filepath.Join(destDir, filepath.Base(dl.AdapterName))

		res, err := client.R().SetContext(ctx).Get(dl.AdapterSource)
		if err != nil {
			return nil, fmt.Errorf("fetching adapter artifact: %w", err)
		}
		if res.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("artifact fetch failed with status: %s", res.Status())
		}
		if err := os.WriteFile(dest, res.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("writing adapter artifact: %w", err)
		}
		logger.Info("Adapter artifact downloaded.", "path", dest)

		body, err := json.Marshal(map[string]string{
			"adapterName": dl.AdapterName,
			"path":        dest,
		})
		if err != nil {
			return nil, err
		}
		return api.JSON(http.StatusOK, body), nil
	}, nil
}

// Register publishes the module's symbols.
func (m *Module) Register(t *script.SymbolTable) {
	ns := script.NewNamespace()
	ns.Set("download", script.FactoryValue(download))
	t.RegisterModule(Name, ns)
}
