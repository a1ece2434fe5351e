// Package hosting wires the handler resolution pieces into the shape a model
// serving container uses: a loader rooted at the model directory, the "model"
// alias for the conventional customer script, environment overrides per role,
// and a registry for programmatic overrides.
package hosting

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/loader"
	"github.com/modelhost/containerstd/internal/registry"
	"github.com/modelhost/containerstd/internal/resolver"
	"github.com/modelhost/containerstd/internal/script"
)

// AliasModel is the locator alias the platform reserves for the customer
// script, so "model:predict" always refers to it regardless of filename.
const AliasModel = "model"

// Core serving roles. Adapter lifecycle roles live in the lora package.
const (
	RolePing       = "ping"
	RoleInvocation = "invocation"
)

// Hosting owns the resolution machinery for one model directory.
type Hosting struct {
	cfg      *Config
	registry *registry.Registry
	loader   *loader.FunctionLoader
	resolver *resolver.Resolver
}

// New builds the hosting wiring and preloads the conventional customer
// script if one exists. A present-but-broken script is a startup error; an
// absent one is not.
func New(ctx context.Context, cfg *Config, syms *script.SymbolTable) (*Hosting, error) {
	aliases := map[string]string{AliasModel: cfg.ScriptPath()}
	fl := loader.NewFunctionLoader(syms, []string{cfg.ModelPath}, aliases)
	h := &Hosting{
		cfg:      cfg,
		registry: registry.New(),
		loader:   fl,
	}
	h.resolver = resolver.New(envSource{cfg: cfg}, h.registry, fl)
	if err := h.preload(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hosting) preload(ctx context.Context) error {
	log := ctxlog.FromContext(ctx)
	if scripts, err := loader.FindScripts(h.cfg.ModelPath); err == nil {
		log.Debug("Customer scripts discovered.", "count", len(scripts), "scripts", scripts)
	}
	path := h.cfg.ScriptPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			log.Debug("No customer script found, using defaults.", "path", path)
			return nil
		}
		return fmt.Errorf("checking customer script %s: %w", path, err)
	}
	if _, err := h.loader.LoadScript(ctx, path); err != nil {
		return fmt.Errorf("loading customer script %s: %w", path, err)
	}
	log.Info("Customer script loaded.", "path", path)
	return nil
}

// Config returns the hosting configuration.
func (h *Hosting) Config() *Config { return h.cfg }

// Loader returns the function loader, for preloading additional scripts.
func (h *Hosting) Loader() *loader.FunctionLoader { return h.loader }

// Registry returns the programmatic-override registry.
func (h *Hosting) Registry() *registry.Registry { return h.registry }

// Override installs a programmatic handler for a role. It beats the
// customer script and the default but not an environment override.
func (h *Hosting) Override(role string, handler api.Handler) {
	h.registry.Set(role, handler)
}

// ClearOverride removes a programmatic override.
func (h *Hosting) ClearOverride(role string) {
	h.registry.Remove(role)
}

// Resolve runs the priority chain for a role, falling back to def.
func (h *Hosting) Resolve(ctx context.Context, role string, def api.Handler) (resolver.Resolution, error) {
	return h.resolver.Resolve(ctx, role, def)
}

// DefaultPing answers liveness probes when no custom ping handler exists.
func DefaultPing() api.Handler {
	return func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return &api.Response{StatusCode: http.StatusOK}, nil
	}
}

// envSource adapts Config to the resolver's Source interface. The customer
// script convention is "model:<role>".
type envSource struct {
	cfg *Config
}

func (s envSource) EnvSpec(role string) (string, bool) {
	return s.cfg.EnvSpec(role)
}

func (s envSource) ScriptSpec(role string) string {
	return AliasModel + ":" + role
}
