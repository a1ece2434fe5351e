// Package resolver executes the fixed handler resolution priority chain:
// environment-specified spec, explicit registration, customer-script
// convention, built-in default. The first source that affirmatively
// resolves wins; later sources are never consulted.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/errs"
	"github.com/modelhost/containerstd/internal/handlerspec"
	"github.com/modelhost/containerstd/internal/loader"
	"github.com/modelhost/containerstd/internal/registry"
)

// Source supplies the platform-specific inputs of the chain.
type Source interface {
	// EnvSpec returns the environment-configured handler spec for a role,
	// if any. Absence means "no env override".
	EnvSpec(role string) (string, bool)

	// ScriptSpec returns the customer-script convention reference for a
	// role (e.g. "model:ping").
	ScriptSpec(role string) string
}

// Resolution is the outcome of a resolve call. Exactly one of Handler and
// RouterPath is set on an affirmative resolution; both empty means no source
// resolved the role.
type Resolution struct {
	Handler    api.Handler
	RouterPath string
}

// Found reports whether any source resolved the role.
func (r Resolution) Found() bool {
	return r.Handler != nil || r.RouterPath != ""
}

// Resolver runs the chain. It caches nothing itself; repeated resolution is
// cheap because the loader's script cache stays warm.
type Resolver struct {
	source   Source
	registry *registry.Registry
	loader   *loader.FunctionLoader
}

// New creates a resolver over the given source, registry, and loader.
func New(source Source, reg *registry.Registry, fl *loader.FunctionLoader) *Resolver {
	return &Resolver{source: source, registry: reg, loader: fl}
}

// step attempts one resolution source. found=false with a nil error means
// "not provided here, try the next source"; a non-nil error aborts the chain.
type step struct {
	name    string
	attempt func(ctx context.Context, role string) (found bool, res Resolution, err error)
}

func (r *Resolver) chain() []step {
	return []step{
		{name: "environment", attempt: r.fromEnv},
		{name: "registry", attempt: r.fromRegistry},
		{name: "customer script", attempt: r.fromScript},
	}
}

// Resolve runs the chain for a role. def may be nil; it is returned when no
// source resolves the role, leaving Resolution unfound.
func (r *Resolver) Resolve(ctx context.Context, role string, def api.Handler) (Resolution, error) {
	logger := ctxlog.FromContext(ctx)

	for _, s := range r.chain() {
		found, res, err := s.attempt(ctx, role)
		if err != nil {
			logger.Error("Handler resolution failed.", "role", role, "source", s.name, "error", err)
			return Resolution{}, err
		}
		if found {
			logger.Debug("Handler resolved.", "role", role, "source", s.name)
			return res, nil
		}
	}

	if def != nil {
		logger.Debug("Handler resolved.", "role", role, "source", "default")
		return Resolution{Handler: def}, nil
	}
	logger.Debug("No handler resolved for role.", "role", role)
	return Resolution{}, nil
}

// fromEnv resolves an environment-configured spec. Any failure here is a
// configuration error and propagates: operators must get fast, explicit
// feedback on a broken env-supplied reference.
func (r *Resolver) fromEnv(ctx context.Context, role string) (bool, Resolution, error) {
	text, ok := r.source.EnvSpec(role)
	if !ok || text == "" {
		return false, Resolution{}, nil
	}

	spec := handlerspec.Parse(text)
	if spec.Kind == handlerspec.KindRouterPath {
		// Affirmative resolution: the integration layer mounts the route.
		return true, Resolution{RouterPath: spec.RouterPath}, nil
	}
	h, err := r.loader.LoadSpec(ctx, spec)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			return false, Resolution{}, errs.Wrap(e.Kind, err, "env-configured handler for role %q", role)
		}
		return false, Resolution{}, fmt.Errorf("env-configured handler for role %q: %w", role, err)
	}
	return true, Resolution{Handler: h}, nil
}

func (r *Resolver) fromRegistry(ctx context.Context, role string) (bool, Resolution, error) {
	if h := r.registry.Get(role); h != nil {
		return true, Resolution{Handler: h}, nil
	}
	return false, Resolution{}, nil
}

// fromScript attempts the customer-script convention. A missing script file
// or missing attribute means the customer simply didn't define this handler:
// not found, continue. A script that exists but fails to load is a real
// error and propagates.
func (r *Resolver) fromScript(ctx context.Context, role string) (bool, Resolution, error) {
	text := r.source.ScriptSpec(role)
	if text == "" {
		return false, Resolution{}, nil
	}

	h, err := r.loader.LoadHandler(ctx, text)
	if err != nil {
		if errs.IsRecoverable(err) {
			ctxlog.FromContext(ctx).Debug("No customer script handler for role.",
				"role", role, "reason", err)
			return false, Resolution{}, nil
		}
		return false, Resolution{}, err
	}
	if h == nil {
		// Router-path convention specs are not a thing; treat as not found.
		return false, Resolution{}, nil
	}
	return true, Resolution{Handler: h}, nil
}
