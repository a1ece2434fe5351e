package loader

import (
	"context"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/errs"
	"github.com/modelhost/containerstd/internal/handlerspec"
	"github.com/modelhost/containerstd/internal/script"
)

// FunctionLoader resolves a full textual handler reference to a callable.
// It composes the spec parser, the alias table, and the file and module
// loaders.
type FunctionLoader struct {
	files   *FileLoader
	modules *ModuleLoader
	aliases map[string]string
}

// NewFunctionLoader creates a loader. Aliases map short module-like tokens
// (e.g. "model") to concrete file paths; an alias match forces file-loader
// treatment regardless of suffix heuristics.
func NewFunctionLoader(syms *script.SymbolTable, searchPaths []string, aliases map[string]string) *FunctionLoader {
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &FunctionLoader{
		files:   NewFileLoader(syms, searchPaths...),
		modules: NewModuleLoader(syms),
		aliases: aliases,
	}
}

// Aliases returns the configured alias table.
func (l *FunctionLoader) Aliases() map[string]string { return l.aliases }

// Files exposes the underlying file loader (search paths, cache inspection).
func (l *FunctionLoader) Files() *FileLoader { return l.files }

// LoadScript pre-loads and caches a script file by path. Used at bootstrap
// to surface a broken customer script before traffic starts.
func (l *FunctionLoader) LoadScript(ctx context.Context, path string) (*script.Script, error) {
	return l.files.LoadScript(ctx, path)
}

// LoadHandler resolves a handler reference to a callable.
//
// Router-path references resolve to (nil, nil): the caller hands the path to
// the routing layer. Invalid references fail with an invalid-spec error. The
// final resolved value must be invokable, otherwise a not-callable error
// naming the value's type is returned.
func (l *FunctionLoader) LoadHandler(ctx context.Context, specText string) (api.Handler, error) {
	spec := handlerspec.Parse(specText)
	return l.LoadSpec(ctx, spec)
}

// LoadSpec is LoadHandler for a pre-parsed spec.
func (l *FunctionLoader) LoadSpec(ctx context.Context, spec handlerspec.Spec) (api.Handler, error) {
	logger := ctxlog.FromContext(ctx)

	switch spec.Kind {
	case handlerspec.KindRouterPath:
		// Deliberately none: the routing layer owns this reference.
		logger.Debug("Spec is a router path, deferring to routing layer.", "path", spec.RouterPath)
		return nil, nil
	case handlerspec.KindInvalid:
		return nil, errs.New(errs.KindInvalidSpec, "malformed handler spec %q", spec.String())
	}

	value, err := l.loadValue(ctx, spec)
	if err != nil {
		return nil, err
	}

	h, err := value.Callable()
	if err != nil {
		return nil, err
	}
	logger.Debug("Handler resolved.", "spec", spec.String())
	return h, nil
}

func (l *FunctionLoader) loadValue(ctx context.Context, spec handlerspec.Spec) (script.Value, error) {
	locator := spec.Locator

	// Alias substitution happens before any file-vs-module heuristics, so a
	// convention name like "model" always means the configured script file.
	if target, ok := l.aliases[locator]; ok {
		return l.files.LoadValue(ctx, target, spec.AccessPath)
	}

	if spec.Kind == handlerspec.KindFileFunction {
		return l.files.LoadValue(ctx, locator, spec.AccessPath)
	}

	// A module-shaped locator that names an existing file under the search
	// paths is loaded as a file: existing-file-wins. The inverse ambiguity
	// (a module name shadowed by a stray file) is inherent in the grammar
	// and resolved the same way on purpose.
	if _, err := l.files.Resolve(locator); err == nil {
		return l.files.LoadValue(ctx, locator, spec.AccessPath)
	}

	return l.modules.LoadValue(ctx, locator, spec.AccessPath)
}
