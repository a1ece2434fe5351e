package loader

import (
	"context"

	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/errs"
	"github.com/modelhost/containerstd/internal/script"
)

// ModuleLoader resolves dotted module names against the built-in symbol
// table. The table itself is the process-lifetime cache: modules register
// once at bootstrap (identity "module:<dotted-name>") and lookups are plain
// reads, so there is no duplicated load to collapse.
type ModuleLoader struct {
	syms *script.SymbolTable
}

// NewModuleLoader creates a loader over the given symbol table.
func NewModuleLoader(syms *script.SymbolTable) *ModuleLoader {
	return &ModuleLoader{syms: syms}
}

// LoadValue imports a module by dotted name and walks the access path to an
// attribute value. An unregistered module is a module-load error; a missing
// attribute is a not-found error.
func (l *ModuleLoader) LoadValue(ctx context.Context, module string, accessPath []string) (script.Value, error) {
	ns, ok := l.syms.Module(module)
	if !ok {
		return script.Value{}, errs.New(errs.KindModuleLoad, "module %q is not registered", module)
	}
	ctxlog.FromContext(ctx).Debug("Resolved built-in module.", "module", module)
	return ns.Walk(accessPath)
}
