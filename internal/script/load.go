package script

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/errs"
	"github.com/modelhost/containerstd/internal/handlerspec"
)

// Script owns the live namespace produced by loading one file. Scripts are
// created once per resolved path and retained for the process lifetime.
type Script struct {
	// Path is the resolved absolute path the script was loaded from.
	Path string
	// Root is the script's top-level namespace.
	Root *Namespace
}

type handlerBlock struct {
	Name string         `hcl:"name,label"`
	Uses string         `hcl:"uses"`
	Args hcl.Expression `hcl:"args,optional"`
}

type groupBlock struct {
	Name     string          `hcl:"name,label"`
	Handlers []*handlerBlock `hcl:"handler,block"`
	Groups   []*groupBlock   `hcl:"group,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type fileRoot struct {
	Handlers []*handlerBlock `hcl:"handler,block"`
	Groups   []*groupBlock   `hcl:"group,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// Load parses and evaluates one script file against the given symbol table.
// Any parse, decode, evaluation, or binding failure is a module-load error:
// the file exists but is broken, which is never a "try the next source"
// signal.
func Load(ctx context.Context, path string, syms *SymbolTable) (*Script, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading script.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.KindModuleLoad, diags, "failed to parse script %s", path)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, errs.Wrap(errs.KindModuleLoad, diags, "failed to decode script %s", path)
	}

	ns, err := buildNamespace(ctx, syms, root.Handlers, root.Groups, root.Remain)
	if err != nil {
		return nil, errs.Wrap(errs.KindModuleLoad, err, "failed to evaluate script %s", path)
	}

	logger.Debug("Script loaded.", "path", path, "attributes", len(ns.Names()))
	return &Script{Path: path, Root: ns}, nil
}

func buildNamespace(ctx context.Context, syms *SymbolTable, handlers []*handlerBlock, groups []*groupBlock, remain hcl.Body) (*Namespace, error) {
	ns := NewNamespace()

	for _, hb := range handlers {
		if _, dup := ns.Attr(hb.Name); dup {
			return nil, errs.New(errs.KindModuleLoad, "duplicate attribute %q", hb.Name)
		}
		h, err := bindHandler(syms, hb)
		if err != nil {
			return nil, err
		}
		ns.Set(hb.Name, HandlerValue(h))
	}

	for _, gb := range groups {
		if _, dup := ns.Attr(gb.Name); dup {
			return nil, errs.New(errs.KindModuleLoad, "duplicate attribute %q", gb.Name)
		}
		child, err := buildNamespace(ctx, syms, gb.Handlers, gb.Groups, gb.Remain)
		if err != nil {
			return nil, err
		}
		ns.Set(gb.Name, NamespaceValue(child))
	}

	if remain != nil {
		// JustAttributes diagnoses the handler/group blocks the schema
		// already consumed; the leftover attributes are still returned, so
		// the diagnostics are dropped rather than treated as fatal.
		attrs, _ := remain.JustAttributes()
		for name, attr := range attrs {
			if _, dup := ns.Attr(name); dup {
				return nil, errs.New(errs.KindModuleLoad, "duplicate attribute %q", name)
			}
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, errs.Wrap(errs.KindModuleLoad, diags, "failed to evaluate attribute %q", name)
			}
			ns.Set(name, ConstValue(val))
		}
	}

	return ns, nil
}

// bindHandler resolves a handler block's "uses" reference through the symbol
// table and specializes it with the block's arguments.
func bindHandler(syms *SymbolTable, hb *handlerBlock) (api.Handler, error) {
	ref := handlerspec.Parse(hb.Uses)
	if ref.Kind != handlerspec.KindModuleFunction {
		return nil, errs.New(errs.KindModuleLoad,
			"handler %q: uses = %q must reference a registered module symbol", hb.Name, hb.Uses)
	}

	mod, ok := syms.Module(ref.Locator)
	if !ok {
		return nil, errs.New(errs.KindModuleLoad,
			"handler %q: module %q is not registered", hb.Name, ref.Locator)
	}
	val, err := mod.Walk(ref.AccessPath)
	if err != nil {
		return nil, errs.Wrap(errs.KindModuleLoad, err,
			"handler %q: symbol %q not found in module %q", hb.Name, hb.Uses, ref.Locator)
	}

	args, err := evalArgs(hb)
	if err != nil {
		return nil, err
	}
	h, err := val.Bind(args)
	if err != nil {
		return nil, errs.Wrap(errs.KindModuleLoad, err, "handler %q", hb.Name)
	}
	return h, nil
}

func evalArgs(hb *handlerBlock) (map[string]cty.Value, error) {
	if hb.Args == nil {
		return nil, nil
	}
	val, diags := hb.Args.Value(nil)
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.KindModuleLoad, diags, "handler %q: failed to evaluate args", hb.Name)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, errs.New(errs.KindModuleLoad, "handler %q: args must be an object", hb.Name)
	}
	return val.AsValueMap(), nil
}
