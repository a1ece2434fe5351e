// Package handlerspec parses textual handler references into a structured
// form. A reference is either "locator:dotted.access.path" naming a callable
// inside a script file or a built-in module, or a leading-slash router path
// that delegates to the serving framework's own routing.
//
// Parsing performs no I/O. Whether a function locator really is a file or a
// module name is finally decided by the function loader, which can consult
// the alias table and the filesystem; the parser only applies the shape
// heuristics (absolute path, recognized script suffix).
package handlerspec

import (
	"path/filepath"
	"strings"
)

// ScriptSuffix is the recognized customer-script file extension.
const ScriptSuffix = ".hcl"

// Kind tags the variant a reference parsed into.
type Kind int

const (
	// KindInvalid marks a malformed reference.
	KindInvalid Kind = iota
	// KindFileFunction locates a callable inside a script file.
	KindFileFunction
	// KindModuleFunction locates a callable inside a built-in module.
	KindModuleFunction
	// KindRouterPath delegates to a framework route instead of a callable.
	KindRouterPath
)

func (k Kind) String() string {
	switch k {
	case KindFileFunction:
		return "file function"
	case KindModuleFunction:
		return "module function"
	case KindRouterPath:
		return "router path"
	default:
		return "invalid"
	}
}

// Spec is the immutable parsed form of a handler reference.
type Spec struct {
	Kind Kind

	// Locator is the file path or module name left of the separator.
	Locator string

	// AccessPath is the ordered attribute chain right of the separator,
	// e.g. ["Handler", "process"]. At least one segment for function kinds.
	AccessPath []string

	// RouterPath is set only for KindRouterPath.
	RouterPath string

	raw string
}

// Parse turns a handler reference string into a Spec. Malformed input yields
// KindInvalid rather than an error; callers decide whether that is fatal.
func Parse(text string) Spec {
	raw := text
	text = strings.TrimSpace(text)
	if text == "" {
		return Spec{Kind: KindInvalid, raw: raw}
	}

	sep := strings.LastIndex(text, ":")
	if sep < 0 {
		if strings.HasPrefix(text, "/") {
			return Spec{Kind: KindRouterPath, RouterPath: text, raw: raw}
		}
		return Spec{Kind: KindInvalid, raw: raw}
	}

	locator := text[:sep]
	access := text[sep+1:]
	if locator == "" || access == "" {
		return Spec{Kind: KindInvalid, raw: raw}
	}

	segments := strings.Split(access, ".")
	for _, seg := range segments {
		if seg == "" {
			return Spec{Kind: KindInvalid, raw: raw}
		}
	}

	kind := KindModuleFunction
	if LooksLikeFile(locator) {
		kind = KindFileFunction
	}
	return Spec{Kind: kind, Locator: locator, AccessPath: segments, raw: raw}
}

// LooksLikeFile reports whether a locator is shaped like a script file path,
// without touching the filesystem. An existing relative file that lacks the
// suffix is still treated as a file by the function loader; a module name
// colliding with such a file resolves as a file (existing-file-wins, a
// documented ambiguity of the grammar).
func LooksLikeFile(locator string) bool {
	return filepath.IsAbs(locator) ||
		strings.HasSuffix(locator, ScriptSuffix) ||
		strings.ContainsRune(locator, filepath.Separator)
}

// IsFunction reports whether the spec names a callable (file or module).
func (s Spec) IsFunction() bool {
	return s.Kind == KindFileFunction || s.Kind == KindModuleFunction
}

// String reconstructs the canonical reference text.
func (s Spec) String() string {
	switch s.Kind {
	case KindRouterPath:
		return s.RouterPath
	case KindFileFunction, KindModuleFunction:
		return s.Locator + ":" + strings.Join(s.AccessPath, ".")
	default:
		return s.raw
	}
}
