// Package loader turns parsed handler references into live values. The
// FileLoader owns the process-wide script cache, the ModuleLoader resolves
// built-in module references, and the FunctionLoader composes both behind
// the textual spec grammar.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/errs"
	"github.com/modelhost/containerstd/internal/script"
)

// FileLoader loads customer scripts from the filesystem with an in-memory
// cache keyed by resolved absolute path. A path is loaded at most once per
// process; concurrent first loads of the same path collapse into a single
// underlying load and every caller observes the identical script object.
type FileLoader struct {
	searchPaths []string
	syms        *script.SymbolTable

	mu    sync.RWMutex
	cache map[string]*script.Script
	group singleflight.Group
}

// NewFileLoader creates a loader resolving relative paths against the given
// search paths in order. With no search paths, the current working directory
// is used.
func NewFileLoader(syms *script.SymbolTable, searchPaths ...string) *FileLoader {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	return &FileLoader{
		searchPaths: searchPaths,
		syms:        syms,
		cache:       make(map[string]*script.Script),
	}
}

// SearchPaths returns the configured search paths in priority order.
func (l *FileLoader) SearchPaths() []string {
	return l.searchPaths
}

// Resolve maps a script path to the resolved absolute path that identifies
// it in the cache. Absolute paths bypass search-path resolution entirely;
// relative paths resolve against each search path in order, first match
// wins. Symlinks are flattened so two spellings of one file share a cache
// entry.
func (l *FileLoader) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", errs.New(errs.KindFileNotFound, "script file %q does not exist", path)
			}
			// Permission and I/O failures are not a miss the resolution
			// chain is allowed to fall through.
			return "", errs.Wrap(errs.KindModuleLoad, err, "cannot stat script file %q", path)
		}
		return canonical(path)
	}

	for _, dir := range l.searchPaths {
		candidate := filepath.Join(dir, path)
		info, err := os.Stat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", errs.Wrap(errs.KindModuleLoad, err, "cannot stat script file %q", candidate)
		}
		if !info.IsDir() {
			return canonical(candidate)
		}
	}
	return "", errs.New(errs.KindFileNotFound,
		"script file %q not found under search paths %v", path, l.searchPaths)
}

func canonical(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errs.Wrap(errs.KindFileNotFound, err, "cannot resolve script path %q", path)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", errs.Wrap(errs.KindFileNotFound, err, "cannot resolve script path %q", path)
	}
	return abs, nil
}

// CacheKey returns the cache identity for a resolved absolute path.
func CacheKey(resolved string) string { return "file:" + resolved }

// Cached reports whether a cache key currently holds a loaded script.
func (l *FileLoader) Cached(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[key]
	return ok
}

// LoadScript resolves and loads a script, returning the cached instance on
// every call after the first. Load failures are not cached: a script that
// failed to parse is retried on the next request.
func (l *FileLoader) LoadScript(ctx context.Context, path string) (*script.Script, error) {
	resolved, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	key := CacheKey(resolved)

	l.mu.RLock()
	cached, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		// Re-check under the flight: a previous flight may have filled
		// the cache between the read above and this call.
		l.mu.RLock()
		cached, ok := l.cache[key]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}

		ctxlog.FromContext(ctx).Debug("Script cache miss, loading.", "key", key)
		s, err := script.Load(ctx, resolved, l.syms)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = s
		l.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*script.Script), nil
}

// LoadValue loads a script and walks the access path to an attribute value.
func (l *FileLoader) LoadValue(ctx context.Context, path string, accessPath []string) (script.Value, error) {
	s, err := l.LoadScript(ctx, path)
	if err != nil {
		return script.Value{}, err
	}
	return s.Root.Walk(accessPath)
}
