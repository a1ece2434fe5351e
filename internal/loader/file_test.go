package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/errs"
	"github.com/modelhost/containerstd/internal/script"
)

func testSymbols(t *testing.T) *script.SymbolTable {
	t.Helper()
	syms := script.NewSymbolTable()

	ns := script.NewNamespace()
	ns.Set("echo", script.HandlerValue(func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return api.Text(200, string(req.Body)), nil
	}))
	ns.Set("greet", script.FactoryValue(func(args map[string]cty.Value) (api.Handler, error) {
		message := "hello"
		if v, ok := args["message"]; ok {
			message = v.AsString()
		}
		return func(ctx context.Context, req *api.Request) (*api.Response, error) {
			return api.Text(200, message), nil
		}, nil
	}))
	syms.RegisterModule("std", ns)
	return syms
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicScript = `
handler "ping" {
  uses = "std:greet"
  args = { message = "first" }
}
`

func call(t *testing.T, h api.Handler) string {
	t.Helper()
	resp, err := h(context.Background(), &api.Request{})
	require.NoError(t, err)
	return string(resp.Body)
}

func TestLoadScriptAndWalk(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "model.hcl", basicScript)
	l := NewFileLoader(testSymbols(t), dir)

	v, err := l.LoadValue(context.Background(), "model.hcl", []string{"ping"})
	require.NoError(t, err)
	h, err := v.Callable()
	require.NoError(t, err)
	assert.Equal(t, "first", call(t, h))
}

func TestLoadFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "sub/inner.hcl", `handler "f" { uses = "std:echo" }`)
	l := NewFileLoader(testSymbols(t), dir)

	_, err := l.LoadValue(context.Background(), "sub/inner.hcl", []string{"f"})
	require.NoError(t, err)
}

func TestCacheReturnsIdenticalScript(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "model.hcl", basicScript)
	l := NewFileLoader(testSymbols(t), dir)

	s1, err := l.LoadScript(context.Background(), "model.hcl")
	require.NoError(t, err)
	s2, err := l.LoadScript(context.Background(), "model.hcl")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	// Absolute and relative spellings of the same file share one entry.
	s3, err := l.LoadScript(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, s1, s3)

	resolved, err := l.Resolve(path)
	require.NoError(t, err)
	assert.True(t, l.Cached(CacheKey(resolved)))
}

func TestSearchPathPriority(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeScript(t, dir1, "model.hcl", `
handler "ping" {
  uses = "std:greet"
  args = { message = "first" }
}
`)
	writeScript(t, dir2, "model.hcl", `
handler "ping" {
  uses = "std:greet"
  args = { message = "second" }
}
`)

	l := NewFileLoader(testSymbols(t), dir1, dir2)
	v, err := l.LoadValue(context.Background(), "model.hcl", []string{"ping"})
	require.NoError(t, err)
	h, err := v.Callable()
	require.NoError(t, err)
	// First search path wins; the second is never consulted.
	assert.Equal(t, "first", call(t, h))

	// Same basename from different search paths yields distinct scripts.
	s1, err := l.LoadScript(context.Background(), "model.hcl")
	require.NoError(t, err)
	s2, err := l.LoadScript(context.Background(), filepath.Join(dir2, "model.hcl"))
	require.NoError(t, err)
	assert.NotSame(t, s1, s2)
}

func TestAbsolutePathBypassesSearchPaths(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	writeScript(t, dir1, "model.hcl", `
handler "ping" {
  uses = "std:greet"
  args = { message = "first" }
}
`)
	abs := writeScript(t, dir2, "model.hcl", `
handler "ping" {
  uses = "std:greet"
  args = { message = "absolute" }
}
`)

	// dir2 is not a search path at all.
	l := NewFileLoader(testSymbols(t), dir1)
	v, err := l.LoadValue(context.Background(), abs, []string{"ping"})
	require.NoError(t, err)
	h, err := v.Callable()
	require.NoError(t, err)
	assert.Equal(t, "absolute", call(t, h))
}

func TestSymlinkSharesCacheEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "model.hcl", basicScript)
	link := filepath.Join(dir, "link.hcl")
	if err := os.Symlink(path, link); err != nil {
		t.Skip("symlinks not supported")
	}

	l := NewFileLoader(testSymbols(t), dir)
	s1, err := l.LoadScript(context.Background(), path)
	require.NoError(t, err)
	s2, err := l.LoadScript(context.Background(), link)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestMissingFile(t *testing.T) {
	l := NewFileLoader(testSymbols(t), t.TempDir())

	_, err := l.LoadScript(context.Background(), "nonexistent.hcl")
	assert.ErrorIs(t, err, errs.ErrFileNotFound)

	_, err = l.LoadScript(context.Background(), "/nonexistent/absolute/model.hcl")
	assert.ErrorIs(t, err, errs.ErrFileNotFound)
}

func TestUnreadableFileIsModuleLoadError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind for root")
	}

	dir := t.TempDir()
	path := writeScript(t, dir, "locked/model.hcl", basicScript)
	lockedDir := filepath.Dir(path)
	require.NoError(t, os.Chmod(lockedDir, 0o000))
	t.Cleanup(func() { _ = os.Chmod(lockedDir, 0o755) })

	l := NewFileLoader(testSymbols(t), dir)

	// A permission failure must not masquerade as a missing file, which the
	// resolution chain treats as a recoverable miss.
	_, err := l.Resolve(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrModuleLoad)
	assert.NotErrorIs(t, err, errs.ErrFileNotFound)
	assert.False(t, errs.IsRecoverable(err))

	_, err = l.Resolve("locked/model.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrModuleLoad)
}

func TestBrokenFileIsModuleLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.hcl", `handler "ping" {`)
	l := NewFileLoader(testSymbols(t), dir)

	_, err := l.LoadScript(context.Background(), "broken.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrModuleLoad)
	assert.False(t, errs.IsRecoverable(err))
}

func TestMissingAttribute(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "model.hcl", basicScript)
	l := NewFileLoader(testSymbols(t), dir)

	_, err := l.LoadValue(context.Background(), "model.hcl", []string{"nonexistent"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDefaultSearchPathIsCwd(t *testing.T) {
	l := NewFileLoader(testSymbols(t))
	assert.Equal(t, []string{"."}, l.SearchPaths())
}

func TestConcurrentFirstLoadsCollapse(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "model.hcl", basicScript)
	l := NewFileLoader(testSymbols(t), dir)

	const n = 32
	results := make([]*script.Script, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := l.LoadScript(context.Background(), "model.hcl")
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}
