package hosting

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/loader"
	"github.com/modelhost/containerstd/internal/script"
)

func testSymbols(t *testing.T) *script.SymbolTable {
	t.Helper()
	syms := script.NewSymbolTable()

	ns := script.NewNamespace()
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

func envMap(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const customerScript = `
handler "ping" {
  uses = "std:greet"
  args = { message = "script_ping" }
}

handler "invocation" {
  uses = "std:greet"
  args = { message = "script_invocation" }
}
`

func call(t *testing.T, h api.Handler) string {
	t.Helper()
	resp, err := h(context.Background(), &api.Request{})
	require.NoError(t, err)
	return string(resp.Body)
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig(envMap(nil))
	assert.Equal(t, DefaultModelPath, cfg.ModelPath)
	assert.Equal(t, DefaultScriptFilename, cfg.ScriptFilename)
	assert.Equal(t, "/opt/ml/model/model.hcl", cfg.ScriptPath())
}

func TestConfigFromEnvironment(t *testing.T) {
	cfg := NewConfig(envMap(map[string]string{
		EnvModelPath:      "/srv/model",
		EnvScriptFilename: "serving.hcl",
	}))
	assert.Equal(t, "/srv/model", cfg.ModelPath)
	assert.Equal(t, "/srv/model/serving.hcl", cfg.ScriptPath())
}

func TestHandlerEnvVar(t *testing.T) {
	assert.Equal(t, "CUSTOM_PING_HANDLER", HandlerEnvVar(RolePing))
	assert.Equal(t, "CUSTOM_INVOCATION_HANDLER", HandlerEnvVar(RoleInvocation))
	assert.Equal(t, "CUSTOM_REGISTER_ADAPTER_HANDLER", HandlerEnvVar("register_adapter"))
}

func TestResolveFromCustomerScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, DefaultScriptFilename, customerScript)
	cfg := NewConfig(envMap(map[string]string{EnvModelPath: dir}))

	h, err := New(context.Background(), cfg, testSymbols(t))
	require.NoError(t, err)

	res, err := h.Resolve(context.Background(), RolePing, nil)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "script_ping", call(t, res.Handler))

	res, err = h.Resolve(context.Background(), RoleInvocation, nil)
	require.NoError(t, err)
	assert.Equal(t, "script_invocation", call(t, res.Handler))
}

func TestPreloadCachesScript(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, DefaultScriptFilename, customerScript)
	cfg := NewConfig(envMap(map[string]string{EnvModelPath: dir}))

	h, err := New(context.Background(), cfg, testSymbols(t))
	require.NoError(t, err)

	resolved, err := h.Loader().Files().Resolve(path)
	require.NoError(t, err)
	assert.True(t, h.Loader().Files().Cached(loader.CacheKey(resolved)))
}

func TestMissingScriptFallsBackToDefault(t *testing.T) {
	cfg := NewConfig(envMap(map[string]string{EnvModelPath: t.TempDir()}))

	h, err := New(context.Background(), cfg, testSymbols(t))
	require.NoError(t, err)

	def := DefaultPing()
	res, err := h.Resolve(context.Background(), RolePing, def)
	require.NoError(t, err)
	require.True(t, res.Found())
	resp, err := res.Handler(context.Background(), &api.Request{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestBrokenScriptFailsStartup(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, DefaultScriptFilename, `handler "ping" {`)
	cfg := NewConfig(envMap(map[string]string{EnvModelPath: dir}))

	_, err := New(context.Background(), cfg, testSymbols(t))
	assert.Error(t, err)
}

func TestEnvironmentOverrideWins(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, DefaultScriptFilename, customerScript)
	writeScript(t, dir, "alt.hcl", `
handler "probe" {
  uses = "std:greet"
  args = { message = "env_probe" }
}
`)
	cfg := NewConfig(envMap(map[string]string{
		EnvModelPath:          dir,
		"CUSTOM_PING_HANDLER": "alt.hcl:probe",
	}))

	h, err := New(context.Background(), cfg, testSymbols(t))
	require.NoError(t, err)

	h.Override(RolePing, func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return api.Text(200, "registry"), nil
	})

	res, err := h.Resolve(context.Background(), RolePing, nil)
	require.NoError(t, err)
	assert.Equal(t, "env_probe", call(t, res.Handler))
}

func TestProgrammaticOverrideBeatsScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, DefaultScriptFilename, customerScript)
	cfg := NewConfig(envMap(map[string]string{EnvModelPath: dir}))

	h, err := New(context.Background(), cfg, testSymbols(t))
	require.NoError(t, err)

	h.Override(RolePing, func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return api.Text(200, "registry"), nil
	})
	res, err := h.Resolve(context.Background(), RolePing, nil)
	require.NoError(t, err)
	assert.Equal(t, "registry", call(t, res.Handler))

	h.ClearOverride(RolePing)
	res, err = h.Resolve(context.Background(), RolePing, nil)
	require.NoError(t, err)
	assert.Equal(t, "script_ping", call(t, res.Handler))
}

func TestEnvironmentRouterPath(t *testing.T) {
	cfg := NewConfig(envMap(map[string]string{
		EnvModelPath:                t.TempDir(),
		"CUSTOM_INVOCATION_HANDLER": "/v1/chat/completions",
	}))

	h, err := New(context.Background(), cfg, testSymbols(t))
	require.NoError(t, err)

	res, err := h.Resolve(context.Background(), RoleInvocation, nil)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Nil(t, res.Handler)
	assert.Equal(t, "/v1/chat/completions", res.RouterPath)
}
