package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScripts(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "model.hcl", basicScript)
	writeScript(t, dir, "nested/extra.hcl", basicScript)
	writeScript(t, dir, "weights.bin", "not a script")

	scripts, err := FindScripts(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "model.hcl"),
		filepath.Join(dir, "nested", "extra.hcl"),
	}, scripts)
}

func TestFindScriptsMissingRoot(t *testing.T) {
	scripts, err := FindScripts(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, scripts)
}
