package hosting

import (
	"os"
	"path/filepath"
	"strings"
)

// Defaults for the customer code location.
const (
	DefaultModelPath      = "/opt/ml/model"
	DefaultScriptFilename = "model.hcl"
)

// Environment variable names controlling the hosting setup.
const (
	EnvModelPath      = "MODEL_PATH"
	EnvScriptFilename = "CUSTOM_SCRIPT_FILENAME"
)

// LookupFunc reads one environment variable, reporting whether it is set.
// os.LookupEnv satisfies it; tests substitute a map-backed one.
type LookupFunc func(key string) (string, bool)

// Config captures where customer code lives and how handler overrides are
// read from the environment.
type Config struct {
	// ModelPath is the directory searched for customer scripts.
	ModelPath string

	// ScriptFilename is the conventional script name under ModelPath.
	ScriptFilename string

	lookup LookupFunc
}

// NewConfig builds a Config from the given environment. A nil lookup reads
// the process environment.
func NewConfig(lookup LookupFunc) *Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := &Config{
		ModelPath:      DefaultModelPath,
		ScriptFilename: DefaultScriptFilename,
		lookup:         lookup,
	}
	if v, ok := lookup(EnvModelPath); ok && v != "" {
		cfg.ModelPath = v
	}
	if v, ok := lookup(EnvScriptFilename); ok && v != "" {
		cfg.ScriptFilename = v
	}
	return cfg
}

// ScriptPath returns the conventional customer script location.
func (c *Config) ScriptPath() string {
	return filepath.Join(c.ModelPath, c.ScriptFilename)
}

// HandlerEnvVar names the environment variable overriding a role's handler,
// e.g. CUSTOM_PING_HANDLER for the "ping" role.
func HandlerEnvVar(role string) string {
	return "CUSTOM_" + strings.ToUpper(role) + "_HANDLER"
}

// EnvSpec returns the environment-configured handler spec for a role.
func (c *Config) EnvSpec(role string) (string, bool) {
	v, ok := c.lookup(HandlerEnvVar(role))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
