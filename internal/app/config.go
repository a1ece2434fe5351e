package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Addr           string // listen address for the serving endpoints
	ModelPath      string // directory holding customer scripts, "" keeps the environment default
	ScriptFilename string // conventional script name, "" keeps the environment default

	LogFormat      string
	LogLevel       string
	MaxConcurrency int // in-flight invocation limit, 0 disables throttling
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Addr == "" {
		return nil, errors.New("Addr is a required configuration field and cannot be empty")
	}
	if cfg.MaxConcurrency < 0 {
		return nil, errors.New("MaxConcurrency cannot be negative")
	}

	return &cfg, nil
}
