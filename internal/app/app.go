// Package app assembles the serving daemon: logger, script symbol table,
// hosting wiring, middleware, and the HTTP boundary.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/hosting"
	"github.com/modelhost/containerstd/internal/httpserve"
	"github.com/modelhost/containerstd/internal/lora"
	"github.com/modelhost/containerstd/internal/middleware"
	"github.com/modelhost/containerstd/internal/script"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	hosting *hosting.Hosting
	server  *httpserve.Server
}

// NewApp is the constructor for the serving daemon. It returns a fully
// initialized App instance, including its own isolated logger and symbol
// table. A present-but-broken customer script is a startup error.
func NewApp(outW io.Writer, appConfig *Config, modules ...script.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	syms := script.NewSymbolTable()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(syms)
	}
	logger.Debug("All script modules registered.", "count", len(modules))

	hcfg := hosting.NewConfig(nil)
	if appConfig.ModelPath != "" {
		hcfg.ModelPath = appConfig.ModelPath
	}
	if appConfig.ScriptFilename != "" {
		hcfg.ScriptFilename = appConfig.ScriptFilename
	}

	h, err := hosting.New(ctx, hcfg, syms)
	if err != nil {
		return nil, fmt.Errorf("hosting setup failed: %w", err)
	}
	logger.Debug("Hosting wiring ready.", "model_path", hcfg.ModelPath)

	mw, err := newMiddleware(appConfig)
	if err != nil {
		return nil, fmt.Errorf("middleware setup failed: %w", err)
	}

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		hosting: h,
		server:  httpserve.New(h, mw),
	}, nil
}

func newMiddleware(appConfig *Config) (*middleware.Registry, error) {
	mw := middleware.NewRegistry()
	if appConfig.MaxConcurrency > 0 {
		if err := mw.Register(middleware.NameThrottle,
			middleware.NewThrottle(int64(appConfig.MaxConcurrency))); err != nil {
			return nil, err
		}
	}
	if err := mw.SetInputFormatter(lora.HeaderToBodyFormatter()); err != nil {
		return nil, err
	}
	mw.GenerateProcessMiddleware()
	return mw, nil
}

// Hosting returns the resolution wiring. This is primarily for testing.
func (a *App) Hosting() *hosting.Hosting {
	return a.hosting
}

// Server returns the HTTP boundary. This is primarily for testing.
func (a *App) Server() *httpserve.Server {
	return a.server
}
