package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/modelhost/containerstd/internal/ctxlog"
)

// shutdownGrace bounds how long in-flight requests may run after the stop
// signal arrives.
const shutdownGrace = 10 * time.Second

// Run serves until the context is cancelled, then drains gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	srv := &http.Server{
		Addr:        a.config.Addr,
		Handler:     a.server.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Serving endpoints listening.", "address", a.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
