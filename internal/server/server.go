// Package server binds the HTTP and gRPC ports and owns graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/grpc"
	"github.com/cupcakery/storefront/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Run serves handler on APP_PORT and the gRPC health service on GRPC_PORT
// until ctx is cancelled, then drains both.
func Run(ctx context.Context, handler http.Handler, probe grpc.Probe) error {
	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	health := grpc.New(probe)
	if err := health.Start(ctx, config.GRPCPort()); err != nil {
		return fmt.Errorf("grpc: %w", err)
	}
	defer health.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("http: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http: shutdown: %w", err)
	}
	return nil
}
