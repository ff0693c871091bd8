// Package cli holds the bootstrap steps shared by cmd/finanzas and
// cmd/finanzas-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/LinFrancis/finanzas-app/internal/config"
	applog "github.com/LinFrancis/finanzas-app/internal/log"
)

// Bootstrap loads the optional .env file, installs the default logger and
// returns a validated configuration. Exits the process when the
// configuration is invalid.
func Bootstrap() *config.Config {
	_ = godotenv.Load()
	applog.Setup(os.Getenv("LOG_LEVEL"))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. cleanup
// runs once after the signal, bounded by timeout.
func GracefulShutdown(timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			slog.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
	}()

	return ctx, done
}
