package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/LinFrancis/finanzas-app/internal/amqp"
	"github.com/LinFrancis/finanzas-app/internal/backend"
	"github.com/LinFrancis/finanzas-app/internal/cli"
	apphttp "github.com/LinFrancis/finanzas-app/internal/http"
	"github.com/LinFrancis/finanzas-app/internal/services"
)

func main() {
	cfg := cli.Bootstrap()

	store, cleanup, err := backend.Build(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if cleanup != nil {
		defer func() { _ = cleanup() }()
	}

	// Change notifications are optional: without AMQP the snapshot worker
	// falls back to its periodic refresh.
	var publisher services.ChangePublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, continuing without change notifications", "error", err)
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
		}
	}

	ledger := services.NewLedgerService(store, cfg.Roster)
	movements := services.NewMovementService(store, publisher, cfg.Location())

	srv := apphttp.NewServer(":"+cfg.Port, ledger, movements)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	})

	slog.Info("Starting finanzas server",
		"port", cfg.Port, "backend", cfg.DataBackend, "roster", cfg.Roster)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	slog.Info("Server stopped gracefully")
}
