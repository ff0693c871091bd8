package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/LinFrancis/finanzas-app/internal/amqp"
	"github.com/LinFrancis/finanzas-app/internal/cli"
	"github.com/LinFrancis/finanzas-app/internal/services"
	ports "github.com/LinFrancis/finanzas-app/internal/sheets"
	gsheet "github.com/LinFrancis/finanzas-app/internal/sheets/google"
	"github.com/LinFrancis/finanzas-app/internal/sheets/memory"
	"github.com/LinFrancis/finanzas-app/internal/storage"
	"github.com/LinFrancis/finanzas-app/internal/worker"
)

func main() {
	cfg := cli.Bootstrap()

	slog.Info("Starting finanzas-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker reads the live store and mirrors it into SQLite. Without a
	// spreadsheet configured it runs against the memory store, which is only
	// useful for local development.
	var store ports.RecordStore
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			slog.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		store = client
		slog.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		store = memory.New()
		slog.Warn("No GOOGLE_SPREADSHEET_ID set, mirroring the memory store")
	}

	repo, err := storage.NewSnapshotRepository(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize snapshot repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledger := services.NewLedgerService(store, cfg.Roster)
	w := worker.NewSnapshotWorker(ledger, repo)

	// Populate the snapshot before serving change messages.
	if err := w.Refresh(ctx); err != nil {
		slog.Error("Initial snapshot refresh failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeMovementChanges(gctx, w.HandleChangeMessage)
	})
	g.Go(func() error {
		return w.RunPeriodic(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped gracefully")
}
