// Package worker refreshes the local SQLite snapshot from the record store.
// It reacts to AMQP change messages and runs a periodic full refresh as a
// backup in case messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LinFrancis/finanzas-app/internal/amqp"
	"github.com/LinFrancis/finanzas-app/internal/services"
	"github.com/LinFrancis/finanzas-app/internal/storage"
)

type SnapshotWorker struct {
	ledger   *services.LedgerService
	snapshot *storage.SnapshotRepository
}

func NewSnapshotWorker(ledger *services.LedgerService, snapshot *storage.SnapshotRepository) *SnapshotWorker {
	return &SnapshotWorker{ledger: ledger, snapshot: snapshot}
}

// Refresh replaces the whole snapshot with a fresh read of the store.
// The spreadsheet is small; a full reload is simpler and safer than
// patching individual rows from change messages.
func (w *SnapshotWorker) Refresh(ctx context.Context) error {
	movements, err := w.ledger.LoadMovements(ctx)
	if err != nil {
		return fmt.Errorf("load movements: %w", err)
	}
	if err := w.snapshot.ReplaceAll(ctx, movements); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot refreshed", "movements", len(movements))
	return nil
}

// HandleChangeMessage processes one AMQP movement change notification.
func (w *SnapshotWorker) HandleChangeMessage(ctx context.Context, msg *amqp.MovementChangeMessage) error {
	slog.InfoContext(ctx, "Processing movement change", "id", msg.ID, "row", msg.Row)
	return w.Refresh(ctx)
}

// RunPeriodic refreshes every interval until ctx is done. Errors are logged
// and retried on the next tick; the store being briefly unreachable must not
// kill the worker.
func (w *SnapshotWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot refresh failed", "error", err)
			}
		}
	}
}
