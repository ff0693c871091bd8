// Package backend selects and builds the record store for the configured
// data backend.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LinFrancis/finanzas-app/internal/adapters"
	"github.com/LinFrancis/finanzas-app/internal/config"
	ports "github.com/LinFrancis/finanzas-app/internal/sheets"
	gsheet "github.com/LinFrancis/finanzas-app/internal/sheets/google"
	"github.com/LinFrancis/finanzas-app/internal/sheets/memory"
	"github.com/LinFrancis/finanzas-app/internal/storage"
)

// CleanupFunc releases resources held by the backend.
type CleanupFunc func() error

// Build returns the record store for cfg.DataBackend:
//
//	memory    in-process table, data lost on restart
//	sheets    Google Sheets, the system of record
//	snapshot  SQLite read-model; writes go to Sheets when configured
func Build(ctx context.Context, cfg *config.Config) (ports.RecordStore, CleanupFunc, error) {
	switch cfg.DataBackend {
	case "memory":
		slog.Info("Initialized memory backend")
		return memory.New(), nil, nil

	case "sheets":
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		slog.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return cli, nil, nil

	case "snapshot":
		repo, err := storage.NewSnapshotRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize snapshot repository: %w", err)
		}

		var live ports.RecordStore
		if cfg.GoogleSpreadsheetID != "" {
			cli, err := gsheet.NewFromEnv(ctx)
			if err != nil {
				repo.Close()
				return nil, nil, fmt.Errorf("initialize Google Sheets client: %w", err)
			}
			live = cli
		} else {
			slog.Warn("Snapshot backend without Google Sheets: writes disabled")
		}
		slog.Info("Initialized snapshot backend", "path", cfg.SQLiteDBPath)
		return adapters.NewSnapshotStore(repo, live), repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
