// Package storage keeps a local SQLite snapshot of the normalized ledger.
// The snapshot is a read model refreshed by the sync worker; it serves
// listings when the record store is unreachable and is never the source of
// truth for writes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/LinFrancis/finanzas-app/internal/core"

	_ "modernc.org/sqlite"
)

const lastRefreshKey = "last_refreshed_at"

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceAll swaps the snapshot for the given table in one transaction.
func (r *SnapshotRepository) ReplaceAll(ctx context.Context, movements []core.Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movements`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	const insert = `
		INSERT INTO movements (
			row_num, id, kind, detail, category, date,
			person, person_origin, person_destination, amount,
			created_at, created_by, last_modified_at, last_modified_by, voided
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, m := range movements {
		voided := 0
		if m.Voided {
			voided = 1
		}
		_, err := tx.ExecContext(ctx, insert,
			m.Row, m.ID, string(m.Kind), m.Detail, m.Category, m.DateString(),
			m.Person, m.PersonOrigin, m.PersonDestination, m.Amount.Units,
			m.CreatedAt, m.CreatedBy, m.LastModifiedAt, m.LastModifiedBy, voided)
		if err != nil {
			return fmt.Errorf("insert movement %s: %w", m.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastRefreshKey, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("stamp refresh time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced", "movements", len(movements))
	return nil
}

// ListMovements returns the snapshot in store-row order.
func (r *SnapshotRepository) ListMovements(ctx context.Context) ([]core.Movement, error) {
	const query = `
		SELECT row_num, id, kind, detail, category, date,
		       person, person_origin, person_destination, amount,
		       created_at, created_by, last_modified_at, last_modified_by, voided
		FROM movements ORDER BY row_num`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var out []core.Movement
	for rows.Next() {
		var m core.Movement
		var kind, date string
		var voided int
		err := rows.Scan(&m.Row, &m.ID, &kind, &m.Detail, &m.Category, &date,
			&m.Person, &m.PersonOrigin, &m.PersonDestination, &m.Amount.Units,
			&m.CreatedAt, &m.CreatedBy, &m.LastModifiedAt, &m.LastModifiedBy, &voided)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Kind = core.MovementKind(kind)
		m.Date = core.ParseStoredDate(date)
		m.Voided = voided != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

// LastRefreshedAt reports when the snapshot was last replaced. The zero time
// means it never was.
func (r *SnapshotRepository) LastRefreshedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_state WHERE key = ?`, lastRefreshKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query refresh time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse refresh time: %w", err)
	}
	return t, nil
}
