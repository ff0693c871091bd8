// Package adapters bridges the SQLite snapshot into the record-store port so
// the read path keeps working when the spreadsheet is unreachable.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/LinFrancis/finanzas-app/internal/core"
	ports "github.com/LinFrancis/finanzas-app/internal/sheets"
	"github.com/LinFrancis/finanzas-app/internal/storage"
)

// ErrReadOnly is returned for writes when no live record store is attached.
var ErrReadOnly = errors.New("record store is read-only in snapshot mode")

// SnapshotStore serves reads from the local SQLite snapshot and forwards
// writes to the live store when one is configured.
type SnapshotStore struct {
	snapshot *storage.SnapshotRepository
	live     ports.RecordStore
}

var _ ports.RecordStore = (*SnapshotStore)(nil)

// NewSnapshotStore wraps the snapshot repository. live may be nil, which
// makes the store read-only.
func NewSnapshotStore(snapshot *storage.SnapshotRepository, live ports.RecordStore) *SnapshotStore {
	return &SnapshotStore{snapshot: snapshot, live: live}
}

func (s *SnapshotStore) EnsureHeaders(ctx context.Context) ([]string, error) {
	if s.live != nil {
		return s.live.EnsureHeaders(ctx)
	}
	return core.ExpectedHeaders(), nil
}

// ReadAll rebuilds the table shape from the snapshot: canonical header row
// followed by one row per movement in store order.
func (s *SnapshotStore) ReadAll(ctx context.Context) ([][]string, error) {
	movements, err := s.snapshot.ListMovements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshot movements: %w", err)
	}
	headers := core.ExpectedHeaders()
	table := make([][]string, 0, len(movements)+1)
	table = append(table, headers)
	for _, m := range movements {
		table = append(table, m.ToRow(headers))
	}
	return table, nil
}

func (s *SnapshotStore) Append(ctx context.Context, row []string) error {
	if s.live == nil {
		return ErrReadOnly
	}
	return s.live.Append(ctx, row)
}

func (s *SnapshotStore) Update(ctx context.Context, rowNum int, row []string) error {
	if s.live == nil {
		return ErrReadOnly
	}
	return s.live.Update(ctx, rowNum, row)
}
