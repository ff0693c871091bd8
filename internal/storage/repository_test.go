package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LinFrancis/finanzas-app/internal/core"
)

func newTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	repo, err := NewSnapshotRepository(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestReplaceAllAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	movements := []core.Movement{
		{
			Row: 2, ID: "id-1", Kind: core.Expense, Detail: "supermercado",
			Category: "Comida", Date: core.NewDate(2026, 1, 11),
			Person: "Alice", Amount: core.Money{Units: 1000},
			CreatedAt: "2026-01-11 10:00:00", CreatedBy: "Alice",
		},
		{
			Row: 3, ID: "id-2", Kind: core.Transfer, Detail: "devolución",
			PersonOrigin: "Alice", PersonDestination: "Bob",
			Amount: core.Money{Units: 500}, Voided: true,
		},
	}
	if err := repo.ReplaceAll(ctx, movements); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListMovements(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d movements, want 2", len(got))
	}
	if got[0].ID != "id-1" || got[0].Amount.Units != 1000 || !got[0].Date.Equal(core.NewDate(2026, 1, 11).Time) {
		t.Errorf("first movement mismatch: %+v", got[0])
	}
	if !got[1].Voided || got[1].PersonDestination != "Bob" {
		t.Errorf("second movement mismatch: %+v", got[1])
	}
	if got[1].Date.IsValid() {
		t.Error("missing date should stay invalid after round trip")
	}

	// Replace swaps, not appends.
	if err := repo.ReplaceAll(ctx, movements[:1]); err != nil {
		t.Fatal(err)
	}
	got, err = repo.ListMovements(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("after replace got %d, want 1", len(got))
	}
}

func TestLastRefreshedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ts, err := repo.LastRefreshedAt(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ts.IsZero() {
		t.Errorf("fresh db should report zero time, got %v", ts)
	}

	if err := repo.ReplaceAll(ctx, nil); err != nil {
		t.Fatal(err)
	}
	ts, err = repo.LastRefreshedAt(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ts.IsZero() {
		t.Error("refresh time not stamped")
	}
}
