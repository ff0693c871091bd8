package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LinFrancis/finanzas-app/internal/core"
	"github.com/LinFrancis/finanzas-app/internal/sheets/memory"
)

type capturePublisher struct {
	ids  []string
	fail bool
}

func (p *capturePublisher) PublishMovementChange(_ context.Context, id string, _ int) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.ids = append(p.ids, id)
	return nil
}

func newTestService(store *memory.Store, events ChangePublisher) *MovementService {
	svc := NewMovementService(store, events, time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 1, 20, 15, 30, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string { n++; return "test-id-" + string(rune('0'+n)) }
	return svc
}

func TestCreateExpense(t *testing.T) {
	store := memory.New()
	events := &capturePublisher{}
	svc := newTestService(store, events)

	m, err := svc.Create(context.Background(), Draft{
		Kind:     core.Expense,
		Date:     core.NewDate(2026, 1, 19),
		Detail:   "  asado de bienvenida  ",
		Category: "Comida",
		Person:   "Alice",
		Amount:   15000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Detail != "asado de bienvenida" {
		t.Errorf("detail not trimmed: %q", m.Detail)
	}
	if m.CreatedBy != "Alice" || m.CreatedAt != "2026-01-20 15:30:00" {
		t.Errorf("creation stamps wrong: %q %q", m.CreatedBy, m.CreatedAt)
	}
	if m.LastModifiedAt != "" || m.LastModifiedBy != "" {
		t.Error("modification stamps must start empty")
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d rows, want 1", store.Len())
	}
	row, _ := store.Row(2)
	if row[8] != "15000" { // Monto column: plain integer string
		t.Errorf("stored amount = %q, want 15000", row[8])
	}
	if len(events.ids) != 1 {
		t.Errorf("expected one change event, got %v", events.ids)
	}
}

func TestCreateTransfer(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)

	m, err := svc.Create(context.Background(), Draft{
		Kind:              core.Transfer,
		Date:              core.NewDate(2026, 1, 19),
		Detail:            "devolución bencina",
		PersonOrigin:      "Bob",
		PersonDestination: "Alice",
		Amount:            5000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.CreatedBy != "Bob" {
		t.Errorf("transfer creator = %q, want origin", m.CreatedBy)
	}
	if m.Person != "" || m.Category != "" {
		t.Errorf("transfer must not carry person/category: %+v", m)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		draft   Draft
		wantErr error
	}{
		{
			"short detail",
			Draft{Kind: core.Expense, Detail: "abc", Category: "X", Person: "Alice", Amount: 100},
			core.ErrShortDetail,
		},
		{
			"zero amount",
			Draft{Kind: core.Expense, Detail: "almuerzo", Category: "X", Person: "Alice"},
			core.ErrInvalidAmount,
		},
		{
			"future date",
			Draft{Kind: core.Expense, Detail: "almuerzo", Category: "X", Person: "Alice", Amount: 100, Date: core.NewDate(2026, 2, 1)},
			core.ErrFutureDate,
		},
		{
			"same parties",
			Draft{Kind: core.Transfer, Detail: "traspaso x", PersonOrigin: "Alice", PersonDestination: "Alice", Amount: 100},
			core.ErrSameParties,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.draft); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
	if store.Len() != 0 {
		t.Errorf("rejected drafts must not write: %d rows", store.Len())
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, &capturePublisher{fail: true})
	_, err := svc.Create(context.Background(), Draft{
		Kind: core.Expense, Detail: "almuerzo grupal", Category: "Comida",
		Person: "Alice", Amount: 100,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
	if store.Len() != 1 {
		t.Error("movement not persisted")
	}
}

func TestUpdateAtOverlaysFields(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Draft{
		Kind: core.Expense, Date: core.NewDate(2026, 1, 19),
		Detail: "almuerzo grupal", Category: "Comida", Person: "Alice", Amount: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}

	amount := int64(2500)
	updated, err := svc.UpdateAt(ctx, 2, created.ID, "Bob", Edit{
		Detail: "almuerzo y postre",
		Amount: &amount,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != created.ID {
		t.Error("ID must never change across edits")
	}
	if updated.Detail != "almuerzo y postre" || updated.Amount.Units != 2500 {
		t.Errorf("overlay not applied: %+v", updated)
	}
	if updated.Category != "Comida" || updated.Person != "Alice" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.LastModifiedBy != "Bob" || updated.LastModifiedAt == "" {
		t.Errorf("modification stamps missing: %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt || updated.CreatedBy != created.CreatedBy {
		t.Error("creation stamps must be immutable")
	}
}

func TestUpdateAtRequiresEditor(t *testing.T) {
	svc := newTestService(memory.New(), nil)
	if _, err := svc.UpdateAt(context.Background(), 2, "", "  ", Edit{}); !errors.Is(err, core.ErrMissingEditor) {
		t.Fatalf("got %v, want ErrMissingEditor", err)
	}
}

func TestUpdateAtReResolvesByID(t *testing.T) {
	store := memory.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, Draft{
		Kind: core.Expense, Detail: "primer gasto", Category: "X", Person: "Alice", Amount: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, Draft{
		Kind: core.Expense, Detail: "segundo gasto", Category: "X", Person: "Bob", Amount: 200,
	}); err != nil {
		t.Fatal(err)
	}

	// Stale position 3 but the ID lives at row 2: the write follows the ID.
	updated, err := svc.UpdateAt(ctx, 3, first.ID, "Alice", Edit{Detail: "primer gasto corregido"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Row != 2 {
		t.Errorf("re-resolved row = %d, want 2", updated.Row)
	}

	// Unknown ID anywhere in the table is a conflict.
	if _, err := svc.UpdateAt(ctx, 2, "missing-id", "Alice", Edit{}); !errors.Is(err, core.ErrRowConflict) {
		t.Fatalf("got %v, want ErrRowConflict", err)
	}
}

func TestVoidAt(t *testing.T) {
	store := memory.New()
	events := &capturePublisher{}
	svc := newTestService(store, events)
	ctx := context.Background()

	created, err := svc.Create(ctx, Draft{
		Kind: core.Expense, Date: core.NewDate(2026, 1, 19),
		Detail: "gasto a anular", Category: "Comida", Person: "Alice", Amount: 700,
	})
	if err != nil {
		t.Fatal(err)
	}

	voided, err := svc.VoidAt(ctx, 2, created.ID, "Carol")
	if err != nil {
		t.Fatal(err)
	}
	if !voided.Voided {
		t.Error("movement not voided")
	}
	if voided.Detail != created.Detail || voided.Amount != created.Amount {
		t.Errorf("void must not touch other fields: %+v", voided)
	}
	if voided.LastModifiedBy != "Carol" {
		t.Errorf("void stamp = %q", voided.LastModifiedBy)
	}

	// The row stays in the store, flagged.
	row, _ := store.Row(2)
	if row[13] != "TRUE" {
		t.Errorf("Anulado cell = %q, want TRUE", row[13])
	}
	if store.Len() != 1 {
		t.Error("void must never remove the row")
	}

	if _, err := svc.VoidAt(ctx, 2, created.ID, ""); !errors.Is(err, core.ErrMissingEditor) {
		t.Errorf("void without editor: got %v", err)
	}
}
