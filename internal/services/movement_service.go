package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LinFrancis/finanzas-app/internal/core"
	"github.com/LinFrancis/finanzas-app/internal/sheets"

	"github.com/google/uuid"
)

// timestampLayout is how Created_At and Last_Modified_At are persisted,
// always in the service's civil time zone.
const timestampLayout = "2006-01-02 15:04:05"

// ChangePublisher notifies interested consumers that a movement was written.
// Publishing is best effort: a publish failure never fails the write.
type ChangePublisher interface {
	PublishMovementChange(ctx context.Context, id string, row int) error
}

// MovementService assembles and persists movements: create by append, edit
// and void by in-place row overwrite. Validation happens before any write;
// no partial write ever occurs.
type MovementService struct {
	store  sheets.RecordStore
	events ChangePublisher
	tz     *time.Location
	now    func() time.Time
	newID  func() string
}

func NewMovementService(store sheets.RecordStore, events ChangePublisher, tz *time.Location) *MovementService {
	if tz == nil {
		tz = time.UTC
	}
	return &MovementService{
		store:  store,
		events: events,
		tz:     tz,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Draft is the per-session user input for a new movement, carried explicitly
// through the write path rather than as ambient form state.
type Draft struct {
	Kind              core.MovementKind
	Date              core.Date
	Detail            string
	Category          string
	Person            string
	PersonOrigin      string
	PersonDestination string
	Amount            int64
}

// Edit is the overlay applied to an existing movement. Nil/zero fields keep
// the stored value; Kind may only switch between income and expense.
type Edit struct {
	Kind     core.MovementKind
	Date     core.Date
	Detail   string
	Category string
	Person   string

	PersonOrigin      string
	PersonDestination string

	Amount *int64
}

// Create validates the draft, assembles the full record and appends it.
func (s *MovementService) Create(ctx context.Context, d Draft) (core.Movement, error) {
	nowLocal := s.now().In(s.tz)
	m := core.Movement{
		ID:       s.newID(),
		Kind:     d.Kind,
		Detail:   strings.TrimSpace(d.Detail),
		Category: strings.TrimSpace(d.Category),
		Date:     d.Date,
		Amount:   core.Money{Units: d.Amount},
	}
	if d.Kind == core.Transfer {
		m.PersonOrigin = strings.TrimSpace(d.PersonOrigin)
		m.PersonDestination = strings.TrimSpace(d.PersonDestination)
		m.CreatedBy = m.PersonOrigin
	} else {
		m.Person = strings.TrimSpace(d.Person)
		m.CreatedBy = m.Person
	}
	if err := m.Validate(nowLocal); err != nil {
		return core.Movement{}, err
	}
	m.CreatedAt = nowLocal.Format(timestampLayout)

	headers, err := s.store.EnsureHeaders(ctx)
	if err != nil {
		return core.Movement{}, fmt.Errorf("ensure headers: %w", err)
	}
	if err := s.store.Append(ctx, m.ToRow(headers)); err != nil {
		return core.Movement{}, fmt.Errorf("append movement: %w", err)
	}
	s.publish(ctx, m.ID, 0)
	slog.InfoContext(ctx, "Movement created",
		"id", m.ID, "kind", string(m.Kind), "amount", m.Amount.Units, "by", m.CreatedBy)
	return m, nil
}

// UpdateAt overlays e onto the movement at the given store row and rewrites
// the row in place. The position is treated as a cache hint: identity is
// re-resolved by wantID before writing, and a mismatch that cannot be
// re-resolved is a conflict.
func (s *MovementService) UpdateAt(ctx context.Context, row int, wantID, editor string, e Edit) (core.Movement, error) {
	if strings.TrimSpace(editor) == "" {
		return core.Movement{}, core.ErrMissingEditor
	}
	headers, m, err := s.resolve(ctx, row, wantID)
	if err != nil {
		return core.Movement{}, err
	}

	if e.Date.IsValid() {
		m.Date = e.Date
	}
	if d := strings.TrimSpace(e.Detail); d != "" {
		m.Detail = d
	}
	if e.Amount != nil {
		m.Amount = core.Money{Units: *e.Amount}
	}
	if m.Kind == core.Transfer {
		if o := strings.TrimSpace(e.PersonOrigin); o != "" {
			m.PersonOrigin = o
		}
		if d := strings.TrimSpace(e.PersonDestination); d != "" {
			m.PersonDestination = d
		}
	} else {
		// Kind is editable only between income and expense.
		if e.Kind == core.Income || e.Kind == core.Expense {
			m.Kind = e.Kind
		}
		if p := strings.TrimSpace(e.Person); p != "" {
			m.Person = p
		}
		if c := strings.TrimSpace(e.Category); c != "" {
			m.Category = c
		}
	}

	nowLocal := s.now().In(s.tz)
	if err := m.Validate(nowLocal); err != nil {
		return core.Movement{}, err
	}
	m.LastModifiedAt = nowLocal.Format(timestampLayout)
	m.LastModifiedBy = editor

	if err := s.store.Update(ctx, m.Row, m.ToRow(headers)); err != nil {
		return core.Movement{}, fmt.Errorf("update movement: %w", err)
	}
	s.publish(ctx, m.ID, m.Row)
	slog.InfoContext(ctx, "Movement updated", "id", m.ID, "row", m.Row, "by", editor)
	return m, nil
}

// VoidAt soft-deletes the movement at the given store row: only the voided
// flag and the modification stamps change, every other field is kept.
func (s *MovementService) VoidAt(ctx context.Context, row int, wantID, editor string) (core.Movement, error) {
	if strings.TrimSpace(editor) == "" {
		return core.Movement{}, core.ErrMissingEditor
	}
	headers, m, err := s.resolve(ctx, row, wantID)
	if err != nil {
		return core.Movement{}, err
	}

	m.Voided = true
	nowLocal := s.now().In(s.tz)
	m.LastModifiedAt = nowLocal.Format(timestampLayout)
	m.LastModifiedBy = editor

	if err := s.store.Update(ctx, m.Row, m.ToRow(headers)); err != nil {
		return core.Movement{}, fmt.Errorf("void movement: %w", err)
	}
	s.publish(ctx, m.ID, m.Row)
	slog.InfoContext(ctx, "Movement voided", "id", m.ID, "row", m.Row, "by", editor)
	return m, nil
}

// resolve loads the table and finds the target movement. When wantID is set
// and the row's ID differs, the table is searched for the ID; the refreshed
// row wins over the stale position. A missing ID is a conflict.
func (s *MovementService) resolve(ctx context.Context, row int, wantID string) ([]string, core.Movement, error) {
	headers, err := s.store.EnsureHeaders(ctx)
	if err != nil {
		return nil, core.Movement{}, fmt.Errorf("ensure headers: %w", err)
	}
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, core.Movement{}, fmt.Errorf("read records: %w", err)
	}
	if len(rows) < 2 {
		return nil, core.Movement{}, core.ErrRowNotFound
	}
	movements := core.NormalizeTable(headers, rows[1:])

	var at *core.Movement
	for i := range movements {
		if movements[i].Row == row {
			at = &movements[i]
			break
		}
	}
	if at != nil && (wantID == "" || at.ID == wantID) {
		return headers, *at, nil
	}
	if wantID != "" {
		for i := range movements {
			if movements[i].ID == wantID {
				slog.WarnContext(ctx, "Row position stale, re-resolved by ID",
					"id", wantID, "stale_row", row, "row", movements[i].Row)
				return headers, movements[i], nil
			}
		}
		return nil, core.Movement{}, core.ErrRowConflict
	}
	return nil, core.Movement{}, core.ErrRowNotFound
}

func (s *MovementService) publish(ctx context.Context, id string, row int) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishMovementChange(ctx, id, row); err != nil {
		slog.ErrorContext(ctx, "Failed to publish movement change",
			"id", id, "row", row, "error", err)
	}
}
