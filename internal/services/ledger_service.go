// Package services orchestrates the ledger core against the record store:
// LedgerService is the read side, MovementService the write side.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/LinFrancis/finanzas-app/internal/core"
	"github.com/LinFrancis/finanzas-app/internal/sheets"
)

// LedgerService loads and normalizes the record table and derives balances,
// the settlement plan and filtered listings. All computation is in-memory
// over a freshly fetched table; nothing here is persisted.
type LedgerService struct {
	store  sheets.RecordStore
	roster []string
}

func NewLedgerService(store sheets.RecordStore, roster []string) *LedgerService {
	return &LedgerService{store: store, roster: roster}
}

// Roster returns the fixed group of people sharing the ledger.
func (s *LedgerService) Roster() []string {
	return append([]string(nil), s.roster...)
}

// LoadMovements fetches the whole table and normalizes it. A store failure
// is the only error path; callers degrade to an empty table and surface the
// error once.
func (s *LedgerService) LoadMovements(ctx context.Context) ([]core.Movement, error) {
	headers, err := s.store.EnsureHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure headers: %w", err)
	}
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return core.NormalizeTable(headers, rows[1:]), nil
}

// Balances recomputes one PersonBalance per roster member.
func (s *LedgerService) Balances(ctx context.Context) ([]core.PersonBalance, error) {
	movements, err := s.LoadMovements(ctx)
	if err != nil {
		return nil, err
	}
	return core.ComputeBalances(movements, s.roster), nil
}

// Settlement recomputes the expense equalization plan.
func (s *LedgerService) Settlement(ctx context.Context) (core.SettlementPlan, error) {
	movements, err := s.LoadMovements(ctx)
	if err != nil {
		return core.SettlementPlan{}, err
	}
	return core.PlanSettlement(movements, s.roster), nil
}

// Overview recomputes the dashboard headline figures.
func (s *LedgerService) Overview(ctx context.Context) (core.Overview, error) {
	movements, err := s.LoadMovements(ctx)
	if err != nil {
		return core.Overview{}, err
	}
	return core.ComputeOverview(movements, s.roster), nil
}

// Categories lists the distinct categories in use, for form pickers.
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	movements, err := s.LoadMovements(ctx)
	if err != nil {
		return nil, err
	}
	return core.Categories(movements), nil
}

// MovementFilter narrows a listing. Zero values mean "no filter".
type MovementFilter struct {
	Person        string
	Kind          core.MovementKind
	IncludeVoided bool
}

// Movements returns the filtered table, newest first, invalid dates last.
func (s *LedgerService) Movements(ctx context.Context, f MovementFilter) ([]core.Movement, error) {
	movements, err := s.LoadMovements(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterMovements(movements, f)
	core.SortByDateDesc(filtered)
	return filtered, nil
}

// FilterMovements applies f to an already loaded table. A person filter
// matches the actor of income/expense rows and either side of a transfer.
func FilterMovements(movements []core.Movement, f MovementFilter) []core.Movement {
	out := make([]core.Movement, 0, len(movements))
	for _, m := range movements {
		if !f.IncludeVoided && m.Voided {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if p := strings.TrimSpace(f.Person); p != "" {
			if m.Person != p && m.PersonOrigin != p && m.PersonDestination != p {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
