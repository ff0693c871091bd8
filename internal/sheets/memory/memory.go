// Package memory provides an in-process record store used by tests and as
// the default backend when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/LinFrancis/finanzas-app/internal/core"
	ports "github.com/LinFrancis/finanzas-app/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	headers []string
	rows    [][]string

	// FailReads simulates an unreachable store for error-path tests.
	FailReads bool
}

var _ ports.RecordStore = (*Store)(nil)

// New returns an empty store with the canonical header already in place.
func New() *Store {
	return &Store{headers: core.ExpectedHeaders()}
}

// NewWithHeader returns a store carrying an arbitrary (possibly incomplete)
// header row, for exercising header self-healing.
func NewWithHeader(headers []string) *Store {
	return &Store{headers: append([]string(nil), headers...)}
}

// Seed appends raw data rows without validation.
func (s *Store) Seed(rows ...[]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.rows = append(s.rows, append([]string(nil), r...))
	}
}

// SeedMovements appends movements rendered against the current header.
func (s *Store) SeedMovements(movements ...core.Movement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range movements {
		s.rows = append(s.rows, m.ToRow(s.headers))
	}
}

func (s *Store) EnsureHeaders(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads {
		return nil, fmt.Errorf("memory store unavailable")
	}
	present := make(map[string]bool, len(s.headers))
	for _, h := range s.headers {
		present[h] = true
	}
	for _, h := range core.ExpectedHeaders() {
		if !present[h] {
			s.headers = append(s.headers, h)
		}
	}
	return append([]string(nil), s.headers...), nil
}

func (s *Store) ReadAll(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads {
		return nil, fmt.Errorf("memory store unavailable")
	}
	out := make([][]string, 0, len(s.rows)+1)
	out = append(out, append([]string(nil), s.headers...))
	for _, r := range s.rows {
		out = append(out, append([]string(nil), r...))
	}
	return out, nil
}

func (s *Store) Append(_ context.Context, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), row...))
	return nil
}

func (s *Store) Update(_ context.Context, rowNum int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := rowNum - 2
	if idx < 0 || idx >= len(s.rows) {
		return fmt.Errorf("row %d out of range", rowNum)
	}
	s.rows[idx] = append([]string(nil), row...)
	return nil
}

// Row returns a copy of the data row at the given store position.
func (s *Store) Row(rowNum int) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := rowNum - 2
	if idx < 0 || idx >= len(s.rows) {
		return nil, false
	}
	return append([]string(nil), s.rows[idx]...), true
}

// Len reports the number of data rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
