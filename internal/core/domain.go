package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income   MovementKind = "Ingreso"
	Expense  MovementKind = "Gasto"
	Transfer MovementKind = "Traspaso"
)

// MinDetailLen is the minimum length of a trimmed detail text.
const MinDetailLen = 5

type (
	// MovementKind is the stored movement type. The values are the literal
	// strings persisted in the Tipo column.
	MovementKind string

	Date struct {
		time.Time
	}

	// Movement is one ledger entry as read from the record store.
	Movement struct {
		ID                string
		Kind              MovementKind
		Detail            string
		Category          string
		Date              Date
		Person            string
		PersonOrigin      string
		PersonDestination string
		Amount            Money
		CreatedAt         string
		CreatedBy         string
		LastModifiedAt    string
		LastModifiedBy    string
		Voided            bool

		// Row is the movement's position in the record store (2-based,
		// row 1 is the header). It is a back-reference for in-place
		// updates, not a domain attribute.
		Row int
	}
)

var (
	ErrInvalidKind   = errors.New("invalid movement kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrShortDetail   = errors.New("detail too short")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyPerson   = errors.New("empty person")
	ErrSameParties   = errors.New("origin and destination must differ")
	ErrFutureDate    = errors.New("date cannot be in the future")
	ErrMissingEditor = errors.New("editor identity required")
	ErrRowNotFound   = errors.New("row not found")
	ErrRowConflict   = errors.New("row identity mismatch")
)

// IsValid reports whether k is one of the three known kinds.
func (k MovementKind) IsValid() bool {
	switch k {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsValid reports whether the date was parseable. The zero value marks a
// missing or unparsable stored date.
func (d Date) IsValid() bool {
	return !d.IsZero()
}

// Validate checks a movement against the creation rules for its kind.
// Stored rows are never validated this way; only new or edited input is.
func (m Movement) Validate(now time.Time) error {
	if !m.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(m.Kind))
	}
	if len(strings.TrimSpace(m.Detail)) < MinDetailLen {
		return ErrShortDetail
	}
	if m.Amount.Units <= 0 {
		return ErrInvalidAmount
	}
	if m.Date.IsValid() {
		y, mo, d := now.Date()
		endOfToday := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
		if m.Date.After(endOfToday) {
			return ErrFutureDate
		}
	}
	switch m.Kind {
	case Transfer:
		if m.PersonOrigin == "" || m.PersonDestination == "" {
			return ErrEmptyPerson
		}
		if m.PersonOrigin == m.PersonDestination {
			return ErrSameParties
		}
	default:
		if m.Person == "" {
			return ErrEmptyPerson
		}
		if strings.TrimSpace(m.Category) == "" {
			return ErrEmptyCategory
		}
	}
	return nil
}

// Who renders the acting party for display: the single person for income and
// expense rows, "origen → destino" for transfers.
func (m Movement) Who() string {
	if m.Kind == Transfer {
		return m.PersonOrigin + " → " + m.PersonDestination
	}
	return m.Person
}

// OptionLabel builds the one-line label used by edit pickers.
func (m Movement) OptionLabel() string {
	detail := m.Detail
	if r := []rune(detail); len(r) > 30 {
		detail = string(r[:30])
	}
	label := fmt.Sprintf("%s | %s | %s | %d | %s",
		m.DateString(), m.Kind, m.Who(), m.Amount.Units, detail)
	if m.Voided {
		label += " (ANULADO)"
	}
	return label
}

// DateString formats the movement date as stored, or empty when invalid.
func (m Movement) DateString() string {
	if !m.Date.IsValid() {
		return ""
	}
	return m.Date.Format("2006-01-02")
}
