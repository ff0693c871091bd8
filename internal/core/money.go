// Package core implements the ledger engine: record normalization,
// per-person balances and the greedy expense settlement plan.
//
// This file contains amount parsing and formatting. Amounts are whole
// Chilean pesos; there is no fractional unit anywhere in the ledger.
package core

import (
	"strconv"
	"strings"
)

// Money is an amount in whole currency units. Direction is never encoded in
// the sign; a Movement's kind decides whether an amount adds or subtracts.
type Money struct {
	Units int64
}

// ParseStoredAmount parses an amount cell from the record store.
//
// The store is hand-editable, so cells may carry a currency symbol and
// thousands separators ("$1.234"), stray commas, or garbage. The symbol and
// separators are stripped and the remainder read as a number; the result is
// truncated to an integer and made absolute. Empty or unparsable input
// yields zero, never an error.
func ParseStoredAmount(s string) Money {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Money{}
	}
	units := int64(f)
	if units < 0 {
		units = -units
	}
	return Money{Units: units}
}

// StoreString renders the amount the way it is written back to the store:
// the plain decimal digits, no symbol, no separators.
func (m Money) StoreString() string {
	return strconv.FormatInt(m.Units, 10)
}

// Format renders the amount for display with "$" and dot thousands
// separators, e.g. 1234567 -> "$1.234.567".
func (m Money) Format() string {
	digits := strconv.FormatInt(m.Units, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
