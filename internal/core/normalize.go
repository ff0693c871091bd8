package core

import (
	"sort"
	"strings"
	"time"
)

// Record store column names. The store schema is Spanish and fixed; row 1 is
// the header, data starts at row 2.
const (
	ColID             = "ID"
	ColKind           = "Tipo"
	ColDetail         = "Detalle"
	ColCategory       = "Categoría"
	ColDate           = "Fecha"
	ColPerson         = "Persona"
	ColPersonOrigin   = "Persona_Origen"
	ColPersonDest     = "Persona_Destino"
	ColAmount         = "Monto"
	ColCreatedAt      = "Created_At"
	ColCreatedBy      = "Created_By"
	ColLastModifiedAt = "Last_Modified_At"
	ColLastModifiedBy = "Last_Modified_By"
	ColVoided         = "Anulado"
)

// ExpectedHeaders returns the canonical column order. Adapters append any of
// these that are missing from a live header, never reorder or remove.
func ExpectedHeaders() []string {
	return []string{
		ColID, ColKind, ColDetail, ColCategory, ColDate, ColPerson,
		ColPersonOrigin, ColPersonDest, ColAmount,
		ColCreatedAt, ColCreatedBy, ColLastModifiedAt, ColLastModifiedBy,
		ColVoided,
	}
}

// dayFirstLayouts are tried in order when parsing stored dates. The store is
// hand-editable, so day-first forms show up alongside the canonical ISO one.
var dayFirstLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
}

// ParseStoredDate parses a date cell, preferring day-first layouts.
// Empty or unparsable input yields the zero Date, not an error; such
// movements still count toward balances and sort last in date views.
func ParseStoredDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

// truthy is the accepted vocabulary for the Anulado flag, lowercase.
var truthy = map[string]bool{
	"true": true, "1": true, "sí": true, "si": true, "yes": true, "y": true,
}

// ParseVoided interprets a void-flag cell. Anything outside the accepted
// vocabulary, including empty, means not voided.
func ParseVoided(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

// NormalizeTable converts the raw string table read from the record store
// into typed movements. headers is the live header row; rows are the data
// rows in store order, the first corresponding to store row 2.
//
// Normalization never fails on a malformed row: text fields are trimmed,
// missing trailing cells read as empty, and bad amounts, dates and flags
// degrade to zero, the invalid date and false.
func NormalizeTable(headers []string, rows [][]string) []Movement {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	movements := make([]Movement, 0, len(rows))
	for n, row := range rows {
		movements = append(movements, Movement{
			ID:                cell(row, ColID),
			Kind:              MovementKind(cell(row, ColKind)),
			Detail:            cell(row, ColDetail),
			Category:          cell(row, ColCategory),
			Date:              ParseStoredDate(cell(row, ColDate)),
			Person:            cell(row, ColPerson),
			PersonOrigin:      cell(row, ColPersonOrigin),
			PersonDestination: cell(row, ColPersonDest),
			Amount:            ParseStoredAmount(cell(row, ColAmount)),
			CreatedAt:         cell(row, ColCreatedAt),
			CreatedBy:         cell(row, ColCreatedBy),
			LastModifiedAt:    cell(row, ColLastModifiedAt),
			LastModifiedBy:    cell(row, ColLastModifiedBy),
			Voided:            ParseVoided(cell(row, ColVoided)),
			Row:               n + 2,
		})
	}
	return movements
}

// ToRow renders a movement as a full-width store row aligned to headers.
// Unknown header columns are written empty, so a widened live schema keeps
// round-tripping.
func (m Movement) ToRow(headers []string) []string {
	values := map[string]string{
		ColID:             m.ID,
		ColKind:           string(m.Kind),
		ColDetail:         m.Detail,
		ColCategory:       m.Category,
		ColDate:           m.DateString(),
		ColPerson:         m.Person,
		ColPersonOrigin:   m.PersonOrigin,
		ColPersonDest:     m.PersonDestination,
		ColAmount:         m.Amount.StoreString(),
		ColCreatedAt:      m.CreatedAt,
		ColCreatedBy:      m.CreatedBy,
		ColLastModifiedAt: m.LastModifiedAt,
		ColLastModifiedBy: m.LastModifiedBy,
	}
	if m.Voided {
		values[ColVoided] = "TRUE"
	}
	row := make([]string, len(headers))
	for i, h := range headers {
		row[i] = values[strings.TrimSpace(h)]
	}
	return row
}

// SortByDateDesc orders movements newest first. Movements with an invalid
// date sort last; ties keep store order.
func SortByDateDesc(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		di, dj := movements[i].Date, movements[j].Date
		if di.IsValid() != dj.IsValid() {
			return di.IsValid()
		}
		return di.After(dj.Time)
	})
}

// Categories returns the distinct non-empty categories in the table, sorted.
func Categories(movements []Movement) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range movements {
		c := strings.TrimSpace(m.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
