package sheets

import "context"

// RecordStore is the outbound port to the tabular record store. The core
// treats it as an append-only log with in-place correction: row 1 is the
// header, data starts at row 2, and rows are addressed by position.
type RecordStore interface {
	// EnsureHeaders repairs the header row by appending any expected
	// column that is missing, never reordering or removing, and returns
	// the live header.
	EnsureHeaders(ctx context.Context) ([]string, error)

	// ReadAll fetches every row as strings, header included.
	ReadAll(ctx context.Context) ([][]string, error)

	// Append writes one full-width row at the next free position.
	Append(ctx context.Context, row []string) error

	// Update overwrites the row at the given 1-based position in place.
	Update(ctx context.Context, rowNum int, row []string) error
}
