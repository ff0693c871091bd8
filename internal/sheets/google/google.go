// Package google adapts a Google Sheets worksheet to the sheets.RecordStore
// port using the sheets/v4 API and service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/LinFrancis/finanzas-app/internal/core"
	ports "github.com/LinFrancis/finanzas-app/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.RecordStore = (*Client)(nil)

// NewFromEnv creates a record-store client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "finanzas") and one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS for auth.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "finanzas"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return New(svc, spreadsheetID, sheetName), nil
}

// New wires a client around an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// newSheetsService initializes a Sheets service from service-account
// credentials found in the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// EnsureHeaders implements sheets.RecordStore. Missing expected columns are
// appended at the end of row 1; present columns are left in place.
func (c *Client) EnsureHeaders(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!1:1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	var headers []string
	if len(resp.Values) > 0 {
		headers = toStrings(resp.Values[0])
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, h := range core.ExpectedHeaders() {
		if !present[h] {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return headers, nil
	}

	headers = append(headers, missing...)
	vr := &gsheet.ValueRange{Values: [][]any{toAny(headers)}}
	updateRng := fmt.Sprintf("%s!%s", c.sheetName, a1RangeRow(1, len(headers)))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, updateRng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("repair header row: %w", err)
	}
	slog.InfoContext(ctx, "Appended missing header columns",
		"sheet", c.sheetName, "columns", missing)
	return headers, nil
}

// ReadAll implements sheets.RecordStore.
func (c *Client) ReadAll(ctx context.Context) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = toStrings(row)
	}
	return rows, nil
}

// Append implements sheets.RecordStore.
func (c *Client) Append(ctx context.Context, row []string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	vr := &gsheet.ValueRange{Values: [][]any{toAny(row)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}
	return nil
}

// Update implements sheets.RecordStore.
func (c *Client) Update(ctx context.Context, rowNum int, row []string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if rowNum < 2 {
		return fmt.Errorf("invalid row number %d", rowNum)
	}
	vr := &gsheet.ValueRange{Values: [][]any{toAny(row)}}
	rng := fmt.Sprintf("%s!%s", c.sheetName, a1RangeRow(rowNum, len(row)))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in %s: %w", rowNum, c.sheetName, err)
	}
	return nil
}

// a1RangeRow builds the A1 range covering one full row of ncols columns,
// e.g. a1RangeRow(3, 14) == "A3:N3".
func a1RangeRow(row, ncols int) string {
	return fmt.Sprintf("A%d:%s%d", row, columnLetter(ncols), row)
}

// columnLetter converts a 1-based column index to its A1 letter form
// (1 -> A, 26 -> Z, 27 -> AA).
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
