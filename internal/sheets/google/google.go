package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "monthgroup/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	// Numbers stay numbers and dates come back as serial numbers, which is
	// what the grouping routine expects.
	valueRenderOption    = "UNFORMATTED_VALUE"
	dateTimeRenderOption = "SERIAL_NUMBER"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.ReadWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
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

// ReadRanges fetches all ranges in a single batchGet call.
func (c *Client) ReadRanges(ctx context.Context, ranges ...string) ([][][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(ranges...).
		MajorDimension("ROWS").
		ValueRenderOption(valueRenderOption).
		DateTimeRenderOption(dateTimeRenderOption).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("batch get %s: %w", strings.Join(ranges, ","), err)
	}
	if len(resp.ValueRanges) != len(ranges) {
		return nil, fmt.Errorf("batch get returned %d ranges, requested %d", len(resp.ValueRanges), len(ranges))
	}

	out := make([][][]any, len(ranges))
	for i, vr := range resp.ValueRanges {
		out[i] = toCells(vr.Values)
	}
	return alignRanges(ranges, out), nil
}

// WriteResult clears the two result columns below target and writes rows.
func (c *Client) WriteResult(ctx context.Context, target string, rows [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	span, err := ports.ResultSpan(target)
	if err != nil {
		return fmt.Errorf("result target %q: %w", target, err)
	}

	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, span, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", span, err)
	}

	anchor := ports.Anchor(target)
	vr := &gsheet.ValueRange{Values: ports.WritableCells(rows)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, anchor, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", anchor, err)
	}
	return nil
}
