package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"thali/internal/core"
	applog "thali/internal/log"
	ports "thali/internal/sheets"
)

// Options selects the spreadsheet and credentials. Exactly one of
// CredentialsJSON and CredentialsFile is needed; JSON wins when both are set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

var _ ports.RecordMirror = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *applog.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Thali"
	}
	logger = applog.OrDefault(logger).WithComponent(applog.ComponentSheets)

	svc, err := newSheetsService(ctx, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options, logger *applog.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// readDates returns column A, the header included.
func (c *Client) readDates(ctx context.Context) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read dates: %w", err)
	}
	return resp.Values, nil
}

// AppendRecord implements ports.RecordMirror.
func (c *Client) AppendRecord(ctx context.Context, rec core.MealRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	values, err := c.readDates(ctx)
	if err != nil {
		return err
	}
	if row := findRow(values, rec.Date); row > 0 {
		c.logger.DebugContext(ctx, "Record already mirrored", applog.FieldDate, string(rec.Date), "row", row)
		return nil
	}

	if len(values) == 0 {
		header := &gsheet.ValueRange{Values: [][]interface{}{headerRow()}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1:D1", c.sheetName), header).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{recordRow(rec)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:D", c.sheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append record %s: %w", rec.Date, err)
	}

	c.logger.InfoContext(ctx, "Record mirrored",
		applog.NewFields().WithRecord(string(rec.Date), rec.Morning, rec.Evening).ToSlice()...)
	return nil
}

// DeleteRecord implements ports.RecordMirror.
func (c *Client) DeleteRecord(ctx context.Context, date core.Date) error {
	values, err := c.readDates(ctx)
	if err != nil {
		return err
	}
	row := findRow(values, date)
	if row == 0 {
		c.logger.DebugContext(ctx, "No mirrored row to delete", applog.FieldDate, string(date))
		return nil
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}

	c.logger.InfoContext(ctx, "Mirrored record deleted", applog.FieldDate, string(date), "row", row)
	return nil
}

// Clear implements ports.RecordMirror. The header row is kept.
func (c *Client) Clear(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A2:D", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	c.logger.InfoContext(ctx, "Mirror cleared", "sheet", c.sheetName)
	return nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheetName)
}
