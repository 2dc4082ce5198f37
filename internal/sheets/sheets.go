// Package sheets implements rowstore.Store on top of the Google Sheets v4 API.
// Each ledger table is a sheet (tab) of one spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/TalShar783/Taskmaster/internal/ledgererror"
	"github.com/TalShar783/Taskmaster/internal/logging"
	"github.com/TalShar783/Taskmaster/internal/rowstore"
	"github.com/TalShar783/Taskmaster/internal/validation"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const serviceName = "sheets"

// DefaultRequestsPerMinute matches the per-user read quota of the Sheets API.
const DefaultRequestsPerMinute = 60

// Options configures a Client.
type Options struct {
	SpreadsheetID     string
	CredentialsFile   string
	RequestsPerMinute int
	// ClientOptions are appended after the credentials option; tests use them to
	// point the client at a local server.
	ClientOptions []option.ClientOption
}

// Client is a rate-limited Sheets-backed row store.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	log           logging.Logger

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ rowstore.Store = (*Client)(nil)

// New authenticates with a service-account key file and returns a Client.
func New(ctx context.Context, opts Options, logger logging.Logger) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		if err := validation.CredentialsFile(opts.CredentialsFile); err != nil {
			return nil, err
		}
		if info, err := os.Stat(opts.CredentialsFile); err == nil {
			if err := validation.FilePermissions(info.Mode()); err != nil {
				logger.WithError(err).Warn("Credentials file is readable by other users")
			}
		}
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	clientOpts = append(clientOpts, option.WithScopes(gsheets.SpreadsheetsScope))
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, ledgererror.NewExternal(serviceName, "connect", err)
	}

	burst := rpm / 6
	if burst < 1 {
		burst = 1
	}
	logger.Info("Connected to Google Sheets",
		logging.F("spreadsheet_id", opts.SpreadsheetID),
		logging.F("requests_per_minute", rpm))

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		log:           logger.WithField(logging.FieldBackend, serviceName),
		sheetIDs:      make(map[string]int64),
	}, nil
}

// quoteSheet renders a sheet title as an A1 range reference.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func (c *Client) wait(ctx context.Context, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return ledgererror.NewExternal(serviceName, op, err)
	}
	return nil
}

// GetRows implements rowstore.Store. Cells are returned as the sheet displays them.
func (c *Client) GetRows(ctx context.Context, table string) ([][]string, error) {
	if err := c.wait(ctx, "get rows"); err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(table)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, ledgererror.NewExternal(serviceName, "get rows of "+table, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	c.log.Debug("Fetched rows", logging.F(logging.FieldTable, table), logging.F(logging.FieldCount, len(rows)))
	return rowstore.TrimRows(rows), nil
}

// AppendRow implements rowstore.Store. Values are entered as if typed by a user,
// so numeric strings land as numbers.
func (c *Client) AppendRow(ctx context.Context, table string, values []string) error {
	if err := c.wait(ctx, "append row"); err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quoteSheet(table)+"!A:A",
		&gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return ledgererror.NewExternal(serviceName, "append row to "+table, err)
	}
	c.log.Debug("Appended row", logging.F(logging.FieldTable, table))
	return nil
}

// FindCell implements rowstore.Store by scanning a fresh read of the sheet.
func (c *Client) FindCell(ctx context.Context, table, value string) (rowstore.Cell, error) {
	rows, err := c.GetRows(ctx, table)
	if err != nil {
		return rowstore.Cell{}, err
	}
	cell, ok := rowstore.FindInRows(rows, value)
	if !ok {
		return rowstore.Cell{}, fmt.Errorf("%w: %q in %s", rowstore.ErrCellNotFound, value, table)
	}
	return cell, nil
}

// DeleteRow implements rowstore.Store with a DeleteDimension batch update.
func (c *Client) DeleteRow(ctx context.Context, table string, row int) error {
	if row < 1 {
		return fmt.Errorf("row %d out of range", row)
	}
	sheetID, err := c.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if err := c.wait(ctx, "delete row"); err != nil {
		return err
	}
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return ledgererror.NewExternal(serviceName, fmt.Sprintf("delete row %d of %s", row, table), err)
	}
	c.log.Debug("Deleted row", logging.F(logging.FieldTable, table), logging.F(logging.FieldRow, row))
	return nil
}

// sheetID resolves a sheet title to its numeric id, caching the whole title map.
func (c *Client) sheetID(ctx context.Context, table string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[table]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := c.wait(ctx, "get spreadsheet"); err != nil {
		return 0, err
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, ledgererror.NewExternal(serviceName, "get spreadsheet", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", rowstore.ErrTableNotFound, table)
	}
	return id, nil
}

// Close implements rowstore.Store. The HTTP client needs no teardown.
func (c *Client) Close() error {
	return nil
}
