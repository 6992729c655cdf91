// Package sheets provides a narrow Google Sheets client exposing the
// tab-level operations the sync engine depends on.
package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/sells-group/sheetsync/internal/retry"
)

// Client defines the spreadsheet operations used by the sync engine. All
// methods address the single spreadsheet the client was built for. Row
// numbers are 1-based; sheet and column indexes are 0-based, matching the
// Sheets API.
type Client interface {
	ListTabs(ctx context.Context) ([]Tab, error)
	RenameTab(ctx context.Context, sheetID int64, title string) error
	ClearBasicFilter(ctx context.Context, sheetID int64) error
	ClearBelowHeader(ctx context.Context, title string) error
	RowCount(ctx context.Context, title string) (int64, error)
	UpdateRange(ctx context.Context, title string, startRow int64, values [][]any) error
	FormatColumnAsNumber(ctx context.Context, sheetID, column int64) error
}

// Tab identifies one sheet inside the spreadsheet.
type Tab struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Index int64  `json:"index"`
}

// FindTab returns the tab whose title matches exactly.
func FindTab(tabs []Tab, title string) (Tab, bool) {
	for _, t := range tabs {
		if t.Title == title {
			return t, true
		}
	}
	return Tab{}, false
}

// Config holds the destination spreadsheet and service-account credentials.
// CredentialsFile takes precedence; otherwise ClientEmail and PrivateKey are
// used directly.
type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	ClientEmail     string
	PrivateKey      string
	RateLimitRPS    float64
}

// Option configures the client.
type Option func(*apiClient)

// WithRateLimit sets a per-second rate limit for Sheets API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *apiClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *apiClient) {
		c.retry = cfg
	}
}

type apiClient struct {
	svc           *gsheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	retry         retry.Config
}

// NewClient authenticates a service account and returns a Client bound to
// cfg.SpreadsheetID.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, eris.New("sheets: spreadsheet id is required")
	}

	jwtCfg, err := jwtConfig(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, eris.Wrap(err, "sheets: create service")
	}

	opts = append([]Option{WithRateLimit(cfg.RateLimitRPS)}, opts...)
	return NewFromService(svc, cfg.SpreadsheetID, opts...), nil
}

// NewFromService wraps an already-built Sheets service. Used by NewClient and
// by tests pointing the service at a stub server.
func NewFromService(svc *gsheets.Service, spreadsheetID string, opts ...Option) Client {
	c := &apiClient{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		retry:         retry.DefaultConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func jwtConfig(cfg Config) (*jwt.Config, error) {
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: read credentials file")
		}
		jc, err := google.JWTConfigFromJSON(data, gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, eris.Wrap(err, "sheets: parse credentials file")
		}
		return jc, nil
	}

	if cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, eris.New("sheets: credentials required (credentials file, or client email + private key)")
	}
	return &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}, nil
}

// wait blocks until the rate limiter allows one call, or ctx is cancelled.
func (c *apiClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// call runs one API call through the rate limiter and transient retry.
func (c *apiClient) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sheets: rate limit")
	}
	cfg := c.retry
	cfg.OnRetry = retry.Logger("sheets", operation)
	return retry.Do(ctx, cfg, fn)
}

func (c *apiClient) ListTabs(ctx context.Context) ([]Tab, error) {
	var tabs []Tab
	err := c.call(ctx, "list tabs", func(ctx context.Context) error {
		resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		if err != nil {
			return err
		}
		tabs = tabs[:0]
		for _, sh := range resp.Sheets {
			if sh.Properties == nil {
				continue
			}
			tabs = append(tabs, Tab{
				ID:    sh.Properties.SheetId,
				Title: sh.Properties.Title,
				Index: sh.Properties.Index,
			})
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "sheets: list tabs")
	}
	return tabs, nil
}

func (c *apiClient) RenameTab(ctx context.Context, sheetID int64, title string) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
				Properties: &gsheets.SheetProperties{SheetId: sheetID, Title: title},
				Fields:     "title",
			},
		}},
	}
	err := c.call(ctx, "rename tab", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheets: rename tab %d to %q", sheetID, title))
	}
	return nil
}

func (c *apiClient) ClearBasicFilter(ctx context.Context, sheetID int64) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			ClearBasicFilter: &gsheets.ClearBasicFilterRequest{SheetId: sheetID},
		}},
	}
	err := c.call(ctx, "clear basic filter", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheets: clear basic filter on tab %d", sheetID))
	}
	return nil
}

// ClearBelowHeader clears every data row from row 2 down. Row 1 is never
// touched.
func (c *apiClient) ClearBelowHeader(ctx context.Context, title string) error {
	rng := fmt.Sprintf("'%s'!A2:ZZ", title)
	err := c.call(ctx, "clear below header", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheets: clear %s", rng))
	}
	return nil
}

// RowCount returns the number of populated rows in the tab, header included.
// Appends start at RowCount+1.
func (c *apiClient) RowCount(ctx context.Context, title string) (int64, error) {
	rng := fmt.Sprintf("'%s'", title)
	var count int64
	err := c.call(ctx, "row count", func(ctx context.Context) error {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return err
		}
		count = int64(len(resp.Values))
		return nil
	})
	if err != nil {
		return 0, eris.Wrap(err, fmt.Sprintf("sheets: row count %s", rng))
	}
	return count, nil
}

// UpdateRange writes values starting at column A of startRow (1-based) with
// USER_ENTERED semantics, so numbers land as numbers.
func (c *apiClient) UpdateRange(ctx context.Context, title string, startRow int64, values [][]any) error {
	if len(values) == 0 {
		return nil
	}
	rng := fmt.Sprintf("'%s'!A%d", title, startRow)
	vr := &gsheets.ValueRange{Values: values}
	err := c.call(ctx, "update range", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheets: update %s", rng))
	}
	return nil
}

// FormatColumnAsNumber applies a plain integer format to one column's data
// rows so long contact keys don't render in scientific notation.
func (c *apiClient) FormatColumnAsNumber(ctx context.Context, sheetID, column int64) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					StartColumnIndex: column,
					EndColumnIndex:   column + 1,
				},
				Cell: &gsheets.CellData{
					UserEnteredFormat: &gsheets.CellFormat{
						NumberFormat: &gsheets.NumberFormat{Type: "NUMBER", Pattern: "0"},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}},
	}
	err := c.call(ctx, "format column", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheets: format column %d on tab %d", column, sheetID))
	}
	return nil
}
