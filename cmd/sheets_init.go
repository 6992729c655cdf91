package main

import (
	"context"

	"github.com/sells-group/sheetsync/pkg/sheets"
)

// initSheetsClient builds the authenticated spreadsheet client every
// sheet-touching command shares. Validation runs first so a missing
// spreadsheet ID or credential fails before any network setup.
func initSheetsClient(ctx context.Context) (sheets.Client, error) {
	if err := cfg.Validate(true); err != nil {
		return nil, err
	}

	return sheets.NewClient(ctx, sheets.Config{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		ClientEmail:     cfg.Sheets.ClientEmail,
		PrivateKey:      cfg.Sheets.PrivateKey,
		RateLimitRPS:    cfg.Sheets.RateLimitRPS,
	})
}
