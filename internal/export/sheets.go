// Package export mirrors transactions into a Google Sheets spreadsheet so a
// user can keep a live, shareable copy of their data outside the service.
// Rows are keyed by transaction ID in column A, which makes the sync
// idempotent: replaying an event overwrites the same row.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Selvaganesh007/expense-tracker/internal/config"
	"github.com/Selvaganesh007/expense-tracker/internal/core"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter from the OAuth client and token
// configured on cfg. The token is the offline token minted by oauth-init.
func NewSheetsExporter(ctx context.Context, cfg *config.Config) (*SheetsExporter, error) {
	if !cfg.SheetsExportConfigured() {
		return nil, errors.New("sheets export not configured")
	}

	clientJSON, err := readCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth client: %w", err)
	}
	tokenJSON, err := readCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

func readCredential(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	default:
		return nil, errors.New("no credential configured")
	}
}

// transactionRow maps a transaction to the A:H sheet columns.
func transactionRow(t core.Transaction) []any {
	date := ""
	if !t.Timestamp.IsZero() {
		date = t.Timestamp.UTC().Format("2006-01-02")
	}
	return []any{
		t.ID,
		date,
		t.Name,
		t.Category,
		string(t.FlowType),
		float64(t.Amount.Cents) / 100.0,
		t.Mode,
		t.CollectionID,
	}
}

// SyncTransaction writes the transaction's row, updating in place when the
// ID already has a row and appending otherwise.
func (e *SheetsExporter) SyncTransaction(ctx context.Context, t core.Transaction) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := e.findRow(ctx, t.ID)
	if err != nil {
		return err
	}

	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}
	if row > 0 {
		rng := fmt.Sprintf("%s!A%d:H%d", e.sheetName, row, row)
		_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in sheet %s: %w", row, e.sheetName, err)
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A:H", e.sheetName)
	_, err = e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}
	return nil
}

// RemoveTransaction clears the row holding the given transaction ID. A
// missing row is not an error: the delete may have been replayed.
func (e *SheetsExporter) RemoveTransaction(ctx context.Context, txID string) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := e.findRow(ctx, txID)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:H%d", e.sheetName, row, row)
	_, err = e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", row, e.sheetName, err)
	}
	return nil
}

// findRow returns the 1-based row holding txID in column A, or 0 when absent.
func (e *SheetsExporter) findRow(ctx context.Context, txID string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == txID {
			return i + 1, nil
		}
	}
	return 0, nil
}
