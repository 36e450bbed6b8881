package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dompet/internal/config"
	"dompet/internal/core"
)

// Row layout in the backup sheet. Column A holds the transaction id so rows
// can be found again for rewrites and removals.
const (
	colID = iota
	colCreatedAt
	colUserID
	colType
	colCategory
	colNote
	colAmount
	columnCount
)

// GoogleClient mirrors transactions into one sheet of a Google spreadsheet.
type GoogleClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ TransactionMirror = (*GoogleClient)(nil)

// NewGoogleClient builds a Sheets client from service account credentials in
// the config, inline JSON taking precedence over the file path.
func NewGoogleClient(ctx context.Context, cfg *config.Config) (*GoogleClient, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := cfg.GoogleSheetName
	if sheetName == "" {
		sheetName = "Transactions"
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.GoogleCredentialsJSON) != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case strings.TrimSpace(cfg.GoogleCredentialsFile) != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets backup client ready",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", sheetName)

	return &GoogleClient{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// SyncTransaction rewrites the transaction's row in place when it was
// mirrored before, otherwise appends a new row.
func (c *GoogleClient) SyncTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	row, err := c.findRow(ctx, tx.ID)
	if err != nil {
		return "", err
	}

	values := &gsheet.ValueRange{Values: [][]any{{
		tx.ID,
		tx.CreatedAt.Format(time.RFC3339),
		tx.UserID,
		string(tx.Type),
		tx.Category,
		tx.Note,
		float64(tx.Amount.Cents) / 100.0,
	}}}

	if row > 0 {
		ref := c.rowRange(row)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, values).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update row %s: %w", ref, err)
		}
		return ref, nil
	}

	appendRange := fmt.Sprintf("%s!A:G", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, appendRange, values).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := appendRange
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// RemoveTransaction blanks the mirrored row. The row itself stays so later
// rows keep their positions.
func (c *GoogleClient) RemoveTransaction(ctx context.Context, transactionID string) error {
	row, err := c.findRow(ctx, transactionID)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.DebugContext(ctx, "Transaction was never mirrored, nothing to remove",
			"transaction_id", transactionID)
		return nil
	}

	ref := c.rowRange(row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, ref, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear row %s: %w", ref, err)
	}
	return nil
}

// findRow returns the 1-based row holding the transaction id, or 0 when the
// id is not present.
func (c *GoogleClient) findRow(ctx context.Context, transactionID string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read id column: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == transactionID {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *GoogleClient) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:G%d", c.sheetName, row, row)
}
