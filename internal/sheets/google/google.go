package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
	ports "signaldesk/internal/sheets"
)

var _ ports.Ledger = (*Client)(nil)

type Config struct {
	SpreadsheetID string
	SheetName     string
	// Inline service account JSON takes precedence over the file.
	CredentialsJSON string
	CredentialsFile string
}

// Client appends transactions to one sheet of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Transactions"
	}

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger = logger.WithComponent(applog.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets exporter ready", "sheet", cfg.SheetName)
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportTransaction appends tx unless its id is already in column A.
func (c *Client) ExportTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	ids, err := c.readIDs(ctx)
	if err != nil {
		return "", err
	}
	for i, id := range ids {
		if id == tx.ID {
			// +2: header row and 1-based rows
			return fmt.Sprintf("%s!A%d", c.sheetName, i+2), nil
		}
	}

	ref, err := c.appendRows(ctx, []core.Transaction{tx})
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Exported transaction", applog.FieldRecordID, tx.ID, applog.FieldSheetsRef, ref)
	return ref, nil
}

// AppendTransactions writes txs with a single append call.
func (c *Client) AppendTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed for %s: %w", tx.ID, err)
		}
	}
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	ref, err := c.appendRows(ctx, txs)
	if err != nil {
		return 0, err
	}
	c.logger.InfoContext(ctx, "Exported transactions", applog.FieldCount, len(txs), applog.FieldSheetsRef, ref)
	return len(txs), nil
}

// ListTransactions reads back every exported row. A row that does not
// parse is returned with only its id set, so callers still see it as
// exported.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]core.Transaction, 0, len(resp.Values))
	for i, row := range resp.Values {
		tx, err := parseTransactionRow(row)
		if err != nil {
			id := columnValues([][]any{row})
			if len(id) == 0 {
				continue
			}
			c.logger.WarnContext(ctx, "Malformed ledger row", "row", i+2, applog.FieldRecordID, id[0], applog.FieldError, err)
			tx = core.Transaction{ID: id[0]}
		}
		out = append(out, tx)
	}
	return out, nil
}

func (c *Client) appendRows(ctx context.Context, txs []core.Transaction) (string, error) {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow(tx))
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

func (c *Client) readIDs(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A2:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return columnValues(resp.Values), nil
}
