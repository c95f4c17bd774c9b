package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"signaldesk/internal/core"
)

// Header is the first row of the export sheet.
var Header = []any{"ID", "Created At", "Direction", "Symbol", "Amount", "Currency", "Account", "Source"}

// transactionRow lays out tx in Header order. Amounts are written as
// plain decimal strings so USER_ENTERED input parses them as numbers.
func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.CreatedAt.UTC().Format(time.RFC3339),
		string(tx.Direction),
		tx.Symbol,
		tx.Amount.StringFixed(2),
		tx.Currency,
		tx.AccountID,
		tx.SourceID,
	}
}

// parseTransactionRow is the inverse of transactionRow.
func parseTransactionRow(row []any) (core.Transaction, error) {
	cells := toStrings(row)
	if len(cells) < len(Header) {
		return core.Transaction{}, fmt.Errorf("row has %d cells, want %d", len(cells), len(Header))
	}
	created, err := time.Parse(time.RFC3339, cells[1])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("created at %q: %w", cells[1], err)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(cells[4], ",", ""))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", cells[4], err)
	}
	return core.Transaction{
		ID:        cells[0],
		CreatedAt: created,
		Direction: core.Direction(cells[2]),
		Symbol:    cells[3],
		Amount:    amount,
		Currency:  cells[5],
		AccountID: cells[6],
		SourceID:  cells[7],
	}, nil
}

// columnValues returns the trimmed, de-duplicated first cell of every row,
// skipping blanks and the header.
func columnValues(values [][]any) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || v == Header[0] {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
