package sheets

import (
	"context"

	"signaldesk/internal/core"
)

// TransactionExporter appends transactions to an external ledger and
// returns a reference to the written row. Exporting an id that is already
// present is a no-op that returns the existing reference.
type TransactionExporter interface {
	ExportTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}

// Ledger is an exporter that can also read its rows back and write many at
// once. Reconciliation uses it to read the ledger a single time per pass.
type Ledger interface {
	TransactionExporter
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	// AppendTransactions writes txs in order without checking for ids
	// already present and returns how many rows were written.
	AppendTransactions(ctx context.Context, txs []core.Transaction) (int, error)
}
