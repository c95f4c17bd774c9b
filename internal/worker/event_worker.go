package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"signaldesk/internal/amqp"
	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
	"signaldesk/internal/sheets"
)

// TransactionSource lists stored transactions for reconciliation.
type TransactionSource interface {
	LoadAll(ctx context.Context) ([]core.Transaction, error)
}

// Stats counts what the worker has done since start.
type Stats struct {
	Received int64 `json:"received"`
	Exported int64 `json:"exported"`
	Failed   int64 `json:"failed"`
}

// EventWorker consumes change events and exports new transactions.
type EventWorker struct {
	exporter sheets.TransactionExporter
	source   TransactionSource
	logger   *applog.Logger

	received atomic.Int64
	exported atomic.Int64
	failed   atomic.Int64
}

// NewEventWorker builds a worker. source may be nil, which disables
// reconciliation.
func NewEventWorker(exporter sheets.TransactionExporter, source TransactionSource, logger *applog.Logger) *EventWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &EventWorker{
		exporter: exporter,
		source:   source,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleChange processes one change message. A returned error requeues it.
func (w *EventWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.received.Add(1)
	w.logger.InfoContext(ctx, "Processing change message",
		applog.FieldKind, msg.Kind,
		applog.FieldRecordID, msg.ID,
		applog.FieldOperation, string(msg.Op),
		applog.FieldChange, msg.Summary)

	if msg.Kind != collection.KindTransactions || msg.Op != core.OpCreated {
		return nil
	}
	if len(msg.Record) == 0 {
		w.logger.WarnContext(ctx, "Transaction event without record, left for reconciliation", applog.FieldRecordID, msg.ID)
		return nil
	}

	var tx core.Transaction
	if err := json.Unmarshal(msg.Record, &tx); err != nil {
		// Redelivery cannot fix a malformed body.
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Dropping undecodable transaction", applog.FieldRecordID, msg.ID, applog.FieldError, err)
		return nil
	}

	if err := w.export(ctx, tx); err != nil {
		return fmt.Errorf("export transaction %s: %w", msg.ID, err)
	}
	return nil
}

// Reconcile exports every stored transaction the ledger does not hold yet,
// recovering events lost while the worker was down. A Ledger is read once
// and written in one batch; a plain exporter is called per transaction and
// skips ids it already holds.
func (w *EventWorker) Reconcile(ctx context.Context) error {
	if w.source == nil {
		return nil
	}
	txs, err := w.source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if ledger, ok := w.exporter.(sheets.Ledger); ok {
		return w.reconcileLedger(ctx, ledger, txs)
	}

	errorCount := 0
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.export(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to reconcile transaction", applog.FieldRecordID, tx.ID, applog.FieldError, err)
			errorCount++
		}
	}

	w.logger.InfoContext(ctx, "Reconciliation completed",
		applog.FieldCount, len(txs),
		"errors", errorCount)
	return nil
}

func (w *EventWorker) reconcileLedger(ctx context.Context, ledger sheets.Ledger, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	existing, err := ledger.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	seen := make(map[string]struct{}, len(existing)+len(txs))
	for _, tx := range existing {
		seen[tx.ID] = struct{}{}
	}

	var missing []core.Transaction
	errorCount := 0
	for _, tx := range txs {
		if _, ok := seen[tx.ID]; ok {
			continue
		}
		if err := tx.Validate(); err != nil {
			w.failed.Add(1)
			errorCount++
			w.logger.ErrorContext(ctx, "Failed to reconcile transaction", applog.FieldRecordID, tx.ID, applog.FieldError, err)
			continue
		}
		seen[tx.ID] = struct{}{}
		missing = append(missing, tx)
	}

	appended, err := ledger.AppendTransactions(ctx, missing)
	if err != nil {
		w.failed.Add(int64(len(missing)))
		return fmt.Errorf("append %d transactions: %w", len(missing), err)
	}
	w.exported.Add(int64(appended))

	w.logger.InfoContext(ctx, "Reconciliation completed",
		applog.FieldCount, len(txs),
		"appended", appended,
		"errors", errorCount)
	return nil
}

func (w *EventWorker) export(ctx context.Context, tx core.Transaction) error {
	ref, err := w.exporter.ExportTransaction(ctx, tx)
	if err != nil {
		w.failed.Add(1)
		return err
	}
	w.exported.Add(1)
	w.logger.DebugContext(ctx, "Transaction exported", applog.FieldRecordID, tx.ID, applog.FieldSheetsRef, ref)
	return nil
}

func (w *EventWorker) Stats() Stats {
	return Stats{
		Received: w.received.Load(),
		Exported: w.exported.Load(),
		Failed:   w.failed.Load(),
	}
}
