package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signaldesk/internal/amqp"
	"signaldesk/internal/core"
	"signaldesk/internal/seed"
	"signaldesk/internal/sheets"
	"signaldesk/internal/sheets/memory"
)

type failingExporter struct{}

func (failingExporter) ExportTransaction(context.Context, core.Transaction) (string, error) {
	return "", errors.New("quota exceeded")
}

// countingLedger records how often the ledger is read and written.
type countingLedger struct {
	*memory.Store
	lists   int
	appends int
	exports int
}

func (l *countingLedger) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	l.lists++
	return l.Store.ListTransactions(ctx)
}

func (l *countingLedger) AppendTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	l.appends++
	return l.Store.AppendTransactions(ctx, txs)
}

func (l *countingLedger) ExportTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	l.exports++
	return l.Store.ExportTransaction(ctx, tx)
}

// exporterOnly hides the Ledger methods of the wrapped store.
type exporterOnly struct {
	sheets.TransactionExporter
}

func ledgerRows(t *testing.T, l sheets.Ledger) []core.Transaction {
	t.Helper()
	txs, err := l.ListTransactions(context.Background())
	require.NoError(t, err)
	return txs
}

type staticSource []core.Transaction

func (s staticSource) LoadAll(context.Context) ([]core.Transaction, error) { return s, nil }

func txMessage(t *testing.T, tx core.Transaction, op core.Op) *amqp.ChangeMessage {
	t.Helper()
	body, err := json.Marshal(tx)
	require.NoError(t, err)
	return amqp.NewChangeMessage(core.ChangeEvent{Kind: "transactions", Op: op, ID: tx.ID, Record: body})
}

func TestHandleChangeExportsCreatedTransactions(t *testing.T) {
	store := memory.New()
	w := NewEventWorker(store, nil, nil)
	tx := seed.Default().Transactions[0]
	ctx := context.Background()

	require.NoError(t, w.HandleChange(ctx, txMessage(t, tx, core.OpCreated)))
	require.NoError(t, w.HandleChange(ctx, txMessage(t, tx, core.OpUpdated)))
	require.NoError(t, w.HandleChange(ctx, &amqp.ChangeMessage{Kind: "users", Op: core.OpCreated, ID: "1"}))

	exported := ledgerRows(t, store)
	require.Len(t, exported, 1)
	assert.Equal(t, tx.ID, exported[0].ID)
	assert.True(t, exported[0].Amount.Equal(tx.Amount))
	assert.Equal(t, Stats{Received: 3, Exported: 1}, w.Stats())
}

func TestHandleChangeSkipsUnusableBodies(t *testing.T) {
	store := memory.New()
	w := NewEventWorker(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, w.HandleChange(ctx, &amqp.ChangeMessage{Kind: "transactions", Op: core.OpCreated, ID: "9"}))
	require.NoError(t, w.HandleChange(ctx, &amqp.ChangeMessage{
		Kind: "transactions", Op: core.OpCreated, ID: "9", Record: json.RawMessage(`{"amount":[]}`),
	}))

	assert.Empty(t, ledgerRows(t, store))
	assert.Equal(t, int64(1), w.Stats().Failed)
}

func TestHandleChangeReturnsExportErrors(t *testing.T) {
	w := NewEventWorker(failingExporter{}, nil, nil)
	err := w.HandleChange(context.Background(), txMessage(t, seed.Default().Transactions[1], core.OpCreated))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, int64(1), w.Stats().Failed)
}

func TestReconcile(t *testing.T) {
	store := memory.New()
	txs := seed.Default().Transactions
	w := NewEventWorker(store, staticSource(txs), nil)
	ctx := context.Background()

	require.NoError(t, w.HandleChange(ctx, txMessage(t, txs[0], core.OpCreated)))
	require.NoError(t, w.Reconcile(ctx))
	assert.Len(t, ledgerRows(t, store), len(txs))

	assert.NoError(t, NewEventWorker(store, nil, nil).Reconcile(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, w.Reconcile(cancelled), context.Canceled)
}

func TestReconcileReadsLedgerOncePerPass(t *testing.T) {
	ledger := &countingLedger{Store: memory.New()}
	txs := seed.Default().Transactions
	w := NewEventWorker(ledger, staticSource(txs), nil)
	ctx := context.Background()

	require.NoError(t, w.HandleChange(ctx, txMessage(t, txs[0], core.OpCreated)))
	require.NoError(t, w.Reconcile(ctx))
	require.NoError(t, w.Reconcile(ctx))

	assert.Equal(t, 2, ledger.lists)
	assert.Equal(t, 2, ledger.appends)
	assert.Equal(t, 1, ledger.exports, "only the event export goes through ExportTransaction")

	rows := ledgerRows(t, ledger.Store)
	require.Len(t, rows, len(txs))
	for i, tx := range txs {
		assert.Equal(t, tx.ID, rows[i].ID)
	}
	assert.Equal(t, Stats{Received: 1, Exported: int64(len(txs))}, w.Stats())
}

func TestReconcileLedgerSkipsInvalidAndDuplicates(t *testing.T) {
	store := memory.New()
	txs := seed.Default().Transactions
	source := append(staticSource{}, txs...)
	source = append(source, txs[1], core.Transaction{ID: "99"})
	w := NewEventWorker(store, source, nil)

	require.NoError(t, w.Reconcile(context.Background()))
	assert.Len(t, ledgerRows(t, store), len(txs))
	assert.Equal(t, Stats{Exported: int64(len(txs)), Failed: 1}, w.Stats())
}

func TestReconcileWithPlainExporter(t *testing.T) {
	store := memory.New()
	txs := seed.Default().Transactions
	w := NewEventWorker(exporterOnly{store}, staticSource(txs), nil)
	ctx := context.Background()

	require.NoError(t, w.Reconcile(ctx))
	require.NoError(t, w.Reconcile(ctx))
	assert.Len(t, ledgerRows(t, store), len(txs))

	failing := NewEventWorker(failingExporter{}, staticSource(txs), nil)
	require.NoError(t, failing.Reconcile(ctx))
	assert.Equal(t, int64(len(txs)), failing.Stats().Failed)
}
