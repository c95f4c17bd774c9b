package memory

import (
	"context"
	"fmt"
	"sync"

	"signaldesk/internal/core"
	ports "signaldesk/internal/sheets"
)

var _ ports.Ledger = (*Store)(nil)

// Store is an in-process exporter used when no spreadsheet is configured.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// ExportTransaction stores tx and returns a synthetic row reference.
func (s *Store) ExportTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.items {
		if existing.ID == tx.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// AppendTransactions stores txs as given. Nothing is stored when one of
// them is invalid.
func (s *Store) AppendTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, txs...)
	return len(txs), nil
}

// ListTransactions returns a copy of everything exported so far.
func (s *Store) ListTransactions(context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}
