package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signaldesk/internal/core"
)

func list(t *testing.T, s *Store) []core.Transaction {
	t.Helper()
	txs, err := s.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	return txs
}

func TestExportTransactionDeduplicates(t *testing.T) {
	s := New()
	tx := core.Transaction{
		ID: "1", Amount: decimal.RequireFromString("10"), Direction: core.Buy,
		Symbol: "EURUSD", Currency: "USD", CreatedAt: time.Now(),
	}

	ref, err := s.ExportTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("ExportTransaction() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	again, err := s.ExportTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("ExportTransaction() error = %v", err)
	}
	if again != ref {
		t.Errorf("re-export ref = %q, want %q", again, ref)
	}
	if n := len(list(t, s)); n != 1 {
		t.Errorf("stored %d transactions, want 1", n)
	}
}

func TestExportTransactionValidates(t *testing.T) {
	s := New()
	if _, err := s.ExportTransaction(context.Background(), core.Transaction{ID: "1"}); err == nil {
		t.Fatal("expected validation error")
	}
	if n := len(list(t, s)); n != 0 {
		t.Errorf("stored %d transactions, want 0", n)
	}
}

func TestAppendTransactions(t *testing.T) {
	s := New()
	ctx := context.Background()
	valid := core.Transaction{
		ID: "1", Amount: decimal.RequireFromString("10"), Direction: core.Sell,
		Symbol: "GBPUSD", Currency: "EUR", CreatedAt: time.Now(),
	}
	second := valid
	second.ID = "2"

	n, err := s.AppendTransactions(ctx, []core.Transaction{valid, second})
	if err != nil || n != 2 {
		t.Fatalf("AppendTransactions() = %d, %v", n, err)
	}

	if _, err := s.AppendTransactions(ctx, []core.Transaction{{ID: "3"}}); err == nil {
		t.Fatal("expected validation error")
	}

	got := list(t, s)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("ListTransactions() = %+v", got)
	}

	ref, err := s.ExportTransaction(ctx, second)
	if err != nil || ref != "mem:2" {
		t.Errorf("ExportTransaction() of appended id = %q, %v", ref, err)
	}
}
