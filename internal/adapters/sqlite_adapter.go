package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"signaldesk/internal/collection"
	"signaldesk/internal/storage"
)

// RecordStore is the subset of the SQLite repository the adapter needs.
type RecordStore interface {
	SaveRecord(ctx context.Context, kind, id string, body []byte) error
	DeleteRecord(ctx context.Context, kind, id string) error
	LoadRecords(ctx context.Context, kind string) ([]storage.Record, error)
}

// SQLiteAdapter adapts the record table to collection.Persister for one
// record kind, encoding records as JSON bodies.
type SQLiteAdapter[T any] struct {
	store  RecordStore
	schema collection.Schema[T]
}

var _ collection.Persister[struct{}] = (*SQLiteAdapter[struct{}])(nil)

func NewSQLiteAdapter[T any](store RecordStore, schema collection.Schema[T]) *SQLiteAdapter[T] {
	return &SQLiteAdapter[T]{store: store, schema: schema}
}

// Save implements collection.Persister
func (a *SQLiteAdapter[T]) Save(ctx context.Context, rec T) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.schema.Kind, err)
	}
	return a.store.SaveRecord(ctx, a.schema.Kind, a.schema.ID(rec), body)
}

// Delete implements collection.Persister
func (a *SQLiteAdapter[T]) Delete(ctx context.Context, id string) error {
	return a.store.DeleteRecord(ctx, a.schema.Kind, id)
}

// LoadAll decodes every stored record of the adapter's kind in order.
func (a *SQLiteAdapter[T]) LoadAll(ctx context.Context) ([]T, error) {
	rows, err := a.store.LoadRecords(ctx, a.schema.Kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var rec T
		if err := json.Unmarshal(row.Body, &rec); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", a.schema.Kind, row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
