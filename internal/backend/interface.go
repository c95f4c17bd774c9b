package backend

import (
	"context"
	"time"

	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	"signaldesk/internal/storage"
)

// Backend holds the four record collections the API serves.
type Backend struct {
	Users        *collection.Collection[core.Person]
	Accounts     *collection.Collection[core.Account]
	Sources      *collection.Collection[core.Source]
	Transactions *collection.Collection[core.Transaction]

	// Store is nil for the memory backend.
	Store *storage.SQLiteRepository
}

// Ping reports whether the backing store is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	if b.Store == nil {
		return nil
	}
	return b.Store.Ping(ctx)
}

// Counts returns the number of records per kind.
func (b *Backend) Counts() map[string]int {
	return map[string]int{
		collection.KindUsers:        b.Users.Len(),
		collection.KindAccounts:     b.Accounts.Len(),
		collection.KindSources:      b.Sources.Len(),
		collection.KindTransactions: b.Transactions.Len(),
	}
}

// StoredCounts returns the number of stored rows per kind, or nil for the
// memory backend.
func (b *Backend) StoredCounts(ctx context.Context) (map[string]int, error) {
	if b.Store == nil {
		return nil, nil
	}
	out := make(map[string]int, len(collection.Kinds))
	for _, kind := range collection.Kinds {
		n, err := b.Store.CountRecords(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, nil
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SeedFile is read when a collection starts empty. A missing file
	// falls back to the built-in fixtures.
	SeedFile string

	// SQLite specific
	SQLiteDBPath string

	// Clock overrides time.Now in every collection; used by tests.
	Clock func() time.Time
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
