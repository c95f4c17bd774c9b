package backend

import (
	"context"
	"fmt"
	"time"

	"signaldesk/internal/adapters"
	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
	"signaldesk/internal/seed"
	"signaldesk/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fixtures, err := seed.LoadOrDefault(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed fixtures: %w", err)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, fixtures)
	case MemoryBackend:
		return f.createMemoryBackend(config, fixtures)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config, fx seed.Fixtures) (*BackendResult, error) {
	b := &Backend{
		Users:        collection.New(collection.PersonSchema(), clockOpt[core.Person](config.Clock)...),
		Accounts:     collection.New(collection.AccountSchema(), clockOpt[core.Account](config.Clock)...),
		Sources:      collection.New(collection.SourceSchema(), clockOpt[core.Source](config.Clock)...),
		Transactions: collection.New(collection.TransactionSchema(), clockOpt[core.Transaction](config.Clock)...),
	}

	if err := b.Users.Load(fx.Users); err != nil {
		return nil, err
	}
	if err := b.Accounts.Load(fx.Accounts); err != nil {
		return nil, err
	}
	if err := b.Sources.Load(fx.Sources); err != nil {
		return nil, err
	}
	if err := b.Transactions.Load(fx.Transactions); err != nil {
		return nil, err
	}

	f.logger.Info("Using memory backend", "counts", b.Counts())
	return &BackendResult{
		Backend: b,
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, fx seed.Fixtures) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	b := &Backend{Store: repo}
	fail := func(err error) (*BackendResult, error) {
		repo.Close()
		return nil, err
	}

	if b.Users, err = hydrate(ctx, repo, collection.PersonSchema(), fx.Users, config.Clock); err != nil {
		return fail(err)
	}
	if b.Accounts, err = hydrate(ctx, repo, collection.AccountSchema(), fx.Accounts, config.Clock); err != nil {
		return fail(err)
	}
	if b.Sources, err = hydrate(ctx, repo, collection.SourceSchema(), fx.Sources, config.Clock); err != nil {
		return fail(err)
	}
	if b.Transactions, err = hydrate(ctx, repo, collection.TransactionSchema(), fx.Transactions, config.Clock); err != nil {
		return fail(err)
	}

	f.logger.Info("Using SQLite backend", "path", repo.Path(), "counts", b.Counts())
	return &BackendResult{
		Backend: b,
		Cleanup: repo.Close,
	}, nil
}

// hydrate builds a write-through collection from the stored rows of its
// kind. Fixtures are applied once per database; a kind emptied by deletes
// stays empty across restarts.
func hydrate[T any](ctx context.Context, repo *storage.SQLiteRepository, schema collection.Schema[T], fixtures []T, clock func() time.Time) (*collection.Collection[T], error) {
	adapter := adapters.NewSQLiteAdapter(repo, schema)
	opts := append(clockOpt[T](clock), collection.WithPersister[T](adapter))
	coll := collection.New(schema, opts...)

	stored, err := adapter.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", schema.Kind, err)
	}
	if err := coll.Load(stored); err != nil {
		return nil, err
	}

	lastID, err := repo.LastID(ctx, schema.Kind)
	if err != nil {
		return nil, err
	}
	coll.AdvanceID(lastID)

	seeded, err := repo.Seeded(ctx, schema.Kind)
	if err != nil {
		return nil, err
	}
	if seeded {
		return coll, nil
	}
	if len(stored) == 0 {
		if _, err := SeedCollection(ctx, coll, fixtures); err != nil {
			return nil, err
		}
	}
	if err := repo.MarkSeeded(ctx, schema.Kind); err != nil {
		return nil, err
	}
	return coll, nil
}

// SeedCollection inserts fixtures whose id is not present yet and returns
// how many were added.
func SeedCollection[T any](ctx context.Context, coll *collection.Collection[T], fixtures []T) (int, error) {
	added := 0
	for _, rec := range fixtures {
		if _, exists := coll.Get(coll.Schema().ID(rec)); exists {
			continue
		}
		if _, err := coll.Insert(ctx, rec); err != nil {
			return added, fmt.Errorf("seed %s: %w", coll.Kind(), err)
		}
		added++
	}
	return added, nil
}

func clockOpt[T any](clock func() time.Time) []collection.Option[T] {
	if clock == nil {
		return nil
	}
	return []collection.Option[T]{collection.WithClock[T](clock)}
}
