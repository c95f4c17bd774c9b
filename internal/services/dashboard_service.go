package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"signaldesk/internal/cache"
	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
)

const overviewKey = "overview"

// DashboardService computes the aggregates shown on the dashboard. The
// overview is cached until the next mutation or until the TTL expires.
type DashboardService struct {
	users        *collection.Collection[core.Person]
	accounts     *collection.Collection[core.Account]
	sources      *collection.Collection[core.Source]
	transactions *collection.Collection[core.Transaction]

	cache  *cache.LRUCache[core.Overview]
	group  singleflight.Group
	logger *applog.Logger

	// gen counts invalidations. An overview is only cached when no
	// invalidation happened while it was being built.
	mu  sync.Mutex
	gen uint64

	// beforeStore runs between building and caching an overview; tests use
	// it to land a mutation in that window.
	beforeStore func()
}

func NewDashboardService(
	users *collection.Collection[core.Person],
	accounts *collection.Collection[core.Account],
	sources *collection.Collection[core.Source],
	transactions *collection.Collection[core.Transaction],
	ttl time.Duration,
	logger *applog.Logger,
) *DashboardService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DashboardService{
		users:        users,
		accounts:     accounts,
		sources:      sources,
		transactions: transactions,
		cache:        cache.NewLRUCache[core.Overview](8, ttl),
		logger:       logger.WithComponent(applog.ComponentDashboard),
	}
}

// Cache exposes the overview cache for periodic cleanup.
func (d *DashboardService) Cache() *cache.LRUCache[core.Overview] { return d.cache }

func (d *DashboardService) Overview(ctx context.Context) (core.Overview, error) {
	if o, ok := d.cache.Get(overviewKey); ok {
		return o, nil
	}

	v, err, shared := d.group.Do(overviewKey, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return core.Overview{}, err
		}
		d.mu.Lock()
		gen := d.gen
		d.mu.Unlock()

		o := core.BuildOverview(d.users.List(), d.accounts.List(), d.sources.List(), d.transactions.List())
		if d.beforeStore != nil {
			d.beforeStore()
		}

		d.mu.Lock()
		defer d.mu.Unlock()
		if d.gen == gen {
			d.cache.Set(overviewKey, o)
		}
		return o, nil
	})
	if err != nil {
		return core.Overview{}, err
	}
	if shared {
		d.logger.DebugContext(ctx, "Shared overview computation")
	}
	return v.(core.Overview), nil
}

// TransactionSummary aggregates the transactions selected by q. It is not
// cached because time-range filters depend on the current time.
func (d *DashboardService) TransactionSummary(q collection.Query) (core.TransactionSummary, error) {
	txs, err := d.transactions.Filter(q)
	if err != nil {
		return core.TransactionSummary{}, err
	}
	return core.Summarize(txs), nil
}

// Invalidate drops cached aggregates. Collection services call it after
// every mutation.
func (d *DashboardService) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.cache.Clear()
}
