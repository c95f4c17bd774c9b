package services

import (
	"time"

	"signaldesk/internal/backend"
	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
)

type AppConfig struct {
	ActivityLimit int
	CacheTTL      time.Duration
	Auth          AuthConfig
}

// App groups the services built over one backend.
type App struct {
	Users        *CollectionService[core.Person]
	Accounts     *CollectionService[core.Account]
	Sources      *CollectionService[core.Source]
	Transactions *CollectionService[core.Transaction]

	Dashboard *DashboardService
	Activity  *ActivityFeed
	Auth      *AuthService
	Backend   *backend.Backend
}

// NewApp wires the services. pub may be nil when no broker is configured.
func NewApp(b *backend.Backend, pub Publisher, cfg AppConfig, logger *applog.Logger) *App {
	if logger == nil {
		logger = applog.Discard()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	dash := NewDashboardService(b.Users, b.Accounts, b.Sources, b.Transactions, ttl, logger)
	feed := NewActivityFeed(cfg.ActivityLimit)
	hooks := Hooks{
		Activity:   feed,
		Publisher:  pub,
		Invalidate: dash.Invalidate,
		Logger:     logger,
	}

	app := &App{
		Users:        NewCollectionService(b.Users, PersonSummary, hooks),
		Accounts:     NewCollectionService(b.Accounts, AccountSummary, hooks),
		Sources:      NewCollectionService(b.Sources, SourceSummary, hooks),
		Transactions: NewCollectionService(b.Transactions, TransactionSummary, hooks),
		Dashboard:    dash,
		Activity:     feed,
		Backend:      b,
	}
	app.Auth = NewAuthService(app.Users, cfg.Auth, logger)
	return app
}
