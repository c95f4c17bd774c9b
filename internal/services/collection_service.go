package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
)

// Publisher forwards change events to other processes.
type Publisher interface {
	PublishChange(ctx context.Context, ev core.ChangeEvent) error
}

// Hooks are the side effects shared by every collection service.
type Hooks struct {
	Activity   *ActivityFeed
	Publisher  Publisher
	Invalidate func()
	Logger     *applog.Logger
	Now        func() time.Time
}

// CollectionService wraps a collection and announces every successful
// mutation: the activity feed records it, cached aggregates are dropped and
// the event is published when a broker is configured.
type CollectionService[T any] struct {
	coll      *collection.Collection[T]
	summarize func(T) string
	hooks     Hooks
	logger    *applog.Logger
	changes   *applog.StructuredLogger
}

func NewCollectionService[T any](coll *collection.Collection[T], summarize func(T) string, hooks Hooks) *CollectionService[T] {
	if hooks.Logger == nil {
		hooks.Logger = applog.Discard()
	}
	if hooks.Now == nil {
		hooks.Now = time.Now
	}
	logger := hooks.Logger.WithComponent(applog.ComponentCollection)
	return &CollectionService[T]{
		coll:      coll,
		summarize: summarize,
		hooks:     hooks,
		logger:    logger,
		changes:   applog.NewStructuredLogger(logger),
	}
}

func (s *CollectionService[T]) Kind() string { return s.coll.Kind() }

func (s *CollectionService[T]) Collection() *collection.Collection[T] { return s.coll }

func (s *CollectionService[T]) List() []T { return s.coll.List() }

func (s *CollectionService[T]) Len() int { return s.coll.Len() }

func (s *CollectionService[T]) Get(id string) (T, bool) { return s.coll.Get(id) }

func (s *CollectionService[T]) Filter(q collection.Query) ([]T, error) {
	return s.coll.Filter(q)
}

func (s *CollectionService[T]) Create(ctx context.Context, draft T) (T, error) {
	rec, err := s.coll.Create(ctx, draft)
	if err != nil {
		return rec, err
	}
	s.announce(ctx, core.OpCreated, rec)
	return rec, nil
}

// Update merges patch over the record. found is false when id is absent.
func (s *CollectionService[T]) Update(ctx context.Context, id string, patch collection.Patch[T]) (T, bool, error) {
	rec, found, err := s.coll.Update(ctx, id, patch)
	if err != nil || !found {
		return rec, found, err
	}
	s.announce(ctx, core.OpUpdated, rec)
	return rec, true, nil
}

func (s *CollectionService[T]) Toggle(ctx context.Context, id, field string) (T, bool, error) {
	rec, found, err := s.coll.ToggleField(ctx, id, field)
	if err != nil || !found {
		return rec, found, err
	}
	s.announce(ctx, core.OpToggled, rec)
	return rec, true, nil
}

func (s *CollectionService[T]) Remove(ctx context.Context, id string) (bool, error) {
	rec, _ := s.coll.Get(id)
	found, err := s.coll.Remove(ctx, id)
	if err != nil || !found {
		return found, err
	}
	s.emit(ctx, core.ChangeEvent{
		Kind:    s.coll.Kind(),
		Op:      core.OpDeleted,
		ID:      id,
		Summary: s.summarize(rec),
		At:      s.hooks.Now(),
	})
	return true, nil
}

func (s *CollectionService[T]) announce(ctx context.Context, op core.Op, rec T) {
	body, err := json.Marshal(rec)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode record for change event", applog.FieldError, err)
	}
	s.emit(ctx, core.ChangeEvent{
		Kind:    s.coll.Kind(),
		Op:      op,
		ID:      s.coll.Schema().ID(rec),
		Summary: s.summarize(rec),
		At:      s.hooks.Now(),
		Record:  body,
	})
}

func (s *CollectionService[T]) emit(ctx context.Context, ev core.ChangeEvent) {
	s.changes.LogRecordChanged(ctx, ev.Kind, ev.ID, string(ev.Op), ev.Summary)

	if s.hooks.Invalidate != nil {
		s.hooks.Invalidate()
	}
	if s.hooks.Activity != nil {
		s.hooks.Activity.Record(ev)
	}
	if s.hooks.Publisher == nil {
		return
	}
	// The record is already stored; a broker outage must not fail the request.
	if err := s.hooks.Publisher.PublishChange(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			applog.FieldError, err,
			applog.FieldKind, ev.Kind,
			applog.FieldRecordID, ev.ID,
			applog.FieldOperation, applog.OpPublish)
	}
}

// Summaries used in change events and the activity feed.

func PersonSummary(p core.Person) string { return p.FullName() }

func AccountSummary(a core.Account) string {
	if a.Owner == "" {
		return fmt.Sprintf("#%d", a.Number)
	}
	return fmt.Sprintf("#%d (%s)", a.Number, a.Owner)
}

func SourceSummary(s core.Source) string { return s.Name }

func TransactionSummary(t core.Transaction) string {
	return fmt.Sprintf("%s %s %s", t.Direction, t.Symbol, core.FormatMoney(t.Amount, t.Currency))
}
