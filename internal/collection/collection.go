// Package collection implements the generic in-memory record store behind
// every list in the back office: ordered records of one kind, with search,
// category filters, JSON-merge updates, field toggles and deletion by id.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"signaldesk/internal/core"
)

// Persister receives every successful mutation of a collection. A non-nil
// error aborts the mutation and leaves the collection unchanged.
type Persister[T any] interface {
	Save(ctx context.Context, rec T) error
	Delete(ctx context.Context, id string) error
}

// Patch modifies a copy of a record during Update.
type Patch[T any] func(*T) error

// MergeJSON returns a patch that decodes raw over the current value, so
// only the fields present in raw are overridden.
func MergeJSON[T any](raw []byte) Patch[T] {
	return func(rec *T) error {
		if err := json.Unmarshal(raw, rec); err != nil {
			return fmt.Errorf("%w: %v", core.ErrValidation, err)
		}
		return nil
	}
}

// Query selects records by free-text search and category values.
type Query struct {
	Search     string
	Categories map[string]string
}

// Option configures a Collection.
type Option[T any] func(*Collection[T])

// WithPersister enables write-through of every mutation.
func WithPersister[T any](p Persister[T]) Option[T] {
	return func(c *Collection[T]) { c.persister = p }
}

// WithClock replaces time.Now for created_at defaults and time-range filters.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Collection[T]) { c.now = now }
}

// Collection is an ordered, concurrency-safe list of records of one kind.
type Collection[T any] struct {
	mu        sync.RWMutex
	schema    Schema[T]
	items     []T
	lastID    int64
	persister Persister[T]
	now       func() time.Time
}

func New[T any](schema Schema[T], opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		schema: schema,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection[T]) Kind() string { return c.schema.Kind }

func (c *Collection[T]) Schema() Schema[T] { return c.schema }

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// List returns a copy of all records in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Filter returns the records matching both the search term and every
// category value. "all" or an empty value matches everything.
func (c *Collection[T]) Filter(q Query) ([]T, error) {
	matchers, err := c.schema.compile(q.Categories)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, rec := range c.items {
		if term != "" && !c.schema.matchesSearch(rec, term) {
			continue
		}
		ok := true
		for _, m := range matchers {
			if !m(rec, now) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Load replaces the contents without persisting. It is used to hydrate a
// collection from storage.
func (c *Collection[T]) Load(recs []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		id := c.schema.ID(rec)
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s %q", core.ErrDuplicateID, c.schema.Kind, id)
		}
		seen[id] = struct{}{}
	}
	c.items = append(c.items[:0:0], recs...)
	for _, rec := range recs {
		c.observeID(c.schema.ID(rec))
	}
	return nil
}

// Create validates draft, assigns the next id and appends it.
func (c *Collection[T]) Create(ctx context.Context, draft T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schema.SetID(&draft, strconv.FormatInt(c.lastID+1, 10))
	return c.appendLocked(ctx, draft)
}

// Insert appends rec keeping its own id. An empty id gets the next one.
func (c *Collection[T]) Insert(ctx context.Context, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.schema.ID(rec)
	if id == "" {
		c.schema.SetID(&rec, strconv.FormatInt(c.lastID+1, 10))
	} else if c.indexOf(id) >= 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", core.ErrDuplicateID, c.schema.Kind, id)
	}
	return c.appendLocked(ctx, rec)
}

func (c *Collection[T]) appendLocked(ctx context.Context, rec T) (T, error) {
	var zero T
	if c.schema.Normalize != nil {
		c.schema.Normalize(&rec, c.now())
	}
	if err := c.schema.validate(rec); err != nil {
		return zero, err
	}
	if c.persister != nil {
		if err := c.persister.Save(ctx, rec); err != nil {
			return zero, fmt.Errorf("persist %s: %w", c.schema.Kind, err)
		}
	}
	c.items = append(c.items, rec)
	c.observeID(c.schema.ID(rec))
	return rec, nil
}

// Update applies patch to a copy of the record with the given id. The id
// itself cannot change. A missing id is reported as found=false.
func (c *Collection[T]) Update(ctx context.Context, id string, patch Patch[T]) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false, nil
	}
	next := c.items[i]
	if err := patch(&next); err != nil {
		return zero, true, err
	}
	c.schema.SetID(&next, id)
	if err := c.schema.validate(next); err != nil {
		return zero, true, err
	}
	if err := c.commitLocked(ctx, i, next); err != nil {
		return zero, true, err
	}
	return next, true, nil
}

// ToggleField flips one of the schema's toggleable fields.
func (c *Collection[T]) ToggleField(ctx context.Context, id, field string) (T, bool, error) {
	var zero T
	toggle, ok := c.schema.Toggles[strings.ToLower(field)]
	if !ok {
		return zero, false, fmt.Errorf("%w: %s has no toggle %q (toggles: %s)",
			core.ErrUnknownField, c.schema.Kind, field, strings.Join(c.schema.ToggleNames(), ", "))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return zero, false, nil
	}
	next := c.items[i]
	toggle(&next)
	if err := c.commitLocked(ctx, i, next); err != nil {
		return zero, true, err
	}
	return next, true, nil
}

// Remove deletes the record with the given id. A missing id is a no-op
// reported as found=false.
func (c *Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	if c.persister != nil {
		if err := c.persister.Delete(ctx, id); err != nil {
			return true, fmt.Errorf("delete %s: %w", c.schema.Kind, err)
		}
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true, nil
}

func (c *Collection[T]) commitLocked(ctx context.Context, i int, rec T) error {
	if c.persister != nil {
		if err := c.persister.Save(ctx, rec); err != nil {
			return fmt.Errorf("persist %s: %w", c.schema.Kind, err)
		}
	}
	c.items[i] = rec
	return nil
}

func (c *Collection[T]) indexOf(id string) int {
	for i, rec := range c.items {
		if c.schema.ID(rec) == id {
			return i
		}
	}
	return -1
}

// observeID keeps lastID at the largest numeric id ever held, so ids are
// never handed out twice even after deletions.
// AdvanceID raises the id high-water mark to at least n, so ids held by
// records deleted before a restart are not handed out again.
func (c *Collection[T]) AdvanceID(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.lastID {
		c.lastID = n
	}
}

func (c *Collection[T]) observeID(id string) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > c.lastID {
		c.lastID = n
	}
}
