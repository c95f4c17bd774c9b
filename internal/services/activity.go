package services

import (
	"sync"

	"signaldesk/internal/core"
)

const DefaultActivityLimit = 50

// ActivityFeed keeps the most recent change events in a ring buffer.
type ActivityFeed struct {
	mu     sync.RWMutex
	events []core.ChangeEvent
	next   int
	full   bool
}

func NewActivityFeed(limit int) *ActivityFeed {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &ActivityFeed{events: make([]core.ChangeEvent, limit)}
}

func (f *ActivityFeed) Record(ev core.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[f.next] = ev
	f.next = (f.next + 1) % len(f.events)
	if f.next == 0 {
		f.full = true
	}
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns everything held.
func (f *ActivityFeed) Recent(limit int) []core.ChangeEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := f.lenLocked()
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]core.ChangeEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.events)) % len(f.events)
		out = append(out, f.events[idx])
	}
	return out
}

func (f *ActivityFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lenLocked()
}

func (f *ActivityFeed) lenLocked() int {
	if f.full {
		return len(f.events)
	}
	return f.next
}

func (f *ActivityFeed) Cap() int { return len(f.events) }
