package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected a=1, got %q %v", v, ok)
	}

	// a was used last, so b is evicted
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(2 * time.Second)

	if _, ok := c.Get("x"); ok {
		t.Fatalf("expected x to be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestLRUCache_ClearAndDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("x", 1)
	c.Set("y", 2)
	c.Delete("x")
	if _, ok := c.Get("x"); ok {
		t.Fatalf("expected x deleted")
	}
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d", c.Size())
	}
	c.Set("z", 3)
	if v, ok := c.Get("z"); !ok || v != 3 {
		t.Fatalf("cache unusable after Clear")
	}
}

func TestManager_CleanNowAndStop(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("x", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(time.Hour)

	now = now.Add(time.Minute)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", n)
	}

	m.Stop()
	m.Stop()
	m.Wait()
}
