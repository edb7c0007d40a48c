package cache

import (
	"context"
	"testing"
	"time"

	applog "thali/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("overwrite not applied: %d", v)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d, want 1", c.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // b is now the oldest
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clk := newTestCache(4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	clk.t = clk.t.Add(2 * time.Minute)
	c.Set("c", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("fresh entry removed")
	}

	clk.t = clk.t.Add(2 * time.Minute)
	if _, ok := c.Get("c"); ok {
		t.Fatal("expired entry returned")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	var c Cache[int]
	c, _ = newTestCache(4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry returned")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %d, %v", v, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("Size after delete = %d, want 1", c.Size())
	}
}

func TestLRUCachePurge(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("Size after purge = %d", c.Size())
	}
	c.Set("a", 3)
	if v, ok := c.Get("a"); !ok || v != 3 {
		t.Fatalf("cache unusable after purge: %d, %v", v, ok)
	}
}

func TestJanitorRunStopsOnCancel(t *testing.T) {
	c, clk := newTestCache(4, time.Minute)
	c.Set("a", 1)
	clk.t = clk.t.Add(time.Hour)

	j := NewJanitor(applog.Discard())
	j.Register(c)
	if n := j.CleanOnce(); n != 1 {
		t.Fatalf("CleanOnce = %d, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
