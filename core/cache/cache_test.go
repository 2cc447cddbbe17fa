package cache

import (
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	c := New[string, int](DefaultConfig[string, int]())

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	// Overwrite keeps a single entry.
	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after overwrite = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() after overwrite = %d, want 2", c.Len())
	}
}

func TestEviction(t *testing.T) {
	var evicted []string
	c := New[string, int](Config[string, int]{
		MaxSize: 2,
		OnEvict: func(k string, _ int) { evicted = append(evicted, k) },
	})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // refresh a; b is now oldest
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was evicted despite being recently used")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", s.Evictions)
	}
}

func TestTTL(t *testing.T) {
	c := New[string, int](Config[string, int]{MaxSize: 10, TTL: 10 * time.Millisecond})

	c.Put("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("fresh entry not found")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still returned")
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New[string, int](DefaultConfig[string, int]())
	c.Put("a", 1)
	c.Put("b", 2)

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("removed entry still present")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestStats(t *testing.T) {
	c := New[string, int](Config[string, int]{MaxSize: 5})
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss", s)
	}
	if s.Size != 1 || s.MaxSize != 5 {
		t.Errorf("Stats() size = %d/%d, want 1/5", s.Size, s.MaxSize)
	}
}

func TestUnboundedCache(t *testing.T) {
	c := New[int, int](Config[int, int]{})
	for i := 0; i < 1000; i++ {
		c.Put(i, i)
	}
	if c.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", c.Len())
	}
	if s := c.Stats(); s.Evictions != 0 {
		t.Errorf("unbounded cache evicted %d entries", s.Evictions)
	}
}
