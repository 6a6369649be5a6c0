package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}

	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Set should replace, got %d", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a") // b is now the oldest
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheStats(t *testing.T) {
	c := New[int, string](8)
	c.Set(1, "v")
	for range 2 {
		if got, ok := c.Get(1); !ok || got != "v" {
			t.Fatalf("Get(1) = %q, %v; want v, true", got, ok)
		}
	}
	c.Get(2)

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", s.Hits, s.Misses)
	}
	if s.HitRate < 0.66 || s.HitRate > 0.67 {
		t.Errorf("HitRate = %v, want 2/3", s.HitRate)
	}
	if s.Len != 1 || s.Capacity != 8 || s.Evictions != 0 {
		t.Errorf("Stats() = %+v, want Len 1, Capacity 8, no evictions", s)
	}
}

func TestCacheReplaceIsNotEviction(t *testing.T) {
	c := New[int, int](2)
	c.Set(1, 1)
	c.Set(1, 2)
	c.Set(2, 2)
	if got := c.Stats().Evictions; got != 0 {
		t.Errorf("Evictions = %d after replacing a key, want 0", got)
	}
}

func TestCacheMinimumCapacity(t *testing.T) {
	c := New[int, int](0)
	if got := c.Stats().Capacity; got != 1 {
		t.Fatalf("Capacity = %d, want 1", got)
	}
	c.Set(1, 1)
	c.Set(2, 2)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(2); !ok {
		t.Error("newest entry should survive")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := strconv.Itoa((g*200 + i) % 100)
				if _, ok := c.Get(key); !ok {
					c.Set(key, i)
				}
			}
		}()
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
	if s := c.Stats(); s.Hits+s.Misses != 8*200 {
		t.Errorf("lookups = %d, want %d", s.Hits+s.Misses, 8*200)
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New[string, int](1000)
	for i := 0; i < 100; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("50")
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New[string, int](1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(strconv.Itoa(i%100), i)
	}
}
