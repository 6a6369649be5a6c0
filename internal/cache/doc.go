// Package cache provides the LRU cache used to memoise shaped text lines.
//
// # Cache[K, V]
//
// A hit and miss counting wrapper over the hashicorp golang-lru cache. It
// has a hard capacity: inserting into a full cache evicts the least
// recently used entry.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//	hits := c.Stats().Hits
//
// # Thread Safety
//
// Cache is safe for concurrent use.
package cache
