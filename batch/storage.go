package batch

import "github.com/gogpu/g3d"

// Storage keeps shared resources registered on first reference and retains
// them only while they are referenced in the current frame.
//
// Storage is not safe for concurrent use.
type Storage[K comparable, V any] struct {
	items   map[K]V
	used    map[K]struct{}
	release func(K, V)
}

// NewStorage creates an empty storage. release, if not nil, is called for
// every item dropped by Retain or Clear.
func NewStorage[K comparable, V any](release func(K, V)) *Storage[K, V] {
	return &Storage[K, V]{
		items:   make(map[K]V),
		used:    make(map[K]struct{}),
		release: release,
	}
}

// Use marks key as referenced this frame, registering v if key is new.
// It reports whether v was registered.
func (s *Storage[K, V]) Use(key K, v V) bool {
	s.used[key] = struct{}{}
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = v
	return true
}

// Get returns the item registered for key.
func (s *Storage[K, V]) Get(key K) (V, bool) {
	v, ok := s.items[key]
	return v, ok
}

// Retain drops every item not used since the previous Retain and starts a
// new frame.
func (s *Storage[K, V]) Retain() {
	dropped := 0
	for k, v := range s.items {
		if _, ok := s.used[k]; ok {
			continue
		}
		if s.release != nil {
			s.release(k, v)
		}
		delete(s.items, k)
		dropped++
	}
	clear(s.used)
	if dropped > 0 {
		g3d.Logger().Debug("batch: storage retained", "dropped", dropped, "kept", len(s.items))
	}
}

// Len returns the number of registered items.
func (s *Storage[K, V]) Len() int {
	return len(s.items)
}

// Clear drops every item.
func (s *Storage[K, V]) Clear() {
	for k, v := range s.items {
		if s.release != nil {
			s.release(k, v)
		}
	}
	clear(s.items)
	clear(s.used)
}
