// Package cache provides the session-scoped resource stores used by the
// scene builder to deduplicate GPU-facing objects.
//
// A Store never evicts and never updates an entry in place: a key is
// populated at most once, so every lookup of the same key returns the same
// instance for the lifetime of the session. A build that fails leaves the
// key absent.
package cache

import (
	"sync"
	"sync/atomic"
)

// Stats is a snapshot of store statistics.
type Stats struct {
	Len      int
	Hits     uint64
	Misses   uint64
	Builds   uint64
	Failures uint64
	HitRate  float64
}

// Store is a keyed, populate-once resource store.
//
// Store is safe for concurrent use, although a builder session drives it
// from a single goroutine.
type Store[K comparable, V any] struct {
	name string

	mu      sync.Mutex
	entries map[K]V

	hits     atomic.Uint64
	misses   atomic.Uint64
	builds   atomic.Uint64
	failures atomic.Uint64
}

// New creates an empty store. The name labels log output and statistics.
func New[K comparable, V any](name string) *Store[K, V] {
	return &Store[K, V]{
		name:    name,
		entries: make(map[K]V),
	}
}

// Name returns the store label.
func (s *Store[K, V]) Name() string { return s.name }

// GetOrBuild returns the cached value for key or builds it.
// hit reports whether the value came from the store. When build fails the
// error is returned and nothing is stored.
//
// The build function runs with the store lock held; it must not call back
// into the same store.
func (s *Store[K, V]) GetOrBuild(key K, build func() (V, error)) (value V, hit bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.entries[key]; ok {
		s.hits.Add(1)
		return v, true, nil
	}
	s.misses.Add(1)

	v, err := build()
	if err != nil {
		s.failures.Add(1)
		var zero V
		return zero, false, err
	}
	s.builds.Add(1)
	s.entries[key] = v
	return v, false, nil
}

// Clear removes all entries, calling release (if non-nil) on each value.
func (s *Store[K, V]) Clear(release func(V)) {
	s.mu.Lock()
	old := s.entries
	s.entries = make(map[K]V)
	s.mu.Unlock()

	if release == nil {
		return
	}
	for _, v := range old {
		release(v)
	}
}

// Len returns the number of populated keys.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns current store statistics.
func (s *Store[K, V]) Stats() Stats {
	hits := s.hits.Load()
	misses := s.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:      s.Len(),
		Hits:     hits,
		Misses:   misses,
		Builds:   s.builds.Load(),
		Failures: s.failures.Load(),
		HitRate:  hitRate,
	}
}

