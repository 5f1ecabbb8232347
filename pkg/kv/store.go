// Package kv provides a small mutex-guarded map for state shared between a
// caller and a background listener.
package kv

import "sync"

// Store maps keys to values. The zero value is not usable; call New.
type Store[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// New returns an empty Store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{m: map[K]V{}}
}

// Get returns the value for key.
func (s *Store[K, V]) Get(key K) (v V, ok bool) {
	s.mu.Lock()
	v, ok = s.m[key]
	s.mu.Unlock()
	return v, ok
}

// Put stores value under key and returns what it replaced.
func (s *Store[K, V]) Put(key K, value V) (prev V, replaced bool) {
	s.mu.Lock()
	prev, replaced = s.m[key]
	s.m[key] = value
	s.mu.Unlock()
	return prev, replaced
}

// Take removes key and returns its value.
func (s *Store[K, V]) Take(key K) (v V, ok bool) {
	s.mu.Lock()
	v, ok = s.m[key]
	delete(s.m, key)
	s.mu.Unlock()
	return v, ok
}

// Delete removes key.
func (s *Store[K, V]) Delete(key K) {
	s.Take(key)
}

// CompareAndDelete removes key when match reports true for its value. It
// reports whether the key was removed.
func (s *Store[K, V]) CompareAndDelete(key K, match func(V) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[key]; ok && match(v) {
		delete(s.m, key)
		return true
	}
	return false
}

// Len returns the number of keys.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
