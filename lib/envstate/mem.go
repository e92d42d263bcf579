// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package envstate

import "sync"

// MemStore is an in-memory Store. Hosts that own their own
// environment-variable collection hand the orchestrator a MemStore
// (or their own Store implementation) instead of the real process
// environment; it is also the standard test double.
//
// Safe for concurrent use.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the current value of key.
func (s *MemStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Replace sets key to value wholesale.
func (s *MemStore) Replace(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Append concatenates suffix onto key's current value.
func (s *MemStore) Append(key, suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = s.values[key] + suffix
}

// Clear resets each named key to empty.
func (s *MemStore) Clear(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.values[key] = ""
	}
}
