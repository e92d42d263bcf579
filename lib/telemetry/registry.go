// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"sort"
	"sync"
)

// Payload is an opaque diagnostic blob reported by a spawned process.
// The registry stores it without inspecting it; shape and meaning
// belong to the host's diagnostics pipeline.
type Payload any

// Registry maps process ids to their telemetry payloads. At most one
// live record per id: Put overwrites, it never merges. No persistence;
// lifetime is bound to the owning orchestrator instance.
//
// Safe for concurrent use. The orchestrator's callers are host event
// handlers and watchdog end callbacks running on separate goroutines,
// so mutation is guarded here rather than at every call site.
type Registry struct {
	mu      sync.RWMutex
	records map[int]Payload
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[int]Payload)}
}

// Put stores payload under pid, overwriting any existing record.
func (r *Registry) Put(pid int, payload Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[pid] = payload
}

// Get returns the payload for pid. An unknown id yields (nil, false),
// which is an expected outcome, not a failure.
func (r *Registry) Get(pid int) (Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.records[pid]
	return payload, ok
}

// Delete removes the record for pid. Deleting an unknown id is a
// no-op.
func (r *Registry) Delete(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, pid)
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// PIDs returns the ids of all live records in ascending order.
func (r *Registry) PIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pids := make([]int, 0, len(r.records))
	for pid := range r.records {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}
