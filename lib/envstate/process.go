// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package envstate

import "os"

// ProcessStore is a Store backed by the real process environment.
// Used by the tether CLI, whose own environment is the collection
// that spawned children inherit.
//
// The process environment is global mutable state shared with
// everything else in the process; ProcessStore makes no exclusivity
// claim over it.
type ProcessStore struct{}

// Get returns the value of the named environment variable.
func (ProcessStore) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Replace sets the named environment variable wholesale.
func (ProcessStore) Replace(key, value string) {
	// Setenv only fails for invalid names; protocol variable names
	// are fixed constants.
	_ = os.Setenv(key, value)
}

// Append concatenates suffix onto the variable's current value.
func (ProcessStore) Append(key, suffix string) {
	current, _ := os.LookupEnv(key)
	_ = os.Setenv(key, current+suffix)
}

// Clear resets each named variable to empty.
func (ProcessStore) Clear(keys ...string) {
	for _, key := range keys {
		_ = os.Setenv(key, "")
	}
}
