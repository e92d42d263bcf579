// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package envstate

// Store is the process-wide environment-variable collection the
// orchestrator publishes into. The collection is owned by the host,
// not by Tether: the host may mutate or clear it at any time, so
// every read must treat absence or unexpected content as a normal,
// non-fatal case.
//
// The interface is deliberately small (get, replace, append, clear),
// mirroring the capability the host grants rather than full
// environment access.
type Store interface {
	// Get returns the current value of key and whether it is set.
	// An empty value with ok == true means the key is present but
	// cleared; callers that publish protocol state treat both as
	// "not configured".
	Get(key string) (value string, ok bool)

	// Replace sets key to value wholesale, discarding any previous
	// value. Last writer wins.
	Replace(key, value string)

	// Append concatenates suffix onto the current value of key
	// verbatim (no implicit delimiter; the caller includes one when
	// sequence framing is needed). An unset key behaves as empty.
	Append(key, suffix string)

	// Clear resets each named key to empty. Idempotent.
	Clear(keys ...string)
}
