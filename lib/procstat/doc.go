// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package procstat probes process liveness. The telemetry registry
// never polls it for eviction (records are evicted by watchdog end
// events), but the orchestrator's prune backstop uses it to reclaim
// records whose end event never arrived.
package procstat
