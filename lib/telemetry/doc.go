// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry is the process-id-indexed registry of diagnostic
// payloads reported by spawned processes. Records live exactly as
// long as the watchdog link to their process: the orchestrator inserts
// on spawn notification and evicts when the watchdog's end callback
// fires.
package telemetry
