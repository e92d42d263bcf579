// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog links the auto-attach orchestrator to a process
// that reported itself after spawning. [Dialer.Attach] opens a
// connection to the child's IPC endpoint, writes a CBOR hello frame,
// and watches for channel closure; [Handle.OnEnd] delivers the
// single-fire termination notification the orchestrator uses to evict
// telemetry.
//
// The link is best effort by design. The address handed to Attach was
// captured when the orchestrator configured, and the environment may
// have been republished since; a connect against a dead endpoint is a
// silent miss, never a hard error.
package watchdog
