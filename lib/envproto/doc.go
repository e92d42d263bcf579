// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package envproto defines the environment-variable encoding protocol
// between the auto-attach orchestrator and the bootstrap artifact that
// runs inside newly spawned processes.
//
// Two variables carry the protocol. TETHER_LAUNCH_OPTIONS is
// single-valued and replaced wholesale on each configuration.
// TETHER_INSPECTOR_OPTIONS is an append-only sequence of
// delimiter-joined segments: a child process started from within an
// already-instrumented parent layers its own segment without
// destroying the parent's. Each segment is deterministic CBOR in
// base64 raw-URL encoding, so the reserved ":::" delimiter can never
// appear inside a segment.
//
// Decoding never returns an error. An absent or malformed value means
// "no auto-attach configured", which is an expected state for every
// caller.
package envproto
