// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package autoattach is the state machine behind Tether's debugger
// auto-attach: Idle → Configured on [Orchestrator.Configure], a
// tracking entry per spawned child on [Orchestrator.SpawnForChild],
// and back to Idle on [Orchestrator.ClearVariables].
//
// The orchestrator never spawns processes. The host's terminal does;
// the orchestrator's job is to publish the environment protocol that
// bootstrap artifacts read (lib/envproto), keep the bootstrap
// artifact staged (lib/bootloader), and hold the per-child watchdog
// links and telemetry records (lib/watchdog, lib/telemetry).
//
// # Address staleness
//
// Watchdog handshakes target the server address captured in RunData
// at configuration time. The environment may have been republished
// since the child captured its copy, in which case the handshake
// misses. Of the possible policies (retry with the freshest address,
// version-stamp the handshake, or accept the miss) this
// implementation accepts the silent miss: auto-attach is best-effort
// convenience layered on normal process launching, and a miss only
// costs an un-evicted telemetry record. [Orchestrator.PruneDeadProcesses]
// reclaims such records, and the registry's lifetime is in any case
// bounded by the orchestrator's own.
package autoattach
