// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package launcher defines the polymorphic launch capability used by
// the auto-attach orchestrator. The orchestrator never starts a real
// target program; it launches a [StubProgram] whose completion is
// resolved only by an external termination signal. [ProcessLauncher]
// exists for hosts that do spawn directly and is selected by
// configuration data.
package launcher
