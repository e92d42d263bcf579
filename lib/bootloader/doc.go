// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootloader stages the bootstrap artifact (the small script
// that spawned processes execute to trigger the real debug handshake)
// at a storage location stable across host version upgrades.
//
// Staging enforces path-quoting preconditions before touching the
// filesystem: a whitespace-containing storage path is only usable when
// the runtime is precisely resolved and known to support quoted paths.
// Violations surface as [PreconditionError] with remediation text; they
// abort the configuration attempt rather than risk a launch command
// that splits mid-path.
package bootloader
