// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content digests of files on disk. The
// bootloader stager uses it to verify that a staged artifact is a
// byte-for-byte copy of the canonical source; the verification is a
// separate operation, never part of staging itself.
package binhash
