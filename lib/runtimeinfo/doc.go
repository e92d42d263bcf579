// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package runtimeinfo resolves interpreter runtimes and the
// capability flags the bootloader stager needs to reason about path
// quoting. Resolution is best effort: a runtime whose location or
// capabilities cannot be established is represented honestly as
// unresolved rather than guessed at.
package runtimeinfo
