// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package envstate abstracts the process-wide environment-variable
// collection as an injected capability. The orchestrator receives a
// [Store] explicitly instead of reaching for implicit globals, which
// keeps the externally-mutable nature of the collection visible at
// every call site and makes the protocol testable against an
// in-memory store.
package envstate
