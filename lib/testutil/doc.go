// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Tether packages:
// channel receive/close assertions with timeout safety valves, and
// short-path temporary directories for Unix domain socket tests.
package testutil
