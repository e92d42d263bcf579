// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the tether
// binary: a dispatching command tree over pflag flag sets, structured
// help output, terminal-aware logger construction, and typed exit
// codes.
package cli
