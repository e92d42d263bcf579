// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package launchparams parses user-authored launch-configuration
// files. The on-disk format is JSONC (JSON extended with comments and
// trailing commas) because the files are written and edited by hand.
package launchparams
