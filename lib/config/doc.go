// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Tether
// components.
//
// Configuration is loaded from a single YAML file specified by the
// TETHER_CONFIG environment variable or a --config flag. There are no
// fallbacks or automatic discovery; this ensures deterministic,
// auditable configuration with no hidden overrides. The file may
// contain environment-specific sections (development, staging,
// production) that override base values when the environment matches.
package config
