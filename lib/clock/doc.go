// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects [Real]; tests inject [Fake] and drive time explicitly with
// Advance. The watchdog handshake uses the injected clock for its
// dial deadline so tests never sleep on the wall clock.
package clock
