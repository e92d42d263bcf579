// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Tether's standard CBOR encoding
// configuration: Core Deterministic Encoding (RFC 8949 §4.2) on the
// encode side, lenient standard decoding with unknown-field tolerance
// on the decode side.
//
// Both the environment protocol (lib/envproto) and the watchdog hello
// frame (lib/watchdog) use this package so the wire configuration is
// defined once. Deterministic encoding guarantees that the same
// options value always produces the same environment segment, which
// keeps the idempotent configure path byte-stable.
package codec
