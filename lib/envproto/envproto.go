// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package envproto

import (
	"encoding/base64"
	"strings"

	"github.com/tether-foundation/tether/lib/codec"
)

// Variable names published into the process-wide environment. The
// launch options variable is single-valued (last writer wins); the
// inspector options variable is an append-only sequence of
// delimiter-joined segments so nested sessions layer without
// clobbering each other.
const (
	LaunchOptionsVariable    = "TETHER_LAUNCH_OPTIONS"
	InspectorOptionsVariable = "TETHER_INSPECTOR_OPTIONS"
)

// Delimiter separates independently decodable segments in the
// inspector options variable. Reserved: it never appears inside an
// encoded segment because segments are base64 raw-URL encoded.
const Delimiter = ":::"

// DeferredSuffix marks an IPC address that has been published before
// any client connected. The endpoint is promoted to active on first
// contact.
const DeferredSuffix = ".deferred"

// Mode selects when the bootstrap artifact attaches a debugger to a
// newly spawned process.
type Mode string

const (
	// ModeAlways attaches to every spawned process.
	ModeAlways Mode = "always"

	// ModeSmart attaches unless the launched script matches a
	// configured ignore pattern.
	ModeSmart Mode = "smart"

	// ModeOnlyWithFlag attaches only when the process was started
	// with an explicit inspect flag.
	ModeOnlyWithFlag Mode = "onlyWithFlag"

	// ModeDisabled never attaches.
	ModeDisabled Mode = "disabled"
)

// Options are the auto-attach parameters published for bootstrap
// artifacts to read. Immutable value produced once per configuration.
type Options struct {
	// Deferred reports whether InspectorIPC names a deferred endpoint
	// (published before any client has connected).
	Deferred bool `cbor:"deferred"`

	// InspectorIPC is the IPC address the spawned process should
	// report back to. Carries the DeferredSuffix when Deferred is
	// true.
	InspectorIPC string `cbor:"inspector_ipc"`

	// Mode selects the attach policy.
	Mode Mode `cbor:"mode"`
}

// Encode serializes options into a single environment segment:
// deterministic CBOR wrapped in base64 raw-URL encoding. Injective
// within the representable option space, and free of the reserved
// delimiter by construction.
func Encode(options Options) string {
	data, err := codec.Marshal(options)
	if err != nil {
		// Options contains only scalars; deterministic CBOR encoding
		// of it cannot fail.
		panic("envproto: encoding options: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses an environment variable value into its option
// segments. Absence (empty string) and malformed input resolve as
// (nil, false); callers treat "no auto-attach configured" as a
// normal state, never a failure.
//
// The value may be a single segment or a Delimiter-joined sequence.
// Each segment decodes independently; malformed or empty segments
// (such as the empty segment before a leading delimiter left by an
// append to an unset variable) are skipped.
func Decode(value string) ([]Options, bool) {
	if value == "" {
		return nil, false
	}

	var decoded []Options
	for _, segment := range strings.Split(value, Delimiter) {
		if segment == "" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(segment)
		if err != nil {
			continue
		}
		var options Options
		if err := codec.Unmarshal(data, &options); err != nil {
			continue
		}
		decoded = append(decoded, options)
	}

	if len(decoded) == 0 {
		return nil, false
	}
	return decoded, true
}

// Append joins a freshly encoded segment onto an existing variable
// value. The existing value may be empty (variable not yet set) or a
// previously joined sequence; either way the result decodes as a
// sequence containing every prior segment plus the new one.
func Append(existing, segment string) string {
	if existing == "" {
		return segment
	}
	return existing + Delimiter + segment
}

// DeferredAddress returns the deferred variant of an IPC server
// address.
func DeferredAddress(serverAddress string) string {
	return serverAddress + DeferredSuffix
}

// IsDeferred reports whether address names a deferred endpoint.
func IsDeferred(address string) bool {
	return strings.HasSuffix(address, DeferredSuffix)
}

// ActiveAddress strips the deferred suffix, returning the address of
// the endpoint once promoted. Addresses without the suffix are
// returned unchanged.
func ActiveAddress(address string) string {
	return strings.TrimSuffix(address, DeferredSuffix)
}
