// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package runtimeinfo

import (
	"os/exec"
	"strings"
)

// Capability is a named feature flag of a resolved runtime.
type Capability string

const (
	// CapQuotedPaths means the runtime accepts whitespace-containing
	// paths when they are wrapped in quotes. Staging into a
	// whitespace-containing storage directory requires this.
	CapQuotedPaths Capability = "quoted-paths"

	// CapEnvBootstrap means the runtime honors an environment
	// variable that injects a bootstrap script before the user
	// program starts.
	CapEnvBootstrap Capability = "env-bootstrap"
)

// Descriptor describes an interpreter runtime as precisely as it is
// known. Resolution may be approximate: a descriptor with an empty
// Path represents a runtime whose location could not be established,
// which blocks any operation that must reason about path quoting.
type Descriptor struct {
	// Path is the resolved absolute path of the interpreter binary.
	// Empty when the location is not precisely known.
	Path string

	// Version is the version string reported by the runtime, when
	// probed. May be empty for manually constructed descriptors.
	Version string

	// Capabilities is the set of features the runtime is known to
	// support.
	Capabilities map[Capability]bool
}

// Resolved reports whether the runtime's location is precisely known.
func (d *Descriptor) Resolved() bool {
	return d != nil && d.Path != ""
}

// Has reports whether the runtime is known to support the capability.
// Unknown capabilities are absent, not false: the zero map means
// "nothing established", and Has returns false for everything.
func (d *Descriptor) Has(capability Capability) bool {
	return d != nil && d.Capabilities[capability]
}

// Detect probes the interpreter named by binary (a bare name resolved
// via PATH, or an absolute path) and returns a Descriptor. A runtime
// that cannot be located yields an unresolved descriptor rather than
// an error: approximate knowledge is an expected state.
func Detect(binary string) *Descriptor {
	descriptor := &Descriptor{Capabilities: make(map[Capability]bool)}

	path, err := exec.LookPath(binary)
	if err != nil {
		return descriptor
	}
	descriptor.Path = path

	if out, err := exec.Command(path, "--version").Output(); err == nil {
		descriptor.Version = strings.TrimSpace(string(out))
	}

	// A precisely resolved runtime with a parseable version is assumed
	// to handle quoted paths; ancient or unprobeable runtimes are not.
	if descriptor.Version != "" {
		descriptor.Capabilities[CapQuotedPaths] = true
		descriptor.Capabilities[CapEnvBootstrap] = true
	}

	return descriptor
}
