// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package autoattach

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tether-foundation/tether/lib/bootloader"
	"github.com/tether-foundation/tether/lib/envproto"
	"github.com/tether-foundation/tether/lib/envstate"
	"github.com/tether-foundation/tether/lib/launcher"
	"github.com/tether-foundation/tether/lib/procstat"
	"github.com/tether-foundation/tether/lib/runtimeinfo"
	"github.com/tether-foundation/tether/lib/telemetry"
	"github.com/tether-foundation/tether/lib/watchdog"
)

// RunData is the launch context captured once when the orchestrator
// configures. It is immutable thereafter even if the published
// environment later changes: watchdog handshakes always target the
// configuration-time server address, which may by then be stale. That
// staleness is accepted deliberately; see the package documentation.
type RunData struct {
	// ServerAddress is the IPC address of the host's inspector
	// server at configuration time.
	ServerAddress string

	// Params describe the session's launch shape. The orchestrator
	// passes them to its (stub) launcher untouched.
	Params launcher.Params
}

// ChildInfo is a spawn notification from the host's spawn-detection
// collaborator.
type ChildInfo struct {
	// PID is the new child's process id.
	PID int

	// Command is the child's command line, when known.
	Command string

	// Telemetry is the opaque diagnostic payload reported for the
	// child.
	Telemetry telemetry.Payload
}

// Config wires an Orchestrator. All dependencies are explicit
// constructor parameters; nothing is discovered at runtime.
type Config struct {
	// Env is the host-owned environment-variable collection the
	// protocol is published into. Required.
	Env envstate.Store

	// Stager stages the bootstrap artifact. Required.
	Stager *bootloader.Stager

	// StorageRoot is the persistent storage directory passed to the
	// stager. Required.
	StorageRoot string

	// Runtime describes the interpreter whose capabilities gate
	// staging. May be unresolved; staging then fails only for
	// whitespace-containing storage paths.
	Runtime *runtimeinfo.Descriptor

	// Launcher produces the session's program handle. The
	// auto-attach path always wants [launcher.NewStub]; the field is
	// polymorphic so hosts can select other variants in
	// configuration. Required.
	Launcher launcher.Launcher

	// Dialer opens watchdog handshakes. Required.
	Dialer *watchdog.Dialer

	// Mode is the attach policy published to bootstrap artifacts.
	// Defaults to envproto.ModeAlways.
	Mode envproto.Mode

	// Logger is required.
	Logger *slog.Logger
}

// New validates cfg and returns an Orchestrator in the idle state.
func New(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Env == nil:
		return nil, fmt.Errorf("autoattach: Config.Env is required")
	case cfg.Stager == nil:
		return nil, fmt.Errorf("autoattach: Config.Stager is required")
	case cfg.StorageRoot == "":
		return nil, fmt.Errorf("autoattach: Config.StorageRoot is required")
	case cfg.Launcher == nil:
		return nil, fmt.Errorf("autoattach: Config.Launcher is required")
	case cfg.Dialer == nil:
		return nil, fmt.Errorf("autoattach: Config.Dialer is required")
	case cfg.Logger == nil:
		return nil, fmt.Errorf("autoattach: Config.Logger is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = envproto.ModeAlways
	}
	return &Orchestrator{
		cfg:      cfg,
		registry: telemetry.NewRegistry(),
	}, nil
}

// Orchestrator governs the auto-attach environment lifecycle for one
// debugging session: it publishes the protocol on Configure, tracks
// spawned children via watchdog handshakes, and tears the protocol
// down on ClearVariables.
type Orchestrator struct {
	cfg      Config
	registry *telemetry.Registry

	// mu guards run/program. Configure's presence-check-then-write
	// and SpawnForChild's run capture race against each other when
	// host events arrive on separate goroutines.
	mu      sync.Mutex
	run     *RunData
	program launcher.Program
}

// Configure prepares auto-attach for run. Idempotent: when the
// inspector options variable is already non-empty (prior
// configuration, possibly published by another session layer), the
// call is a no-op and the existing protocol state is treated as
// sufficient.
//
// Otherwise Configure stages the bootstrap artifact (surfacing
// *bootloader.PreconditionError and I/O failures to the caller),
// publishes the launch options variable wholesale, appends one
// independently decodable segment to the inspector options variable,
// captures run immutably, and launches the session's stub program.
func (o *Orchestrator) Configure(ctx context.Context, run RunData) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if value, _ := o.cfg.Env.Get(envproto.InspectorOptionsVariable); value != "" {
		o.cfg.Logger.Debug("auto-attach already configured, leaving environment untouched",
			"variable", envproto.InspectorOptionsVariable,
		)
		return nil
	}

	staged, err := o.cfg.Stager.Stage(ctx, o.cfg.StorageRoot, o.cfg.Runtime)
	if err != nil {
		return fmt.Errorf("staging bootloader: %w", err)
	}
	defer staged.Release()

	options := envproto.Options{
		Deferred:     true,
		InspectorIPC: envproto.DeferredAddress(run.ServerAddress),
		Mode:         o.cfg.Mode,
	}

	o.cfg.Env.Replace(envproto.LaunchOptionsVariable, "--require "+staged.Path)
	o.cfg.Env.Append(envproto.InspectorOptionsVariable, envproto.Delimiter+envproto.Encode(options))

	program, err := o.cfg.Launcher.Launch(ctx, run.Params)
	if err != nil {
		return fmt.Errorf("launching session program: %w", err)
	}

	o.run = &run
	o.program = program
	o.cfg.Logger.Info("auto-attach configured",
		"server_address", run.ServerAddress,
		"mode", string(o.cfg.Mode),
		"bootloader", staged.Path,
	)
	return nil
}

// DeferredSocketName returns the IPC address embedded in the
// currently published inspector options, or false when nothing is
// configured. Pure and side-effect-free: it reads whatever the
// environment holds right now, which is not necessarily what this
// instance published.
func (o *Orchestrator) DeferredSocketName() (string, bool) {
	value, _ := o.cfg.Env.Get(envproto.InspectorOptionsVariable)
	segments, ok := envproto.Decode(value)
	if !ok {
		return "", false
	}
	// The newest layer wins: a child session appended after its
	// parent, so its segment is last.
	return segments[len(segments)-1].InspectorIPC, true
}

// SpawnForChild records a spawn notification: it stores the child's
// telemetry (overwriting any prior record for the same pid) and opens
// a watchdog handshake whose end evicts the record exactly once.
//
// Without an active run context the notification is dropped silently:
// a child may outlive the session that spawned it.
//
// The handshake targets the server address captured at configuration
// time, not the address currently published in the environment. If
// the host reconfigured in between, the handshake misses silently and
// the telemetry record survives until the registry's owner goes away.
func (o *Orchestrator) SpawnForChild(ctx context.Context, info ChildInfo) {
	o.mu.Lock()
	run := o.run
	o.mu.Unlock()

	if run == nil {
		o.cfg.Logger.Debug("spawn notification without active run, ignoring",
			"pid", info.PID,
		)
		return
	}

	o.registry.Put(info.PID, info.Telemetry)

	handle := o.cfg.Dialer.Attach(ctx, run.ServerAddress, watchdog.ChildInfo{
		PID:     info.PID,
		Command: info.Command,
	})
	handle.OnEnd(func() {
		o.registry.Delete(info.PID)
		o.cfg.Logger.Debug("child ended, telemetry evicted",
			"pid", info.PID,
			"session", handle.Session(),
		)
	})
}

// ProcessTelemetry returns the telemetry payload recorded for pid.
func (o *Orchestrator) ProcessTelemetry(pid int) (telemetry.Payload, bool) {
	return o.registry.Get(pid)
}

// TrackedPIDs returns the ids of all processes with live telemetry.
func (o *Orchestrator) TrackedPIDs() []int {
	return o.registry.PIDs()
}

// PruneDeadProcesses evicts telemetry records whose processes are no
// longer alive, returning the evicted pids in ascending order. It is
// the coarse backstop for end events that never arrive: a handshake
// that missed a stale server address leaves its record behind, and
// hosts reclaim such records on their own cadence.
func (o *Orchestrator) PruneDeadProcesses() []int {
	var evicted []int
	for _, pid := range o.registry.PIDs() {
		if procstat.Alive(pid) {
			continue
		}
		o.registry.Delete(pid)
		evicted = append(evicted, pid)
	}
	if len(evicted) > 0 {
		o.cfg.Logger.Debug("pruned telemetry for dead processes",
			"pids", evicted,
		)
	}
	return evicted
}

// Program returns the session's program handle, or nil before
// Configure. Hosts resolve the stub program's completion through it
// when the session ends.
func (o *Orchestrator) Program() launcher.Program {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.program
}

// ClearVariables resets both protocol variables to empty. Idempotent,
// and deliberately independent of this instance's internal state: it
// is process-wide teardown, usable even by an orchestrator that never
// configured anything.
func (o *Orchestrator) ClearVariables() {
	o.cfg.Env.Clear(envproto.LaunchOptionsVariable, envproto.InspectorOptionsVariable)
	o.cfg.Logger.Debug("auto-attach variables cleared")
}
