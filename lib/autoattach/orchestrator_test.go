// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package autoattach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tether-foundation/tether/lib/bootloader"
	"github.com/tether-foundation/tether/lib/clock"
	"github.com/tether-foundation/tether/lib/envproto"
	"github.com/tether-foundation/tether/lib/envstate"
	"github.com/tether-foundation/tether/lib/launcher"
	"github.com/tether-foundation/tether/lib/runtimeinfo"
	"github.com/tether-foundation/tether/lib/testutil"
	"github.com/tether-foundation/tether/lib/watchdog"
)

type fixture struct {
	orchestrator *Orchestrator
	env          *envstate.MemStore
	stub         *launcher.StubLauncher
	storageRoot  string
}

func newFixture(t *testing.T, storageRoot string, runtime *runtimeinfo.Descriptor) *fixture {
	t.Helper()

	source := filepath.Join(t.TempDir(), "canonical-stub")
	if err := os.WriteFile(source, []byte("#!/bin/sh\nexec tether-bootstrap \"$@\"\n"), 0755); err != nil {
		t.Fatalf("writing canonical artifact: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := envstate.NewMemStore()
	stub := launcher.NewStub()

	orchestrator, err := New(Config{
		Env:         env,
		Stager:      &bootloader.Stager{Source: source, Logger: logger},
		StorageRoot: storageRoot,
		Runtime:     runtime,
		Launcher:    stub,
		Dialer:      &watchdog.Dialer{Logger: logger, Clock: clock.Real()},
		Mode:        envproto.ModeSmart,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{orchestrator: orchestrator, env: env, stub: stub, storageRoot: storageRoot}
}

func resolvedRuntime() *runtimeinfo.Descriptor {
	return &runtimeinfo.Descriptor{
		Path:         "/usr/bin/node",
		Version:      "v22.1.0",
		Capabilities: map[runtimeinfo.Capability]bool{runtimeinfo.CapQuotedPaths: true},
	}
}

func TestConfigurePublishesProtocol(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())

	err := f.orchestrator.Configure(context.Background(), RunData{
		ServerAddress: "/run/tether/server.sock",
		Params:        launcher.Params{Command: "node", Args: []string{"app.js"}},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	launch, _ := f.env.Get(envproto.LaunchOptionsVariable)
	if !strings.Contains(launch, bootloader.ArtifactName) {
		t.Errorf("launch options %q do not embed the staged artifact path", launch)
	}

	inspector, _ := f.env.Get(envproto.InspectorOptionsVariable)
	segments, ok := envproto.Decode(inspector)
	if !ok || len(segments) != 1 {
		t.Fatalf("inspector options decode = %v ok=%v, want one segment", segments, ok)
	}
	if segments[0].InspectorIPC != "/run/tether/server.sock.deferred" {
		t.Errorf("InspectorIPC = %q", segments[0].InspectorIPC)
	}
	if !segments[0].Deferred {
		t.Error("published segment not marked deferred")
	}
	if segments[0].Mode != envproto.ModeSmart {
		t.Errorf("Mode = %q, want smart", segments[0].Mode)
	}

	if f.orchestrator.Program() == nil {
		t.Error("Program() = nil after Configure")
	}
}

func TestConfigureIdempotent(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())
	ctx := context.Background()

	if err := f.orchestrator.Configure(ctx, RunData{ServerAddress: "/run/a.sock"}); err != nil {
		t.Fatalf("first Configure: %v", err)
	}
	before, _ := f.env.Get(envproto.InspectorOptionsVariable)

	if err := f.orchestrator.Configure(ctx, RunData{ServerAddress: "/run/b.sock"}); err != nil {
		t.Fatalf("second Configure: %v", err)
	}
	after, _ := f.env.Get(envproto.InspectorOptionsVariable)

	if before != after {
		t.Error("second Configure mutated the inspector options variable")
	}
}

func TestConfigureRespectsForeignLayer(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())

	// Another session layer already published a segment.
	foreign := envproto.Encode(envproto.Options{
		Deferred:     true,
		InspectorIPC: "/run/other-session.sock.deferred",
		Mode:         envproto.ModeAlways,
	})
	f.env.Replace(envproto.InspectorOptionsVariable, foreign)

	if err := f.orchestrator.Configure(context.Background(), RunData{ServerAddress: "/run/mine.sock"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	// The foreign configuration is treated as sufficient: no launch
	// variable published, no segment appended.
	if launch, _ := f.env.Get(envproto.LaunchOptionsVariable); launch != "" {
		t.Errorf("launch options published despite existing layer: %q", launch)
	}
	name, ok := f.orchestrator.DeferredSocketName()
	if !ok || name != "/run/other-session.sock.deferred" {
		t.Errorf("DeferredSocketName = (%q, %v), want the foreign layer's address", name, ok)
	}
}

func TestConfigureSurfacesPreconditionFailure(t *testing.T) {
	storageRoot := filepath.Join(t.TempDir(), "my tool")
	f := newFixture(t, storageRoot, &runtimeinfo.Descriptor{})

	err := f.orchestrator.Configure(context.Background(), RunData{ServerAddress: "/run/s.sock"})

	var precondition *bootloader.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("err = %v, want *bootloader.PreconditionError", err)
	}
	// A failed configuration publishes nothing.
	if value, _ := f.env.Get(envproto.InspectorOptionsVariable); value != "" {
		t.Errorf("inspector options published despite failure: %q", value)
	}
}

func TestConfigureWhitespacePathWithCapableRuntime(t *testing.T) {
	storageRoot := filepath.Join(t.TempDir(), "my tool")
	f := newFixture(t, storageRoot, resolvedRuntime())

	if err := f.orchestrator.Configure(context.Background(), RunData{ServerAddress: "/run/s.sock"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	launch, _ := f.env.Get(envproto.LaunchOptionsVariable)
	if !strings.Contains(launch, `"`) {
		t.Errorf("whitespace artifact path not quoted in launch options: %q", launch)
	}
	if _, err := os.Stat(filepath.Join(storageRoot, bootloader.ArtifactName)); err != nil {
		t.Errorf("artifact not staged under whitespace path: %v", err)
	}
}

func TestDeferredSocketNameLifecycle(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())

	if name, ok := f.orchestrator.DeferredSocketName(); ok {
		t.Errorf("DeferredSocketName before Configure = %q, want none", name)
	}

	if err := f.orchestrator.Configure(context.Background(), RunData{ServerAddress: "/run/tether/server.sock"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	name, ok := f.orchestrator.DeferredSocketName()
	if !ok || name != "/run/tether/server.sock.deferred" {
		t.Errorf("DeferredSocketName = (%q, %v)", name, ok)
	}

	f.orchestrator.ClearVariables()
	if name, ok := f.orchestrator.DeferredSocketName(); ok {
		t.Errorf("DeferredSocketName after ClearVariables = %q, want none", name)
	}

	// Clearing again is harmless.
	f.orchestrator.ClearVariables()
}

func TestSpawnForChildWithoutRunIsSilent(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())

	f.orchestrator.SpawnForChild(context.Background(), ChildInfo{PID: 41, Telemetry: "t"})

	if _, ok := f.orchestrator.ProcessTelemetry(41); ok {
		t.Error("telemetry recorded without an active run")
	}
}

func TestSpawnForChildOverwritesTelemetry(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())
	ctx := context.Background()

	// The server address does not exist: handshakes miss silently and
	// records stay put, which is exactly what this test needs.
	staleAddress := filepath.Join(testutil.SocketDir(t), "gone.sock")
	if err := f.orchestrator.Configure(ctx, RunData{ServerAddress: staleAddress}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	f.orchestrator.SpawnForChild(ctx, ChildInfo{PID: 55, Telemetry: "first"})
	f.orchestrator.SpawnForChild(ctx, ChildInfo{PID: 55, Telemetry: "second"})

	payload, ok := f.orchestrator.ProcessTelemetry(55)
	if !ok || payload != "second" {
		t.Errorf("ProcessTelemetry = (%v, %v), want the overwritten value", payload, ok)
	}
	if pids := f.orchestrator.TrackedPIDs(); len(pids) != 1 {
		t.Errorf("TrackedPIDs = %v, want exactly one entry", pids)
	}
}

func TestChildEndEvictsTelemetry(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())
	ctx := context.Background()

	serverAddress := filepath.Join(testutil.SocketDir(t), "server.sock")
	listener, err := net.Listen("unix", serverAddress)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		connection, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- connection
	}()

	if err := f.orchestrator.Configure(ctx, RunData{ServerAddress: serverAddress}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	f.orchestrator.SpawnForChild(ctx, ChildInfo{PID: 88, Telemetry: "live"})

	if _, ok := f.orchestrator.ProcessTelemetry(88); !ok {
		t.Fatal("telemetry missing right after spawn notification")
	}

	// Closing the server side of the handshake models the child's
	// exit; the end callback must evict the record.
	connection := testutil.RequireReceive(t, accepted, 5*time.Second, "handshake connection")
	connection.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := f.orchestrator.ProcessTelemetry(88); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("telemetry not evicted after child end")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandshakeTargetsConfigurationTimeAddress(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())
	ctx := context.Background()

	socketDir := testutil.SocketDir(t)
	originalAddress := filepath.Join(socketDir, "original.sock")
	listener, err := net.Listen("unix", originalAddress)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		connection, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- connection
	}()

	if err := f.orchestrator.Configure(ctx, RunData{ServerAddress: originalAddress}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	// The host republishes the environment out from under us. The
	// handshake must still hit the configuration-time address.
	fresh := envproto.Encode(envproto.Options{
		Deferred:     true,
		InspectorIPC: filepath.Join(socketDir, "fresh.sock.deferred"),
		Mode:         envproto.ModeAlways,
	})
	f.env.Replace(envproto.InspectorOptionsVariable, fresh)

	f.orchestrator.SpawnForChild(ctx, ChildInfo{PID: 12, Telemetry: "t"})
	connection := testutil.RequireReceive(t, accepted, 5*time.Second, "handshake at original address")
	connection.Close()
}

func TestPruneDeadProcesses(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())
	ctx := context.Background()

	// Stale address: handshakes miss, so no end event will ever evict
	// these records. Prune is the backstop.
	staleAddress := filepath.Join(testutil.SocketDir(t), "gone.sock")
	if err := f.orchestrator.Configure(ctx, RunData{ServerAddress: staleAddress}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	child := exec.Command("true")
	if err := child.Run(); err != nil {
		t.Fatalf("running child: %v", err)
	}
	deadPID := child.Process.Pid

	f.orchestrator.SpawnForChild(ctx, ChildInfo{PID: os.Getpid(), Telemetry: "self"})
	f.orchestrator.SpawnForChild(ctx, ChildInfo{PID: deadPID, Telemetry: "reaped"})

	evicted := f.orchestrator.PruneDeadProcesses()
	if len(evicted) != 1 || evicted[0] != deadPID {
		t.Errorf("PruneDeadProcesses = %v, want [%d]", evicted, deadPID)
	}
	if _, ok := f.orchestrator.ProcessTelemetry(os.Getpid()); !ok {
		t.Error("prune evicted a live process's telemetry")
	}
	if _, ok := f.orchestrator.ProcessTelemetry(deadPID); ok {
		t.Error("prune left a dead process's telemetry in place")
	}
}

func TestStubProgramResolvesOnExternalTermination(t *testing.T) {
	f := newFixture(t, t.TempDir(), resolvedRuntime())

	if err := f.orchestrator.Configure(context.Background(), RunData{ServerAddress: "/run/s.sock"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	program := f.orchestrator.Program()
	f.stub.Last().Terminate(nil)
	testutil.RequireClosed(t, program.Done(), 5*time.Second, "stub program completion")
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New with zero Config succeeded")
	}
}
