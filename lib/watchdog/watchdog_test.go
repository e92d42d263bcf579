// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tether-foundation/tether/lib/clock"
	"github.com/tether-foundation/tether/lib/codec"
	"github.com/tether-foundation/tether/lib/testutil"
)

func testDialer() *Dialer {
	return &Dialer{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock.Real(),
	}
}

// listen opens a Unix socket in a short-path temp dir and returns its
// address plus a channel delivering accepted connections.
func listen(t *testing.T) (string, <-chan net.Conn) {
	t.Helper()
	address := filepath.Join(testutil.SocketDir(t), "ipc.sock")
	listener, err := net.Listen("unix", address)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		connection, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- connection
	}()
	return address, accepted
}

func TestAttachSendsHello(t *testing.T) {
	address, accepted := listen(t)
	dialer := testDialer()

	handle := dialer.Attach(context.Background(), address, ChildInfo{PID: 1234, Command: "node server.js"})
	if handle.Missed() {
		t.Fatal("handshake missed against a live endpoint")
	}

	connection := testutil.RequireReceive(t, accepted, 5*time.Second, "accepting handshake")
	defer connection.Close()

	var frame hello
	if err := codec.NewDecoder(connection).Decode(&frame); err != nil {
		t.Fatalf("decoding hello: %v", err)
	}
	if frame.PID != 1234 {
		t.Errorf("hello PID = %d, want 1234", frame.PID)
	}
	if frame.Command != "node server.js" {
		t.Errorf("hello Command = %q", frame.Command)
	}
	if frame.Session != handle.Session() {
		t.Errorf("hello Session = %q, handle Session = %q", frame.Session, handle.Session())
	}
	if frame.Session == "" {
		t.Error("hello Session is empty")
	}
}

func TestOnEndFiresOnceOnChannelClosure(t *testing.T) {
	address, accepted := listen(t)
	dialer := testDialer()

	handle := dialer.Attach(context.Background(), address, ChildInfo{PID: 99})
	connection := testutil.RequireReceive(t, accepted, 5*time.Second, "accepting handshake")

	var fired atomic.Int32
	ended := make(chan struct{})
	handle.OnEnd(func() {
		fired.Add(1)
		close(ended)
	})

	connection.Close()
	testutil.RequireClosed(t, ended, 5*time.Second, "end callback")

	// Racing late registration still runs exactly once, immediately.
	late := make(chan struct{})
	handle.OnEnd(func() { close(late) })
	testutil.RequireClosed(t, late, 5*time.Second, "late end callback")

	if fired.Load() != 1 {
		t.Errorf("first callback fired %d times, want 1", fired.Load())
	}
}

func TestAttachStaleAddressMissesSilently(t *testing.T) {
	dialer := testDialer()
	staleAddress := filepath.Join(testutil.SocketDir(t), "gone.sock")

	handle := dialer.Attach(context.Background(), staleAddress, ChildInfo{PID: 7})
	if !handle.Missed() {
		t.Fatal("Missed = false for a dead endpoint")
	}

	// Attach returned synchronously with no watcher goroutine, so a
	// callback registered now can never fire.
	fired := false
	handle.OnEnd(func() { fired = true })
	if fired {
		t.Error("end callback fired on a missed handshake")
	}
}

func TestAttachHonorsContext(t *testing.T) {
	dialer := testDialer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handle := dialer.Attach(ctx, filepath.Join(testutil.SocketDir(t), "any.sock"), ChildInfo{PID: 1})
	if !handle.Missed() {
		t.Error("Missed = false with a cancelled context")
	}
}
