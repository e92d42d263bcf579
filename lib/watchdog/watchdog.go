// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tether-foundation/tether/lib/clock"
	"github.com/tether-foundation/tether/lib/codec"
)

// DefaultDialTimeout bounds handshake establishment. A spawned
// process that captured a stale address should fail fast, not stall a
// host event handler.
const DefaultDialTimeout = 5 * time.Second

// ChildInfo identifies the spawned process a handshake represents.
type ChildInfo struct {
	// PID is the reported process id.
	PID int

	// Command is the command line the child reported, when known.
	// Diagnostic only.
	Command string
}

// hello is the CBOR frame written to the IPC endpoint immediately
// after connecting. The orchestrator's server side uses it to pair
// the connection with a spawn notification.
type hello struct {
	Session    string    `cbor:"session"`
	PID        int       `cbor:"pid"`
	Command    string    `cbor:"command,omitempty"`
	ReportedAt time.Time `cbor:"reported_at"`
}

// Dialer establishes watchdog handshakes against IPC addresses.
type Dialer struct {
	// Logger receives handshake outcomes. Required.
	Logger *slog.Logger

	// Clock supplies deadlines and the hello timestamp. Required.
	Clock clock.Clock

	// DialTimeout overrides DefaultDialTimeout when positive.
	DialTimeout time.Duration
}

// Attach establishes a logical watchdog session against ipcAddress (a
// Unix socket path). No process is spawned; only a connection is
// opened and a hello frame written.
//
// Attach never returns an error. The link is fire-and-forget,
// best-effort: when ipcAddress no longer corresponds to a live
// endpoint (the orchestrator may have reconfigured since the child
// captured its environment) the handshake misses silently and the
// returned handle reports Missed. A missed handle's end callbacks
// never fire.
func (d *Dialer) Attach(ctx context.Context, ipcAddress string, info ChildInfo) *Handle {
	handle := &Handle{session: uuid.NewString(), pid: info.PID}

	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	connection, err := dialer.DialContext(ctx, "unix", ipcAddress)
	if err != nil {
		// Stale or never-promoted endpoint. Logged at debug only:
		// auto-attach is a convenience layer and a miss must not
		// alarm the user.
		d.Logger.Debug("watchdog handshake missed",
			"address", ipcAddress,
			"pid", info.PID,
			"error", err,
		)
		handle.missed = true
		return handle
	}

	_ = connection.SetWriteDeadline(d.Clock.Now().Add(timeout))
	frame := hello{
		Session:    handle.session,
		PID:        info.PID,
		Command:    info.Command,
		ReportedAt: d.Clock.Now(),
	}
	if err := codec.NewEncoder(connection).Encode(frame); err != nil {
		d.Logger.Debug("watchdog hello rejected",
			"address", ipcAddress,
			"pid", info.PID,
			"error", err,
		)
		connection.Close()
		handle.missed = true
		return handle
	}
	_ = connection.SetWriteDeadline(time.Time{})

	d.Logger.Debug("watchdog handshake established",
		"address", ipcAddress,
		"pid", info.PID,
		"session", handle.session,
	)

	go handle.watch(connection)
	return handle
}

// Handle is a live (or missed) watchdog session. It exposes a
// single-fire termination notification: every callback registered via
// OnEnd runs exactly once, after the underlying channel ends.
type Handle struct {
	session string
	pid     int
	missed  bool

	mu        sync.Mutex
	ended     bool
	callbacks []func()
}

// Session is the unique id assigned to this handshake.
func (h *Handle) Session() string { return h.session }

// PID is the process id this handshake represents.
func (h *Handle) PID() int { return h.pid }

// Missed reports whether the handshake failed to connect. Missed
// handles never fire their end callbacks.
func (h *Handle) Missed() bool { return h.missed }

// OnEnd registers a callback invoked exactly once when the underlying
// process or channel ends. A callback registered after the end has
// already occurred runs immediately.
func (h *Handle) OnEnd(callback func()) {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		callback()
		return
	}
	h.callbacks = append(h.callbacks, callback)
	h.mu.Unlock()
}

// watch drains the connection until the peer closes it (process exit
// tears down the socket) or a read error occurs, then fires the end
// event.
func (h *Handle) watch(connection net.Conn) {
	_, _ = io.Copy(io.Discard, connection)
	connection.Close()
	h.end()
}

// end fires registered callbacks exactly once.
func (h *Handle) end() {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		return
	}
	h.ended = true
	callbacks := h.callbacks
	h.callbacks = nil
	h.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}
