// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import "context"

// Params describes what a program launch should look like. For the
// auto-attach path the params are carried through untouched; the
// host's terminal, not Tether, performs the real spawn.
type Params struct {
	// Command is the program to run.
	Command string `json:"command"`

	// Args are the program arguments.
	Args []string `json:"args,omitempty"`

	// Cwd is the working directory. Empty means the host's default.
	Cwd string `json:"cwd,omitempty"`

	// Env are additional environment variables for the program.
	Env map[string]string `json:"env,omitempty"`
}

// Launcher creates Program handles. Variants are selected by
// configuration data, never by subclassing: the auto-attach
// orchestrator always uses [NewStub] because the host spawns the real
// process; hosts that do launch directly use [NewProcess].
type Launcher interface {
	// Launch produces a Program for params. Implementations decide
	// whether anything actually executes.
	Launch(ctx context.Context, params Params) (Program, error)
}

// Program is a handle to a (possibly notional) running program.
type Program interface {
	// Done returns a channel closed exactly once when the program
	// terminates.
	Done() <-chan struct{}

	// Wait blocks until the program terminates or ctx is done. It
	// returns the termination error recorded by the program, or
	// ctx.Err() when the context wins.
	Wait(ctx context.Context) error

	// Err returns the recorded termination error. Only meaningful
	// after Done is closed.
	Err() error
}
