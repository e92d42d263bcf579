// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"sync"
)

// NewStub returns a Launcher whose programs never execute anything.
// The stub models "a session is active" for hosts where the terminal
// performs the real spawn: completion is resolved only when an
// external collaborator signals termination via [StubProgram.Terminate].
func NewStub() *StubLauncher {
	return &StubLauncher{}
}

// StubLauncher creates StubPrograms.
type StubLauncher struct {
	mu   sync.Mutex
	last *StubProgram
}

// Launch creates a stub program. No process is started and the call
// never fails.
func (l *StubLauncher) Launch(_ context.Context, _ Params) (Program, error) {
	program := newStubProgram()
	l.mu.Lock()
	l.last = program
	l.mu.Unlock()
	return program, nil
}

// Last returns the most recently launched stub program, or nil.
// Hosts use it to route an external termination notification to the
// active session.
func (l *StubLauncher) Last() *StubProgram {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// StubProgram is a Program whose completion is a one-shot signal
// resolved exactly once by an external termination notifier. There is
// no timeout and no cancellation: termination is purely event-driven
// from outside.
type StubProgram struct {
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	err error
}

func newStubProgram() *StubProgram {
	return &StubProgram{done: make(chan struct{})}
}

// Terminate resolves the program's completion with err (nil for a
// clean end). Subsequent calls are no-ops; the first caller wins.
func (p *StubProgram) Terminate(err error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		close(p.done)
	})
}

// Done returns the one-shot completion channel.
func (p *StubProgram) Done() <-chan struct{} { return p.done }

// Wait blocks until Terminate is called or ctx is done.
func (p *StubProgram) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error recorded by Terminate.
func (p *StubProgram) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
