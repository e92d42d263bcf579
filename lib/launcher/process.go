// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// NewProcess returns a Launcher that executes params.Command as a
// real child process. Hosts that launch programs themselves (rather
// than through a terminal) select this variant in configuration; the
// auto-attach orchestrator never does.
func NewProcess() *ProcessLauncher {
	return &ProcessLauncher{}
}

// ProcessLauncher launches real processes via os/exec.
type ProcessLauncher struct{}

// Launch starts the process and returns a Program that completes when
// it exits.
func (ProcessLauncher) Launch(ctx context.Context, params Params) (Program, error) {
	command := exec.CommandContext(ctx, params.Command, params.Args...)
	command.Dir = params.Cwd
	command.Env = os.Environ()
	for key, value := range params.Env {
		command.Env = append(command.Env, key+"="+value)
	}

	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", params.Command, err)
	}

	program := &processProgram{done: make(chan struct{})}
	go func() {
		err := command.Wait()
		program.mu.Lock()
		program.err = err
		program.mu.Unlock()
		close(program.done)
	}()
	return program, nil
}

type processProgram struct {
	done chan struct{}

	mu  sync.Mutex
	err error
}

func (p *processProgram) Done() <-chan struct{} { return p.done }

func (p *processProgram) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *processProgram) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
