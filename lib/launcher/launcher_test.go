// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tether-foundation/tether/lib/testutil"
)

func TestStubProgramTerminatesOnce(t *testing.T) {
	stub := NewStub()
	program, err := stub.Launch(context.Background(), Params{Command: "node", Args: []string{"server.js"}})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	select {
	case <-program.Done():
		t.Fatal("Done closed before Terminate")
	default:
	}

	terminationErr := errors.New("exit status 3")
	stub.Last().Terminate(terminationErr)
	stub.Last().Terminate(nil) // second call loses

	testutil.RequireClosed(t, program.Done(), 5*time.Second, "program done")
	if !errors.Is(program.Err(), terminationErr) {
		t.Errorf("Err = %v, want the first Terminate's error", program.Err())
	}
}

func TestStubProgramWaitUnblocksAllWaiters(t *testing.T) {
	stub := NewStub()
	program, _ := stub.Launch(context.Background(), Params{})

	results := make(chan error, 3)
	var group sync.WaitGroup
	for n := 0; n < 3; n++ {
		group.Add(1)
		go func() {
			defer group.Done()
			results <- program.Wait(context.Background())
		}()
	}

	stub.Last().Terminate(nil)
	group.Wait()
	close(results)
	for err := range results {
		if err != nil {
			t.Errorf("Wait = %v, want nil", err)
		}
	}
}

func TestStubProgramWaitHonorsContext(t *testing.T) {
	stub := NewStub()
	program, _ := stub.Launch(context.Background(), Params{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := program.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
}

func TestProcessLauncherRunsCommand(t *testing.T) {
	process := NewProcess()
	program, err := process.Launch(context.Background(), Params{Command: "true"})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	testutil.RequireClosed(t, program.Done(), 5*time.Second, "process exit")
	if err := program.Err(); err != nil {
		t.Errorf("Err = %v, want nil for exit 0", err)
	}
}

func TestProcessLauncherReportsFailure(t *testing.T) {
	process := NewProcess()
	program, err := process.Launch(context.Background(), Params{Command: "false"})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if err := program.Wait(context.Background()); err == nil {
		t.Error("Wait = nil, want non-zero exit error")
	}
}

func TestProcessLauncherMissingBinary(t *testing.T) {
	process := NewProcess()
	if _, err := process.Launch(context.Background(), Params{Command: "/no/such/binary"}); err == nil {
		t.Error("Launch with missing binary succeeded")
	}
}
