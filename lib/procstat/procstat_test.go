// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package procstat

import (
	"os"
	"os/exec"
	"testing"
)

func TestAliveSelf(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Error("Alive(self) = false")
	}
}

func TestAliveInvalidPID(t *testing.T) {
	if Alive(0) {
		t.Error("Alive(0) = true")
	}
	if Alive(-1) {
		t.Error("Alive(-1) = true")
	}
}

func TestAliveExitedProcess(t *testing.T) {
	command := exec.Command("true")
	if err := command.Run(); err != nil {
		t.Fatalf("running child: %v", err)
	}
	// Run has reaped the child; its pid no longer exists (barring
	// reuse, which is vanishingly unlikely within one test).
	if Alive(command.Process.Pid) {
		t.Error("Alive(reaped child) = true")
	}
}
