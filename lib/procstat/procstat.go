// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package procstat

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Alive reports whether a process with the given id currently exists.
// It sends signal 0, which performs the kernel's existence and
// permission checks without delivering anything. EPERM means the
// process exists but belongs to someone else, so it still counts as
// alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
