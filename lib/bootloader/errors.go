// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package bootloader

import "fmt"

// PreconditionError reports that staging cannot proceed safely. It is
// fatal for the current configuration attempt and user-facing: Reason
// says what was violated, Remediation tells the user what to change.
//
// The canonical case is a storage path containing whitespace combined
// with a runtime whose quoting support cannot be established: staging
// there could produce a launch command that splits mid-path.
type PreconditionError struct {
	// Reason describes the violated precondition.
	Reason string

	// Remediation is actionable guidance shown to the user.
	Remediation string
}

func (e *PreconditionError) Error() string {
	if e.Remediation == "" {
		return fmt.Sprintf("bootloader staging precondition failed: %s", e.Reason)
	}
	return fmt.Sprintf("bootloader staging precondition failed: %s (%s)", e.Reason, e.Remediation)
}
