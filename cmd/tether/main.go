// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

// Command tether is the operator CLI for the auto-attach toolchain:
// inspecting the published environment protocol, staging the
// bootloader artifact, and clearing instrumentation from the current
// environment.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tether-foundation/tether/cmd/tether/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := &cli.Command{
		Name:    "tether",
		Summary: "Debugger auto-attach orchestration toolchain.",
		Description: "tether manages the debugger auto-attach protocol: the\n" +
			"environment variables published to child processes, the staged\n" +
			"bootloader artifact they load, and the telemetry reported back\n" +
			"by attached children.",
		Subcommands: []*cli.Command{
			statusCommand(),
			stageCommand(),
			runCommand(),
			clearCommand(),
			versionCommand(),
		},
	}

	if err := root.Execute(args); err != nil {
		// ExitError carries a deliberate exit code; the command has
		// already produced its own output.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "tether: %v\n", err)
		return 1
	}
	return 0
}
