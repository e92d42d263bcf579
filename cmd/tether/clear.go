// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/tether-foundation/tether/cmd/tether/cli"
	"github.com/tether-foundation/tether/lib/envproto"
)

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:    "clear",
		Summary: "Emit shell commands that remove the auto-attach variables.",
		Description: "clear prints the unset statements for both auto-attach\n" +
			"environment variables. A child process cannot mutate its\n" +
			"parent's environment, so the output is evaluated by the shell\n" +
			"itself.",
		Examples: []cli.Example{
			{
				Description: "Remove auto-attach from the current shell",
				Command:     `eval "$(tether clear)"`,
			},
		},
		Run: func(args []string) error {
			fmt.Printf("unset %s\n", envproto.LaunchOptionsVariable)
			fmt.Printf("unset %s\n", envproto.InspectorOptionsVariable)
			return nil
		},
	}
}
