// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tether-foundation/tether/cmd/tether/cli"
	"github.com/tether-foundation/tether/lib/bootloader"
	"github.com/tether-foundation/tether/lib/config"
	"github.com/tether-foundation/tether/lib/envproto"
	"github.com/tether-foundation/tether/lib/envstate"
)

func statusCommand() *cli.Command {
	var configPath string
	var verify bool

	return &cli.Command{
		Name:    "status",
		Summary: "Show the auto-attach protocol published in this environment.",
		Description: "status decodes the auto-attach environment variables inherited\n" +
			"by this process and prints each published session layer. Run it\n" +
			"inside an instrumented shell or terminal to see what spawned\n" +
			"processes would observe.\n\n" +
			"Exits 1 when no auto-attach protocol is published.",
		Examples: []cli.Example{
			{
				Description: "Inspect the current environment",
				Command:     "tether status",
			},
			{
				Description: "Also verify the staged bootloader artifact",
				Command:     "tether status --verify --config ~/.config/tether.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "",
				"config file path (defaults to $TETHER_CONFIG)")
			flags.BoolVar(&verify, "verify", false,
				"verify the staged bootloader artifact against the canonical source")
			return flags
		},
		Run: func(args []string) error {
			return runStatus(configPath, verify)
		},
	}
}

func runStatus(configPath string, verify bool) error {
	env := envstate.ProcessStore{}

	launch, _ := env.Get(envproto.LaunchOptionsVariable)
	inspector, _ := env.Get(envproto.InspectorOptionsVariable)
	segments, published := envproto.Decode(inspector)

	if !published && launch == "" {
		fmt.Println("auto-attach: not configured")
		return &cli.ExitError{Code: 1}
	}

	if launch != "" {
		fmt.Printf("launch options: %s\n", launch)
	}
	for i, segment := range segments {
		fmt.Printf("session layer %d:\n", i+1)
		fmt.Printf("  inspector ipc: %s\n", segment.InspectorIPC)
		fmt.Printf("  deferred:      %v\n", segment.Deferred)
		fmt.Printf("  mode:          %s\n", segment.Mode)
		if segment.Deferred {
			fmt.Printf("  active addr:   %s\n", envproto.ActiveAddress(segment.InspectorIPC))
		}
	}

	if !verify {
		return nil
	}
	stagedPath, ok := stagedPathFromLaunch(launch)
	if !ok {
		return fmt.Errorf("cannot verify: no staged artifact in %s", envproto.LaunchOptionsVariable)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	stager := &bootloader.Stager{
		Source: cfg.Paths.ArtifactSource,
		Logger: cli.NewCommandLogger().With("command", "status"),
	}
	matches, err := stager.Verify(stagedPath)
	if err != nil {
		return fmt.Errorf("verifying staged artifact: %w", err)
	}
	if !matches {
		fmt.Printf("staged artifact:  STALE (differs from %s)\n", cfg.Paths.ArtifactSource)
		return &cli.ExitError{Code: 1}
	}
	fmt.Println("staged artifact:  ok")
	return nil
}

// stagedPathFromLaunch extracts the artifact path from the published
// launch options value ("--require <path>").
func stagedPathFromLaunch(launch string) (string, bool) {
	const prefix = "--require "
	if !strings.HasPrefix(launch, prefix) {
		return "", false
	}
	return strings.TrimPrefix(launch, prefix), true
}

// loadConfig resolves the configuration from an explicit --config path
// or the TETHER_CONFIG environment variable.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("TETHER_CONFIG") == "" {
		return nil, fmt.Errorf("no config: pass --config or set TETHER_CONFIG")
	}
	return config.Load()
}
