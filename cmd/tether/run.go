// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tether-foundation/tether/cmd/tether/cli"
	"github.com/tether-foundation/tether/lib/autoattach"
	"github.com/tether-foundation/tether/lib/bootloader"
	"github.com/tether-foundation/tether/lib/clock"
	"github.com/tether-foundation/tether/lib/envproto"
	"github.com/tether-foundation/tether/lib/envstate"
	"github.com/tether-foundation/tether/lib/launchparams"
	"github.com/tether-foundation/tether/lib/launcher"
	"github.com/tether-foundation/tether/lib/runtimeinfo"
	"github.com/tether-foundation/tether/lib/watchdog"
)

func runCommand() *cli.Command {
	var configPath string
	var launchConfig string

	return &cli.Command{
		Name:    "run",
		Summary: "Launch a named configuration with auto-attach published.",
		Usage:   "tether run <name> [flags]",
		Description: "run configures the auto-attach environment, launches the named\n" +
			"entry from the launch-configuration file, and waits for it to\n" +
			"exit. Processes spawned by the entry inherit the published\n" +
			"protocol and attach back to the configured inspector server.",
		Examples: []cli.Example{
			{
				Description: "Launch the \"api\" configuration",
				Command:     "tether run api --config ~/.config/tether.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "",
				"config file path (defaults to $TETHER_CONFIG)")
			flags.StringVar(&launchConfig, "launch-config", "",
				"override the configured launch-configuration file")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("run takes exactly one configuration name, got %d args", len(args))
			}
			return runLaunch(configPath, launchConfig, args[0])
		},
	}
}

func runLaunch(configPath, launchConfig, name string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if launchConfig == "" {
		launchConfig = cfg.Paths.LaunchConfig
	}

	file, err := launchparams.ReadFile(launchConfig)
	if err != nil {
		return err
	}
	entry, ok := file.Find(name)
	if !ok {
		return fmt.Errorf("launch configuration %q not found in %s", name, launchConfig)
	}

	logger := cli.NewCommandLogger().With("command", "run")
	orchestrator, err := autoattach.New(autoattach.Config{
		Env: envstate.ProcessStore{},
		Stager: &bootloader.Stager{
			Source:  cfg.Paths.ArtifactSource,
			DevMode: cfg.DevMode(),
			Logger:  logger,
		},
		StorageRoot: cfg.Paths.StorageRoot,
		Runtime:     runtimeinfo.Detect(cfg.AutoAttach.Runtime),
		Launcher:    launcher.NewProcess(),
		Dialer:      &watchdog.Dialer{Logger: logger, Clock: clock.Real()},
		Mode:        envproto.Mode(cfg.AutoAttach.Mode),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orchestrator.Configure(ctx, autoattach.RunData{
		ServerAddress: cfg.AutoAttach.ServerAddress,
		Params:        entry.Params,
	}); err != nil {
		return err
	}
	defer orchestrator.ClearVariables()

	if err := orchestrator.Program().Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
