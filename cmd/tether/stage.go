// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tether-foundation/tether/cmd/tether/cli"
	"github.com/tether-foundation/tether/lib/bootloader"
	"github.com/tether-foundation/tether/lib/runtimeinfo"
)

func stageCommand() *cli.Command {
	var configPath string
	var storageRoot string
	var source string

	return &cli.Command{
		Name:    "stage",
		Summary: "Stage the bootloader artifact into persistent storage.",
		Description: "stage copies the canonical bootloader artifact into the\n" +
			"configured storage root and prints the launch-command path of\n" +
			"the staged copy. In development environments the canonical\n" +
			"artifact is used in place without copying.",
		Examples: []cli.Example{
			{
				Description: "Stage using the configured paths",
				Command:     "tether stage --config ~/.config/tether.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("stage", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "",
				"config file path (defaults to $TETHER_CONFIG)")
			flags.StringVar(&storageRoot, "storage-root", "",
				"override the configured storage root")
			flags.StringVar(&source, "source", "",
				"override the configured canonical artifact path")
			return flags
		},
		Run: func(args []string) error {
			return runStage(configPath, storageRoot, source)
		},
	}
}

func runStage(configPath, storageRoot, source string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if storageRoot == "" {
		storageRoot = cfg.Paths.StorageRoot
	}
	if source == "" {
		source = cfg.Paths.ArtifactSource
	}

	logger := cli.NewCommandLogger().With("command", "stage")
	stager := &bootloader.Stager{
		Source:  source,
		DevMode: cfg.DevMode(),
		Logger:  logger,
	}
	runtime := runtimeinfo.Detect(cfg.AutoAttach.Runtime)

	staged, err := stager.Stage(context.Background(), storageRoot, runtime)
	if err != nil {
		var precondition *bootloader.PreconditionError
		if errors.As(err, &precondition) {
			return fmt.Errorf("%s\n  remediation: %s", precondition.Reason, precondition.Remediation)
		}
		return err
	}
	defer staged.Release()

	fmt.Println(staged.Path)
	return nil
}
