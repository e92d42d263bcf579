// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development and iteration; staging of
	// the bootstrap artifact is skipped in favor of the in-repo copy.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Tether.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Paths configures directory and file locations.
	Paths PathsConfig `yaml:"paths"`

	// AutoAttach configures the auto-attach orchestrator.
	AutoAttach AutoAttachConfig `yaml:"auto_attach"`

	// Per-environment overrides, applied after the base config is
	// loaded when the Environment matches.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Paths      *PathsConfig      `yaml:"paths,omitempty"`
	AutoAttach *AutoAttachConfig `yaml:"auto_attach,omitempty"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// StorageRoot is the persistent storage directory for the staged
	// bootstrap artifact. Stable across host version upgrades.
	StorageRoot string `yaml:"storage_root"`

	// ArtifactSource is the canonical bootstrap artifact path.
	ArtifactSource string `yaml:"artifact_source"`

	// LaunchConfig is the JSONC launch-configuration file.
	LaunchConfig string `yaml:"launch_config"`
}

// AutoAttachConfig configures the orchestrator.
type AutoAttachConfig struct {
	// Mode is the attach policy: always, smart, onlyWithFlag, or
	// disabled.
	Mode string `yaml:"mode"`

	// Runtime is the interpreter binary probed for capability flags
	// (bare name resolved via PATH, or an absolute path).
	Runtime string `yaml:"runtime"`

	// ServerAddress is the IPC address of the host's inspector
	// server.
	ServerAddress string `yaml:"server_address"`
}

// Default returns the default configuration. The defaults ensure all
// fields have sensible zero-values before the config file is merged
// in; the file remains the source of truth.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "tether")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			StorageRoot:    defaultRoot,
			ArtifactSource: filepath.Join(defaultRoot, "src", "bootloader-stub"),
			LaunchConfig:   filepath.Join(defaultRoot, "launch.jsonc"),
		},
		AutoAttach: AutoAttachConfig{
			Mode:          "smart",
			Runtime:       "node",
			ServerAddress: "/run/tether/inspector.sock",
		},
	}
}

// Load loads configuration from the file named by the TETHER_CONFIG
// environment variable. There are no fallbacks or automatic
// discovery: configuration stays deterministic and auditable, with no
// hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("TETHER_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("TETHER_CONFIG environment variable not set; " +
			"set it to the path of your tether.yaml config file, or use --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies
// environment-specific overrides, and expands ${HOME} in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// DevMode reports whether the configuration selects development
// iteration behavior (the stager uses the canonical artifact in
// place, without copying).
func (c *Config) DevMode() bool {
	return c.Environment == Development
}

// applyEnvironmentOverrides merges the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}
	if overrides.Paths != nil {
		mergePaths(&c.Paths, overrides.Paths)
	}
	if overrides.AutoAttach != nil {
		mergeAutoAttach(&c.AutoAttach, overrides.AutoAttach)
	}
}

func mergePaths(base, override *PathsConfig) {
	if override.StorageRoot != "" {
		base.StorageRoot = override.StorageRoot
	}
	if override.ArtifactSource != "" {
		base.ArtifactSource = override.ArtifactSource
	}
	if override.LaunchConfig != "" {
		base.LaunchConfig = override.LaunchConfig
	}
}

func mergeAutoAttach(base, override *AutoAttachConfig) {
	if override.Mode != "" {
		base.Mode = override.Mode
	}
	if override.Runtime != "" {
		base.Runtime = override.Runtime
	}
	if override.ServerAddress != "" {
		base.ServerAddress = override.ServerAddress
	}
}

// expandVariables expands ${HOME} in path fields for portability.
func (c *Config) expandVariables() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return
	}
	expand := func(path string) string {
		return strings.ReplaceAll(path, "${HOME}", homeDir)
	}
	c.Paths.StorageRoot = expand(c.Paths.StorageRoot)
	c.Paths.ArtifactSource = expand(c.Paths.ArtifactSource)
	c.Paths.LaunchConfig = expand(c.Paths.LaunchConfig)
}
