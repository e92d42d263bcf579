// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package bootloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tether-foundation/tether/lib/binhash"
	"github.com/tether-foundation/tether/lib/runtimeinfo"
)

// ArtifactName is the stable, version-independent filename of the
// staged bootstrap artifact. Host upgrades replace the artifact's
// content but never its path, so environment variables published by
// an older host remain valid.
const ArtifactName = "bootloader-stub"

// Stager copies the canonical bootstrap artifact to a persistent
// storage location that survives host version upgrades.
type Stager struct {
	// Source is the canonical artifact path. It is a build-time
	// constant of the host, injected here rather than discovered.
	Source string

	// DevMode short-circuits staging during development iteration:
	// the canonical in-repo artifact is used directly, with no copy.
	DevMode bool

	// Logger receives staging progress. Required.
	Logger *slog.Logger
}

// StageResult is the outcome of a successful Stage call.
type StageResult struct {
	// Path is the artifact path in the form embedded into launch
	// commands: canonical forward-slash separators, wrapped in quotes
	// when it contains whitespace. Use [Unquote] to recover the bare
	// filesystem path.
	Path string

	// Release must be invoked on every exit path once the caller no
	// longer needs the staged artifact. Currently a no-op, reserved
	// for future cleanup.
	Release func()
}

// Stage ensures a runnable bootstrap artifact exists under
// storageRoot and returns its launch-command path.
//
// When storageRoot contains whitespace, staging requires a precisely
// resolved runtime with quoted-path support; otherwise it fails with
// a *PreconditionError before any filesystem work. The copy is
// unconditional: prior copies are overwritten without content
// comparison, which keeps repeated staging coarsely idempotent.
func (s *Stager) Stage(ctx context.Context, storageRoot string, runtime *runtimeinfo.Descriptor) (*StageResult, error) {
	release := func() {}

	if s.DevMode {
		s.Logger.Debug("development mode, using canonical artifact in place",
			"source", s.Source,
		)
		return &StageResult{Path: commandPath(s.Source), Release: release}, nil
	}

	if containsWhitespace(storageRoot) {
		if !runtime.Resolved() {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("storage path %q contains whitespace but the runtime location is not precisely resolved", storageRoot),
				Remediation: "point the runtime setting at an absolute interpreter path, or move the storage directory to a whitespace-free path",
			}
		}
		if !runtime.Has(runtimeinfo.CapQuotedPaths) {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("storage path %q contains whitespace but runtime %s does not support quoted paths", storageRoot, runtime.Path),
				Remediation: "upgrade the runtime, or move the storage directory to a whitespace-free path",
			}
		}
	}

	// MkdirAll treats an existing directory as success; any other
	// creation failure propagates.
	if err := os.MkdirAll(storageRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", storageRoot, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	destination := filepath.Join(storageRoot, ArtifactName)
	if err := copyFile(s.Source, destination); err != nil {
		return nil, err
	}

	s.Logger.Info("staged bootloader artifact",
		"source", s.Source,
		"path", destination,
	)
	return &StageResult{Path: commandPath(destination), Release: release}, nil
}

// Verify reports whether the staged artifact at path is a
// byte-for-byte copy of the canonical source. Never called by Stage;
// it serves diagnostic surfaces like the CLI status command.
func (s *Stager) Verify(path string) (bool, error) {
	stagedDigest, err := binhash.HashFile(Unquote(path))
	if err != nil {
		return false, err
	}
	sourceDigest, err := binhash.HashFile(s.Source)
	if err != nil {
		return false, err
	}
	return stagedDigest == sourceDigest, nil
}

// Unquote strips the quote wrapping applied to whitespace-containing
// paths, recovering the bare filesystem path.
func Unquote(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		return path[1 : len(path)-1]
	}
	return path
}

// commandPath normalizes a filesystem path for embedding in a launch
// command: canonical forward-slash separators, quoted when it
// contains whitespace.
func commandPath(path string) string {
	normalized := filepath.ToSlash(path)
	if containsWhitespace(normalized) {
		return `"` + normalized + `"`
	}
	return normalized
}

func containsWhitespace(path string) bool {
	return strings.ContainsAny(path, " \t")
}

// copyFile copies source to destination, truncating any previous
// copy. The destination is created executable; the artifact is run
// directly by spawned processes.
func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening canonical artifact %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("creating staged artifact %s: %w", destination, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying artifact to %s: %w", destination, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing staged artifact %s: %w", destination, err)
	}
	return nil
}
