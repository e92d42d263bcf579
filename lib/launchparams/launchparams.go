// Copyright 2026 The Tether Authors
// SPDX-License-Identifier: Apache-2.0

package launchparams

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/tether-foundation/tether/lib/launcher"
)

// File is a launch-configuration document: a named set of launch
// parameter entries authored by the user.
type File struct {
	// Configurations are the named launch entries.
	Configurations []Entry `json:"configurations"`
}

// Entry is one named launch configuration.
type Entry struct {
	// Name identifies the entry for selection.
	Name string `json:"name"`

	launcher.Params
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result. Launch-configuration files are authored by
// hand, so the lenient format (// line comments, /* block comments */,
// trailing commas) is the expected input.
func Parse(data []byte) (*File, error) {
	stripped := jsonc.ToJSON(data)

	var file File
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("parsing launch configuration: %w", err)
	}
	return &file, nil
}

// ReadFile reads and parses a JSONC launch-configuration file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Find returns the entry with the given name, or false when absent.
func (f *File) Find(name string) (Entry, bool) {
	for _, entry := range f.Configurations {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}
