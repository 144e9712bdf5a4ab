// Package manifest validates extension manifests before a trace run.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the subset of an extension manifest the harness checks.
type Manifest struct {
	Name               string `json:"name"`
	PackageName        string `json:"packageName"`
	Version            string `json:"version,omitempty"`
	PlugtraceExtension bool   `json:"plugtraceExtension"`
	ExtensionEntry     string `json:"extensionEntry"`
}

// Validate loads and checks the manifest at the given path: it must exist,
// decode, declare itself a plugtrace extension, and point at an extension
// entry that exists (resolved relative to the manifest directory).
func Validate(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // manifest path comes from user input, expected behavior
	if err != nil {
		return nil, fmt.Errorf("manifest does not exist at path %q: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to validate manifest: %w", err)
	}

	if !m.PlugtraceExtension {
		return nil, fmt.Errorf("manifest %q is not a plugtrace extension", path)
	}

	entry := m.ExtensionEntry
	if entry == "" {
		return nil, fmt.Errorf("manifest %q has no extension entry", path)
	}
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(filepath.Dir(path), entry)
	}
	if _, err := os.Stat(entry); err != nil {
		return nil, fmt.Errorf("extension entry %q defined in manifest does not exist: %w", m.ExtensionEntry, err)
	}

	return &m, nil
}
