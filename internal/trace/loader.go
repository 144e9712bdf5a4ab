package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions recognized as trace documents.
var Extensions = []string{".json", ".jsonc", ".yaml", ".yml"}

// IsTraceFile reports whether a path has a recognized trace extension.
func IsTraceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile loads a trace definition from the given file path. The format is
// chosen by extension: .json/.jsonc documents may contain comments and
// trailing commas and are standardized before decoding; .yaml/.yml documents
// are decoded with yaml. All payload trees are normalized to their JSON
// representation so comparisons are insensitive to the source format.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // trace path comes from user input, expected behavior
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var def *Definition
	switch ext {
	case ".json", ".jsonc":
		def, err = loadJSON(data)
	case ".yaml", ".yml":
		def, err = loadYAML(data)
	default:
		return nil, fmt.Errorf("unsupported trace file extension %q (expected one of %s)",
			ext, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace %s: %w", path, err)
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trace %s: %w", path, err)
	}

	return def, nil
}

// loadJSON strips comments and trailing commas, then decodes.
func loadJSON(data []byte) (*Definition, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to standardize JSON: %w", err)
	}
	var def Definition
	if err := json.Unmarshal(std, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// loadYAML decodes to a generic tree first and round-trips it through JSON
// so that numbers and nested maps match the JSON-decoded form byte for byte.
func loadYAML(data []byte) (*Definition, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize YAML document: %w", err)
	}
	var def Definition
	if err := json.Unmarshal(normalized, &def); err != nil {
		return nil, err
	}
	return &def, nil
}
