package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugtrace/plugtrace/internal/trace"
)

// ValidationResult represents the validation outcome for a single trace file.
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Commands int      `json:"commands"`
	Requests int      `json:"requests"`
	Errors   []string `json:"errors"`
}

var validateFormatFlag string

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate trace files without executing them",
	Long: `Validate one or more trace files without running them against a host.

Checks format support (json, jsonc, yaml, yml), structural decoding, that
every step carries a registered command or event kind and every mock record
a registered command kind, and that command payloads match their kind's
declared shape.

Does not start a host or modify any state.

Exit code 0 if all files are valid, 1 if any file has errors.

Formats:
  text   Human-readable output to stderr (default)
  json   Structured JSON to stdout

Examples:
  plugtrace validate traces/playback.jsonc
  plugtrace validate a.yaml b.json c.jsonc
  plugtrace validate --format json traces/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	validateCmd.Flags().StringVar(&validateFormatFlag, "format", "text",
		"Output format: text, json")
	rootCmd.AddCommand(validateCmd)
}

// runValidate iterates over file args, validates each independently, and
// outputs results in the chosen format.
func runValidate(_ *cobra.Command, args []string) error {
	format := strings.ToLower(validateFormatFlag)
	switch format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("invalid format %q: valid values are text, json", validateFormatFlag)
	}

	var results []ValidationResult
	hasErrors := false

	for _, path := range args {
		result := validateFile(path)
		results = append(results, result)
		if !result.Valid {
			hasErrors = true
		}
	}

	switch format {
	case "text":
		formatValidateText(results)
	case "json":
		if err := formatValidateJSON(results); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	}

	if hasErrors {
		os.Exit(1)
	}

	return nil
}

// validateFile validates a single trace file and returns a ValidationResult.
func validateFile(path string) ValidationResult {
	def, err := trace.LoadFile(path)
	if err != nil {
		return ValidationResult{
			File:   path,
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}

	return ValidationResult{
		File:     path,
		Valid:    true,
		Commands: len(def.Commands),
		Requests: len(def.Requests),
		Errors:   []string{},
	}
}

// formatValidateText writes human-readable validation results to stderr.
func formatValidateText(results []ValidationResult) {
	validCount := 0
	for _, r := range results {
		if r.Valid {
			validCount++
			fmt.Fprintf(os.Stderr, "✓ %s: valid (%d commands, %d requests)\n",
				r.File, r.Commands, r.Requests)
		} else {
			fmt.Fprintf(os.Stderr, "✗ %s:\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(os.Stderr, "  - %s\n", e)
			}
		}
	}

	if len(results) > 1 {
		fmt.Fprintf(os.Stderr, "\nResult: %d/%d files valid\n", validCount, len(results))
	}
}

// formatValidateJSON writes JSON-encoded validation results to stdout.
func formatValidateJSON(results []ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
