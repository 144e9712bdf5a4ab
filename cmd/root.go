// Package cmd implements the plugtrace Cobra command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "plugtrace",
	Short: "Trace-driven conformance harness for extension hosts",
	Long: `plugtrace - Trace-driven conformance harness for extension hosts

Replay a scripted sequence of commands against an extension host and
validate each response against an expected value tree. Expected trees may
embed the "ignore" marker anywhere to accept non-deterministic content
(timestamps, generated ids) at that position.

While a trace runs, queries the host sends back to the harness are answered
from the trace's pool of mock response records, falling back to
type-correct defaults.

Examples:
  # Run a single trace against an extension
  plugtrace run manifest.json --trace traces/playback.jsonc

  # Run every trace in a directory
  plugtrace run manifest.json --dir traces/

  # Check trace files without executing them
  plugtrace validate traces/*.yaml`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	rootCmd.SetVersionTemplate(fmt.Sprintf("plugtrace version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
}
