package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugtrace/plugtrace/internal/host"
	"github.com/plugtrace/plugtrace/internal/manifest"
	"github.com/plugtrace/plugtrace/internal/runlog"
	"github.com/plugtrace/plugtrace/internal/sequencer"
	"github.com/plugtrace/plugtrace/internal/trace"
)

var (
	runTraceFlag        string
	runDirFlag          string
	runRunnerFlag       string
	runReadyTimeoutFlag time.Duration
	runPollIntervalFlag time.Duration
	runVerboseFlag      int
)

var runCmd = &cobra.Command{
	Use:   "run <manifest.json>",
	Short: "Replay traces against an extension host",
	Long: `Replay one trace file, or every trace in a directory, against the
extension described by the manifest.

The manifest is validated before anything runs. For each trace the harness
starts a fresh host session, waits until the host reports at least one
extension and all extensions active, then sends the trace's commands in
order. Each response is validated against the step's expected tree; the
"ignore" marker accepts any value at its position. The run stops at the
first failing step.

Inbound host queries are answered from the trace's mock record pool.
Diagnostic logs are buffered and printed only when a trace fails; pass -v
to stream them instead.

Examples:
  plugtrace run manifest.json --trace traces/playback.jsonc
  plugtrace run manifest.json --dir traces/
  plugtrace run manifest.json --trace t.yaml --ready-timeout 30s -v`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	runCmd.Flags().StringVarP(&runTraceFlag, "trace", "t", "", "Path to a single trace file")
	runCmd.Flags().StringVarP(&runDirFlag, "dir", "d", "./traces", "Directory of trace files")
	runCmd.Flags().StringVar(&runRunnerFlag, "runner", "plugtrace-host", "Extension host binary to launch")
	runCmd.Flags().DurationVar(&runReadyTimeoutFlag, "ready-timeout", 60*time.Second, "Max wait for the host to become ready (0 = wait forever)")
	runCmd.Flags().DurationVar(&runPollIntervalFlag, "poll-interval", time.Second, "Sleep between readiness polls")
	runCmd.Flags().CountVarP(&runVerboseFlag, "verbose", "v", "Stream diagnostic logs instead of buffering them")
	runCmd.MarkFlagsMutuallyExclusive("trace", "dir")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	color := runlog.ResolveColor()
	fmt.Fprintln(os.Stderr, runlog.Green("=== Starting plugtrace conformance run ===", color))

	if _, err := manifest.Validate(manifestPath); err != nil {
		return err
	}

	files, err := collectTraceFiles()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newHost := func(run *runlog.Run) sequencer.HostFactory {
		return func(ctx context.Context, responder host.Responder) (host.Host, error) {
			return host.StartProc(ctx, runRunnerFlag, []string{manifestPath}, responder, run.Logger())
		}
	}

	err = runTraces(ctx, files, func(ctx context.Context, file string) error {
		return runTrace(ctx, file, newHost, os.Stderr)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, runlog.Green("\n=== All traces completed successfully ===", color))
	return nil
}

// runTraces executes traces sequentially in the given order, stopping at
// the first failure: traces after a failing one never start.
func runTraces(ctx context.Context, files []string, runOne func(context.Context, string) error) error {
	for _, file := range files {
		if err := runOne(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// collectTraceFiles resolves the set of traces to run: the explicit --trace
// file, or every recognized trace file under --dir in walk order.
func collectTraceFiles() ([]string, error) {
	if runTraceFlag != "" {
		return []string{runTraceFlag}, nil
	}

	info, err := os.Stat(runDirFlag)
	if err != nil {
		return nil, fmt.Errorf("traces directory %q does not exist: %w", runDirFlag, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("traces path %q is not a directory", runDirFlag)
	}

	var files []string
	err = filepath.WalkDir(runDirFlag, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && trace.IsTraceFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan traces directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no trace files found in %q", runDirFlag)
	}
	return files, nil
}

// runTrace executes one trace with its own run context and host session.
// On failure the buffered diagnostics are flushed before the error is
// rendered, so extension output is visible exactly when it matters.
func runTrace(ctx context.Context, file string, newHost func(*runlog.Run) sequencer.HostFactory, out io.Writer) error {
	run := runlog.New(runVerboseFlag, out)

	seq := sequencer.New(newHost(run), run, sequencer.Options{
		PollInterval: runPollIntervalFlag,
		ReadyTimeout: runReadyTimeoutFlag,
		Provider:     sequencer.NewTerminalProvider(os.Stdin, os.Stderr),
	})

	err := seq.Execute(ctx, file)
	if err == nil {
		return nil
	}

	run.StopWaiting()
	fmt.Fprintln(out, "\n=== Extension output ===")
	run.FlushDiagnostics()
	fmt.Fprintln(out, "=== End extension output ===")

	var stepErr *sequencer.StepError
	if errors.As(err, &stepErr) {
		fmt.Fprintln(out, sequencer.FormatStepError(stepErr, run.Color))
		return fmt.Errorf("trace %s failed at step %d/%d", file, stepErr.Index+1, stepErr.Total)
	}

	fmt.Fprintln(out, runlog.Red(err.Error(), run.Color))
	return fmt.Errorf("trace %s failed", file)
}
