package sequencer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plugtrace/plugtrace/internal/expect"
	"github.com/plugtrace/plugtrace/internal/runlog"
)

// StepError carries the first failure of a trace run: which step failed
// (1-based in rendered output), the command description, and the cause.
type StepError struct {
	File    string
	Index   int // 0-based
	Total   int
	Command string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("trace %s: step %d/%d (%s): %v",
		e.File, e.Index+1, e.Total, e.Command, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ReadyTimeoutError reports that the host never reached readiness within
// the configured wait.
type ReadyTimeoutError struct {
	Waited time.Duration
	Seen   []string
}

func (e *ReadyTimeoutError) Error() string {
	if len(e.Seen) == 0 {
		return fmt.Sprintf("host did not become ready within %s: no extensions discovered", e.Waited)
	}
	return fmt.Sprintf("host did not become ready within %s: extensions seen but not all active: %s",
		e.Waited, strings.Join(e.Seen, ", "))
}

// FormatStepError renders a step failure for terminal output, expanding a
// structural mismatch into its full diff and legend.
func FormatStepError(err *StepError, color runlog.ColorMode) string {
	var sb strings.Builder
	sb.WriteString(runlog.Bold(fmt.Sprintf("Step %d of %d failed in %q:\n",
		err.Index+1, err.Total, err.File), color))
	sb.WriteString(fmt.Sprintf("  Command: %s\n\n", runlog.Magenta(err.Command, color)))

	var mismatch *expect.Mismatch
	if errors.As(err.Err, &mismatch) {
		sb.WriteString(mismatch.Format(color))
		return sb.String()
	}

	var nullErr *expect.NullExpectation
	if errors.As(err.Err, &nullErr) {
		sb.WriteString(runlog.Red(nullErr.Error(), color))
		return sb.String()
	}

	sb.WriteString(runlog.Red(err.Err.Error(), color))
	return sb.String()
}
