// Package runlog owns the per-run observability state: a buffered
// diagnostic log that is flushed only when a trace fails, an optional
// progress spinner that is replaced (never mutated) around interleaved
// output, and ANSI color helpers.
package runlog

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
)

// spinnerCharSet indexes the braille spinner in the spinner package.
const spinnerCharSet = 14

// Run holds the observability state for one trace run. It replaces the
// process-wide log buffer and progress handle so that runs stay
// independently testable.
type Run struct {
	ID      string
	Verbose int
	Color   ColorMode

	out    io.Writer
	logger *slog.Logger

	mu      sync.Mutex
	buf     bytes.Buffer
	spin    *spinner.Spinner
	spinMsg string
}

// New creates a run context. With verbose == 0, diagnostic logs accumulate
// in an in-memory buffer and a spinner is shown while waiting; higher
// verbosity streams debug logs to out directly and disables the spinner.
// At verbose >= 2 log records also carry their source location.
func New(verbose int, out io.Writer) *Run {
	if out == nil {
		out = os.Stderr
	}
	r := &Run{
		ID:      uuid.NewString(),
		Verbose: verbose,
		Color:   ResolveColor(),
		out:     out,
	}

	var w io.Writer
	if verbose == 0 {
		w = &lockedWriter{run: r}
	} else {
		w = out
	}
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: verbose >= 2,
	}
	r.logger = slog.New(slog.NewTextHandler(w, opts)).With("run", r.ID)

	return r
}

// Logger returns the run's structured logger.
func (r *Run) Logger() *slog.Logger {
	return r.logger
}

// lockedWriter appends to the run's diagnostic buffer under the run mutex.
type lockedWriter struct {
	run *Run
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.run.mu.Lock()
	defer w.run.mu.Unlock()
	return w.run.buf.Write(p)
}

// FlushDiagnostics writes the buffered diagnostic log to out and clears it.
// Successful runs never call this, keeping them quiet.
func (r *Run) FlushDiagnostics() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buf.Len() == 0 {
		return
	}
	fmt.Fprintln(r.out, r.buf.String())
	r.buf.Reset()
}

// StartWaiting shows the progress spinner with the given message. No-op in
// verbose mode or when output is not a terminal.
func (r *Run) StartWaiting(msg string) {
	if r.Verbose > 0 || r.Color != ColorOn {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startSpinnerLocked(msg)
}

// StopWaiting clears the spinner, if any.
func (r *Run) StopWaiting() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopSpinnerLocked()
	r.spinMsg = ""
}

// Printf writes a line to out, pausing and re-creating the spinner around
// it so that render state stays consistent across interleaved lines.
func (r *Run) Printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hadSpinner := r.spin != nil
	msg := r.spinMsg
	r.stopSpinnerLocked()

	fmt.Fprintf(r.out, format, args...)

	if hadSpinner {
		r.startSpinnerLocked(msg)
	}
}

// QueryAnswered reports one synthesized answer to an inbound host query.
func (r *Run) QueryAnswered(request, response string) {
	r.Printf("Responded to request %s with %s\n",
		Blue(request, r.Color), Green(response, r.Color))
}

func (r *Run) startSpinnerLocked(msg string) {
	s := spinner.New(spinner.CharSets[spinnerCharSet], 100*time.Millisecond,
		spinner.WithWriter(r.out))
	s.Suffix = " " + Yellow(msg, r.Color)
	s.Start()
	r.spin = s
	r.spinMsg = msg
}

func (r *Run) stopSpinnerLocked() {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
}
