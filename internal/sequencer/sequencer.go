// Package sequencer drives one trace end to end: it waits for the host to
// become ready, feeds each step's command to the host, answers the host's
// own queries through the mock synthesizer, validates every response, and
// stops at the first failure.
package sequencer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/plugtrace/plugtrace/internal/command"
	"github.com/plugtrace/plugtrace/internal/expect"
	"github.com/plugtrace/plugtrace/internal/host"
	"github.com/plugtrace/plugtrace/internal/mock"
	"github.com/plugtrace/plugtrace/internal/runlog"
	"github.com/plugtrace/plugtrace/internal/trace"
)

// Default readiness polling cadence.
const defaultPollInterval = time.Second

// HostFactory opens a host session for one trace run. The responder
// answers the host's queries for the lifetime of the session.
type HostFactory func(ctx context.Context, responder host.Responder) (host.Host, error)

// PayloadProvider supplies a replacement payload for an interactive step.
// The kind is fixed; only the payload changes.
type PayloadProvider interface {
	ProvidePayload(kind string, current any) (any, error)
}

// Options configures a Sequencer.
type Options struct {
	// PollInterval is the sleep between readiness polls. Defaults to 1s.
	PollInterval time.Duration

	// ReadyTimeout bounds the total readiness wait. Zero waits forever.
	ReadyTimeout time.Duration

	// Provider supplies payloads for interactive steps. Runs without a
	// provider fail on the first interactive step.
	Provider PayloadProvider
}

// Sequencer executes trace files against a host, one at a time.
type Sequencer struct {
	newHost HostFactory
	run     *runlog.Run
	opts    Options
}

// New creates a sequencer. Each Execute call opens a fresh host session.
func New(newHost HostFactory, run *runlog.Run, opts Options) *Sequencer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Sequencer{newHost: newHost, run: run, opts: opts}
}

// Execute loads the trace at path and runs it to completion or first
// failure. The returned error is nil only if every step validated.
func (s *Sequencer) Execute(ctx context.Context, path string) error {
	def, err := trace.LoadFile(path)
	if err != nil {
		return err
	}

	s.run.Printf("%s %d commands and %d requests\n\n",
		runlog.Blue("Loaded trace with", s.run.Color),
		len(def.Commands), len(def.Requests))

	synth := mock.New(def.Requests, s.run)

	// The host may query before the extension package name is discovered;
	// until then selector keys namespace under the empty package.
	var pkg atomic.Value
	pkg.Store("")
	responder := func(query command.Descriptor) command.Descriptor {
		name, _ := pkg.Load().(string)
		return synth.Answer(name, query)
	}

	h, err := s.newHost(ctx, responder)
	if err != nil {
		return fmt.Errorf("failed to start host session: %w", err)
	}
	defer func() { _ = h.Close() }()

	packageName, err := s.awaitReady(ctx, h)
	if err != nil {
		return err
	}
	pkg.Store(packageName)

	s.run.Printf("Extension active: %s\n", runlog.Yellow(packageName, s.run.Color))
	s.run.Printf("\n------------------------------------------------------------\n")
	s.run.Printf("%s\n", runlog.Cyan(fmt.Sprintf("=== Running commands from trace %s ... ===", path), s.run.Color))

	total := len(def.Commands)
	for i := range def.Commands {
		if err := s.runStep(ctx, h, path, packageName, &def.Commands[i], i, total); err != nil {
			return err
		}
	}

	s.run.Printf("%s\n", runlog.Cyan(fmt.Sprintf("=== Completed trace %s ===", path), s.run.Color))
	return nil
}

// awaitReady polls the host's extension list until at least one extension
// is present and all report active, the timeout elapses, or ctx is
// canceled. Each extension is announced once, on first sighting.
func (s *Sequencer) awaitReady(ctx context.Context, h host.Host) (string, error) {
	s.run.StartWaiting("Waiting for extension...")
	defer s.run.StopWaiting()

	var deadline <-chan time.Time
	if s.opts.ReadyTimeout > 0 {
		timer := time.NewTimer(s.opts.ReadyTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	notified := make(map[string]bool)
	for {
		exts, err := h.ListInstalledExtensions(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list extensions: %w", err)
		}

		active := 0
		for _, ext := range exts {
			if !notified[ext.PackageName] {
				notified[ext.PackageName] = true
				s.run.Printf("Extension found %s, active: %v\n", ext.PackageName, ext.Active)
			}
			if ext.Active {
				active++
			}
		}

		if len(exts) > 0 && active == len(exts) {
			return exts[0].PackageName, nil
		}

		select {
		case <-time.After(s.opts.PollInterval):
		case <-deadline:
			seen := make([]string, 0, len(notified))
			for name := range notified {
				seen = append(seen, name)
			}
			return "", &ReadyTimeoutError{Waited: s.opts.ReadyTimeout, Seen: seen}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// runStep dispatches one step and validates the response. Interactive
// steps get their payload replaced exactly once before being sent. Event
// steps are enveloped with the extension's package name.
func (s *Sequencer) runStep(ctx context.Context, h host.Host, path, packageName string, step *trace.Step, index, total int) error {
	fail := func(desc string, err error) error {
		return &StepError{File: path, Index: index, Total: total, Command: desc, Err: err}
	}

	if step.Interactive {
		if err := s.applyInteractive(step); err != nil {
			return fail(step.Type, err)
		}
	}

	cmd := step.Command()
	if command.IsEventKind(step.Type) {
		cmd = command.WrapEvent(step.Type, step.Data, packageName)
	}

	desc := cmd.Describe()
	s.run.Printf("\nCommand [%d/%d]: %s\n", index+1, total, runlog.Magenta(desc, s.run.Color))
	s.run.Logger().Debug("dispatching command", "kind", step.Type, "step", index+1, "total", total)

	resp, err := h.SendCommand(ctx, cmd)
	if err != nil {
		return fail(desc, fmt.Errorf("host failed to execute command: %w", err))
	}

	if err := expect.Validate(resp, step.Expected); err != nil {
		return fail(desc, err)
	}

	if step.Expected != nil {
		s.run.Printf("Received response %s\n", compact(resp))
	}
	s.run.Printf("✓ Successful: %s\n", runlog.Green(desc, s.run.Color))
	return nil
}

// applyInteractive replaces the step's payload with operator input, looping
// until the payload matches the kind's declared shape.
func (s *Sequencer) applyInteractive(step *trace.Step) error {
	if s.opts.Provider == nil {
		return fmt.Errorf("step is interactive but no payload provider is configured")
	}

	for {
		data, err := s.opts.Provider.ProvidePayload(step.Type, step.Data)
		if err != nil {
			return fmt.Errorf("failed to read interactive payload: %w", err)
		}
		if !command.IsEventKind(step.Type) {
			if err := command.CheckPayload(step.Type, data); err != nil {
				s.run.Printf("Could not parse data: %v, try again...\n", err)
				continue
			}
		}
		step.Data = data
		return nil
	}
}

func compact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
