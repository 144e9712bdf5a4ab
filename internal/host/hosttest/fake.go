// Package hosttest provides a scripted in-memory Host for tests.
package hosttest

import (
	"context"
	"sync"

	"github.com/plugtrace/plugtrace/internal/command"
	"github.com/plugtrace/plugtrace/internal/host"
)

// FakeHost is a configurable test double implementing host.Host. Test
// authors script per-kind responses, queries issued back at the harness,
// and the readiness progression of the extension list.
type FakeHost struct {
	// Extensions is returned by ListInstalledExtensions once ActiveAfter
	// list calls have happened; before that, extensions report inactive.
	Extensions []host.ExtensionInfo

	// ActiveAfter is the number of list calls before extensions report
	// active. Zero means active immediately.
	ActiveAfter int

	// ListErr, when set, is returned by every ListInstalledExtensions call.
	ListErr error

	// Responses maps a command kind to the response value tree. Kinds
	// without an entry respond with nil.
	Responses map[string]any

	// RespondFunc, when set, overrides Responses entirely.
	RespondFunc func(cmd command.Descriptor) (any, error)

	// QueriesBefore maps a command kind to queries the host issues to the
	// responder before answering a command of that kind.
	QueriesBefore map[string][]command.Descriptor

	// Responder receives the host's queries. Set by the test or sequencer.
	Responder host.Responder

	mu        sync.Mutex
	sent      []command.Descriptor
	listCalls int
	answers   []command.Descriptor
	closed    bool
}

// NewFakeHost returns a FakeHost with a single active extension.
func NewFakeHost(packageName string) *FakeHost {
	return &FakeHost{
		Extensions: []host.ExtensionInfo{{PackageName: packageName, Active: true}},
		Responses:  make(map[string]any),
	}
}

// ListInstalledExtensions returns the scripted extension list.
func (f *FakeHost) ListInstalledExtensions(_ context.Context) ([]host.ExtensionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]host.ExtensionInfo, len(f.Extensions))
	copy(out, f.Extensions)
	if f.listCalls <= f.ActiveAfter {
		for i := range out {
			out[i].Active = false
		}
	}
	return out, nil
}

// SendCommand records the command, runs any scripted queries through the
// responder, then returns the scripted response.
func (f *FakeHost) SendCommand(_ context.Context, cmd command.Descriptor) (any, error) {
	f.mu.Lock()
	f.sent = append(f.sent, cmd)
	queries := f.QueriesBefore[cmd.Type]
	responder := f.Responder
	f.mu.Unlock()

	for _, q := range queries {
		if responder != nil {
			answer := responder(q)
			f.mu.Lock()
			f.answers = append(f.answers, answer)
			f.mu.Unlock()
		}
	}

	if f.RespondFunc != nil {
		return f.RespondFunc(cmd)
	}
	return f.Responses[cmd.Type], nil
}

// Close marks the host closed.
func (f *FakeHost) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Sent returns the commands dispatched so far.
func (f *FakeHost) Sent() []command.Descriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Descriptor, len(f.sent))
	copy(out, f.sent)
	return out
}

// Answers returns the responder answers collected for scripted queries.
func (f *FakeHost) Answers() []command.Descriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Descriptor, len(f.answers))
	copy(out, f.answers)
	return out
}

// ListCalls returns how many times the extension list was polled.
func (f *FakeHost) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// Closed reports whether Close was called.
func (f *FakeHost) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Verify compile-time interface compliance.
var _ host.Host = (*FakeHost)(nil)
