// Package trace provides types and functions for loading and validating
// plugtrace trace documents.
package trace

import (
	"errors"
	"fmt"

	"github.com/plugtrace/plugtrace/internal/command"
)

// Definition represents one parsed trace document: an ordered list of
// commands to send to the host and an unordered pool of mock response
// records used to answer the host's own queries.
type Definition struct {
	Commands []Step               `json:"commands"`
	Requests []command.Descriptor `json:"requests"`
}

// Validate checks that the definition decodes into the expected shape:
// every step and mock record must carry a registered kind, and mock record
// payloads must match their kind's declared response shape. An empty
// command list is valid; such a trace runs to trivial success.
func (d *Definition) Validate() error {
	for i, step := range d.Commands {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	for i, req := range d.Requests {
		if _, ok := command.Lookup(req.Type); !ok {
			return fmt.Errorf("request %d: unknown command kind %q", i, req.Type)
		}
		if err := command.CheckPayload(req.Type, req.Data); err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}
	}
	return nil
}

// Step represents a single command-expectation pair within a trace.
type Step struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`

	// Expected is the expected response tree, possibly containing "ignore"
	// markers. nil means the host's response must be null.
	Expected any `json:"expected,omitempty"`

	// Interactive steps have their payload replaced by operator input
	// before being sent. The kind is fixed; only the data changes.
	Interactive bool `json:"interactive,omitempty"`
}

// Validate checks that the step carries a registered command or event kind
// and, for commands, a payload consistent with the kind's declared shape.
// Event payloads are free-form.
func (s *Step) Validate() error {
	if s.Type == "" {
		return errors.New("type must be non-empty")
	}
	if command.IsEventKind(s.Type) {
		return nil
	}
	if _, ok := command.Lookup(s.Type); !ok {
		return fmt.Errorf("unknown command kind %q", s.Type)
	}
	return command.CheckPayload(s.Type, s.Data)
}

// Command returns the step's command descriptor.
func (s *Step) Command() command.Descriptor {
	return command.Descriptor{Type: s.Type, Data: s.Data}
}
