// Package mock answers inbound host queries from a trace's pool of
// recorded responses, falling back to type-correct defaults. Synthesis is
// total: it never fails, because the host blocks awaiting an answer.
package mock

import (
	"fmt"

	"github.com/plugtrace/plugtrace/internal/command"
	"github.com/plugtrace/plugtrace/internal/runlog"
)

// Synthesizer resolves host queries against a fixed pool of mock records.
// It is stateless per call: once invoked it never waits on the command
// stream, so the host may query concurrently with step dispatch.
type Synthesizer struct {
	pool []command.Descriptor
	run  *runlog.Run
}

// New creates a synthesizer over one trace's mock record pool.
func New(pool []command.Descriptor, run *runlog.Run) *Synthesizer {
	return &Synthesizer{pool: pool, run: run}
}

// Answer produces a response for an inbound query from the named extension:
// the first pool record matching the query's kind (and, for selector kinds,
// its namespaced key), or the kind's declared default when nothing matches.
// Every answer is reported to the run sink.
func (s *Synthesizer) Answer(packageName string, query command.Descriptor) command.Descriptor {
	data, matched := s.resolve(packageName, query)

	response := command.Descriptor{Type: query.Type, Data: data}
	s.report(packageName, query, response, matched)
	return response
}

// resolve returns the response payload and whether a pool record supplied it.
func (s *Synthesizer) resolve(packageName string, query command.Descriptor) (any, bool) {
	spec, known := command.Lookup(query.Type)
	if !known {
		return nil, false
	}

	if spec.Category == command.Selector {
		if record, ok := s.findSelectorRecord(packageName, query); ok {
			return record.Data, true
		}
		return command.DefaultResponse(query.Type), false
	}

	// Parameterized and parameterless kinds match on the kind tag alone;
	// first record in document order wins.
	for _, record := range s.pool {
		if record.Type == query.Type {
			return record.Data, true
		}
	}
	return command.DefaultResponse(query.Type), false
}

// findSelectorRecord scans records of the query's kind for one whose stored
// key equals the query's derived key. Linear scan; ties resolve by document
// order. Duplicate keys are not rejected — first match wins.
func (s *Synthesizer) findSelectorRecord(packageName string, query command.Descriptor) (command.Descriptor, bool) {
	rawKey, ok := command.SelectorRawKey(query)
	if !ok {
		return command.Descriptor{}, false
	}
	derived := command.NamespacedKey(packageName, rawKey)

	for _, record := range s.pool {
		if record.Type != query.Type {
			continue
		}
		storedKey, ok := command.RecordKey(record)
		if !ok {
			continue
		}
		if storedKey == derived {
			return record, true
		}
	}
	return command.Descriptor{}, false
}

// report sends the query/answer pair to the observability sink. Reporting
// must never block or fail synthesis.
func (s *Synthesizer) report(packageName string, query, response command.Descriptor, matched bool) {
	if s.run == nil {
		return
	}

	request := query.Describe()
	if rawKey, ok := command.SelectorRawKey(query); ok {
		request = fmt.Sprintf("%s with key '%s'",
			query.Type, command.NamespacedKey(packageName, rawKey))
	}

	answer := response.Describe()
	if !matched {
		answer = "default " + answer
	}

	s.run.QueryAnswered(request, answer)
	s.run.Logger().Debug("synthesized query response",
		"kind", query.Type, "matched", matched)
}
