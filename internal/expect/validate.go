// Package expect implements the wildcard-aware structural validator and
// diff renderer for host responses. It is a pure function of two value
// trees and knows nothing about commands or hosts.
package expect

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/plugtrace/plugtrace/internal/runlog"
)

// IgnoreMarker is the wildcard marker accepted anywhere in an expected
// tree. The actual value at a marked position is accepted unconditionally,
// including its entire subtree.
const IgnoreMarker = "ignore"

// Legend explains the diff markers in mismatch reports.
const Legend = "Legend: \n" +
	"\"+\" - Present in expected but not in received\n" +
	"\"-\" - Present in received but not in expected"

// Mismatch reports a failed validation. It carries the normalized
// pretty-printed forms of both trees and the rendered line diff.
type Mismatch struct {
	Expected string
	Received string
	Diff     string

	// MissingMarkers lists the JSON Pointer paths of ignore markers in the
	// expected tree with no counterpart node in the received tree.
	MissingMarkers []string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("expected response does not match received response:\n%s\n\n%s%s",
		m.Diff, m.markerNote(), Legend)
}

// Format renders the mismatch with ANSI color for terminal output.
func (m *Mismatch) Format(color runlog.ColorMode) string {
	diff := RenderDiff(m.Expected, m.Received, color)
	note := m.markerNote()
	if note != "" {
		note = runlog.Yellow(strings.TrimSuffix(note, "\n"), color) + "\n"
	}
	return fmt.Sprintf("Expected response does not match received response:\n%s\n\n%s%s",
		diff, note, runlog.Cyan(Legend, color))
}

// markerNote renders the missing-marker diagnostic, or "" when every marker
// found its counterpart.
func (m *Mismatch) markerNote() string {
	if len(m.MissingMarkers) == 0 {
		return ""
	}
	return fmt.Sprintf("Markers with no counterpart in received: %s\n",
		strings.Join(m.MissingMarkers, ", "))
}

// NullExpectation reports a non-null response where the trace declared no
// expected value.
type NullExpectation struct {
	Received string
}

func (e *NullExpectation) Error() string {
	return fmt.Sprintf("Expected: null, received: %s", e.Received)
}

// Validate compares an actual response tree against an expected tree that
// may contain ignore markers. A nil expected tree means the response must
// be null. Both inputs are deep-copied; neither is mutated.
func Validate(actual, expected any) error {
	if expected == nil {
		if actual == nil {
			return nil
		}
		return &NullExpectation{Received: pretty(actual)}
	}

	act := deepCopy(actual)
	exp := deepCopy(expected)

	act, missing := applyIgnores(act, exp)
	exp = RemoveNulls(exp)
	act = RemoveNulls(act)

	if reflect.DeepEqual(act, exp) {
		return nil
	}

	expStr := pretty(exp)
	actStr := pretty(act)
	return &Mismatch{
		Expected:       expStr,
		Received:       actStr,
		Diff:           RenderDiff(expStr, actStr, runlog.ColorOff),
		MissingMarkers: missing,
	}
}

// applyIgnores walks the expected tree with an explicit work-list of paths
// (no recursion, so arbitrarily deep documents cannot exhaust the stack).
// Every expected node equal to the ignore marker overwrites the
// corresponding node in the actual tree with the marker and stops the
// descent into that branch. Returns the (possibly replaced) actual root and
// the sorted pointer paths of markers that found no node to overwrite.
func applyIgnores(actual, expected any) (any, []string) {
	worklist := [][]segment{{}}
	var missing []string

	for len(worklist) > 0 {
		path := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		node, ok := getNode(expected, path)
		if !ok {
			continue
		}

		if s, isString := node.(string); isString {
			if s == IgnoreMarker {
				if _, exists := getNode(actual, path); exists {
					actual, _ = setNode(actual, path, IgnoreMarker)
				} else {
					missing = append(missing, pointerOf(path))
				}
			}
			continue
		}

		switch v := node.(type) {
		case map[string]any:
			for key := range v {
				worklist = append(worklist, appendPath(path, keySeg(key)))
			}
		case []any:
			for i := range v {
				worklist = append(worklist, appendPath(path, indexSeg(i)))
			}
		}
	}

	sort.Strings(missing)
	return actual, missing
}

// appendPath copies the path before extending it; work-list entries must
// not share backing arrays.
func appendPath(path []segment, seg segment) []segment {
	next := make([]segment, len(path)+1)
	copy(next, path)
	next[len(path)] = seg
	return next
}

// RemoveNulls strips null-valued object fields at every level of the tree,
// making comparison insensitive to explicit-null vs absent-key differences.
// Arrays are walked but elements are never dropped. Stripping is idempotent.
func RemoveNulls(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			if child == nil {
				delete(v, key)
				continue
			}
			v[key] = RemoveNulls(child)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = RemoveNulls(child)
		}
		return v
	default:
		return value
	}
}

// deepCopy clones a value tree via a JSON round trip, which also
// canonicalizes scalar representations across source formats.
func deepCopy(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// pretty renders a value tree as indented JSON for diffing and reports.
func pretty(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
