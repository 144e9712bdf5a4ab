package mock

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugtrace/plugtrace/internal/command"
	"github.com/plugtrace/plugtrace/internal/runlog"
)

func newTestRun(t *testing.T) (*runlog.Run, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer
	return runlog.New(0, &out), &out
}

func TestAnswer_ParameterizedFirstMatchWins(t *testing.T) {
	run, _ := newTestRun(t)
	s := New([]command.Descriptor{
		{Type: command.KindGetSong, Data: []any{map[string]any{"_id": "first"}}},
		{Type: command.KindGetSong, Data: []any{map[string]any{"_id": "second"}}},
	}, run)

	resp := s.Answer("pkg.foo", command.Descriptor{Type: command.KindGetSong})
	assert.Equal(t, command.KindGetSong, resp.Type)
	assert.Equal(t, []any{map[string]any{"_id": "first"}}, resp.Data)
}

func TestAnswer_ParameterlessFromPool(t *testing.T) {
	run, _ := newTestRun(t)
	s := New([]command.Descriptor{
		{Type: command.KindGetVolume, Data: 0.5},
	}, run)

	resp := s.Answer("pkg.foo", command.Descriptor{Type: command.KindGetVolume})
	assert.Equal(t, 0.5, resp.Data)
}

func TestAnswer_SelectorMatchesNamespacedKey(t *testing.T) {
	run, out := newTestRun(t)
	s := New([]command.Descriptor{
		{Type: command.KindGetPreference, Data: map[string]any{
			"key": "pkg.foo.other", "value": "light",
		}},
		{Type: command.KindGetPreference, Data: map[string]any{
			"key": "pkg.foo.theme", "value": "dark",
		}},
	}, run)

	// The query carries the raw key; the record pool stores fully
	// qualified keys, so matching goes through the derived form.
	resp := s.Answer("pkg.foo", command.Descriptor{
		Type: command.KindGetPreference,
		Data: map[string]any{"key": "theme"},
	})

	assert.Equal(t, map[string]any{"key": "pkg.foo.theme", "value": "dark"}, resp.Data)
	assert.Contains(t, out.String(), "getPreference with key 'pkg.foo.theme'")
}

func TestAnswer_SelectorNeverMatchesRawKey(t *testing.T) {
	run, _ := newTestRun(t)
	s := New([]command.Descriptor{
		// Stored under the raw key, so a query from pkg.foo must not see it.
		{Type: command.KindGetPreference, Data: map[string]any{
			"key": "theme", "value": "dark",
		}},
	}, run)

	resp := s.Answer("pkg.foo", command.Descriptor{
		Type: command.KindGetPreference,
		Data: map[string]any{"key": "theme"},
	})

	assert.Equal(t, command.DefaultResponse(command.KindGetPreference), resp.Data)
}

func TestAnswer_DefaultWhenPoolEmpty(t *testing.T) {
	run, out := newTestRun(t)
	s := New(nil, run)

	resp := s.Answer("pkg.foo", command.Descriptor{Type: command.KindGetPlayerState})
	assert.Equal(t, command.PlayerStateStopped, resp.Data)
	assert.Contains(t, out.String(), "default ")
}

func TestAnswer_UnknownKindAnswersNull(t *testing.T) {
	run, _ := newTestRun(t)
	s := New(nil, run)

	resp := s.Answer("pkg.foo", command.Descriptor{Type: "launchMissiles"})
	assert.Equal(t, "launchMissiles", resp.Type)
	assert.Nil(t, resp.Data)
}

func TestAnswer_ReportsEveryAnswer(t *testing.T) {
	run, out := newTestRun(t)
	s := New([]command.Descriptor{
		{Type: command.KindGetVolume, Data: 1.0},
	}, run)

	s.Answer("pkg.foo", command.Descriptor{Type: command.KindGetVolume})
	s.Answer("pkg.foo", command.Descriptor{Type: command.KindGetQueue})

	lines := out.String()
	assert.Contains(t, lines, "Responded to request getVolume with")
	assert.Contains(t, lines, "Responded to request getQueue with default")
}

func TestAnswer_NilRunIsSafe(t *testing.T) {
	s := New(nil, nil)
	require.NotPanics(t, func() {
		s.Answer("pkg.foo", command.Descriptor{Type: command.KindGetTime})
	})
}
