package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugtrace/plugtrace/internal/host"
	"github.com/plugtrace/plugtrace/internal/host/hosttest"
	"github.com/plugtrace/plugtrace/internal/runlog"
	"github.com/plugtrace/plugtrace/internal/sequencer"
)

// setRunFlags sets the package-level run flags and restores them afterwards.
func setRunFlags(t *testing.T, traceFlag, dirFlag string) {
	t.Helper()
	prevTrace, prevDir := runTraceFlag, runDirFlag
	runTraceFlag, runDirFlag = traceFlag, dirFlag
	t.Cleanup(func() {
		runTraceFlag, runDirFlag = prevTrace, prevDir
	})
}

// fakeHostMaker opens a scripted host per trace run and records each
// session, so tests can count how many traces actually started.
func fakeHostMaker(hosts *[]*hosttest.FakeHost) func(*runlog.Run) sequencer.HostFactory {
	return func(*runlog.Run) sequencer.HostFactory {
		return func(_ context.Context, responder host.Responder) (host.Host, error) {
			fake := hosttest.NewFakeHost("pkg.foo")
			fake.Responses["getAppVersion"] = "1.0.0"
			fake.Responses["getVolume"] = 0.5
			fake.Responder = responder
			*hosts = append(*hosts, fake)
			return fake, nil
		}
	}
}

func setPollInterval(t *testing.T, d time.Duration) {
	t.Helper()
	prev := runPollIntervalFlag
	runPollIntervalFlag = d
	t.Cleanup(func() { runPollIntervalFlag = prev })
}

func TestRunTraces_AbortsAfterFirstFailingTrace(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	setPollInterval(t, time.Millisecond)

	dir := t.TempDir()
	pass := `{"commands": [{"type": "getAppVersion", "expected": "1.0.0"}], "requests": []}`
	fail := `{"commands": [
	  {"type": "getAppVersion", "expected": "1.0.0"},
	  {"type": "getVolume", "expected": 1}
	], "requests": []}`
	first := writeFile(t, dir, "a_first.json", pass)
	second := writeFile(t, dir, "b_second.json", fail)
	third := writeFile(t, dir, "c_third.json", pass)

	var hosts []*hosttest.FakeHost
	var out bytes.Buffer
	err := runTraces(context.Background(), []string{first, second, third},
		func(ctx context.Context, file string) error {
			return runTrace(ctx, file, fakeHostMaker(&hosts), &out)
		})

	require.Error(t, err)
	assert.Contains(t, err.Error(), second)
	assert.Contains(t, err.Error(), "failed at step 2/2")
	assert.NotContains(t, err.Error(), third)

	// One host session per started trace; the third trace never started.
	require.Len(t, hosts, 2)
	assert.True(t, hosts[0].Closed())
	assert.True(t, hosts[1].Closed())
	assert.Len(t, hosts[1].Sent(), 2)

	assert.Contains(t, out.String(), "=== Extension output ===")
	assert.Contains(t, out.String(), "Step 2 of 2 failed")
}

func TestRunTraces_AllPass(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	setPollInterval(t, time.Millisecond)

	dir := t.TempDir()
	pass := `{"commands": [{"type": "getAppVersion", "expected": "ignore"}], "requests": []}`
	files := []string{
		writeFile(t, dir, "a.json", pass),
		writeFile(t, dir, "b.json", pass),
	}

	var hosts []*hosttest.FakeHost
	var out bytes.Buffer
	err := runTraces(context.Background(), files,
		func(ctx context.Context, file string) error {
			return runTrace(ctx, file, fakeHostMaker(&hosts), &out)
		})

	require.NoError(t, err)
	assert.Len(t, hosts, 2)
	assert.NotContains(t, out.String(), "=== Extension output ===")
}

func TestCollectTraceFiles_ExplicitTrace(t *testing.T) {
	setRunFlags(t, "traces/one.jsonc", "")

	files, err := collectTraceFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"traces/one.jsonc"}, files)
}

func TestCollectTraceFiles_DirectoryWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.json", "")
	writeFile(t, dir, "notes.txt", "")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0750))
	writeFile(t, sub, "c.jsonc", "")

	setRunFlags(t, "", dir)

	files, err := collectTraceFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(sub, "c.jsonc"),
	}, files)
}

func TestCollectTraceFiles_NoTraces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "")
	setRunFlags(t, "", dir)

	_, err := collectTraceFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trace files found")
}

func TestCollectTraceFiles_MissingDir(t *testing.T) {
	setRunFlags(t, "", filepath.Join(t.TempDir(), "gone"))

	_, err := collectTraceFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCollectTraceFiles_DirIsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file.json", "{}")
	setRunFlags(t, "", path)

	_, err := collectTraceFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}
