package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidate_OK(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ext.wasm"), []byte{0}, 0600))

	path := writeManifest(t, dir, `{
	  "name": "Demo Extension",
	  "packageName": "pkg.demo",
	  "version": "0.1.0",
	  "plugtraceExtension": true,
	  "extensionEntry": "ext.wasm"
	}`)

	m, err := Validate(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo Extension", m.Name)
	assert.Equal(t, "pkg.demo", m.PackageName)
	assert.Equal(t, "ext.wasm", m.ExtensionEntry)
}

func TestValidate_AbsoluteEntry(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "ext.wasm")
	require.NoError(t, os.WriteFile(entry, []byte{0}, 0600))

	path := writeManifest(t, t.TempDir(), `{
	  "plugtraceExtension": true,
	  "extensionEntry": `+string(mustJSON(t, entry))+`
	}`)

	_, err := Validate(path)
	require.NoError(t, err)
}

func TestValidate_MissingManifest(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "manifest.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest does not exist")
}

func TestValidate_MalformedJSON(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{"name": `)
	_, err := Validate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate manifest")
}

func TestValidate_NotAPlugtraceExtension(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{
	  "name": "Other",
	  "extensionEntry": "ext.wasm"
	}`)
	_, err := Validate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a plugtrace extension")
}

func TestValidate_NoEntry(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{"plugtraceExtension": true}`)
	_, err := Validate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no extension entry")
}

func TestValidate_EntryFileMissing(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{
	  "plugtraceExtension": true,
	  "extensionEntry": "gone.wasm"
	}`)
	_, err := Validate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `extension entry "gone.wasm" defined in manifest does not exist`)
}

// mustJSON quotes a string as a JSON literal, escaping path separators on
// platforms where they collide with JSON syntax.
func mustJSON(t *testing.T, s string) []byte {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return b
}
