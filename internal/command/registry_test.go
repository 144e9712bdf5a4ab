package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_AllKindsRegistered(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 23)

	for _, kind := range kinds {
		spec, ok := Lookup(kind)
		require.True(t, ok, "kind %s", kind)
		assert.Equal(t, kind, spec.Kind)
	}
}

func TestLookup_UnknownKind(t *testing.T) {
	_, ok := Lookup("launchMissiles")
	assert.False(t, ok)
}

func TestCategories(t *testing.T) {
	tests := []struct {
		kind     string
		category Category
	}{
		{KindGetSong, Parameterized},
		{KindAddSongs, Parameterized},
		{KindRegisterOAuth, Parameterized},
		{KindGetCurrentSong, Parameterless},
		{KindGetVolume, Parameterless},
		{KindGetAppVersion, Parameterless},
		{KindGetPreference, Selector},
		{KindGetSecure, Selector},
	}
	for _, tt := range tests {
		spec, ok := Lookup(tt.kind)
		require.True(t, ok, tt.kind)
		assert.Equal(t, tt.category, spec.Category, tt.kind)
	}
}

func TestDefaultResponse(t *testing.T) {
	assert.Equal(t, []any{}, DefaultResponse(KindGetSong))
	assert.Equal(t, false, DefaultResponse(KindSetPreference))
	assert.Equal(t, 0.0, DefaultResponse(KindGetVolume))
	assert.Equal(t, "", DefaultResponse(KindGetAppVersion))
	assert.Equal(t, PlayerStateStopped, DefaultResponse(KindGetPlayerState))
	assert.Nil(t, DefaultResponse(KindGetCurrentSong))
	assert.Nil(t, DefaultResponse(KindGetQueue))
}

func TestDefaultResponse_UnknownKindIsNull(t *testing.T) {
	assert.Nil(t, DefaultResponse("launchMissiles"))
}

func TestCheckPayload(t *testing.T) {
	songs := []any{
		map[string]any{"_id": "s1", "title": "Track One", "duration": 180.0},
	}
	require.NoError(t, CheckPayload(KindGetSong, songs))
	require.NoError(t, CheckPayload(KindSetPreference, true))
	require.NoError(t, CheckPayload(KindGetVolume, 0.7))
	require.NoError(t, CheckPayload(KindAddPlaylist, "road trip"))

	// Free-form kinds accept anything.
	require.NoError(t, CheckPayload(KindGetEntity, map[string]any{"anything": []any{1.0, "x"}}))

	// Nil payloads are always acceptable.
	require.NoError(t, CheckPayload(KindGetSong, nil))
}

func TestCheckPayload_ShapeMismatch(t *testing.T) {
	err := CheckPayload(KindSetPreference, "not-a-bool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setPreference")

	err = CheckPayload(KindGetSong, map[string]any{"title": "not a list"})
	require.Error(t, err)
}

func TestCheckPayload_UnknownKind(t *testing.T) {
	err := CheckPayload("launchMissiles", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command kind")
}

func TestSelectorRawKey(t *testing.T) {
	key, ok := SelectorRawKey(Descriptor{
		Type: KindGetPreference,
		Data: map[string]any{"key": "theme"},
	})
	require.True(t, ok)
	assert.Equal(t, "theme", key)

	// Non-selector kinds never produce a key.
	_, ok = SelectorRawKey(Descriptor{Type: KindGetSong, Data: map[string]any{"key": "x"}})
	assert.False(t, ok)
}

func TestNamespacedKey(t *testing.T) {
	assert.Equal(t, "pkg.foo.theme", NamespacedKey("pkg.foo", "theme"))
}

func TestDescriptor_Describe(t *testing.T) {
	assert.Equal(t, "getCurrentSong", Descriptor{Type: "getCurrentSong"}.Describe())

	d := Descriptor{Type: "addPlaylist", Data: "road trip"}
	assert.Equal(t, `addPlaylist "road trip"`, d.Describe())
}
