package command

import (
	"fmt"
	"sort"
)

// Command kind discriminants as they appear in trace documents.
const (
	KindGetSong                  = "getSong"
	KindGetEntity                = "getEntity"
	KindGetCurrentSong           = "getCurrentSong"
	KindGetPlayerState           = "getPlayerState"
	KindGetVolume                = "getVolume"
	KindGetTime                  = "getTime"
	KindGetQueue                 = "getQueue"
	KindGetPreference            = "getPreference"
	KindSetPreference            = "setPreference"
	KindGetSecure                = "getSecure"
	KindSetSecure                = "setSecure"
	KindAddSongs                 = "addSongs"
	KindRemoveSong               = "removeSong"
	KindUpdateSong               = "updateSong"
	KindAddPlaylist              = "addPlaylist"
	KindAddToPlaylist            = "addToPlaylist"
	KindRegisterOAuth            = "registerOAuth"
	KindOpenExternalURL          = "openExternalUrl"
	KindUpdateAccounts           = "updateAccounts"
	KindExtensionsUpdated        = "extensionsUpdated"
	KindRegisterUserPreference   = "registerUserPreference"
	KindUnregisterUserPreference = "unregisterUserPreference"
	KindGetAppVersion            = "getAppVersion"
)

// Category classifies how a kind's mock response is selected.
type Category int

const (
	// Parameterized kinds answer with the matching record's payload verbatim.
	Parameterized Category = iota
	// Parameterless kinds answer with a fixed payload; matching is by kind only.
	Parameterless
	// Selector kinds additionally match on a namespaced string key inside the payload.
	Selector
)

// KindSpec describes one command kind. It is the single source of truth
// consulted by record matching, response construction, and default
// synthesis, so the three call sites cannot drift apart.
type KindSpec struct {
	Kind     string
	Category Category

	// prototype returns a pointer to the zero value of the kind's declared
	// response payload shape. nil means the payload is a free-form tree.
	prototype func() any

	// defaultResponse returns a structurally valid payload used when no
	// mock record matches a query of this kind.
	defaultResponse func() any
}

var registry = map[string]KindSpec{
	KindGetSong: {
		Kind: KindGetSong, Category: Parameterized,
		prototype:       func() any { return &[]Song{} },
		defaultResponse: func() any { return []any{} },
	},
	KindGetEntity: {
		Kind: KindGetEntity, Category: Parameterized,
		defaultResponse: func() any { return nil },
	},
	KindGetCurrentSong: {
		Kind: KindGetCurrentSong, Category: Parameterless,
		prototype:       func() any { return &Song{} },
		defaultResponse: func() any { return nil },
	},
	KindGetPlayerState: {
		Kind: KindGetPlayerState, Category: Parameterless,
		prototype:       func() any { return new(string) },
		defaultResponse: func() any { return PlayerStateStopped },
	},
	KindGetVolume: {
		Kind: KindGetVolume, Category: Parameterless,
		prototype:       func() any { return new(float64) },
		defaultResponse: func() any { return 0.0 },
	},
	KindGetTime: {
		Kind: KindGetTime, Category: Parameterless,
		prototype:       func() any { return new(float64) },
		defaultResponse: func() any { return 0.0 },
	},
	KindGetQueue: {
		Kind: KindGetQueue, Category: Parameterless,
		defaultResponse: func() any { return nil },
	},
	KindGetPreference: {
		Kind: KindGetPreference, Category: Selector,
		prototype:       func() any { return &PreferenceData{} },
		defaultResponse: func() any { return map[string]any{"key": ""} },
	},
	KindSetPreference: {
		Kind: KindSetPreference, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindGetSecure: {
		Kind: KindGetSecure, Category: Selector,
		prototype:       func() any { return &PreferenceData{} },
		defaultResponse: func() any { return map[string]any{"key": ""} },
	},
	KindSetSecure: {
		Kind: KindSetSecure, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindAddSongs: {
		Kind: KindAddSongs, Category: Parameterized,
		prototype:       func() any { return &[]Song{} },
		defaultResponse: func() any { return []any{} },
	},
	KindRemoveSong: {
		Kind: KindRemoveSong, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindUpdateSong: {
		Kind: KindUpdateSong, Category: Parameterized,
		prototype:       func() any { return &Song{} },
		defaultResponse: func() any { return map[string]any{} },
	},
	KindAddPlaylist: {
		Kind: KindAddPlaylist, Category: Parameterized,
		prototype:       func() any { return new(string) },
		defaultResponse: func() any { return "" },
	},
	KindAddToPlaylist: {
		Kind: KindAddToPlaylist, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindRegisterOAuth: {
		Kind: KindRegisterOAuth, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindOpenExternalURL: {
		Kind: KindOpenExternalURL, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindUpdateAccounts: {
		Kind: KindUpdateAccounts, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindExtensionsUpdated: {
		Kind: KindExtensionsUpdated, Category: Parameterless,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindRegisterUserPreference: {
		Kind: KindRegisterUserPreference, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindUnregisterUserPreference: {
		Kind: KindUnregisterUserPreference, Category: Parameterized,
		prototype:       func() any { return new(bool) },
		defaultResponse: func() any { return false },
	},
	KindGetAppVersion: {
		Kind: KindGetAppVersion, Category: Parameterless,
		prototype:       func() any { return new(string) },
		defaultResponse: func() any { return "" },
	},
}

// Lookup returns the spec for a kind discriminant.
func Lookup(kind string) (KindSpec, bool) {
	spec, ok := registry[kind]
	return spec, ok
}

// Kinds returns all registered kind discriminants in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultResponse returns a structurally valid response payload for the
// kind. Unknown kinds get a null payload so synthesis stays total.
func DefaultResponse(kind string) any {
	spec, ok := registry[kind]
	if !ok {
		return nil
	}
	return spec.defaultResponse()
}

// CheckPayload verifies that a payload tree decodes into the kind's
// declared payload shape. Free-form kinds accept any tree.
func CheckPayload(kind string, data any) error {
	spec, ok := registry[kind]
	if !ok {
		return fmt.Errorf("unknown command kind %q", kind)
	}
	if spec.prototype == nil || data == nil {
		return nil
	}
	if err := decodeInto(data, spec.prototype()); err != nil {
		return fmt.Errorf("payload does not match declared shape for %q: %w", kind, err)
	}
	return nil
}

// SelectorRawKey extracts the raw lookup key from a selector-kind query
// payload. The second return is false for non-selector kinds or payloads
// without a key.
func SelectorRawKey(d Descriptor) (string, bool) {
	spec, ok := registry[d.Type]
	if !ok || spec.Category != Selector {
		return "", false
	}
	var pref PreferenceData
	if err := decodeInto(d.Data, &pref); err != nil {
		return "", false
	}
	return pref.Key, true
}

// RecordKey extracts the stored (fully qualified) key from a selector-kind
// mock record payload.
func RecordKey(d Descriptor) (string, bool) {
	return SelectorRawKey(d)
}
