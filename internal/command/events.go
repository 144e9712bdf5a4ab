package command

// KindExtraEvent is the envelope kind under which extension events are
// dispatched to the host. Event payloads are free-form.
const KindExtraEvent = "extraExtensionEvent"

// Extension event kind discriminants. A trace step carrying one of these is
// a player-side notification pushed at the extension rather than a command
// awaiting a typed response.
const (
	EventSongChanged        = "songChanged"
	EventPlayerStateChanged = "playerStateChanged"
	EventVolumeChanged      = "volumeChanged"
	EventSeeked             = "seeked"
	EventSongQueueChanged   = "songQueueChanged"
	EventPreferenceChanged  = "preferenceChanged"
	EventOauthCallback      = "oauthCallback"
)

var eventKinds = map[string]bool{
	EventSongChanged:        true,
	EventPlayerStateChanged: true,
	EventVolumeChanged:      true,
	EventSeeked:             true,
	EventSongQueueChanged:   true,
	EventPreferenceChanged:  true,
	EventOauthCallback:      true,
}

// IsEventKind reports whether the discriminant names an extension event.
func IsEventKind(kind string) bool {
	return eventKinds[kind]
}

// WrapEvent envelopes an event payload for dispatch: the host needs the
// event discriminant, its payload, and the target extension's package name.
func WrapEvent(kind string, data any, packageName string) Descriptor {
	return Descriptor{
		Type: KindExtraEvent,
		Data: map[string]any{
			"type":        kind,
			"data":        data,
			"packageName": packageName,
		},
	}
}
