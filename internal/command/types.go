// Package command defines the closed vocabulary of host operation kinds
// and the registry that describes each kind's payload shape, default
// response, and mock-matching category.
package command

// Song is the track record exchanged with extensions.
type Song struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Artists     []string `json:"artists,omitempty"`
	Album       string   `json:"album,omitempty"`
	Duration    float64  `json:"duration,omitempty"`
	Type        string   `json:"type,omitempty"`
	PlaybackURL string   `json:"playbackUrl,omitempty"`
}

// PreferenceData carries a preference lookup key and its stored value.
// For selector-kind queries the key field is the raw, un-namespaced key
// supplied by the extension; mock records store the fully qualified key.
type PreferenceData struct {
	Key          string `json:"key"`
	Value        any    `json:"value,omitempty"`
	DefaultValue any    `json:"defaultValue,omitempty"`
}

// Player states reported through getPlayerState.
const (
	PlayerStatePlaying = "PLAYING"
	PlayerStatePaused  = "PAUSED"
	PlayerStateStopped = "STOPPED"
	PlayerStateLoading = "LOADING"
)
