package command

import "encoding/json"

// Descriptor is one tagged command or query: a kind discriminant plus a
// kind-specific payload tree. The same shape is used for trace steps, for
// inbound host queries, and for mock response records.
type Descriptor struct {
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// Describe returns a short human-readable form of the descriptor for
// progress and diagnostic output.
func (d Descriptor) Describe() string {
	if d.Data == nil {
		return d.Type
	}
	b, err := json.Marshal(d.Data)
	if err != nil {
		return d.Type
	}
	return d.Type + " " + string(b)
}

// NamespacedKey derives the fully qualified selector key for a raw key
// supplied by the named extension.
func NamespacedKey(packageName, key string) string {
	return packageName + "." + key
}

// decodeInto round-trips a payload tree into a typed destination. The trees
// originate from JSON or YAML documents, so a JSON round trip is lossless.
func decodeInto(data, dst any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
