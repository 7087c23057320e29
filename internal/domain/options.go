package domain

import (
	"bytes"
	"encoding/json"
)

// OptionsName is the name of the options record owned by the rating plugin.
const OptionsName = "post_rating_options"

// MaximumRatingField is the options record field holding the maximum rating.
const MaximumRatingField = "maximum_rating"

// Options is a stored options record: a JSON object whose fields are opaque
// to everyone but their owner.
type Options json.RawMessage

// EmptyOptions is the record used when nothing has been stored yet.
var EmptyOptions = Options(`{}`)

// IsEmpty reports whether the record carries no document at all.
func (o Options) IsEmpty() bool {
	return len(bytes.TrimSpace(o)) == 0 || bytes.Equal(bytes.TrimSpace(o), []byte("null"))
}

// Bytes returns the JSON document, substituting {} for an empty record.
func (o Options) Bytes() []byte {
	if o.IsEmpty() {
		return []byte(EmptyOptions)
	}
	return []byte(o)
}

// Field returns the raw value of a top-level field. A record that is not a
// JSON object behaves as if it had no fields.
func (o Options) Field(name string) (json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(o.Bytes(), &fields); err != nil {
		return nil, false
	}
	raw, ok := fields[name]
	return raw, ok
}

// MarshalJSON implements json.Marshaler.
func (o Options) MarshalJSON() ([]byte, error) {
	return o.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Options) UnmarshalJSON(data []byte) error {
	*o = append((*o)[0:0], data...)
	return nil
}
