package gemini

import "log/slog"

// redactedMarker replaces secret material in every rendered form.
const redactedMarker = "[REDACTED]"

// Secret holds a sensitive string such as an API key. Every standard
// rendering path (fmt verbs, JSON and text marshaling, slog attributes)
// yields the redaction marker instead of the value. Code that really
// needs the clear text must call Expose, which keeps accidental
// disclosure grep-able.
//
// The zero value is an empty secret.
type Secret struct {
	value string
}

// NewSecret wraps v in a Secret.
func NewSecret(v string) Secret {
	return Secret{value: v}
}

// String implements fmt.Stringer and always returns the marker.
func (s Secret) String() string { return redactedMarker }

// GoString implements fmt.GoStringer so %#v does not leak the value.
func (s Secret) GoString() string { return "gemini.Secret(" + redactedMarker + ")" }

// MarshalJSON encodes the marker, never the value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedMarker + `"`), nil
}

// MarshalText encodes the marker, never the value.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redactedMarker), nil
}

// LogValue implements slog.LogValuer so a Secret used as a log
// attribute renders as the marker.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redactedMarker)
}

// Expose returns the wrapped clear-text value.
func (s Secret) Expose() string { return s.value }

// IsEmpty reports whether the secret holds no value.
func (s Secret) IsEmpty() bool { return s.value == "" }
