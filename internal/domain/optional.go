package domain

import (
	"bytes"
	"encoding/json"
)

// Optional holds a sample that may be missing. A level with no measurement is
// absent, which is distinct from a measured zero.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether the value is present.
func (o Optional[T]) IsSome() bool { return o.ok }

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Profile builds a fully populated profile from raw values.
func Profile[T ~float64](values ...float64) []Optional[T] {
	out := make([]Optional[T], len(values))
	for i, v := range values {
		out[i] = Some(T(v))
	}
	return out
}

// Value wraps a raw scalar as a present quantity.
func Value[T ~float64](v float64) Optional[T] {
	return Some(T(v))
}
