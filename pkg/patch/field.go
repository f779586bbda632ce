// Package patch models PATCH payload fields that distinguish "absent" from
// "explicitly null".
package patch

import (
	"bytes"
	"encoding/json"
)

var null = []byte("null")

// Field is a JSON field of a partial update. Set reports whether the key was
// present in the payload; Value is nil when the payload carried null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Of returns a present field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a present field that clears the target.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), null) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// MarshalJSON writes the value or null. Pair with `omitzero` so absent
// fields are dropped from the encoded payload.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return null, nil
	}
	return json.Marshal(*f.Value)
}

// IsZero reports an absent field, letting encoding/json omit it.
func (f Field[T]) IsZero() bool {
	return !f.Set
}

// Present reports whether the field carries a non-null value.
func (f Field[T]) Present() bool {
	return f.Set && f.Value != nil
}

// Apply writes the field into a nullable target when present.
func (f Field[T]) Apply(target **T) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		*target = nil
		return
	}
	v := *f.Value
	*target = &v
}

// ApplyValue writes a non-null value into target when present.
func (f Field[T]) ApplyValue(target *T) {
	if f.Present() {
		*target = *f.Value
	}
}
