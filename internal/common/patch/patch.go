// Package patch implements presence-tracking optional fields for sparse
// updates. A plain pointer cannot tell "absent from the request" apart
// from "explicitly null"; Field can, so PATCH payloads only touch what
// they name.
package patch

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	value T
	set   bool
	null  bool
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

// Set reports whether the field appeared in the request at all.
func (f Field[T]) Set() bool { return f.set }

// Null reports whether the field was an explicit JSON null.
func (f Field[T]) Null() bool { return f.set && f.null }

// Value returns the decoded value; only meaningful when Set and not Null.
func (f Field[T]) Value() T { return f.value }

// Apply records the field into a column->value map for a sparse UPDATE.
// Absent fields leave the map untouched; explicit nulls write NULL.
func (f Field[T]) Apply(updates map[string]any, column string) {
	if !f.set {
		return
	}
	if f.null {
		updates[column] = nil
		return
	}
	updates[column] = f.value
}
