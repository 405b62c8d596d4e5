package gym

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Identified is implemented by entities that can be referenced by id.
type Identified interface {
	EntityID() string
}

// Ref is an optional reference to a backend entity. The backend encodes an
// absent reference as null, an empty string, or by omitting the key; a present
// reference arrives either as a bare id or as a populated document. All of
// these collapse into Ref on decode, and an absent Ref always encodes as null.
type Ref[T Identified] struct {
	id  string
	doc *T
}

// RefTo builds a reference from an id. Blank ids produce an absent reference.
func RefTo[T Identified](id string) Ref[T] {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ref[T]{}
	}
	return Ref[T]{id: id}
}

// RefOf builds a populated reference from a document.
func RefOf[T Identified](doc T) Ref[T] {
	id := strings.TrimSpace(doc.EntityID())
	if id == "" {
		return Ref[T]{}
	}
	return Ref[T]{id: id, doc: &doc}
}

// ID returns the referenced id and whether the reference is present.
func (r Ref[T]) ID() (string, bool) {
	return r.id, r.id != ""
}

// IDOrEmpty returns the id or the empty string for absent references.
func (r Ref[T]) IDOrEmpty() string {
	return r.id
}

// Valid reports whether the reference points at something.
func (r Ref[T]) Valid() bool {
	return r.id != ""
}

// Doc returns the populated document when the backend expanded the reference.
func (r Ref[T]) Doc() (T, bool) {
	if r.doc == nil {
		var zero T
		return zero, false
	}
	return *r.doc, true
}

// UnmarshalJSON normalizes every absent/present encoding the backend uses.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	*r = Ref[T]{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("gym: decode reference id: %w", err)
		}
		*r = RefTo[T](id)
		return nil
	case '{':
		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("gym: decode reference document: %w", err)
		}
		*r = RefOf(doc)
		return nil
	default:
		return fmt.Errorf("gym: unsupported reference encoding %s", string(data))
	}
}

// MarshalJSON writes the bare id, or null when absent.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// OptionalString converts a form value into the backend's null convention.
func OptionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
