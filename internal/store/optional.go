package store

import "encoding/json"

// Optional represents a partial-update field with three states:
// absent (not supplied at all), null (explicitly cleared), or set to a
// value. A plain pointer cannot distinguish the first two, which matters
// for clearable attributes like a task's description or due date.
type Optional[T any] struct {
	// Set reports whether the field was supplied in the request at all.
	Set bool
	// Valid reports whether the supplied value was non-null.
	// Only meaningful when Set is true.
	Valid bool
	// Value holds the supplied value when Set and Valid are both true.
	Value T
}

// Some returns an Optional holding the given value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: value}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// present in the JSON document, so Set is always true here; absent fields
// keep the zero Optional.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}
