// Package optional provides a present-or-absent value type used for every
// nullable scalar in the packing list model (item weight, bag weight limit,
// assigned bag id, precipitation fields).
//
// Values can arrive in several wire shapes: a JSON null, a missing field, an
// option-as-array ([] or [x]), a bare value, or a SQL NULL. All of them are
// normalized here so the rest of the code only ever asks IsPresent.
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value holds a T that may be absent. The zero Value is absent.
// T must not itself be a slice type; a JSON array is read as the
// option-as-array encoding.
type Value[T any] struct {
	v  T
	ok bool
}

// Some returns a present Value wrapping v.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPtr maps nil to absent and a non-nil pointer to its pointee.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// FromSlice normalizes the option-as-array representation: an empty slice is
// absent and a non-empty slice yields its first element.
func FromSlice[T any](s []T) Value[T] {
	if len(s) == 0 {
		return None[T]()
	}
	return Some(s[0])
}

// Get returns the wrapped value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// IsPresent reports whether a value is held.
func (o Value[T]) IsPresent() bool {
	return o.ok
}

// IsZero reports absence. It lets encoding/json drop absent fields tagged omitzero.
func (o Value[T]) IsZero() bool {
	return !o.ok
}

// OrElse returns the wrapped value, or def when absent.
func (o Value[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
// Useful for pgx arguments, where nil becomes NULL.
func (o Value[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.v
	return &v
}

// MarshalJSON writes the bare value, or null when absent.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// UnmarshalJSON accepts null, [], [x] and a bare x.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = None[T]()
		return nil
	}

	if trimmed[0] == '[' {
		var arr []T
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return fmt.Errorf("optional: decode array form: %w", err)
		}
		if len(arr) > 1 {
			return fmt.Errorf("optional: array form holds %d values, want at most 1", len(arr))
		}
		*o = FromSlice(arr)
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("optional: decode value: %w", err)
	}
	*o = Some(v)
	return nil
}

// String implements fmt.Stringer for log output.
func (o Value[T]) String() string {
	if !o.ok {
		return "<absent>"
	}
	return fmt.Sprint(o.v)
}

type number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Number maps a numeric optional to a float64, using def when absent.
func Number[T number](o Value[T], def float64) float64 {
	v, ok := o.Get()
	if !ok {
		return def
	}
	return float64(v)
}

// Equal reports whether a and b are both absent, or both present and equal.
func Equal[T comparable](a, b Value[T]) bool {
	if a.ok != b.ok {
		return false
	}
	return !a.ok || a.v == b.v
}
