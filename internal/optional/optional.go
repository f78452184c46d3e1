// Package optional provides a two-state value: absent, or present with a
// value that may itself be the zero value.
package optional

import "fmt"

// Value holds an optional T. The zero Value is absent.
type Value[T any] struct {
	value T
	set   bool
}

// Some returns a present Value holding v. v may be a zero or nil value;
// presence is tracked independently.
func Some[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// IsSet reports whether the value is present.
func (o Value[T]) IsSet() bool {
	return o.set
}

// Get returns the held value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the held value if present, otherwise fallback.
func (o Value[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// Apply stores the held value into dst if present.
func (o Value[T]) Apply(dst *T) {
	if o.set {
		*dst = o.value
	}
}

// String formats the value for diagnostics.
func (o Value[T]) String() string {
	if !o.set {
		return "<unset>"
	}
	return fmt.Sprint(o.value)
}
