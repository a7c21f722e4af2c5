// Package override implements the "use global preference" convention for
// workspace-scoped settings.
//
// A workspace stores a sparse map of overrides. A key that is absent or null
// inherits the global preference; anything else wins. Override[T] is the typed
// form of one entry, and ForceOff covers settings whose only workspace-level
// choice is to disable a globally enabled feature.
package override

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Override is either Inherit or a concrete value.
type Override[T any] struct {
	value T
	set   bool
}

// Inherit returns an override that defers to the global value.
func Inherit[T any]() Override[T] {
	return Override[T]{}
}

// Value returns an override pinned to v.
func Value[T any](v T) Override[T] {
	return Override[T]{value: v, set: true}
}

// IsSet reports whether the override carries its own value.
func (o Override[T]) IsSet() bool {
	return o.set
}

// Get returns the pinned value and whether one exists.
func (o Override[T]) Get() (T, bool) {
	return o.value, o.set
}

// Resolve returns the pinned value, or global when inheriting.
func (o Override[T]) Resolve(global T) T {
	if o.set {
		return o.value
	}
	return global
}

// MarshalJSON encodes Inherit as null.
func (o Override[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as Inherit.
func (o *Override[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Inherit[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Value(v)
	return nil
}

// FromAny converts a value read from a sparse override map. Nil yields
// Inherit. JSON numbers arrive as float64 and are converted to integer T.
func FromAny[T any](raw any) (Override[T], error) {
	if raw == nil {
		return Inherit[T](), nil
	}
	if v, ok := raw.(T); ok {
		return Value(v), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Inherit[T](), fmt.Errorf("encode override: %w", err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return Inherit[T](), fmt.Errorf("decode override %T as %T: %w", raw, v, err)
	}
	return Value(v), nil
}

// Put writes o into m under key, removing the key when inheriting.
func Put[T any](m map[string]any, key string, o Override[T]) {
	if v, ok := o.Get(); ok {
		m[key] = v
		return
	}
	delete(m, key)
}

// Effective resolves key against a workspace's overrides and the global set.
func Effective(overrides, global map[string]any, key string) any {
	if v, ok := overrides[key]; ok && v != nil {
		return v
	}
	return global[key]
}
