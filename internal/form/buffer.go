package form

import (
	"reflect"
	"strings"
)

// Buffer is one dialog's edit state. It is not safe for concurrent use; a
// buffer belongs to the UI loop that owns its dialog.
type Buffer struct {
	values map[string]any
	open   bool
}

// New returns a closed, empty buffer.
func New() *Buffer {
	return &Buffer{values: map[string]any{}}
}

// Open replaces the contents with a copy of seed and marks the buffer open.
func (b *Buffer) Open(seed map[string]any) {
	b.values = copyMap(seed)
	b.open = true
}

// Update shallow-merges changes, then deep-cleans the result.
func (b *Buffer) Update(changes map[string]any) {
	for k, v := range changes {
		b.values[k] = copyValue(v)
	}
	b.values = Clean(b.values)
}

// SetOverride sets key inside the nested map stored under group. A nil value
// removes the key, which for override groups means "inherit".
func (b *Buffer) SetOverride(group, key string, value any) {
	nested, _ := b.values[group].(map[string]any)
	nested = copyMap(nested)
	nested[key] = value
	b.Update(map[string]any{group: nested})
}

// Close hides the buffer. Contents are kept until the next Open.
func (b *Buffer) Close() {
	b.open = false
}

// IsOpen reports whether the buffer's dialog is showing.
func (b *Buffer) IsOpen() bool {
	return b.open
}

// Values returns a deep copy of the contents.
func (b *Buffer) Values() map[string]any {
	return copyMap(b.values)
}

// Get returns one top-level value.
func (b *Buffer) Get(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

// String returns key as a string, or "" when absent or not a string.
func (b *Buffer) String(key string) string {
	s, _ := b.values[key].(string)
	return s
}

// Override returns key from the nested map under group.
func (b *Buffer) Override(group, key string) any {
	nested, _ := b.values[group].(map[string]any)
	return nested[key]
}

// Clean returns a copy of m without nil values, empty strings, or empty
// slices and maps. Nested string-keyed maps are cleaned recursively and
// dropped when they end up empty. Clean(Clean(m)) equals Clean(m).
func Clean(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if cleaned, keep := cleanValue(v); keep {
			out[k] = cleaned
		}
	}
	return out
}

func cleanValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if nested, ok := asStringMap(v); ok {
		cleaned := Clean(nested)
		return cleaned, len(cleaned) > 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return v, rv.Len() > 0
	case reflect.Slice, reflect.Map:
		return v, !rv.IsNil() && rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return v, !rv.IsNil()
	}
	return v, true
}

// asStringMap normalizes map[string]any and named map types with string keys.
func asStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

// Trimmed returns the string under key with surrounding whitespace removed.
func Trimmed(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return strings.TrimSpace(s)
}
