package override

// ForceOff is an asymmetric override: a workspace may disable a globally
// enabled feature but never enable a globally disabled one. It serializes as
// false when set and is absent otherwise.
type ForceOff struct {
	off bool
}

// ForceOffFromAny reads a sparse-map value. Only an explicit false disables.
func ForceOffFromAny(raw any) ForceOff {
	b, ok := raw.(bool)
	return ForceOff{off: ok && !b}
}

// Disabled returns a ForceOff that disables the feature.
func Disabled() ForceOff {
	return ForceOff{off: true}
}

// IsOff reports whether the workspace disables the feature.
func (f ForceOff) IsOff() bool {
	return f.off
}

// Resolve returns the effective value given the global setting.
func (f ForceOff) Resolve(global bool) bool {
	return global && !f.off
}

// Put writes f into m under key.
func (f ForceOff) Put(m map[string]any, key string) {
	if f.off {
		m[key] = false
		return
	}
	delete(m, key)
}
