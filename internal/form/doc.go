// Package form holds the transient edit buffer behind a dialog.
//
// A Buffer is seeded when its dialog opens and merged field by field as the
// user edits. After every merge the buffer is deep-cleaned: nil values, empty
// strings and empty collections are removed recursively, so an absent key
// always means "not set" (for workspace overrides, "use the global value").
//
// Buffers are never reconciled with host pushes while open. Callers reseed on
// every open.
package form
