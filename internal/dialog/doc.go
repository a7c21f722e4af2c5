// Package dialog defines the editing dialogs and their commit boundary.
//
// A Dialog pairs a form.Buffer with a Spec: the fields to show, the rule
// table to validate them with and the host commands a valid buffer turns
// into. Rule tables may depend on a discriminant field (the proxy mode, for
// example); changing a discriminant revalidates every field the new table
// names.
//
// Save never changes local state. It sends commands and closes; the host's
// push notifications update the cache afterwards.
package dialog
