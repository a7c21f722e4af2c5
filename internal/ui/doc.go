// Package ui is the Bubble Tea front end for roost.
//
// The root Model reads everything it shows from a state.Store snapshot and
// re-reads it whenever the store reports a change. Edits happen in modal
// dialogs built from dialog.Spec values; a dialog's Save runs as a tea.Cmd
// so host round trips never block rendering, and the result comes back to
// the loop as a message. Views:
//
//   - Workspaces: the ordered workspace list with load state and badge
//     counts, plus a detail pane showing each per-workspace setting resolved
//     against the global preferences (and, with s, where the value comes from).
//   - Preferences: a scrollable dump of the global and system preference sets.
//
// Host notices (restart required, reload offered) show as a banner until
// dismissed with esc.
package ui
