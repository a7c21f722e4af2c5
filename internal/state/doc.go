// Package state mirrors host-owned preferences and workspaces for the UI.
//
// # Overview
//
// The host process is authoritative for every preference and workspace
// record. Store keeps a local copy so views can read without a round trip,
// and keeps it current by applying the host's push notifications.
//
// # Architecture
//
//	Host (snapshots, pushes)          Consumers
//	┌──────────────────────┐        ┌────────────────────┐
//	│ FetchPreferences()   │ Load() │                    │
//	│ FetchWorkspaces()    │───────→│ store.Snapshot()   │
//	│ ...                  │        │ store.Effective()  │
//	│ push: set-workspace  │        │ store.Subscribe()  │
//	│      ↓               │        │                    │
//	│ store.Dispatch()     │───────→│ re-render          │
//	└──────────────────────┘        └────────────────────┘
//
// # Loading
//
// Load reads each snapshot from the kv store under its storage key
// ("preferences", "systemPreferences", "workspaces", "workspaceMetas",
// "pauseNotificationsInfo"). A missing or corrupt snapshot is fetched from
// the host and written back. The local copy is a warm-start optimization and
// may be deleted at any time.
//
// # Update Semantics
//
//	ApplyPreferenceChange(name, v)    → preferences[name] = v
//	ApplyWorkspaceChange(id, partial) → shallow merge, create if absent
//	ApplyWorkspaceChange(id, nil)     → delete workspace
//	ApplyWorkspaces(all)              → replace
//
// Every apply re-persists the full snapshot it touched. Persistence errors
// are logged and do not undo the in-memory change.
//
// Nothing here is optimistic: dialogs commit by sending host commands, and
// the cache changes only when the host pushes the result back.
//
// # Concurrency Model
//
// Reads take a read lock and return copies. Applies are serialized, and
// subscribers are called after each apply, in apply order, on the applying
// goroutine. Subscribers must not apply changes themselves.
package state
