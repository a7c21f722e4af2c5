// Package app is roost's composition root.
//
// # Startup
//
//  1. Load ~/.config/roost/config.toml (defaults when missing)
//  2. InitializeRuntime (google/wire) builds the logger, snapshot cache,
//     host client, state.Store and Listener
//  3. Store.Load seeds the cache from disk, fetching from the host as needed
//  4. The Listener and the TUI run in an errgroup; quitting the TUI cancels
//     the listener
//
// # Data Flow
//
//	host ──push──→ Listener ──Dispatch──→ state.Store ──Subscribe──→ ui
//	  ↑                                                              │
//	  └──────────────── host.Commander (dialog Save) ←───────────────┘
//
// # Reconnects
//
// The push stream is retried with exponential backoff (2s doubling, capped
// at 30s). Every successful connect refreshes all snapshots because pushes
// sent while disconnected are not replayed.
//
// wire_gen.go is generated from wire.go; run go generate after changing the
// provider set.
package app
