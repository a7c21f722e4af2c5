// Package config loads roost's TOML configuration.
//
// # Discovery
//
//  1. An explicit path (the -config flag) wins
//  2. Otherwise ~/.config/roost/config.toml
//  3. A missing file is not an error; defaults apply
//  4. Empty or whitespace-only fields fall back to their defaults
//
// # Fields
//
//	host_api_bind = "127.0.0.1:7621"              # host process HTTP/WebSocket API
//	cache_dir     = "~/.cache/roost"              # warm-start snapshots
//	log_file      = "~/.local/state/roost/roost.log"
//	log_level     = "info"                        # debug, info, warn, error
//
// Paths are tilde-expanded and made absolute. Parse errors are returned;
// the caller decides whether to abort.
package config
