// Package config loads oxdash settings from a TOML file.
//
// # Resolution Order
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/oxdash/config.toml
//  3. If the file does not exist, fall back to defaults
//  4. Blank fields fall back to their defaults
//  5. OXPRINT_API_URL, when set, replaces api_url
//
// Command-line flags are applied by the caller after Load.
//
// # Default Values
//
//   - API URL: http://localhost:8080
//   - Poll interval: 30s
//   - Request timeout: 10s
//   - Storage file: ~/.config/oxdash/storage.toml
//   - Log file: ~/.local/state/oxdash/oxdash.log
//
// # TOML Format
//
//	api_url = "http://printer.local:8080"
//	poll_interval = "30s"
//	request_timeout = "10s"
//	storage_path = "~/.config/oxdash/storage.toml"
//	log_file = "~/.local/state/oxdash/oxdash.log"
//
// Durations use time.ParseDuration syntax and must be positive. Tilde
// expansion is performed on paths.
package config
