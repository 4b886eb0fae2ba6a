// Package app wires oxdash together.
//
// # Overview
//
// Setup resolves configuration, opens key/value storage and builds the API
// client. Run then starts the status poller and hands its store to the TUI,
// blocking until the user quits or the context is cancelled. Check performs a
// single poll for scripting and prints a report.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config.toml and OXPRINT_API_URL
//	       ├─────> storage.Open()     Token and theme preferences
//	       ├─────> api.NewClient()    Token read fresh on every request
//	       ├─────> poller.Start()     Immediate check, then every interval
//	       └─────> ui.Run()           Reads poller snapshots (blocks)
//
// # Error Handling
//
// Configuration and client construction errors are returned from Setup.
// Failed health checks never are: they become a Disconnected or Error state
// and the poller keeps going. Log output is redirected to the configured log
// file so it cannot corrupt the alternate screen.
package app
