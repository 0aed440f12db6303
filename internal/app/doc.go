// Package app provides the orchestration layer for the dispatch application.
//
// # Overview
//
// This package wires together configuration, the LogiTrack API client, the
// session, the background pollers, and the UI to create the complete dispatch
// TUI experience. It serves as the composition root where all dependencies
// are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load dispatch configuration from ~/.config/dispatch/config.toml
//  2. Restore any persisted session from ~/.config/dispatch/session.toml
//  3. Initialize the HTTP client for the LogiTrack API
//  4. Create the shared state.Store instances for UI and poller coordination
//  5. Build the route deriver when a maps API key is configured
//  6. Launch the background poller goroutines for continuous updates
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Components
//
//   - app.go: Main Run function and the App collaborator bundle
//   - pollers.go: Background goroutines that refresh couriers, stats,
//     the selected courier, the device position, and the location report
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read dispatch config
//	       ├─────> session.Load()     Restore persisted session
//	       ├─────> api.NewClient()    Create HTTP client
//	       ├─────> state.Store{}      Shared state containers
//	       ├─────> route.NewDeriver() Optional, needs maps key
//	       ├─────> startPollers()     Launch background updates
//	       └─────> ui.Run()           Start TUI (blocks)
//
//	Background Poller Loops:
//	┌─────────────────────────────────────────┐
//	│ poll.Start() goroutines                 │
//	│  ├─> ActiveCouriers()   every 5s        │
//	│  ├─> FetchStats()       every 60s       │
//	│  ├─> Courier(selected)  every 30s       │
//	│  ├─> locator.Current()  every 15s       │
//	│  └─> ReportLocation()   every 30s       │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// Each poller runs continuously in the background at its own cadence. On each
// tick it fetches from the LogiTrack API and replaces the matching store
// snapshot atomically. Errors are logged and polling continues; a failed tick
// only means waiting for the next natural one. The courier poller additionally
// reconciles the active selection, auto-cancelling it with a notice when the
// selected courier is no longer reported by the server.
//
// The UI reads snapshots from the stores at its own refresh rate (one
// second). This separation keeps the UI responsive during slow API calls.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file present but invalid
//   - API client initialization failure
//   - Directions provider initialization failure
//
// Recoverable errors (logged, polling continues):
//   - Periodic fetch failures for any collection
//   - Network timeouts during polling
//   - Geolocation failures (degrade to the default map centre)
//
// Note that an unreachable server is NOT fatal at startup: the operator sees
// the offline indicator and the app recovers as soon as polling succeeds.
//
// # Configuration
//
// The Options struct allows callers to customize:
//
//   - ConfigPath: Path to config.toml (default: ~/.config/dispatch/config.toml)
//   - SessionPath: Path to the persisted session (default: ~/.config/dispatch/session.toml)
//   - PollEvery: Courier polling interval in seconds (default: 5 seconds)
//
// # Design Rationale
//
// This package intentionally keeps orchestration logic minimal and focused.
// Business logic lives in domain packages (api, state, selection, route,
// inventory, session, ui). The app package simply connects these pieces with
// sensible defaults for the single-operator dashboard use case.
package app
