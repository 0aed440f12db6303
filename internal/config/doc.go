// Package config handles loading and parsing dispatch configuration files.
//
// # Overview
//
// This package reads the dispatch TOML configuration to discover the
// LogiTrack API endpoint, the Google Maps API key, and the polling cadences.
// Everything has a default; dispatch works out of the box with no
// configuration file at all.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/dispatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. A .env file and the process environment may override the maps key
//
// # Default Values
//
//   - Config file: ~/.config/dispatch/config.toml
//   - API endpoint: https://vps.logitrack.site:40761
//   - Map centre: 53.4285, 14.5528 (Szczecin)
//   - Courier poll: 5s, stats poll: 60s, selected courier: 30s,
//     geolocation: 15s, location report: 30s
//
// # TOML Format
//
// Example config.toml:
//
//	api_base = "https://vps.logitrack.site:40761"
//	maps_api_key = "AIza..."
//	location_file = "~/.local/share/dispatch/position.json"
//	center_lat = 53.4285
//	center_lng = 14.5528
//	courier_poll_seconds = 5
//	stats_poll_seconds = 60
//
// All fields are optional. Tilde expansion is performed automatically.
//
// # Environment
//
// The maps API key can also come from the DISPATCH_MAPS_API_KEY environment
// variable, optionally loaded from a .env file in the working directory. The
// environment wins over the config file, so a key never has to be written to
// disk. With no key configured at all, route derivation is simply disabled.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//
// Missing config files are NOT an error - defaults are used instead.
//
// # Design Philosophy
//
// The config package is read-only and stateless - it loads configuration
// once at startup and returns an immutable Config struct. No global state
// or singleton patterns are used.
package config
