// Package config provides 12-factor configuration management for the shell.
//
// Configuration is loaded from environment variables with sensible defaults,
// optionally overlaid by a local TOML file (the shell ships one next to the
// binary on desktop installs). Environment always wins over the file.
//
// Configuration Sections:
//   - Server: HTTP API settings (port, host)
//   - Bridge: privacy backend endpoint and circuit breaker knobs
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting for the API surface
//   - Downloads: poll cadence for the downloads panel
//   - Navigation: search engine and settle delay for tab loads
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Bridge at %s\n", cfg.Bridge.Endpoint)
//
// Environment Variables:
//   - PORT, HOST, BRIDGE_ENDPOINT, BRIDGE_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
//   - DOWNLOAD_POLL_INTERVAL, NAV_SETTLE_DELAY, NAV_SEARCH_URL
package config
