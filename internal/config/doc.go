// Package config provides 12-factor configuration for the portecho tool.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Echo: message count, payload size, per-operation timeout
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("sending %d messages\n", cfg.Echo.Messages)
//
// Environment Variables:
//   - ECHO_MESSAGES, ECHO_PAYLOAD, ECHO_TIMEOUT
//   - LOG_LEVEL, LOG_DEV
package config
