// Package config loads runtime configuration for the Inkwell CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv), with a .env file loaded first.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Inkwell service
//	-k string   project API key
//	-s string   session backend: memory, file or redis
//	-t int      document cache TTL (seconds)
//	-l string   log level: debug, info, warn or error
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "60s" or integer nanoseconds:
//
//	{
//	  "service_url": "https://api.inkwell.app",
//	  "api_key": "iw_live_...",
//	  "session_backend": "file",
//	  "cache_ttl": "60s",
//	  "search_debounce": "300ms",
//	  "request_timeout": "10s",
//	  "log_level": "info"
//	}
//
// # Environment
//
// Every field can also be set through INKWELL_* variables, e.g.
// INKWELL_SERVICE_URL, INKWELL_CACHE_TTL ("90s"), INKWELL_LOG_LEVEL.
//
// Primary API
//
//   - type Config                     — holds service, session and cache settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, env, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
package config
