package config

import "time"

// Config holds runtime settings for the Inkwell CLI.
//
// Fields:
//   - ServiceURL: base URL of the hosted Inkwell service.
//   - APIKey: project API key attached to every request.
//   - SessionBackend: where the session is persisted (memory|file|redis).
//   - SessionFile: JSON session path for the file backend; empty means the
//     per-user config directory.
//   - RedisURL: connection URL for the redis backend.
//   - CacheTTL: how long a fetched document list stays fresh.
//   - SearchDebounce: pause collapsing typeahead keystrokes into one search.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: debug|info|warn|error.
type Config struct {
	ServiceURL     string
	APIKey         string
	SessionBackend string
	SessionFile    string
	RedisURL       string
	CacheTTL       time.Duration
	SearchDebounce time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServiceURL = "https://api.inkwell.app"
	c.APIKey = ""
	c.SessionBackend = "file"
	c.SessionFile = ""
	c.RedisURL = "redis://127.0.0.1:6379"
	c.CacheTTL = 60 * time.Second
	c.SearchDebounce = 300 * time.Millisecond
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was named), the environment, and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
