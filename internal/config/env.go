package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the environment.
//
// A .env file in the working directory is loaded first (missing file is
// fine), then INKWELL_* variables override any values set so far. Duration
// variables accept time.ParseDuration syntax ("90s", "250ms"); unparsable
// values panic, matching the JSON loader.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	cfg.ServiceURL = getEnv("INKWELL_SERVICE_URL", cfg.ServiceURL)
	cfg.APIKey = getEnv("INKWELL_API_KEY", cfg.APIKey)
	cfg.SessionBackend = getEnv("INKWELL_SESSION_BACKEND", cfg.SessionBackend)
	cfg.SessionFile = getEnv("INKWELL_SESSION_FILE", cfg.SessionFile)
	cfg.RedisURL = getEnv("INKWELL_REDIS_URL", cfg.RedisURL)
	cfg.CacheTTL = getEnvDuration("INKWELL_CACHE_TTL", cfg.CacheTTL)
	cfg.SearchDebounce = getEnvDuration("INKWELL_SEARCH_DEBOUNCE", cfg.SearchDebounce)
	cfg.RequestTimeout = getEnvDuration("INKWELL_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.LogLevel = getEnv("INKWELL_LOG_LEVEL", cfg.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
