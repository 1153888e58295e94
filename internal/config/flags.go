package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the Inkwell service (default from Config)
//	-k string   project API key (default from Config)
//	-s string   session backend: memory, file or redis (default from Config)
//	-t int      document cache TTL in seconds (default from Config)
//	-l string   log level: debug, info, warn or error (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServiceURL, "a", cfg.ServiceURL, "base URL of the Inkwell service")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "project API key")
	fs.StringVar(&cfg.SessionBackend, "s", cfg.SessionBackend, "session backend (memory|file|redis)")
	cacheTTL := fs.Int("t", int(cfg.CacheTTL.Seconds()), "document cache TTL (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.CacheTTL = time.Duration(*cacheTTL) * time.Second
}
