// Package config reads process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the fastwell process.
type Config struct {
	// DBPath is the SQLite database file. Defaults to ~/.fastwell/fastwell.db.
	DBPath string

	// DefaultTimezone is the fallback IANA zone for schedules that carry
	// none, and the bucketing zone for streak statistics.
	DefaultTimezone string

	// MonitorInterval is how often the auto-start monitor polls for due
	// schedules.
	MonitorInterval time.Duration

	// MetricsAddr, when non-empty, serves Prometheus metrics and a health
	// endpoint on this address while the monitor runs.
	MetricsAddr string

	// RetryMaxAttempts and RetryBaseDelay tune the transient-error retry
	// policy used by the monitor.
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

// DefaultConfig returns a Config with sensible defaults. The metrics
// listener is disabled by default.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DBPath:           filepath.Join(home, ".fastwell", "fastwell.db"),
		DefaultTimezone:  "UTC",
		MonitorInterval:  time.Minute,
		MetricsAddr:      "",
		RetryMaxAttempts: 3,
		RetryBaseDelay:   250 * time.Millisecond,
	}, nil
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset values. A .env file in the working directory is
// loaded first; existing process variables win over file entries.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	if v := os.Getenv("FASTWELL_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FASTWELL_DEFAULT_TZ"); v != "" {
		cfg.DefaultTimezone = v
	}
	if v := os.Getenv("FASTWELL_MONITOR_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.MonitorInterval = d
		}
	}
	if v := os.Getenv("FASTWELL_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("FASTWELL_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RetryMaxAttempts = n
		}
	}
	if v := os.Getenv("FASTWELL_RETRY_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RetryBaseDelay = d
		}
	}

	return cfg, nil
}

// Location resolves DefaultTimezone, falling back to UTC when the zone
// name does not load.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
