// File path: internal/catalog/config.go
package catalog

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the SQLite catalog connection.
type Config struct {
	Path string

	MaxOpenConns int
	MaxIdleConns int

	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

// Merge overlays the non-zero fields of the override onto the base.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Path) != "" {
		result.Path = strings.TrimSpace(override.Path)
	}
	if override.MaxOpenConns > 0 {
		result.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		result.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.BusyTimeout > 0 {
		result.BusyTimeout = override.BusyTimeout
	}
	return result
}

// LoadConfig reads the catalog configuration from BILLSCOPE_DB_*
// environment variables and applies defaults.
func LoadConfig() Config {
	cfg := Config{Path: strings.TrimSpace(os.Getenv("BILLSCOPE_DB_PATH"))}
	if raw := strings.TrimSpace(os.Getenv("BILLSCOPE_DB_MAX_OPEN_CONNS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			cfg.MaxOpenConns = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("BILLSCOPE_DB_MAX_IDLE_CONNS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			cfg.MaxIdleConns = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("BILLSCOPE_DB_CONN_MAX_LIFETIME")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			cfg.ConnMaxLifetime = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("BILLSCOPE_DB_BUSY_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			cfg.BusyTimeout = parsed
		}
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 15 * time.Minute
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
}
