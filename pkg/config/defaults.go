package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultArchiveKeep    = 50
)

// Environment variable names.
const (
	EnvArchivePath = "CHATLYZE_ARCHIVE"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	// Override the archive path from environment if set
	if path := os.Getenv(EnvArchivePath); path != "" {
		c.Archive.Path = path
	}
}
