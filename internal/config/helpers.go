package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	if c.Models.Store != ModelStoreFilesystem {
		return nil
	}
	if err := os.MkdirAll(c.Models.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory %s: %w", c.Models.Dir, err)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// HistoryRoutesEnabled reports whether the history browsing routes are mounted
func (c *ServerConfig) HistoryRoutesEnabled() bool {
	return c.Profile == ProfileFull
}
