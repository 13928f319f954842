// Package api provides the HTTP server infrastructure for WasteNet-Go.
// The JSON endpoints live in the v2 subpackage.
package api

import (
	"fmt"
	"net"
	"time"

	"github.com/wastenet/wastenet-go/internal/conf"
)

// Default constants for the HTTP server.
const (
	DefaultReadTimeout = 30 * time.Second
	// DefaultWriteTimeout exceeds the summary timeout so /api/analyze can finish.
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = 20 << 20
)

// Config holds the HTTP server configuration.
type Config struct {
	Listen         string   // host:port to listen on
	AllowedOrigins []string // CORS allowed origins

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int64

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:          ":8080",
		AllowedOrigins:  []string{"http://localhost:3000"},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
	}
}

// ConfigFromSettings creates a Config from the application settings.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()

	if settings.WebServer.Listen != "" {
		cfg.Listen = settings.WebServer.Listen
	}
	if len(settings.WebServer.CORSOrigins) > 0 {
		cfg.AllowedOrigins = settings.WebServer.CORSOrigins
	}
	if settings.WebServer.MaxUploadSize > 0 {
		cfg.BodyLimit = settings.WebServer.MaxUploadSize
	}
	cfg.Debug = settings.Debug

	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("body limit must be positive")
	}
	return nil
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Server Config: listen=%s, origins=%v, body_limit=%d, debug=%v",
		c.Listen, c.AllowedOrigins, c.BodyLimit, c.Debug)
}
