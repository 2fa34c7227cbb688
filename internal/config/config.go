// Package config provides centralized configuration for the importer.
// Settings come from environment variables with sensible defaults and are
// validated on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	CRM     CRMConfig
	Import  ImportConfig
	History HistoryConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings for `importer serve`.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// CRMConfig holds the remote CRM endpoint settings.
type CRMConfig struct {
	// BaseURL is the CRM webhook base URL (required), e.g.
	// https://example.bitrix24.com/rest/1/abc123
	BaseURL string `env:"CRM_BASE_URL" envAlt:"CRM_WEBHOOK_URL" required:"true"`

	// Timeout is the per-request timeout for CRM calls (default: 30s)
	Timeout time.Duration `env:"CRM_TIMEOUT" default:"30s"`
}

// ImportConfig holds import processing settings.
type ImportConfig struct {
	// MaxFileSize is the maximum allowed input file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"104857600"`

	// FileFetchTimeout bounds each remote file retrieval (default: 60s)
	FileFetchTimeout time.Duration `env:"IMPORT_FILE_FETCH_TIMEOUT" default:"60s"`
}

// HistoryConfig holds the optional run-history store settings.
type HistoryConfig struct {
	// DatabaseURL enables run history when set; PostgreSQL connection string.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log output format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate checks that the configuration is usable.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.CRM.BaseURL == "" {
		errs = append(errs, "CRM_BASE_URL is required")
	}
	if c.CRM.Timeout <= 0 {
		errs = append(errs, "CRM_TIMEOUT must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.FileFetchTimeout <= 0 {
		errs = append(errs, "IMPORT_FILE_FETCH_TIMEOUT must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
