// Package config provides centralized configuration management. Settings
// come from an optional YAML file overridden by environment variables, with
// sensible defaults and fail-fast validation on startup.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	Table   TableConfig   `yaml:"table"`
	Rate    RateConfig    `yaml:"rate"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to.
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on.
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body.
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the per-request middleware timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Addr returns the host:port the server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UploadConfig holds file upload limits.
type UploadConfig struct {
	// MaxFileSize is the largest accepted upload in bytes.
	MaxFileSize int64 `yaml:"max_file_size" env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// AllowedExtensions lists accepted file extensions (with dot).
	AllowedExtensions []string `yaml:"allowed_extensions" env:"UPLOAD_ALLOWED_EXTENSIONS" default:".csv,.txt,.tsv"`

	// DefaultDelimiter separates fields when the uploader picks none.
	DefaultDelimiter string `yaml:"default_delimiter" env:"UPLOAD_DEFAULT_DELIMITER" default:";"`
}

// TableConfig holds table-session behavior.
type TableConfig struct {
	// FilterDebounce is the quiet interval before filter input commits.
	FilterDebounce time.Duration `yaml:"filter_debounce" env:"TABLE_FILTER_DEBOUNCE" default:"300ms"`

	// SessionTTL is how long an idle grid session is kept.
	SessionTTL time.Duration `yaml:"session_ttl" env:"TABLE_SESSION_TTL" default:"1h"`
}

// RateConfig holds per-IP rate limiting settings.
type RateConfig struct {
	// Enabled toggles the limiter.
	Enabled bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP budget within the window.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is "text" for development or "json" for production.
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Validate checks the configuration and reports every failure at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		errs = append(errs, "UPLOAD_ALLOWED_EXTENSIONS must not be empty")
	}
	if len([]rune(c.Upload.DefaultDelimiter)) != 1 {
		errs = append(errs, fmt.Sprintf("UPLOAD_DEFAULT_DELIMITER (%q) must be a single character", c.Upload.DefaultDelimiter))
	}

	if c.Table.FilterDebounce < 0 {
		errs = append(errs, "TABLE_FILTER_DEBOUNCE must be non-negative")
	}
	if c.Table.SessionTTL <= 0 {
		errs = append(errs, "TABLE_SESSION_TTL must be positive")
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Delimiter returns the configured default delimiter as a rune.
func (u UploadConfig) Delimiter() rune {
	return []rune(u.DefaultDelimiter)[0]
}
