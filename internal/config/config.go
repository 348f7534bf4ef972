// Package config defines all configuration structures for molscreen.
// No I/O or parsing logic lives here, only plain data types and validation;
// loading is handled by loader.go.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigins lists CORS origins permitted to call the JSON API.
	// Empty means same-origin only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PredictorConfig holds the external prediction-service connection
// parameters.
type PredictorConfig struct {
	// BaseURL is the root of the prediction API; the client POSTs to
	// {BaseURL}/api/predict.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds a single prediction call.  Zero means no timeout,
	// matching the historical client behavior; operators can tighten it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// InputConfig holds upload-ingestion tunables.
type InputConfig struct {
	// MaxUploadBytes caps the multipart request body.  The limit is also
	// surfaced in user-facing copy on the page.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// SessionConfig holds browser-session parameters.
type SessionConfig struct {
	// CookieName is the session cookie's name.
	CookieName string `mapstructure:"cookie_name"`

	// Secret authenticates session cookies.  Randomized at startup when
	// empty; set it explicitly to keep sessions across restarts.
	Secret string `mapstructure:"secret"`

	// TTL is how long an idle session's state is retained before the
	// sweeper evicts it.
	TTL time.Duration `mapstructure:"ttl"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Predictor PredictorConfig `mapstructure:"predictor"`
	Input     InputConfig     `mapstructure:"input"`
	Session   SessionConfig   `mapstructure:"session"`
	Log       LogConfig       `mapstructure:"log"`
}

// Validate checks the configuration for values that would prevent the
// application from operating.  It is called by the loader after defaults
// are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Predictor.BaseURL == "" {
		return fmt.Errorf("predictor.base_url must be set")
	}
	u, err := url.Parse(c.Predictor.BaseURL)
	if err != nil {
		return fmt.Errorf("predictor.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("predictor.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Predictor.Timeout < 0 {
		return fmt.Errorf("predictor.timeout must not be negative")
	}
	if c.Input.MaxUploadBytes <= 0 {
		return fmt.Errorf("input.max_upload_bytes must be positive, got %d", c.Input.MaxUploadBytes)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name must be set")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}
