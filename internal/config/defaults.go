package config

import "time"

// Default values applied to unset fields.  The upload cap mirrors the 1MB
// figure shown in the page's user-facing copy.
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPredictorBaseURL = "http://localhost:5000"
	DefaultPredictorTimeout = 0 // no timeout

	DefaultMaxUploadBytes = 1 << 20

	DefaultSessionCookieName = "molscreen_session"
	DefaultSessionTTL        = 30 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"
)

// ApplyDefaults fills every zero-valued field of cfg with its default.
// Predictor.Timeout is left alone: zero is a meaningful value there.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Predictor.BaseURL == "" {
		cfg.Predictor.BaseURL = DefaultPredictorBaseURL
	}
	if cfg.Input.MaxUploadBytes == 0 {
		cfg.Input.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultSessionCookieName
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
