// Configuration loading for molscreen: YAML file plus MOLSCREEN_* env
// variable overrides via viper, defaults, and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "MOLSCREEN"

// newViper builds a pre-configured viper instance: YAML file type,
// MOLSCREEN_ env prefix, automatic env binding, and a key replacer that
// maps "." to "_" so "predictor.base_url" resolves to
// "MOLSCREEN_PREDICTOR_BASE_URL".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys declares every configuration key with its default so that
// viper's AutomaticEnv binding resolves MOLSCREEN_* variables even when the
// key is absent from the config file (env-only keys are invisible to
// Unmarshal otherwise).
func registerKeys(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("predictor.base_url", DefaultPredictorBaseURL)
	v.SetDefault("predictor.timeout", DefaultPredictorTimeout)
	v.SetDefault("input.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("session.cookie_name", DefaultSessionCookieName)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", DefaultSessionTTL)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output", DefaultLogOutput)
}

// Load reads the YAML file at configPath, merges MOLSCREEN_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from MOLSCREEN_* environment
// variables with no config file, the preferred strategy for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  Intended for hot-reloading
// non-critical settings such as log level; callers apply only the safe
// subset at runtime.  A change that fails to parse or validate is dropped
// without invoking onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; callers should have called Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}
