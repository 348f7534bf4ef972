package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultPredictorBaseURL, cfg.Predictor.BaseURL)
	assert.EqualValues(t, 1<<20, cfg.Input.MaxUploadBytes)
	assert.Equal(t, DefaultSessionCookieName, cfg.Session.CookieName)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing base url", func(c *Config) { c.Predictor.BaseURL = "" }, "predictor.base_url"},
		{"bad scheme", func(c *Config) { c.Predictor.BaseURL = "ftp://host" }, "scheme"},
		{"negative timeout", func(c *Config) { c.Predictor.Timeout = -time.Second }, "predictor.timeout"},
		{"zero upload cap", func(c *Config) { c.Input.MaxUploadBytes = -1 }, "max_upload_bytes"},
		{"no cookie name", func(c *Config) { c.Session.CookieName = "" }, "cookie_name"},
		{"zero ttl", func(c *Config) { c.Session.TTL = -time.Minute }, "session.ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9999
predictor:
  base_url: https://predict.example.com
  timeout: 45s
input:
  max_upload_bytes: 2097152
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("MOLSCREEN_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://predict.example.com", cfg.Predictor.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Predictor.Timeout)
	assert.EqualValues(t, 2<<20, cfg.Input.MaxUploadBytes)
	// Env beats file.
	assert.Equal(t, "warn", cfg.Log.Level)
	// Defaults fill unset sections.
	assert.Equal(t, DefaultSessionTTL, cfg.Session.TTL)
}

func TestWatch_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	changed := make(chan *Config, 4)
	Watch(path, func(cfg *Config) { changed <- cfg })

	// Give the watcher a moment to register before rewriting.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Log.Level == "debug" {
				// Untouched sections keep their defaults across a reload.
				assert.Equal(t, DefaultPort, cfg.Server.Port)
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOLSCREEN_PREDICTOR_BASE_URL", "http://pred:5000")
	t.Setenv("MOLSCREEN_SERVER_PORT", "8081")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://pred:5000", cfg.Predictor.BaseURL)
	assert.Equal(t, 8081, cfg.Server.Port)
}
