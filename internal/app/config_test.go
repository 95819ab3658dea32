package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("AUTHSTATE_HOME", "")
	t.Setenv("AUTHSTATE_BACKEND", "")
	t.Setenv("AUTHSTATE_LOG_LEVEL", "")
	t.Setenv("AUTHSTATE_PASSPHRASE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	t.Setenv("AUTHSTATE_HOME", "")
	t.Setenv("AUTHSTATE_BACKEND", "")
	t.Setenv("AUTHSTATE_LOG_LEVEL", "")
	t.Setenv("AUTHSTATE_PASSPHRASE", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
home: /var/lib/authstate
backend: leveldb
key_prefix: device
subscriber_buffer: 4
secure:
  enabled: true
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/authstate", cfg.Home)
	assert.Equal(t, "leveldb", cfg.Backend)
	assert.Equal(t, "device", cfg.KeyPrefix)
	assert.Equal(t, 4, cfg.SubscriberBuffer)
	assert.True(t, cfg.Secure.Enabled)
	assert.Empty(t, cfg.Secure.Passphrase)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTHSTATE_HOME", "/tmp/override")
	t.Setenv("AUTHSTATE_BACKEND", "badger")
	t.Setenv("AUTHSTATE_LOG_LEVEL", "warn")
	t.Setenv("AUTHSTATE_PASSPHRASE", "hunter2")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/tmp/override", cfg.Home)
	assert.Equal(t, "badger", cfg.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "hunter2", cfg.Secure.Passphrase)
}

func TestSave_OmitsPassphrase(t *testing.T) {
	t.Setenv("AUTHSTATE_PASSPHRASE", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Home = "/data"
	cfg.Secure = SecureConfig{Enabled: true, Passphrase: "secret"}
	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", loaded.Home)
	assert.True(t, loaded.Secure.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with home", func(c *Config) { c.Home = "/h" }, false},
		{"memory without home", func(c *Config) { c.Backend = "memory" }, false},
		{"file without home", func(c *Config) {}, true},
		{"unknown backend", func(c *Config) { c.Home = "/h"; c.Backend = "sqlite" }, true},
		{"negative buffer", func(c *Config) { c.Home = "/h"; c.SubscriberBuffer = -1 }, true},
		{"secure without passphrase", func(c *Config) { c.Home = "/h"; c.Secure.Enabled = true }, true},
		{"secure with passphrase", func(c *Config) {
			c.Home = "/h"
			c.Secure = SecureConfig{Enabled: true, Passphrase: "pw"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = NewLogger(LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
