package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"authstate/internal/authdisk"
	"authstate/internal/broadcast"
	"authstate/internal/store"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home             string        `yaml:"home"`              // state directory, e.g. $HOME/.authstate
	Backend          string        `yaml:"backend"`           // file, leveldb, badger or memory
	KeyPrefix        string        `yaml:"key_prefix"`        // namespace for backing keys
	SubscriberBuffer int           `yaml:"subscriber_buffer"` // per-subscriber queue length
	Secure           SecureConfig  `yaml:"secure"`
	Logging          LoggingConfig `yaml:"logging"`
}

// SecureConfig enables passphrase sealing of secret attributes.
type SecureConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Passphrase string `yaml:"-"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Backend:          store.BackendFile,
		KeyPrefix:        authdisk.DefaultKeyPrefix,
		SubscriberBuffer: broadcast.DefaultBuffer,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultHome returns ~/.authstate.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".authstate"), nil
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment variables override values from the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML. The passphrase is never written.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AUTHSTATE_HOME"); v != "" {
		c.Home = v
	}
	if v := os.Getenv("AUTHSTATE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("AUTHSTATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AUTHSTATE_PASSPHRASE"); v != "" {
		c.Secure.Passphrase = v
	}
}

// Validate checks the configuration before wiring.
func (c *Config) Validate() error {
	switch c.Backend {
	case store.BackendFile, store.BackendLevelDB, store.BackendBadger, store.BackendMemory, "":
	default:
		return fmt.Errorf("invalid backend: %s", c.Backend)
	}
	if c.Home == "" && c.Backend != store.BackendMemory {
		return fmt.Errorf("home directory not configured")
	}
	if c.SubscriberBuffer < 0 {
		return fmt.Errorf("invalid subscriber buffer: %d", c.SubscriberBuffer)
	}
	if c.Secure.Enabled && c.Secure.Passphrase == "" {
		return fmt.Errorf("secure storage enabled but no passphrase (set -p or AUTHSTATE_PASSPHRASE)")
	}
	return nil
}
