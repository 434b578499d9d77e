// Package config handles CLI configuration loading and management.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load. Values set in the
// environment override the config file.
const (
	EnvConfigPath = "GENLANG_CONFIG"
	EnvAPIKey     = "GEMINI_API_KEY"
	EnvAPIKeyAlt  = "GOOGLE_API_KEY"
	EnvBaseURL    = "GENLANG_BASE_URL"
	EnvAPIVersion = "GENLANG_API_VERSION"
	EnvModel      = "GENLANG_MODEL"
	EnvPoolSize   = "GENLANG_POOL_SIZE"
	EnvTimeoutMS  = "GENLANG_TIMEOUT_MS"
	EnvLogLevel   = "GENLANG_LOG_LEVEL"
)

// Config represents the CLI configuration.
type Config struct {
	// APIKey is a clear-text key from the config file. Prefer the
	// keystore or the GEMINI_API_KEY environment variable; this field
	// exists for throwaway setups.
	APIKey string `yaml:"api_key,omitempty"`

	// KeyName selects which keystore entry holds the API key.
	KeyName string `yaml:"key_name,omitempty"`

	DefaultModel string `yaml:"default_model,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	APIVersion   string `yaml:"api_version,omitempty"`
	PoolSize     int    `yaml:"pool_size,omitempty"`
	TimeoutMS    int    `yaml:"timeout_ms,omitempty"`

	// LogLevel is a slog level name (debug, info, warn, error).
	// Unset or unrecognized values fall back to warn.
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultKeyName is the keystore entry used when key_name is not set.
const DefaultKeyName = "gemini"

// DefaultConfigPath returns the default configuration file path for the
// current platform, honoring GENLANG_CONFIG when set.
// - macOS/Linux: ~/.genlang/config.yaml
// - Windows: %USERPROFILE%\.genlang\config.yaml
func DefaultConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	var homeDir string
	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		return "config.yaml"
	}
	return filepath.Join(homeDir, ".genlang", "config.yaml")
}

// Load reads configuration from path and applies environment overrides.
// A missing file is not an error; the result then carries defaults and
// whatever the environment provides. A file that exists but cannot be
// read or parsed is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := getEnvFirst(EnvAPIKey, EnvAPIKeyAlt); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAPIVersion); v != "" {
		c.APIVersion = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.DefaultModel = v
	}
	if n, ok := getEnvInt(EnvPoolSize); ok {
		c.PoolSize = n
	}
	if n, ok := getEnvInt(EnvTimeoutMS); ok {
		c.TimeoutMS = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.KeyName == "" {
		c.KeyName = DefaultKeyName
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "gemini-2.5-flash"
	}
}

// Timeout converts TimeoutMS to a duration, zero meaning unset.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// SlogLevel parses LogLevel into a slog.Level, falling back to warn
// when the field is unset or unrecognized.
func (c *Config) SlogLevel() slog.Level {
	level := slog.LevelWarn
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return slog.LevelWarn
		}
	}
	return level
}

func getEnvFirst(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
