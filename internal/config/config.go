// Package config provides unified configuration loading for selfsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/selfsim/internal/constants"
	"gopkg.in/yaml.v3"
)

// Store drivers accepted by StoreConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// SelfsimConfig contains all selfsim configuration settings.
type SelfsimConfig struct {
	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Server configures the browser view server.
	Server ServerConfig `json:"server" yaml:"server"`

	// Store selects the preset store backend.
	Store StoreConfig `json:"store" yaml:"store"`
}

// LoggingConfig configures selfsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run logging to .selfsim/runs.jsonl.
	Level string `json:"level" yaml:"level"`
}

// ServerConfig configures the HTTP view server.
type ServerConfig struct {
	// Addr is the listen address. "localhost:0" picks a free port.
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins lists origins permitted by CORS. Empty allows none
	// beyond same-origin requests.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`

	// RateLimit is the sustained API request rate per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the token bucket capacity.
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`
}

// StoreConfig selects where presets are kept.
type StoreConfig struct {
	// Driver is "sqlite" (default), "postgres" or "memory".
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the postgres connection string. Supports ${VAR} syntax.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// RedactedDSN returns the DSN with any password masked.
func (c StoreConfig) RedactedDSN() string {
	if c.DSN == "" {
		return ""
	}
	at := strings.LastIndex(c.DSN, "@")
	scheme := strings.Index(c.DSN, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return c.DSN
	}
	userinfo := c.DSN[scheme+3 : at]
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return c.DSN
	}
	return c.DSN[:scheme+3] + user + ":***" + c.DSN[at:]
}

// String implements fmt.Stringer to prevent accidental password logging.
func (c StoreConfig) String() string {
	return fmt.Sprintf("StoreConfig{Driver:%s, DSN:%s}", c.Driver, c.RedactedDSN())
}

// Default returns a SelfsimConfig with sensible defaults.
func Default() *SelfsimConfig {
	return &SelfsimConfig{
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:      constants.DefaultServerAddr,
			RateLimit: constants.DefaultRateLimit,
			RateBurst: constants.DefaultRateBurst,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
		},
	}
}

// DefaultPath returns ~/.selfsim/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, constants.DirName, constants.ConfigFileName), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.selfsim/config.yaml -> environment variables
func Load() (*SelfsimConfig, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath behaves like Load but reads the given file instead of the
// default location. An empty path falls back to Load.
func LoadPath(path string) (*SelfsimConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*SelfsimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the DSN
	config.Store.DSN = expandEnvVars(config.Store.DSN)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *SelfsimConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	validDrivers := map[string]bool{"": true, DriverSQLite: true, DriverPostgres: true, DriverMemory: true}
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store driver: %s (valid: sqlite, postgres, memory)", c.Store.Driver)
	}
	if c.Store.Driver == DriverPostgres && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative, got %v", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 0 {
		return fmt.Errorf("rate_burst must be non-negative, got %d", c.Server.RateBurst)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *SelfsimConfig) {
	if v := os.Getenv("SELFSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("SELFSIM_SERVER_ADDR"); v != "" {
		config.Server.Addr = v
	}

	if v := os.Getenv("SELFSIM_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Server.RateLimit = f
		}
	}

	if v := os.Getenv("SELFSIM_STORE_DRIVER"); v != "" {
		config.Store.Driver = v
	}

	if v := os.Getenv("SELFSIM_STORE_DSN"); v != "" {
		config.Store.DSN = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
