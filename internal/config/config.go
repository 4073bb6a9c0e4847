// Package config loads settings for the timetree CLI and MCP server.
//
// Values are layered in increasing precedence: built-in defaults, a YAML
// file, a .env file, environment variables, and finally command-line flags
// applied by the caller before Validate.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teemow/timetree/internal/logging"
	"github.com/teemow/timetree/internal/timetree"
	"github.com/teemow/timetree/internal/transport"
)

// Environment variables read by Load.
const (
	EnvToken      = "TIMETREE_ACCESS_TOKEN"
	EnvBaseURL    = "TIMETREE_BASE_URL"
	EnvTimezone   = "TIMETREE_TIMEZONE"
	EnvMaxRetries = "TIMETREE_MAX_RETRIES"
	EnvTimeout    = "TIMETREE_TIMEOUT"
	EnvLogLevel   = "TIMETREE_LOG_LEVEL"
	EnvLogFormat  = "TIMETREE_LOG_FORMAT"
)

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Config holds the connection, timezone and logging settings shared by the
// CLI commands and the MCP server.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"token"`
	Accept     string        `yaml:"accept"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// Timezone is the default zone for upcoming events and new events
	Timezone string `yaml:"timezone"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the log level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings. It has no token.
func Default() Config {
	return Config{
		BaseURL:    transport.DefaultBaseURL,
		Accept:     transport.DefaultAccept,
		Timeout:    transport.DefaultTimeout,
		MaxRetries: transport.DefaultMaxRetries,
		Timezone:   timetree.DefaultTimezone,
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (optional), the
// env file (DefaultEnvFile when empty; a missing default file is ignored) and
// the process environment. Variables already set in the environment win over
// the env file.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile(envFile string) error {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// ApplyEnv overrides fields from the variables visible through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvToken, &c.Token)
	str(EnvBaseURL, &c.BaseURL)
	str(EnvTimezone, &c.Timezone)
	str(EnvLogLevel, &c.Logging.Level)
	str(EnvLogFormat, &c.Logging.Format)

	if v, ok := lookup(EnvMaxRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxRetries, err)
		}
		c.MaxRetries = n
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}

	return nil
}

// Validate checks the settings needed to talk to the API.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("access token is required (set %s or --token)", EnvToken)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case logging.FormatJSON, logging.FormatText, logging.FormatColor:
	default:
		return fmt.Errorf("unknown log format %q, must be one of: json, text, color", c.Logging.Format)
	}

	return nil
}

// TransportConfig returns the transport settings derived from c.
func (c *Config) TransportConfig() transport.Config {
	return transport.Config{
		BaseURL:    c.BaseURL,
		Token:      c.Token,
		Accept:     c.Accept,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
	}
}
