package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/mauv0809/financial-explorer/internal/ingest"
	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration. Values come from an optional TOML file,
// then environment variables override them.
type Config struct {
	Port           string       `toml:"port"`
	LogLevel       string       `toml:"log_level"`
	TimeoutSeconds int          `toml:"timeout_seconds"`
	Statements     SourceConfig `toml:"statements"`
	Metrics        SourceConfig `toml:"metrics"`
}

// SourceConfig describes one upstream API.
type SourceConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Limit   int    `toml:"limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:           "8080",
		LogLevel:       "info",
		TimeoutSeconds: 30,
		Statements: SourceConfig{
			BaseURL: ingest.DefaultStatementBaseURL,
			Limit:   ingest.DefaultStatementLimit,
		},
		Metrics: SourceConfig{
			BaseURL: ingest.DefaultMetricsBaseURL,
		},
	}
}

// Load reads path if it exists and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Statements.APIKey, "FMP_API_KEY")
	setString(&c.Statements.BaseURL, "FMP_BASE_URL")
	setString(&c.Metrics.APIKey, "FINNHUB_API_KEY")
	setString(&c.Metrics.BaseURL, "FINNHUB_BASE_URL")

	if err := setInt(&c.Statements.Limit, "FMP_LIMIT"); err != nil {
		return err
	}
	return setInt(&c.TimeoutSeconds, "HTTP_TIMEOUT_SECONDS")
}

// Timeout is the per-request timeout for upstream calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MissingCredentials lists the environment variables of sources without an API key.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Statements.APIKey == "" {
		missing = append(missing, "FMP_API_KEY")
	}
	if c.Metrics.APIKey == "" {
		missing = append(missing, "FINNHUB_API_KEY")
	}
	return missing
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}
