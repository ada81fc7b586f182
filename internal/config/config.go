// Package config loads the quantbench configuration: defaults, then an
// optional YAML file, then environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quantbench/internal/domain"
	"quantbench/internal/marketdata"
	"quantbench/internal/straddle"
	"quantbench/internal/strategy/builtins"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for quantbench.
type Config struct {
	Storage    Storage          `yaml:"storage"`
	Alpaca     Alpaca           `yaml:"alpaca"`
	Logging    Logging          `yaml:"logging"`
	Backtest   Backtest         `yaml:"backtest"`
	Algorithms builtins.Params  `yaml:"algorithms"`
	Straddle   straddle.Config  `yaml:"straddle"`
	Earnings   EarningsCalendar `yaml:"earnings"`
}

// Storage holds paths for the bar cache and the results database.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	// CacheBars routes market-data requests through the parquet cache.
	CacheBars bool `yaml:"cache_bars"`
}

// Alpaca holds credentials and request policy for the Alpaca market-data API.
type Alpaca struct {
	APIKey          string        `yaml:"api_key"`
	APISecret       string        `yaml:"api_secret"`
	DataURL         string        `yaml:"data_url"`
	Feed            string        `yaml:"feed"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Backtest holds the defaults for the strategy comparison.
type Backtest struct {
	Tickers      []string `yaml:"tickers"`
	Balance      float64  `yaml:"balance"`
	Strategies   []string `yaml:"strategies"`
	LookbackDays int      `yaml:"lookback_days"`
	RTHOnly      bool     `yaml:"rth_only"`
	Concurrency  int      `yaml:"concurrency"`
}

// EarningsCalendar points at the YAML file of earnings dates.
type EarningsCalendar struct {
	File string `yaml:"file"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/quantbench.db",
			CacheBars:  true,
		},
		Alpaca: Alpaca{
			Feed:            "sip",
			RateLimitPerMin: 200,
			MaxRetries:      3,
			RetryBackoff:    time.Second,
		},
		Logging: Logging{Level: "info", Format: "text"},
		Backtest: Backtest{
			Tickers:      []string{"AMD", "NVDA", "TSLA", "AAPL", "MSFT", "GOOGL", "AMZN", "META"},
			Balance:      10_000,
			Strategies:   []string{"buy_hold", "trailing_stop", "grid"},
			LookbackDays: marketdata.MaxHourlyLookbackDays,
			Concurrency:  4,
		},
		Algorithms: builtins.DefaultParams(),
		Straddle:   straddle.DefaultConfig(),
		Earnings:   EarningsCalendar{File: "earnings.yaml"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load builds the configuration from defaults, the YAML file at path (when
// path is non-empty) and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, domain.ErrConfiguration)
			}
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %v: %w", path, err, domain.ErrConfiguration)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EARNINGS_FILE"); v != "" {
		cfg.Earnings.File = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// Validate checks every section and returns the first problem found, wrapped
// in domain.ErrConfiguration.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is empty: %w", domain.ErrConfiguration)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q is not json or text: %w", c.Logging.Format, domain.ErrConfiguration)
	}
	switch c.Alpaca.Feed {
	case "sip", "iex":
	default:
		return fmt.Errorf("alpaca.feed %q is not sip or iex: %w", c.Alpaca.Feed, domain.ErrConfiguration)
	}
	if c.Backtest.Balance <= 0 {
		return fmt.Errorf("backtest.balance must be > 0, got %v: %w", c.Backtest.Balance, domain.ErrConfiguration)
	}
	if c.Backtest.LookbackDays < 0 || c.Backtest.LookbackDays > marketdata.MaxHourlyLookbackDays {
		return fmt.Errorf("backtest.lookback_days must be within [0, %d], got %d: %w",
			marketdata.MaxHourlyLookbackDays, c.Backtest.LookbackDays, domain.ErrConfiguration)
	}
	if err := c.Algorithms.Validate(); err != nil {
		return err
	}
	return c.Straddle.Validate()
}

// HasAlpacaCredentials reports whether both API key and secret are set.
func (c *Config) HasAlpacaCredentials() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}
