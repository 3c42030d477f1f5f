package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"StockTracker/internal/chart"

	"gopkg.in/yaml.v3"
)

// Supported data providers.
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
	ProviderMock         = "mock"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		Provider      string        `yaml:"provider"`
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		Timeout       time.Duration `yaml:"timeout"`
		MaxRetries    int           `yaml:"max_retries"`
		RetryInterval time.Duration `yaml:"retry_interval"`
	} `yaml:"data_source"`
	Chart struct {
		DefaultSymbol string `yaml:"default_symbol"`
		chart.Layout  `yaml:",inline"`
	} `yaml:"chart"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		PruneCron   string `yaml:"prune_cron"`
	} `yaml:"schedule"`
	History struct {
		SQLitePath string        `yaml:"sqlite_path"`
		Retention  time.Duration `yaml:"retention"`
	} `yaml:"history"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DEFAULT_SYMBOL"); v != "" {
		cfg.Chart.DefaultSymbol = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.History.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	cfg.DataSource.Provider = strings.ToLower(strings.TrimSpace(cfg.DataSource.Provider))
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderAlphaVantage
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 15 * time.Second
	}
	if cfg.DataSource.RetryInterval == 0 {
		cfg.DataSource.RetryInterval = 500 * time.Millisecond
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	cfg.Chart.DefaultSymbol = strings.ToUpper(strings.TrimSpace(cfg.Chart.DefaultSymbol))
	if cfg.Chart.DefaultSymbol == "" {
		cfg.Chart.DefaultSymbol = "LLY"
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = chart.DefaultLayout.Width
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = chart.DefaultLayout.Height
	}
	if cfg.Chart.Margin == (chart.Margin{}) {
		cfg.Chart.Margin = chart.DefaultLayout.Margin
	}
	if cfg.History.SQLitePath == "" {
		cfg.History.SQLitePath = "data/stock_tracker.db"
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = 30 * 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderAlphaVantage:
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for provider %q", ProviderAlphaVantage)
		}
	case ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Timeout < 0 {
		return fmt.Errorf("data_source.timeout must not be negative")
	}
	if c.DataSource.MaxRetries < 0 {
		return fmt.Errorf("data_source.max_retries must not be negative")
	}
	if c.Chart.InnerWidth() <= 0 || c.Chart.InnerHeight() <= 0 {
		return fmt.Errorf("chart size %vx%v leaves no room inside the margins", c.Chart.Width, c.Chart.Height)
	}
	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative")
	}
	return nil
}
