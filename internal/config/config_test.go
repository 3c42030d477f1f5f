package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockTracker/internal/chart"
)

var envKeys = []string{
	"ALPHAVANTAGE_API_KEY", "DATA_PROVIDER", "DATA_BASE_URL", "HTTPS_PROXY",
	"LISTEN_ADDR", "DEFAULT_SYMBOL", "SQLITE_PATH", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should be allowed: %v", err)
	}
	if cfg.DataSource.Provider != ProviderAlphaVantage {
		t.Errorf("provider = %q", cfg.DataSource.Provider)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Chart.DefaultSymbol != "LLY" {
		t.Errorf("default symbol = %q", cfg.Chart.DefaultSymbol)
	}
	if cfg.Chart.Layout != chart.DefaultLayout {
		t.Errorf("layout = %+v, want %+v", cfg.Chart.Layout, chart.DefaultLayout)
	}
	if cfg.DataSource.Timeout != 15*time.Second || cfg.DataSource.MaxRetries != 0 {
		t.Errorf("timeout/retries = %v/%d", cfg.DataSource.Timeout, cfg.DataSource.MaxRetries)
	}
	if cfg.History.SQLitePath != "data/stock_tracker.db" || cfg.History.Retention != 30*24*time.Hour {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9000"
data_source:
  provider: Yahoo
  timeout: 5s
  max_retries: 2
  retry_interval: 250ms
chart:
  default_symbol: ibm
  width: 600
  height: 400
  margin: {top: 20, right: 30, bottom: 20, left: 30}
schedule:
  refresh_cron: "0 0 6 * * *"
history:
  retention: 72h
`)
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("env should override file addr, got %q", cfg.Server.Addr)
	}
	if cfg.DataSource.Provider != ProviderYahoo {
		t.Errorf("provider should be normalised, got %q", cfg.DataSource.Provider)
	}
	if cfg.DataSource.Timeout != 5*time.Second || cfg.DataSource.MaxRetries != 2 || cfg.DataSource.RetryInterval != 250*time.Millisecond {
		t.Errorf("data source = %+v", cfg.DataSource)
	}
	if cfg.Chart.DefaultSymbol != "IBM" {
		t.Errorf("default symbol = %q", cfg.Chart.DefaultSymbol)
	}
	want := chart.Layout{Width: 600, Height: 400, Margin: chart.Margin{Top: 20, Right: 30, Bottom: 20, Left: 30}}
	if cfg.Chart.Layout != want {
		t.Errorf("layout = %+v, want %+v", cfg.Chart.Layout, want)
	}
	if cfg.Schedule.RefreshCron != "0 0 6 * * *" || cfg.Schedule.PruneCron != "" {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.History.Retention != 72*time.Hour {
		t.Errorf("retention = %v", cfg.History.Retention)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"alphavantage needs key", func(c *Config) {}, "api_key"},
		{"alphavantage with key", func(c *Config) { c.DataSource.APIKey = "demo" }, ""},
		{"mock needs nothing", func(c *Config) { c.DataSource.Provider = ProviderMock }, ""},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "not supported"},
		{"negative retries", func(c *Config) {
			c.DataSource.Provider = ProviderMock
			c.DataSource.MaxRetries = -1
		}, "max_retries"},
		{"margins swallow chart", func(c *Config) {
			c.DataSource.Provider = ProviderMock
			c.Chart.Width = 80
		}, "no room"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
