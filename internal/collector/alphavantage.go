package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockTracker/internal/model"

	"go.uber.org/zap"
)

const (
	DefaultAlphaVantageURL = "https://www.alphavantage.co"
	monthlyFunction        = "TIME_SERIES_MONTHLY"
)

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage CSV endpoint.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration, logger *zap.Logger) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	return &AlphaVantageFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(timeout, proxyURL),
		Logger:  logger,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// FetchMonthly issues one GET for the monthly series and parses the CSV body.
func (f *AlphaVantageFetcher) FetchMonthly(ctx context.Context, symbol string) ([]model.StockPoint, int, error) {
	params := url.Values{}
	params.Add("function", monthlyFunction)
	params.Add("symbol", symbol)
	params.Add("apikey", f.APIKey)
	params.Add("datatype", "csv")
	endpoint := fmt.Sprintf("%s/query?%s", f.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, transportErr(symbol, fmt.Errorf("create request: %w", err))
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, transportErr(symbol, fmt.Errorf("alphavantage fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		f.Logger.Warn("alphavantage error response",
			zap.String("symbol", symbol),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, 0, transportErr(symbol, fmt.Errorf("alphavantage: status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, transportErr(symbol, fmt.Errorf("alphavantage read body: %w", err))
	}

	points, skipped, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, 0, formatErr(symbol, err)
	}
	if skipped > 0 {
		f.Logger.Debug("dropped malformed rows", zap.String("symbol", symbol), zap.Int("skipped", skipped))
	}
	return points, skipped, nil
}
