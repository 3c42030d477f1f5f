package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockTracker/internal/model"

	"go.uber.org/zap"
)

const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps display symbol to Yahoo ticker
	Logger    *zap.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration, logger *zap.Logger) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(timeout, proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Logger: logger,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchMonthly requests the full monthly history for symbol.
func (f *YahooFetcher) FetchMonthly(ctx context.Context, symbol string) ([]model.StockPoint, int, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1mo&range=max",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, transportErr(symbol, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, transportErr(symbol, fmt.Errorf("yahoo fetch: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, transportErr(symbol, fmt.Errorf("yahoo read body: %w", err))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, 0, transportErr(symbol, fmt.Errorf("yahoo: status %d", resp.StatusCode))
		}
		return nil, 0, formatErr(symbol, fmt.Errorf("yahoo decode: %w", err))
	}
	// Yahoo answers unknown tickers with 404 and a well-formed error body.
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, 0, nil
		}
		return nil, 0, formatErr(symbol, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, transportErr(symbol, fmt.Errorf("yahoo: status %d", resp.StatusCode))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, 0, formatErr(symbol, errors.New("yahoo: no result"))
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, 0, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, 0, formatErr(symbol, errors.New("yahoo: no quote indicators"))
	}
	quote := result.Indicators.Quote[0]

	points := make([]model.StockPoint, 0, len(result.Timestamp))
	skipped := 0
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			skipped++ // null bars (trading halts, partial months)
			continue
		}
		v, _ := at(quote.Volume, i)
		t := time.Unix(ts, 0).UTC()
		points = append(points, model.StockPoint{
			Time:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	if skipped > 0 {
		f.Logger.Debug("dropped null bars", zap.String("symbol", symbol), zap.Int("skipped", skipped))
	}
	return points, skipped, nil
}

// at returns the non-negative value at i, or false for missing or null entries.
func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil || *vals[i] < 0 {
		return 0, false
	}
	return *vals[i], true
}
