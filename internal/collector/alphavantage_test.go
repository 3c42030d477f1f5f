package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

const monthlyCSV = "timestamp,open,high,low,close,volume\n" +
	"2010-03-01,12,13,11,12.5,300\n" +
	"2010-02-01,11,12,10,11.5,200\n" +
	"2010-01-01,10,11,9,10.5,100\n"

func newTestAlphaVantage(t *testing.T, handler http.HandlerFunc) *AlphaVantageFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAlphaVantageFetcher(srv.URL, "test-key", "", 5*time.Second, zap.NewNop())
}

func TestAlphaVantage_RequestShape(t *testing.T) {
	var calls int32
	f := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/query" {
			t.Errorf("path = %q, want /query", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"function": "TIME_SERIES_MONTHLY",
			"symbol":   "LLY",
			"apikey":   "test-key",
			"datatype": "csv",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(monthlyCSV))
	})

	points, skipped, err := f.FetchMonthly(context.Background(), "LLY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 || skipped != 0 {
		t.Errorf("got %d points, %d skipped; want 3, 0", len(points), skipped)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 request, got %d", n)
	}
}

func TestAlphaVantage_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		sentinel error
	}{
		{"server error", http.StatusInternalServerError, "boom", KindTransport, ErrTransport},
		{"rate limited", http.StatusTooManyRequests, "", KindTransport, ErrTransport},
		{"invalid call", http.StatusOK, `{"Error Message": "Invalid API call."}`, KindFormat, ErrFormat},
		{"empty body", http.StatusOK, "", KindFormat, ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, _, err := f.FetchMonthly(context.Background(), "LLY")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v (err: %v)", KindOf(err), tt.wantKind, err)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
		})
	}
}

func TestAlphaVantage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewAlphaVantageFetcher(url, "k", "", time.Second, zap.NewNop())
	_, _, err := f.FetchMonthly(context.Background(), "LLY")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestAlphaVantage_HeaderOnlyLoadsAsEmpty(t *testing.T) {
	f := newTestAlphaVantage(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("timestamp,open,high,low,close,volume\n"))
	})
	loader := NewLoader(f, zap.NewNop())

	_, err := loader.Load(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected empty error, got %v", err)
	}
	if errors.Is(err, ErrFormat) {
		t.Error("empty result must not classify as format error")
	}
}

func TestAlphaVantage_DefaultBaseURL(t *testing.T) {
	f := NewAlphaVantageFetcher("", "k", "", 0, zap.NewNop())
	if f.BaseURL != DefaultAlphaVantageURL {
		t.Errorf("BaseURL = %q, want %q", f.BaseURL, DefaultAlphaVantageURL)
	}
	if f.Name() != "alphavantage" {
		t.Errorf("Name = %q", f.Name())
	}
}
