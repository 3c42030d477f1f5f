package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockTracker/internal/model"

	"go.uber.org/zap"
)

// flakyFetcher fails with the queued errors before succeeding.
type flakyFetcher struct {
	errs  []error
	calls int
}

func (f *flakyFetcher) Name() string { return "flaky" }

func (f *flakyFetcher) FetchMonthly(_ context.Context, _ string) ([]model.StockPoint, int, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, 0, err
	}
	return []model.StockPoint{{Time: month(2020, time.January), Close: 1}}, 0, nil
}

func TestRetryingFetcher_RetriesTransport(t *testing.T) {
	inner := &flakyFetcher{errs: []error{
		transportErr("AAA", errors.New("reset")),
		transportErr("AAA", errors.New("reset")),
	}}
	r := NewRetryingFetcher(inner, 3, time.Millisecond, zap.NewNop())

	points, _, err := r.FetchMonthly(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("expected 1 point, got %d", len(points))
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryingFetcher_GivesUp(t *testing.T) {
	inner := &flakyFetcher{errs: []error{
		transportErr("AAA", errors.New("1")),
		transportErr("AAA", errors.New("2")),
		transportErr("AAA", errors.New("3")),
	}}
	r := NewRetryingFetcher(inner, 1, time.Millisecond, zap.NewNop())

	_, _, err := r.FetchMonthly(context.Background(), "AAA")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}

func TestRetryingFetcher_FormatIsPermanent(t *testing.T) {
	inner := &flakyFetcher{errs: []error{formatErr("AAA", errors.New("bad header"))}}
	r := NewRetryingFetcher(inner, 5, time.Millisecond, zap.NewNop())

	_, _, err := r.FetchMonthly(context.Background(), "AAA")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("format errors must not be retried, calls = %d", inner.calls)
	}
}

func TestRetryingFetcher_Name(t *testing.T) {
	r := NewRetryingFetcher(&MockFetcher{}, 0, 0, zap.NewNop())
	if r.Name() != "mock" {
		t.Errorf("Name = %q, want mock", r.Name())
	}
	if r.InitialInterval <= 0 {
		t.Error("InitialInterval should default to a positive value")
	}
}
