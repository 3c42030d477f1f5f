package collector

import (
	"context"
	"time"

	"StockTracker/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryingFetcher retries transport failures of the wrapped Fetcher with
// exponential backoff. Format and empty results are returned immediately.
type RetryingFetcher struct {
	Fetcher         Fetcher
	MaxRetries      uint64
	InitialInterval time.Duration
	Logger          *zap.Logger
}

// NewRetryingFetcher wraps f with at most maxRetries additional attempts.
func NewRetryingFetcher(f Fetcher, maxRetries int, initialInterval time.Duration, logger *zap.Logger) *RetryingFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialInterval <= 0 {
		initialInterval = backoff.DefaultInitialInterval
	}
	return &RetryingFetcher{
		Fetcher:         f,
		MaxRetries:      uint64(maxRetries),
		InitialInterval: initialInterval,
		Logger:          logger,
	}
}

func (r *RetryingFetcher) Name() string { return r.Fetcher.Name() }

func (r *RetryingFetcher) FetchMonthly(ctx context.Context, symbol string) ([]model.StockPoint, int, error) {
	var (
		points  []model.StockPoint
		skipped int
		attempt int
	)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.InitialInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, r.MaxRetries), ctx)

	op := func() error {
		attempt++
		var err error
		points, skipped, err = r.Fetcher.FetchMonthly(ctx, symbol)
		if err == nil {
			return nil
		}
		if KindOf(err) != KindTransport || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.Logger.Warn("fetch failed, retrying",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, 0, err
	}
	return points, skipped, nil
}
