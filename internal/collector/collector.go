package collector

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"StockTracker/internal/model"

	"go.uber.org/zap"
)

// Loader turns a submitted symbol into a chronologically sorted series.
type Loader struct {
	Fetcher Fetcher
	Logger  *zap.Logger
	now     func() time.Time
}

// NewLoader creates a new Loader.
func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	return &Loader{Fetcher: fetcher, Logger: logger, now: time.Now}
}

// Load fetches the monthly history for symbol once and returns it sorted
// ascending by time. Failures are *LoadError values classified as transport,
// format or empty; none are retried here.
func (l *Loader) Load(ctx context.Context, symbol string) (*model.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	start := l.now()
	points, skipped, err := l.Fetcher.FetchMonthly(ctx, symbol)
	latency := l.now().Sub(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && KindOf(err) == KindTransport {
			// Cancelled by the caller, typically a newer submission.
			err = ctxErr
		}
		l.Logger.Warn("load failed",
			zap.String("symbol", symbol),
			zap.String("provider", l.Fetcher.Name()),
			zap.String("kind", KindOf(err).String()),
			zap.Duration("latency", latency),
			zap.Error(err))
		return nil, err
	}

	if len(points) == 0 {
		err := &LoadError{Kind: KindEmpty, Symbol: symbol}
		if skipped > 0 {
			err.Err = errors.New("all rows malformed")
		}
		l.Logger.Warn("load returned no points",
			zap.String("symbol", symbol),
			zap.String("provider", l.Fetcher.Name()),
			zap.Int("skipped", skipped))
		return nil, err
	}

	sorted := make([]model.StockPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	l.Logger.Info("series loaded",
		zap.String("symbol", symbol),
		zap.String("provider", l.Fetcher.Name()),
		zap.Int("points", len(sorted)),
		zap.Int("skipped", skipped),
		zap.Duration("latency", latency))

	return &model.Series{
		Symbol:    symbol,
		Provider:  l.Fetcher.Name(),
		Points:    sorted,
		Skipped:   skipped,
		FetchedAt: start,
	}, nil
}
