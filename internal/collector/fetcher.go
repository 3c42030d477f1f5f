package collector

import (
	"context"

	"StockTracker/internal/model"
)

// Fetcher defines the interface for fetching monthly price history.
// Implementations issue at most one request per call and return the points
// in provider order along with the number of malformed rows they dropped.
type Fetcher interface {
	FetchMonthly(ctx context.Context, symbol string) (points []model.StockPoint, skipped int, err error)
	Name() string
}
