package collector

import (
	"context"
	"math"
	"time"

	"StockTracker/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Months int
	Points []model.StockPoint // returned as-is when set
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMonthly(ctx context.Context, _ string) ([]model.StockPoint, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if m.Err != nil {
		return nil, 0, m.Err
	}
	if m.Points != nil {
		return m.Points, 0, nil
	}
	months := m.Months
	if months == 0 {
		months = 240
	}
	return generateMockBars(m.Price, months), 0, nil
}

// generateMockBars produces newest-first monthly bars, the order providers use.
func generateMockBars(basePrice float64, count int) []model.StockPoint {
	if basePrice == 0 {
		basePrice = 100
	}
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.StockPoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.002*float64(i) + 0.05*math.Sin(float64(i)/6))
		bars[count-1-i] = model.StockPoint{
			Time:   start.AddDate(0, i, 0),
			Open:   p * 0.99,
			High:   p * 1.04,
			Low:    p * 0.96,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
