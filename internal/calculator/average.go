package calculator

import (
	"errors"

	"StockTracker/internal/model"
)

// ErrInsufficientData is returned when a window is longer than the series.
var ErrInsufficientData = errors.New("not enough points for the requested window")

// SMA computes the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

func closes(points []model.StockPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
