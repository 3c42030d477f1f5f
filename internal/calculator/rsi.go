package calculator

import (
	"errors"

	"StockTracker/internal/model"
)

// RSI computes the relative strength index of closes over period months
// using Wilder's smoothing. Points must be in ascending time order. Returns
// 50 when there are no more than period points.
func RSI(points []model.StockPoint, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	c := closes(points)
	if len(c) <= period {
		return 50, nil
	}

	n := float64(period)
	var gain, loss float64
	for i := 1; i < len(c); i++ {
		up, down := moves(c[i] - c[i-1])
		if i <= period {
			// seed with the plain average of the first period moves
			gain += up / n
			loss += down / n
			continue
		}
		gain += (up - gain) / n
		loss += (down - loss) / n
	}

	if loss == 0 {
		return 100, nil
	}
	return 100 * gain / (gain + loss), nil
}

// moves splits a close-to-close change into its upward and downward parts.
func moves(delta float64) (up, down float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}
