package calculator

import (
	"errors"
	"math"

	"StockTracker/internal/model"
)

// Windows used by Summarize, in monthly bars.
const (
	TrendWindow = 12
	RSIPeriod   = 14
	RangeWindow = 12
)

// Summary describes the most recent part of a monthly series.
type Summary struct {
	LastClose float64  `json:"last_close"`
	Change    float64  `json:"change"` // last close relative to the previous one, 0.05 = +5%
	SMA       *float64 `json:"sma_12,omitempty"`
	RSI       float64  `json:"rsi_14"`
	High      float64  `json:"high_12"`
	Low       float64  `json:"low_12"`
	Position  float64  `json:"position_12"` // 0 at the range low, 1 at the high
}

// Range scans the last window points and returns the highest high and lowest low.
func Range(points []model.StockPoint, window int) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no points provided")
	}
	start := max(len(points)-window, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points[start:] {
		if p.High > high {
			high = p.High
		}
		if p.Low < low {
			low = p.Low
		}
	}
	return high, low, nil
}

// Position returns where current sits within [low, high], clamped to 0..1.
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}

// Summarize computes the trailing statistics of an ascending series.
func Summarize(points []model.StockPoint) (*Summary, error) {
	if len(points) == 0 {
		return nil, errors.New("no points provided")
	}
	last := points[len(points)-1]
	s := &Summary{LastClose: last.Close}

	if n := len(points); n > 1 && points[n-2].Close != 0 {
		s.Change = last.Close/points[n-2].Close - 1
	}
	if sma, err := SMA(closes(points), TrendWindow); err == nil {
		s.SMA = &sma
	}

	var err error
	if s.RSI, err = RSI(points, RSIPeriod); err != nil {
		return nil, err
	}
	if s.High, s.Low, err = Range(points, RangeWindow); err != nil {
		return nil, err
	}
	// Keep the last close inside the range.
	if s.High < last.Close {
		s.High = last.Close
	}
	if s.Low > last.Close {
		s.Low = last.Close
	}
	if s.Position, err = Position(last.Close, s.High, s.Low); err != nil {
		return nil, err
	}
	return s, nil
}
