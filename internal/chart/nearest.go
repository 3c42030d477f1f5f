package chart

import (
	"time"

	"StockTracker/internal/model"
)

// bisectLeft returns the leftmost index at which t could be inserted into
// points while keeping them sorted by time.
func bisectLeft(points []model.StockPoint, t time.Time) int {
	lo, hi := 0, len(points)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if points[mid].Time.Before(t) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// NearestIndex returns the index of the point whose time is closest to t.
// points must be non-empty and sorted ascending by time; it panics on empty
// input. When t is exactly between two points the earlier one wins.
func NearestIndex(points []model.StockPoint, t time.Time) int {
	if len(points) == 0 {
		panic("chart: nearest point requested on an empty series")
	}
	i := bisectLeft(points, t)
	if i == 0 {
		return 0
	}
	if i == len(points) {
		return len(points) - 1
	}
	before := t.Sub(points[i-1].Time)
	after := points[i].Time.Sub(t)
	if before > after {
		return i
	}
	return i - 1
}

// Nearest returns the point whose time is closest to t.
func Nearest(points []model.StockPoint, t time.Time) model.StockPoint {
	return points[NearestIndex(points, t)]
}
