package chart

import (
	"errors"
	"time"

	"StockTracker/internal/model"
)

// ErrNoPoints is returned when a frame is requested for an empty series.
var ErrNoPoints = errors.New("chart: series has no points")

// Margin is the space reserved around the plot area, in pixels.
type Margin struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Layout describes the chart viewport.
type Layout struct {
	Width  float64 `yaml:"width"`  // full SVG width
	Height float64 `yaml:"height"` // full SVG height
	Margin Margin  `yaml:"margin"`
}

// DefaultLayout is a 900x900 viewport with 50px margins on every side.
var DefaultLayout = Layout{
	Width:  900,
	Height: 900,
	Margin: Margin{Top: 50, Right: 50, Bottom: 50, Left: 50},
}

// InnerWidth is the width of the translated drawing group.
func (l Layout) InnerWidth() float64 { return l.Width - l.Margin.Left - l.Margin.Right }

// InnerHeight is the height of the translated drawing group.
func (l Layout) InnerHeight() float64 { return l.Height - l.Margin.Top - l.Margin.Bottom }

// TimeExtent returns the earliest and latest point times.
func TimeExtent(points []model.StockPoint) (lo, hi time.Time, ok bool) {
	for i, p := range points {
		if i == 0 || p.Time.Before(lo) {
			lo = p.Time
		}
		if i == 0 || p.Time.After(hi) {
			hi = p.Time
		}
	}
	return lo, hi, len(points) > 0
}

// PriceExtent returns the lowest and highest close prices.
func PriceExtent(points []model.StockPoint) (lo, hi float64, ok bool) {
	for i, p := range points {
		if i == 0 || p.Close < lo {
			lo = p.Close
		}
		if i == 0 || p.Close > hi {
			hi = p.Close
		}
	}
	return lo, hi, len(points) > 0
}

// Frame holds the scales for one series drawn into a layout. Coordinates
// are relative to the drawing group, which is offset by the left and top
// margins.
type Frame struct {
	Layout Layout
	X      TimeScale
	Y      LinearScale
}

// NewFrame builds the time and price scales for points.
func NewFrame(layout Layout, points []model.StockPoint) (*Frame, error) {
	t0, t1, ok := TimeExtent(points)
	if !ok {
		return nil, ErrNoPoints
	}
	p0, p1, _ := PriceExtent(points)

	w, h := layout.InnerWidth(), layout.InnerHeight()
	m := layout.Margin
	return &Frame{
		Layout: layout,
		X: TimeScale{
			Domain: [2]time.Time{t0, t1},
			Range:  [2]float64{m.Left, w - m.Right},
		},
		Y: LinearScale{
			Domain: [2]float64{p0, p1},
			Range:  [2]float64{h - m.Bottom, m.Top},
		},
	}, nil
}

// PointAt resolves a pointer x coordinate to the nearest point and its
// index. points must be non-empty and sorted ascending by time.
func (f *Frame) PointAt(points []model.StockPoint, px float64) (int, model.StockPoint) {
	i := NearestIndex(points, f.X.Invert(px))
	return i, points[i]
}
