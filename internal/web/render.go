package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"StockTracker/internal/chart"
	"StockTracker/internal/collector"
	"StockTracker/internal/model"
	"StockTracker/internal/view"
)

// TooltipDateLayout formats the hovered point's date, e.g. "01 Mar 2010".
const TooltipDateLayout = "02 Jan 2006"

const (
	xTickCount = 10
	yTickCount = 10
)

type tick struct {
	Pos   float64
	Label string
}

// chartView is everything the SVG template needs, in drawing-group
// coordinates.
type chartView struct {
	Width, Height float64
	OffsetX       float64
	OffsetY       float64
	InnerWidth    float64
	InnerHeight   float64

	Title  string
	Path   string
	XRange [2]float64
	YRange [2]float64
	XTicks []tick
	YTicks []tick

	YearLabelX  float64
	PriceLabelX float64
}

func newChartView(series *model.Series, f *chart.Frame) *chartView {
	l := f.Layout
	t0, t1, _ := chart.TimeExtent(series.Points)

	cv := &chartView{
		Width:       l.Width,
		Height:      l.Height,
		OffsetX:     l.Margin.Left,
		OffsetY:     l.Margin.Top,
		InnerWidth:  l.InnerWidth(),
		InnerHeight: l.InnerHeight(),
		Title:       fmt.Sprintf("%s stock price chart %d-%d.", series.Symbol, t0.Year(), t1.Year()),
		Path:        chart.LinePath(f, series.Points),
		XRange:      f.X.Range,
		YRange:      f.Y.Range,
		YearLabelX:  l.InnerWidth() / 2,
		PriceLabelX: -l.InnerHeight()/2 + l.Margin.Top,
	}

	layout := f.X.TickFormat()
	for _, t := range f.X.Ticks(xTickCount) {
		cv.XTicks = append(cv.XTicks, tick{Pos: round2(f.X.Apply(t)), Label: t.Format(layout)})
	}
	for _, v := range f.Y.Ticks(yTickCount) {
		cv.YTicks = append(cv.YTicks, tick{Pos: round2(f.Y.Apply(v)), Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return cv
}

func round2(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}

// tooltipResponse is the JSON body returned for a hover.
type tooltipResponse struct {
	Visible bool    `json:"visible"`
	Symbol  string  `json:"symbol"`
	Date    string  `json:"date"`
	Open    float64 `json:"open"`
	Close   float64 `json:"close"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Volume  float64 `json:"volume"`
	Index   int     `json:"index"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

func newTooltipResponse(tip view.Tooltip) tooltipResponse {
	p := tip.Point
	return tooltipResponse{
		Visible: tip.Visible,
		Symbol:  tip.Symbol,
		Date:    p.Time.Format(TooltipDateLayout),
		Open:    p.Open,
		Close:   p.Close,
		High:    p.High,
		Low:     p.Low,
		Volume:  p.Volume,
		Index:   tip.Index,
		X:       round2(tip.X),
		Y:       round2(tip.Y),
	}
}

// errorStatus maps a load failure to an HTTP status and a user-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, collector.ErrEmptySymbol):
		return http.StatusBadRequest, "symbol is required"
	case errors.Is(err, view.ErrSuperseded):
		return http.StatusConflict, "superseded by a newer request"
	case errors.Is(err, view.ErrNoSeries):
		return http.StatusNotFound, "no symbol loaded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "load canceled"
	}
	switch collector.KindOf(err) {
	case collector.KindEmpty:
		return http.StatusNotFound, "symbol not found"
	case collector.KindTransport:
		return http.StatusBadGateway, "network unavailable"
	case collector.KindFormat:
		return http.StatusBadGateway, "unexpected response from data provider"
	}
	return http.StatusInternalServerError, "internal error"
}
