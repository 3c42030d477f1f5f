// Package view owns the presentation state of the chart: the current
// series, its frame, the last load error and the hover tooltip.
//
// Loads follow "last submission wins": a newer Load cancels the previous
// in-flight fetch, and a result that arrives after a newer submission is
// discarded rather than installed.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"StockTracker/internal/chart"
	"StockTracker/internal/collector"
	"StockTracker/internal/model"
	"StockTracker/internal/recorder"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSuperseded is returned by Load when a newer submission replaced it.
var ErrSuperseded = errors.New("load superseded by a newer submission")

// ErrNoSeries is returned by Refresh when nothing has been submitted yet.
var ErrNoSeries = errors.New("no symbol submitted")

// Loader loads a sorted series for a symbol.
type Loader interface {
	Load(ctx context.Context, symbol string) (*model.Series, error)
}

// Tooltip is the hover state shown next to the pointer.
type Tooltip struct {
	Visible bool             `json:"visible"`
	Symbol  string           `json:"symbol"`
	Point   model.StockPoint `json:"point"`
	Index   int              `json:"index"`
	X       float64          `json:"x"` // point position in the drawing group
	Y       float64          `json:"y"`
}

// Snapshot is an immutable copy of the view state for rendering.
type Snapshot struct {
	Symbol  string // last submitted symbol, even if its load failed
	Series  *model.Series
	Frame   *chart.Frame
	Err     error
	Loading bool
	Tooltip Tooltip
}

// View is the single owned chart context.
type View struct {
	loader   Loader
	recorder recorder.Recorder
	layout   chart.Layout
	logger   *zap.Logger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	symbol   string
	series   *model.Series
	frame    *chart.Frame
	err      error
	loading  bool
	tooltip  Tooltip
}

// New creates a View drawing into layout.
func New(loader Loader, rec recorder.Recorder, layout chart.Layout, logger *zap.Logger) *View {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &View{
		loader:   loader,
		recorder: rec,
		layout:   layout,
		logger:   logger,
	}
}

// Load submits symbol. It blocks until the load finishes and installs the
// result only if no newer submission arrived meanwhile. A load cut short by
// ctx leaves the previous state displayed.
func (v *View) Load(ctx context.Context, symbol string) error {
	return v.load(ctx, strings.ToUpper(strings.TrimSpace(symbol)), false)
}

// Refresh re-submits the most recently submitted symbol. A failed refresh
// keeps the displayed series. It returns ErrSuperseded without loading while
// a submission is in flight.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	symbol, busy := v.symbol, v.loading
	v.mu.Unlock()
	if symbol == "" {
		return ErrNoSeries
	}
	if busy {
		return ErrSuperseded
	}
	return v.load(ctx, symbol, true)
}

func (v *View) load(ctx context.Context, symbol string, refresh bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.mu.Lock()
	v.gen++
	gen := v.gen
	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = cancel
	prevSymbol := v.symbol
	v.symbol = symbol
	v.loading = true
	v.mu.Unlock()

	start := time.Now()
	series, err := v.loader.Load(ctx, symbol)
	latency := time.Since(start)

	var frame *chart.Frame
	if err == nil {
		frame, err = chart.NewFrame(v.layout, series.Points)
	}

	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		v.record(symbol, series, outcomeSuperseded, latency)
		v.logger.Info("discarding superseded load", zap.String("symbol", symbol))
		return ErrSuperseded
	}
	v.cancel = nil
	v.loading = false
	keep := err != nil && (canceled(err) || (refresh && v.series != nil))
	switch {
	case keep:
		v.symbol = prevSymbol
	case err != nil:
		v.series, v.frame, v.err = nil, nil, err
		v.tooltip = Tooltip{}
	default:
		v.series, v.frame, v.err = series, frame, nil
		v.tooltip = Tooltip{}
	}
	v.mu.Unlock()

	if keep {
		v.logger.Warn("load failed, keeping displayed series",
			zap.String("symbol", symbol),
			zap.Bool("refresh", refresh),
			zap.Error(err))
	}
	v.record(symbol, series, outcomeOf(err), latency)
	return err
}

// Hover resolves a pointer x coordinate, relative to the drawing group, to
// the nearest point and shows the tooltip. It reports false when no series
// is displayed.
func (v *View) Hover(px float64) (Tooltip, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.series == nil || v.frame == nil || len(v.series.Points) == 0 {
		return Tooltip{}, false
	}
	i, p := v.frame.PointAt(v.series.Points, px)
	v.tooltip = Tooltip{
		Visible: true,
		Symbol:  v.series.Symbol,
		Point:   p,
		Index:   i,
		X:       v.frame.X.Apply(p.Time),
		Y:       v.frame.Y.Apply(p.Close),
	}
	return v.tooltip, true
}

// Leave hides the tooltip.
func (v *View) Leave() {
	v.mu.Lock()
	v.tooltip.Visible = false
	v.mu.Unlock()
}

// Snapshot returns the current state. Series and frame are never mutated
// after installation, so sharing the pointers is safe.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{
		Symbol:  v.symbol,
		Series:  v.series,
		Frame:   v.frame,
		Err:     v.err,
		Loading: v.loading,
		Tooltip: v.tooltip,
	}
}

const (
	outcomeOK         = "OK"
	outcomeSuperseded = "SUPERSEDED"
	outcomeCanceled   = "CANCELED"
	outcomeInvalid    = "INVALID"
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case canceled(err):
		return outcomeCanceled
	case errors.Is(err, collector.ErrEmptySymbol):
		return outcomeInvalid
	default:
		return collector.KindOf(err).String()
	}
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (v *View) record(symbol string, series *model.Series, outcome string, latency time.Duration) {
	evt := &recorder.LoadEvent{
		ID:      uuid.NewString(),
		Symbol:  symbol,
		Outcome: outcome,
		Latency: latency,
		At:      time.Now(),
	}
	if series != nil {
		evt.Symbol = series.Symbol
		evt.Provider = series.Provider
		evt.Points = len(series.Points)
		evt.Skipped = series.Skipped
	}
	if err := v.recorder.RecordLoad(evt); err != nil {
		v.logger.Error("record load", zap.Error(err))
	}
}
