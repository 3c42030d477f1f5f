package collector

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"StockTracker/internal/model"

	"go.uber.org/zap"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestLoad_SortsAscending(t *testing.T) {
	var points []model.StockPoint
	for i := 0; i < 120; i++ {
		points = append(points, model.StockPoint{Time: month(2000, time.January).AddDate(0, i, 0), Close: float64(i)})
	}
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(points), func(i, j int) { points[i], points[j] = points[j], points[i] })

	loader := NewLoader(&MockFetcher{Points: points}, zap.NewNop())
	series, err := loader.Load(context.Background(), "lly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Symbol != "LLY" {
		t.Errorf("Symbol = %q, want LLY", series.Symbol)
	}
	if len(series.Points) != 120 {
		t.Fatalf("expected 120 points, got %d", len(series.Points))
	}
	for i := 0; i+1 < len(series.Points); i++ {
		if !series.Points[i].Time.Before(series.Points[i+1].Time) {
			t.Fatalf("points not strictly ascending at %d: %v >= %v", i, series.Points[i].Time, series.Points[i+1].Time)
		}
	}
}

func TestLoad_DoesNotMutateFetcherSlice(t *testing.T) {
	points := []model.StockPoint{
		{Time: month(2010, time.March)},
		{Time: month(2010, time.January)},
	}
	loader := NewLoader(&MockFetcher{Points: points}, zap.NewNop())
	if _, err := loader.Load(context.Background(), "AAA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !points[0].Time.Equal(month(2010, time.March)) {
		t.Error("loader reordered the fetcher's slice")
	}
}

func TestLoad_DuplicateDatesKeepProviderOrder(t *testing.T) {
	points := []model.StockPoint{
		{Time: month(2010, time.February), Close: 1},
		{Time: month(2010, time.January), Close: 2},
		{Time: month(2010, time.February), Close: 3},
	}
	loader := NewLoader(&MockFetcher{Points: points}, zap.NewNop())
	series, err := loader.Load(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []float64{series.Points[0].Close, series.Points[1].Close, series.Points[2].Close}
	want := []float64{2, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("closes = %v, want %v", got, want)
		}
	}
}

func TestLoad_EmptySymbol(t *testing.T) {
	loader := NewLoader(&MockFetcher{}, zap.NewNop())
	for _, s := range []string{"", "   "} {
		if _, err := loader.Load(context.Background(), s); !errors.Is(err, ErrEmptySymbol) {
			t.Errorf("Load(%q) error = %v, want ErrEmptySymbol", s, err)
		}
	}
}

func TestLoad_EmptyVersusFormat(t *testing.T) {
	empty := NewLoader(&MockFetcher{Points: []model.StockPoint{}}, zap.NewNop())
	_, err := empty.Load(context.Background(), "AAA")
	if KindOf(err) != KindEmpty {
		t.Errorf("zero rows: kind = %v, want EMPTY", KindOf(err))
	}

	malformed := NewLoader(&MockFetcher{Err: formatErr("AAA", errors.New("missing columns"))}, zap.NewNop())
	_, err = malformed.Load(context.Background(), "AAA")
	if KindOf(err) != KindFormat {
		t.Errorf("malformed: kind = %v, want FORMAT", KindOf(err))
	}
}

func TestLoad_TransportErrorAfterCancelReportsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := NewLoader(&MockFetcher{Err: transportErr("AAA", context.Canceled)}, zap.NewNop())
	_, err := loader.Load(ctx, "AAA")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoad_MockDefaults(t *testing.T) {
	loader := NewLoader(&MockFetcher{Price: 50, Months: 24}, zap.NewNop())
	series, err := loader.Load(context.Background(), "MOCK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Points) != 24 {
		t.Errorf("expected 24 points, got %d", len(series.Points))
	}
	if series.Provider != "mock" {
		t.Errorf("Provider = %q, want mock", series.Provider)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error should be KindUnknown")
	}
	wrapped := errors.Join(errors.New("ctx"), &LoadError{Kind: KindEmpty, Symbol: "X"})
	if KindOf(wrapped) != KindEmpty {
		t.Error("wrapped LoadError should be found")
	}
}
