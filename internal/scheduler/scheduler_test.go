package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockTracker/internal/recorder"
	"StockTracker/internal/view"

	"go.uber.org/zap"
)

type countingRefresher struct {
	calls int
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls++
	return c.err
}

type pruneSpy struct {
	recorder.NoopRecorder
	before time.Time
}

func (p *pruneSpy) Prune(before time.Time) (int64, error) {
	p.before = before
	return 3, nil
}

func TestRegisterAll(t *testing.T) {
	tests := []struct {
		name      string
		refresh   string
		prune     string
		retention time.Duration
		wantJobs  int
		wantErr   bool
	}{
		{"both", "0 0 6 * * *", "0 30 3 * * *", 24 * time.Hour, 2, false},
		{"refresh only", "0 0 6 * * *", "", 0, 1, false},
		{"disabled", "", "", 0, 0, false},
		{"bad spec", "every day", "", 0, 0, true},
		{"prune without retention", "", "0 30 3 * * *", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(context.Background(), &countingRefresher{}, recorder.NewNoopRecorder(), tt.retention, zap.NewNop())
			err := s.RegisterAll(tt.refresh, tt.prune)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RegisterAll error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(s.Cron.Entries()) != tt.wantJobs {
				t.Errorf("expected %d jobs, got %d", tt.wantJobs, len(s.Cron.Entries()))
			}
		})
	}
}

func TestRefreshTask(t *testing.T) {
	for _, err := range []error{nil, view.ErrNoSeries, view.ErrSuperseded, errors.New("boom")} {
		r := &countingRefresher{err: err}
		s := NewScheduler(context.Background(), r, recorder.NewNoopRecorder(), time.Hour, zap.NewNop())
		s.refreshTask()
		if r.calls != 1 {
			t.Errorf("refresh with err=%v: expected 1 call, got %d", err, r.calls)
		}
	}
}

func TestPruneTask_UsesRetention(t *testing.T) {
	spy := &pruneSpy{}
	s := NewScheduler(context.Background(), &countingRefresher{}, spy, 30*24*time.Hour, zap.NewNop())
	now := time.Date(2024, 6, 1, 3, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.pruneTask()

	want := time.Date(2024, 5, 2, 3, 30, 0, 0, time.UTC)
	if !spy.before.Equal(want) {
		t.Errorf("prune cutoff = %v, want %v", spy.before, want)
	}
}
