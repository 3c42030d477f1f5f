package recorder

import "time"

// LoadEvent records one symbol load attempt. It carries counts only; no
// price data is persisted.
type LoadEvent struct {
	ID       string        `json:"id"`
	Symbol   string        `json:"symbol"`
	Provider string        `json:"provider,omitempty"`
	Outcome  string        `json:"outcome"` // "OK", "TRANSPORT", "FORMAT", "EMPTY", "SUPERSEDED", "CANCELED", "INVALID"
	Points   int           `json:"points"`
	Skipped  int           `json:"skipped"`
	Latency  time.Duration `json:"latency"`
	At       time.Time     `json:"at"`
}

// Recorder persists load history for inspection.
type Recorder interface {
	RecordLoad(evt *LoadEvent) error
	RecentLoads(limit int) ([]LoadEvent, error)
	Prune(before time.Time) (int64, error)
	Close() error
}
