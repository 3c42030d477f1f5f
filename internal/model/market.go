package model

import "time"

// DateLayout is the day-level date format used by providers and the chart.
const DateLayout = "2006-01-02"

// StockPoint represents a single monthly observation.
type StockPoint struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series holds the points loaded for one symbol submission.
type Series struct {
	Symbol    string       `json:"symbol"`
	Provider  string       `json:"provider"`
	Points    []StockPoint `json:"points"`
	Skipped   int          `json:"skipped"` // malformed rows dropped while parsing
	FetchedAt time.Time    `json:"fetched_at"`
}
