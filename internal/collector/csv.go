package collector

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"StockTracker/internal/model"
)

// Columns every monthly CSV response must carry.
var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// providerMessageKeys are the JSON keys Alpha Vantage uses instead of CSV
// when a call is rejected or rate limited.
var providerMessageKeys = []string{"Error Message", "Note", "Information"}

// ParseCSV parses a tabular monthly time-series body. Malformed rows are
// dropped and counted; a body that is not a table with the required header
// yields an error. A header with no rows yields zero points and no error.
func ParseCSV(r io.Reader) ([]model.StockPoint, int, error) {
	br := bufio.NewReader(r)
	if err := rejectJSON(br); err != nil {
		return nil, 0, err
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, errors.New("empty response body")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	var points []model.StockPoint
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("read rows: %w", err)
		}
		p, err := parseRow(rec, idx)
		if err != nil {
			skipped++
			continue
		}
		points = append(points, p)
	}
	return points, skipped, nil
}

// rejectJSON returns an error if the body is a JSON object rather than CSV.
func rejectJSON(br *bufio.Reader) error {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return nil // empty body is reported by the CSV reader
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
			continue
		case '{':
			var envelope map[string]any
			if err := json.NewDecoder(br).Decode(&envelope); err != nil {
				return fmt.Errorf("non-tabular response: %w", err)
			}
			for _, k := range providerMessageKeys {
				if msg, ok := envelope[k].(string); ok && msg != "" {
					return fmt.Errorf("provider message: %s", msg)
				}
			}
			return errors.New("non-tabular JSON response")
		}
		return nil
	}
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(rec []string, idx map[string]int) (model.StockPoint, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", fmt.Errorf("row has no %s field", col)
		}
		return strings.TrimSpace(rec[i]), nil
	}

	ts, err := field("timestamp")
	if err != nil {
		return model.StockPoint{}, err
	}
	t, err := time.Parse(model.DateLayout, ts)
	if err != nil {
		return model.StockPoint{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}

	var vals [5]float64
	for i, col := range requiredColumns[1:] {
		s, err := field(col)
		if err != nil {
			return model.StockPoint{}, err
		}
		v, err := parseAmount(s)
		if err != nil {
			return model.StockPoint{}, fmt.Errorf("parse %s: %w", col, err)
		}
		vals[i] = v
	}

	return model.StockPoint{
		Time:   t.UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// parseAmount accepts finite non-negative decimals only.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%q is negative", s)
	}
	return v, nil
}
