package chart

import (
	"math"
	"time"
)

// LinearScale maps a continuous numeric domain onto a pixel range.
type LinearScale struct {
	Domain [2]float64
	Range  [2]float64
}

// Apply maps v from the domain to the range. A zero-width domain maps to the
// middle of the range.
func (s LinearScale) Apply(v float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if d1 == d0 {
		return (r0 + r1) / 2
	}
	return r0 + (v-d0)/(d1-d0)*(r1-r0)
}

// Invert maps a range value back onto the domain.
func (s LinearScale) Invert(px float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if r1 == r0 {
		return d0
	}
	return d0 + (px-r0)/(r1-r0)*(d1-d0)
}

// Ticks returns roughly n evenly spaced round values inside the domain,
// stepping by 1, 2 or 5 times a power of ten.
func (s LinearScale) Ticks(n int) []float64 {
	lo, hi := s.Domain[0], s.Domain[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if n <= 0 || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}

	step0 := (hi - lo) / float64(n)
	power := math.Floor(math.Log10(step0))
	e := step0 / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}

	var ticks []float64
	if power < 0 {
		// Divide by an integral inverse step so decimals come out exact.
		inc := math.Pow(10, -power) / factor
		i0, i1 := math.Ceil(lo*inc), math.Floor(hi*inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i/inc)
		}
		return ticks
	}
	step := factor * math.Pow(10, power)
	i0, i1 := math.Ceil(lo/step), math.Floor(hi/step)
	for i := i0; i <= i1; i++ {
		ticks = append(ticks, i*step)
	}
	return ticks
}

// TimeScale maps a time domain onto a pixel range.
type TimeScale struct {
	Domain [2]time.Time
	Range  [2]float64
}

func (s TimeScale) linear() LinearScale {
	return LinearScale{
		Domain: [2]float64{float64(s.Domain[0].UnixMilli()), float64(s.Domain[1].UnixMilli())},
		Range:  s.Range,
	}
}

// Apply maps t onto the range.
func (s TimeScale) Apply(t time.Time) float64 {
	return s.linear().Apply(float64(t.UnixMilli()))
}

// maxInvertMilli bounds Invert's result well inside the int64 millisecond
// range, about 146 million years either side of the epoch.
const maxInvertMilli = 1 << 62

// Invert maps a range value back to a time. Values outside the range
// extrapolate beyond the domain and saturate at ±maxInvertMilli.
func (s TimeScale) Invert(px float64) time.Time {
	ms := s.linear().Invert(px)
	switch {
	case math.IsNaN(ms):
		return s.Domain[0]
	case ms >= maxInvertMilli:
		ms = maxInvertMilli
	case ms <= -maxInvertMilli:
		ms = -maxInvertMilli
	}
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}

var yearSteps = []int{1, 2, 5, 10, 20, 50, 100}
var monthSteps = []int{1, 2, 3, 6}

// Ticks returns at most about n tick times aligned to month or year
// boundaries, depending on the span of the domain.
func (s TimeScale) Ticks(n int) []time.Time {
	lo, hi := s.Domain[0], s.Domain[1]
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	if n <= 0 {
		return nil
	}

	months := (hi.Year()-lo.Year())*12 + int(hi.Month()-lo.Month())
	if months >= 24 {
		step := yearSteps[len(yearSteps)-1]
		years := hi.Year() - lo.Year()
		for _, st := range yearSteps {
			if years/st <= n {
				step = st
				break
			}
		}
		first := (lo.Year() + step - 1) / step * step
		start := time.Date(first, time.January, 1, 0, 0, 0, 0, time.UTC)
		if start.Before(lo) {
			start = start.AddDate(step, 0, 0)
		}
		var ticks []time.Time
		for t := start; !t.After(hi); t = t.AddDate(step, 0, 0) {
			ticks = append(ticks, t)
		}
		return ticks
	}

	step := monthSteps[len(monthSteps)-1]
	for _, st := range monthSteps {
		if months/st <= n {
			step = st
			break
		}
	}
	start := time.Date(lo.Year(), lo.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.Before(lo) {
		start = start.AddDate(0, 1, 0)
	}
	var ticks []time.Time
	for t := start; !t.After(hi); t = t.AddDate(0, step, 0) {
		ticks = append(ticks, t)
	}
	return ticks
}

// TickFormat returns the label layout suited to ticks produced by Ticks(n).
func (s TimeScale) TickFormat() string {
	lo, hi := s.Domain[0], s.Domain[1]
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	if (hi.Year()-lo.Year())*12+int(hi.Month()-lo.Month()) >= 24 {
		return "2006"
	}
	return "Jan 2006"
}
