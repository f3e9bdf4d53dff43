package models

import "time"

// Bar is one daily OHLCV record for a symbol.
type Bar struct {
	Date   time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ordered sequence of daily bars for one symbol.
// Invariant: strictly increasing dates, no duplicates. Stores return
// series already ordered; BuildSeries enforces the invariant for
// series assembled from other sources.
type PriceSeries []Bar

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s) }

// Last returns the most recent bar and true, or a zero bar and false
// when the series is empty.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Truncate returns the prefix of the series with dates <= asOf.
// The result shares backing storage; series are never mutated after
// creation so this is safe.
func (s PriceSeries) Truncate(asOf time.Time) PriceSeries {
	// bars are date-ascending, scan from the tail
	i := len(s)
	for i > 0 && s[i-1].Date.After(asOf) {
		i--
	}
	return s[:i]
}

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume column.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Returns computes simple daily returns close[i]/close[i-1] - 1.
// Result has length len(s)-1; nil when fewer than two bars. Bars with
// a non-positive previous close contribute a zero return.
func (s PriceSeries) Returns() []float64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]float64, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Close
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, s[i].Close/prev-1)
	}
	return out
}

// BuildSeries sorts bars by date and drops duplicate dates (keeping the
// first occurrence), establishing the PriceSeries invariant.
func BuildSeries(bars []Bar) PriceSeries {
	if len(bars) == 0 {
		return nil
	}
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	// insertion sort: ingest batches are near-ordered already
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Date.Before(sorted[j-1].Date); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	out := make(PriceSeries, 0, len(sorted))
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}
