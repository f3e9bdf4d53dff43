package selection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"StockRank/internal/domain/models"
)

// fakeHistory serves in-memory series and records what was requested,
// so tests can assert on load boundaries and call counts.
type fakeHistory struct {
	series map[string]models.PriceSeries
	calls  int
	maxTo  time.Time
}

func (f *fakeHistory) LoadHistory(_ context.Context, symbol string, from, to time.Time) (models.PriceSeries, error) {
	f.calls++
	if to.After(f.maxTo) {
		f.maxTo = to
	}
	s, ok := f.series[symbol]
	if !ok {
		return nil, nil
	}
	var out models.PriceSeries
	for _, b := range s {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// growthUniverse builds n symbols whose daily growth rate increases
// with the symbol index, so momentum ranks exactly like forward
// returns at every date.
func growthUniverse(end time.Time, n, days int) (*fakeHistory, []string) {
	h := &fakeHistory{series: make(map[string]models.PriceSeries, n)}
	universe := make([]string, n)
	for k := 0; k < n; k++ {
		sym := fmt.Sprintf("S%02d", k)
		universe[k] = sym
		h.series[sym] = seriesFromCloses(sym, end, geometricCloses(100, 0.001*float64(k), days), 1000)
	}
	return h, universe
}

func TestEstimateICsPositiveMomentumSignal(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history, universe := growthUniverse(asOf, 12, 400)
	loader := newSeriesLoader(history, nil, 120, time.Hour, nil)
	est := newICEstimator(universe, loader, ICConfig{}, nil)

	ics, err := est.EstimateICs(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ics[models.Momentum20d] < 0.9 {
		t.Fatalf("momentum_20d IC = %v, want > 0.9 for a monotone universe", ics[models.Momentum20d])
	}
	if ics[models.Momentum60d] < 0.9 {
		t.Fatalf("momentum_60d IC = %v, want > 0.9", ics[models.Momentum60d])
	}
	// constant per-symbol growth means zero return dispersion, the
	// volatility column is degenerate and must yield no signal
	if ics[models.Volatility] != 0 {
		t.Fatalf("volatility IC = %v, want 0", ics[models.Volatility])
	}
}

func TestEstimateICsNeverReadsPastAsOf(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history, universe := growthUniverse(asOf, 12, 400)
	loader := newSeriesLoader(history, nil, 120, time.Hour, nil)
	est := newICEstimator(universe, loader, ICConfig{}, nil)

	if _, err := est.EstimateICs(context.Background(), asOf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history.maxTo.After(asOf) {
		t.Fatalf("estimator requested data up to %s, past as-of %s", history.maxTo, asOf)
	}
}

func TestEstimateICsSmallCrossSection(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history, universe := growthUniverse(asOf, 3, 400)
	loader := newSeriesLoader(history, nil, 120, time.Hour, nil)
	est := newICEstimator(universe, loader, ICConfig{}, nil)

	ics, err := est.EstimateICs(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range models.AllFactors() {
		if ics[f] != 0 {
			t.Fatalf("factor %s IC = %v, want 0 with 3 symbols", f, ics[f])
		}
	}
}

func TestEstimateICsCancelledContext(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history, universe := growthUniverse(asOf, 12, 400)
	loader := newSeriesLoader(history, nil, 120, time.Hour, nil)
	est := newICEstimator(universe, loader, ICConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := est.EstimateICs(ctx, asOf); err == nil {
		t.Fatalf("expected context error")
	}
}
