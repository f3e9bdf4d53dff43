package selection

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"StockRank/internal/domain/models"
	pkgcache "StockRank/pkg/cache"
)

func newTestSelector(cfg Config, history *fakeHistory) *StockSelector {
	return New(cfg, history, nil, nil, nil)
}

func TestRankStocksOrdersByComposite(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{series: map[string]models.PriceSeries{
		"UP":   seriesFromCloses("UP", asOf, geometricCloses(100, 0.005, 100), 1000),
		"DOWN": seriesFromCloses("DOWN", asOf, geometricCloses(100, -0.005, 100), 1000),
		"FLAT": seriesFromCloses("FLAT", asOf, geometricCloses(100, 0, 100), 1000),
	}}
	sel := newTestSelector(Config{Universe: []string{"UP", "DOWN", "FLAT"}}, history)

	result, err := sel.RankStocks(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("ranked %d symbols, want 3", len(result.Rows))
	}

	got := []string{result.Rows[0].Symbol, result.Rows[1].Symbol, result.Rows[2].Symbol}
	want := []string{"UP", "FLAT", "DOWN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranking order = %v, want %v", got, want)
	}
	for i, row := range result.Rows {
		if row.Rank != i+1 {
			t.Fatalf("row %d has rank %d", i, row.Rank)
		}
	}
	if result.Rows[0].ZScore <= result.Rows[2].ZScore {
		t.Fatalf("best zscore %v not above worst %v", result.Rows[0].ZScore, result.Rows[2].ZScore)
	}
}

func TestRankStocksSkipsThinHistory(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{series: map[string]models.PriceSeries{
		"OK":   seriesFromCloses("OK", asOf, geometricCloses(100, 0.002, 100), 1000),
		"THIN": seriesFromCloses("THIN", asOf, geometricCloses(100, 0.002, 30), 1000),
	}}
	sel := newTestSelector(Config{Universe: []string{"OK", "THIN"}}, history)

	result, err := sel.RankStocks(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Symbol != "OK" {
		t.Fatalf("unexpected rows: %+v", result.Rows)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Symbol != "THIN" {
		t.Fatalf("unexpected skips: %+v", result.Skipped)
	}
	if !strings.Contains(result.Skipped[0].Reason, "insufficient history") {
		t.Fatalf("skip reason = %q", result.Skipped[0].Reason)
	}
}

func TestRankStocksSingleSymbolHasZeroZScores(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{series: map[string]models.PriceSeries{
		"ONLY": seriesFromCloses("ONLY", asOf, geometricCloses(100, 0.003, 100), 1000),
	}}
	sel := newTestSelector(Config{Universe: []string{"ONLY"}}, history)

	result, err := sel.RankStocks(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("ranked %d symbols, want 1", len(result.Rows))
	}
	row := result.Rows[0]
	if row.Rank != 1 || row.ZScore != 0 {
		t.Fatalf("single row rank=%d zscore=%v, want rank 1 zscore 0", row.Rank, row.ZScore)
	}
	for f, z := range row.ZScores {
		if z != 0 {
			t.Fatalf("factor %s zscore = %v, want 0 with one row", f, z)
		}
	}
}

func TestSelectStocksTopN(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{series: make(map[string]models.PriceSeries)}
	universe := []string{"A", "B", "C", "D", "E"}
	for i, sym := range universe {
		history.series[sym] = seriesFromCloses(sym, asOf, geometricCloses(100, 0.001*float64(i), 100), 1000)
	}
	sel := newTestSelector(Config{Universe: universe, TopN: 2}, history)

	picks, err := sel.SelectStocks(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(picks) != 2 {
		t.Fatalf("selected %d symbols, want 2", len(picks))
	}
	if picks[0] != "E" {
		t.Fatalf("top pick = %s, want E (strongest trend)", picks[0])
	}
}

func TestSelectStocksEmptyUniverse(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{series: make(map[string]models.PriceSeries)}
	sel := newTestSelector(Config{Universe: nil}, history)

	picks, err := sel.SelectStocks(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if picks == nil || len(picks) != 0 {
		t.Fatalf("picks = %#v, want empty non-nil slice", picks)
	}
}

func TestWeightsAreCopies(t *testing.T) {
	history := &fakeHistory{series: make(map[string]models.PriceSeries)}
	sel := newTestSelector(Config{Universe: nil}, history)

	w := sel.Weights()
	w[models.Momentum20d] = 99
	if sel.Weights()[models.Momentum20d] == 99 {
		t.Fatalf("Weights leaked internal state")
	}

	sel.SetWeights(BullWeights())
	if got := sel.Weights()[models.Momentum20d]; got != 0.30 {
		t.Fatalf("after SetWeights momentum_20d = %v, want 0.30", got)
	}
}

func TestRankStocksUsesCache(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	history := &fakeHistory{series: map[string]models.PriceSeries{
		"UP": seriesFromCloses("UP", asOf, geometricCloses(100, 0.005, 100), 1000),
	}}
	cache := pkgcache.NewMemoryCache()
	defer cache.Close()
	sel := New(Config{Universe: []string{"UP"}, IndexSymbol: "NOPE"}, history, cache, nil, nil)

	ctx := context.Background()
	if _, err := sel.RankStocks(ctx, asOf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := history.calls
	if _, err := sel.RankStocks(ctx, asOf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the UP series is cached; only the (empty, uncacheable) index
	// lookup goes back to the store
	if history.calls != first+1 {
		t.Fatalf("store calls went %d -> %d, want exactly one more", first, history.calls)
	}

	if err := sel.ClearCache(ctx); err != nil {
		t.Fatalf("clear cache: %v", err)
	}
	before := history.calls
	if _, err := sel.RankStocks(ctx, asOf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history.calls != before+2 {
		t.Fatalf("store calls after clear went %d -> %d, want two more", before, history.calls)
	}
}

func TestMonthlyRebalanceDates(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	got := MonthlyRebalanceDates(start, end)
	want := []string{"2024-02-01", "2024-03-01", "2024-04-01"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
}

func TestMonthlyRebalanceDatesInclusiveStart(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := MonthlyRebalanceDates(start, end)
	want := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
}
