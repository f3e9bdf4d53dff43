package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"StockRank/internal/domain/models"
)

type fakeSelector struct {
	lastAsOf time.Time
	result   *models.RankingResult
	err      error
}

func (f *fakeSelector) RankStocks(_ context.Context, asOf time.Time) (*models.RankingResult, error) {
	f.lastAsOf = asOf
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSelector) SelectStocks(ctx context.Context, asOf time.Time) ([]string, error) {
	r, err := f.RankStocks(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return r.TopSymbols(len(r.Rows)), nil
}

func (f *fakeSelector) Weights() models.FactorWeights { return f.result.Weights.Clone() }

func (f *fakeSelector) ClearCache(context.Context) error { return nil }

type fakePublisher struct {
	events []*models.SelectionEvent
	err    error
}

func (f *fakePublisher) PublishBar(context.Context, *models.Bar) error { return nil }

func (f *fakePublisher) PublishBarBatch(context.Context, []*models.Bar) error { return nil }
func (f *fakePublisher) PublishSelection(_ context.Context, e *models.SelectionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

func rankingFor(date time.Time, symbols ...string) *models.RankingResult {
	r := &models.RankingResult{Date: date, Weights: models.FactorWeights{models.Momentum20d: 1}}
	for i, s := range symbols {
		r.Rows = append(r.Rows, models.RankingRow{Symbol: s, Rank: i + 1})
	}
	return r
}

func TestSelectionRankRejectsBadDate(t *testing.T) {
	sel := &fakeSelector{result: rankingFor(time.Now())}
	uc := NewSelectionUseCase(sel, nil, newFakeMetrics(), 0)

	if _, err := uc.Rank(context.Background(), "03-06-2024"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestSelectionRankEmptyDateIsToday(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sel := &fakeSelector{result: rankingFor(asOf, "AAPL")}
	uc := NewSelectionUseCase(sel, nil, newFakeMetrics(), 0)

	if _, err := uc.Rank(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.lastAsOf.Hour() != 0 || sel.lastAsOf.Location() != time.UTC {
		t.Fatalf("empty date did not normalize to a UTC day: %v", sel.lastAsOf)
	}
}

func TestSelectionSelectPublishes(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sel := &fakeSelector{result: rankingFor(asOf, "A", "B", "C")}
	pub := &fakePublisher{}
	uc := NewSelectionUseCase(sel, pub, newFakeMetrics(), 5)

	event, err := uc.Select(context.Background(), "2024-06-03", 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Date != "2024-06-03" {
		t.Fatalf("event date = %q", event.Date)
	}
	if len(event.Symbols) != 2 || event.Symbols[0] != "A" || event.Symbols[1] != "B" {
		t.Fatalf("unexpected picks %v", event.Symbols)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
}

func TestSelectionSelectDefaultTopN(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sel := &fakeSelector{result: rankingFor(asOf, "A", "B", "C", "D")}
	uc := NewSelectionUseCase(sel, nil, newFakeMetrics(), 3)

	event, err := uc.Select(context.Background(), "2024-06-03", 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(event.Symbols) != 3 {
		t.Fatalf("selected %d symbols, want configured default 3", len(event.Symbols))
	}
}

func TestSelectionSelectPublishFailure(t *testing.T) {
	asOf := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sel := &fakeSelector{result: rankingFor(asOf, "A")}
	pub := &fakePublisher{err: fmt.Errorf("broker down")}
	metrics := newFakeMetrics()
	uc := NewSelectionUseCase(sel, pub, metrics, 1)

	if _, err := uc.Select(context.Background(), "2024-06-03", 1, true); err == nil {
		t.Fatalf("expected publish error to propagate")
	}
	if metrics.errors["publish_selection"] != 1 {
		t.Fatalf("publish failure not recorded: %v", metrics.errors)
	}
}

func TestSelectionRebalanceDates(t *testing.T) {
	sel := &fakeSelector{result: rankingFor(time.Now())}
	uc := NewSelectionUseCase(sel, nil, newFakeMetrics(), 0)

	dates, err := uc.RebalanceDates("2024-01-15", "2024-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2024-02-01" || dates[1] != "2024-03-01" {
		t.Fatalf("unexpected dates %v", dates)
	}

	if _, err := uc.RebalanceDates("2024-03-10", "2024-01-15"); err == nil {
		t.Fatalf("expected error for start after end")
	}
	if _, err := uc.RebalanceDates("bad", "2024-01-15"); err == nil {
		t.Fatalf("expected error for malformed start")
	}
}
