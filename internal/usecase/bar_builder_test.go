package usecase

import (
	"context"
	"testing"
	"time"

	"StockRank/internal/domain/models"
)

type fakeBarStore struct {
	bars []*models.Bar
}

func (f *fakeBarStore) Init(context.Context) error { return nil }
func (f *fakeBarStore) Store(_ context.Context, b *models.Bar) error {
	f.bars = append(f.bars, b)
	return nil
}
func (f *fakeBarStore) StoreBatch(_ context.Context, bs []*models.Bar) error {
	f.bars = append(f.bars, bs...)
	return nil
}
func (f *fakeBarStore) Health(context.Context) error { return nil }
func (f *fakeBarStore) Close() error                 { return nil }

type fakeMetrics struct {
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: make(map[string]int)} }

func (m *fakeMetrics) RecordBarStored(string, string)  {}
func (m *fakeMetrics) RecordError(kind string)         { m.errors[kind]++ }
func (m *fakeMetrics) RecordLastClose(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}

func tickAt(symbol string, t time.Time, price, volume float64) *models.Tick {
	return &models.Tick{Symbol: symbol, Timestamp: t.Unix(), Price: price, Volume: volume}
}

func TestBarBuilderAggregatesOneDay(t *testing.T) {
	store := &fakeBarStore{}
	metrics := newFakeMetrics()
	builder := NewBarBuilder(NewBarProcessor(nil, store, metrics, "clickhouse"), metrics)

	ctx := context.Background()
	day := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	ticks := []*models.Tick{
		tickAt("AAPL", day, 100, 10),
		tickAt("AAPL", day.Add(time.Hour), 105, 5),
		tickAt("AAPL", day.Add(2*time.Hour), 98, 7),
		tickAt("AAPL", day.Add(3*time.Hour), 102, 3),
	}
	for _, tk := range ticks {
		if err := builder.Process(ctx, tk); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if len(store.bars) != 0 {
		t.Fatalf("bar emitted before day rolled over")
	}

	if err := builder.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.bars) != 1 {
		t.Fatalf("stored %d bars, want 1", len(store.bars))
	}
	b := store.bars[0]
	if b.Open != 100 || b.High != 105 || b.Low != 98 || b.Close != 102 || b.Volume != 25 {
		t.Fatalf("unexpected bar %+v", b)
	}
	if !b.Date.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected bar date %v", b.Date)
	}
}

func TestBarBuilderEmitsOnDayRollover(t *testing.T) {
	store := &fakeBarStore{}
	metrics := newFakeMetrics()
	builder := NewBarBuilder(NewBarProcessor(nil, store, metrics, "clickhouse"), metrics)

	ctx := context.Background()
	day1 := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 4, 9, 30, 0, 0, time.UTC)

	if err := builder.Process(ctx, tickAt("AAPL", day1, 100, 10)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := builder.Process(ctx, tickAt("AAPL", day2, 110, 2)); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(store.bars) != 1 {
		t.Fatalf("stored %d bars, want 1 after rollover", len(store.bars))
	}
	if store.bars[0].Close != 100 {
		t.Fatalf("completed bar close = %v, want 100", store.bars[0].Close)
	}

	// the new day's bar is still open
	if err := builder.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.bars) != 2 || store.bars[1].Open != 110 {
		t.Fatalf("unexpected bars after flush: %+v", store.bars)
	}
}

func TestBarBuilderDropsLateTicks(t *testing.T) {
	store := &fakeBarStore{}
	metrics := newFakeMetrics()
	builder := NewBarBuilder(NewBarProcessor(nil, store, metrics, "clickhouse"), metrics)

	ctx := context.Background()
	day2 := time.Date(2024, 6, 4, 9, 30, 0, 0, time.UTC)
	day1 := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	if err := builder.Process(ctx, tickAt("AAPL", day2, 110, 2)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := builder.Process(ctx, tickAt("AAPL", day1, 100, 10)); err != nil {
		t.Fatalf("late tick should be dropped, not error: %v", err)
	}
	if metrics.errors["bar_late_tick"] != 1 {
		t.Fatalf("late tick not recorded: %v", metrics.errors)
	}

	if err := builder.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.bars) != 1 || store.bars[0].Volume != 2 {
		t.Fatalf("late tick leaked into bar: %+v", store.bars)
	}
}

func TestBarBuilderTracksSymbolsIndependently(t *testing.T) {
	store := &fakeBarStore{}
	metrics := newFakeMetrics()
	builder := NewBarBuilder(NewBarProcessor(nil, store, metrics, "clickhouse"), metrics)

	ctx := context.Background()
	day := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	if err := builder.Process(ctx, tickAt("AAPL", day, 100, 1)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := builder.Process(ctx, tickAt("MSFT", day, 400, 1)); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := builder.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.bars) != 2 {
		t.Fatalf("stored %d bars, want 2", len(store.bars))
	}
}
