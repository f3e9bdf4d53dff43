package usecase

import (
	"context"
	"sync"
	"time"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	"StockRank/pkg/util"
)

// BarBuilder aggregates raw ticks into daily OHLCV bars. A symbol's
// bar stays open until the first tick of a later day arrives, at which
// point the completed bar is handed to the processor.
type BarBuilder struct {
	proc    *BarProcessor
	metrics domrepo.Metrics

	mu   sync.Mutex
	open map[string]*models.Bar
}

// NewBarBuilder creates a tick-to-daily-bar aggregator.
func NewBarBuilder(proc *BarProcessor, metrics domrepo.Metrics) *BarBuilder {
	return &BarBuilder{
		proc:    proc,
		metrics: metrics,
		open:    make(map[string]*models.Bar),
	}
}

// Process folds one tick into its symbol's open bar. Ticks for a day
// older than the open bar are dropped; out-of-order delivery within
// the same day only affects the close, which is acceptable for daily
// granularity.
func (b *BarBuilder) Process(ctx context.Context, t *models.Tick) error {
	day := util.DayOf(time.Unix(t.Timestamp, 0))

	b.mu.Lock()
	cur, ok := b.open[t.Symbol]
	if !ok || day.After(cur.Date) {
		b.open[t.Symbol] = &models.Bar{
			Date:   day,
			Symbol: t.Symbol,
			Open:   t.Price,
			High:   t.Price,
			Low:    t.Price,
			Close:  t.Price,
			Volume: t.Volume,
		}
		b.mu.Unlock()

		if ok {
			// previous day's bar is complete
			return b.proc.Process(ctx, cur)
		}
		return nil
	}
	if day.Before(cur.Date) {
		b.mu.Unlock()
		b.metrics.RecordError("bar_late_tick")
		return nil
	}

	if t.Price > cur.High {
		cur.High = t.Price
	}
	if t.Price < cur.Low {
		cur.Low = t.Price
	}
	cur.Close = t.Price
	cur.Volume += t.Volume
	b.mu.Unlock()
	return nil
}

// Flush emits every open bar, used at shutdown so a partial trading
// day is not lost.
func (b *BarBuilder) Flush(ctx context.Context) error {
	b.mu.Lock()
	bars := make([]*models.Bar, 0, len(b.open))
	for _, bar := range b.open {
		bars = append(bars, bar)
	}
	b.open = make(map[string]*models.Bar)
	b.mu.Unlock()

	if len(bars) == 0 {
		return nil
	}
	return b.proc.ProcessBatch(ctx, bars)
}
