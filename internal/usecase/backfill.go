package usecase

import (
	"context"
	"time"

	domrepo "StockRank/internal/domain/repository"
	"StockRank/internal/service/finnhub"
	applogger "StockRank/pkg/logger"
)

// HistoryBackfill seeds the bar store with REST candles so ranking has
// enough history before the live stream catches up.
type HistoryBackfill struct {
	backfiller *finnhub.Backfiller
	store      domrepo.BarStore
	metrics    domrepo.Metrics
	log        *applogger.Logger
	symbols    []string
	days       int
}

func NewHistoryBackfill(backfiller *finnhub.Backfiller, store domrepo.BarStore, metrics domrepo.Metrics, log *applogger.Logger, symbols []string, days int) *HistoryBackfill {
	if days <= 0 {
		days = 400
	}
	return &HistoryBackfill{
		backfiller: backfiller,
		store:      store,
		metrics:    metrics,
		log:        log,
		symbols:    symbols,
		days:       days,
	}
}

// Run fetches and stores daily candles for every configured symbol.
// Per-symbol failures are logged and skipped so one bad symbol doesn't
// abort the whole seed.
func (b *HistoryBackfill) Run(ctx context.Context) error {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -b.days)

	for _, symbol := range b.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		bars, err := b.backfiller.DailyBars(ctx, symbol, from, to)
		if err != nil {
			b.metrics.RecordError("backfill_fetch")
			b.log.Warn("backfill fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		if len(bars) == 0 {
			continue
		}
		if err := b.store.StoreBatch(ctx, bars); err != nil {
			b.metrics.RecordError("backfill_store")
			b.log.Error("backfill store failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		b.log.Info("backfilled symbol",
			applogger.String("symbol", symbol),
			applogger.Int("bars", len(bars)),
		)
	}
	return nil
}
