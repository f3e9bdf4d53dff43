package selection

import (
	"context"
	"fmt"
	"time"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	selmetrics "StockRank/internal/service/metrics"
	pkgcache "StockRank/pkg/cache"
	applogger "StockRank/pkg/logger"
)

const (
	dateLayout = "2006-01-02"

	// lookbackBufferDays pads calendar lookbacks so weekends and
	// holidays still leave enough trading bars in the window.
	lookbackBufferDays = 30

	// cacheKeyPrefix namespaces selector entries in a shared cache.
	cacheKeyPrefix = "bars"

	// minCacheableBars: don't cache stub responses, a later backfill
	// should be able to fill them in without an explicit clear.
	minCacheableBars = 20
)

// seriesKey is the structured cache key for one (symbol, as-of, window)
// load. The window is part of the key so a wide index load never
// shadows a narrower factor load of the same symbol.
type seriesKey struct {
	Symbol string
	AsOf   string
	Days   int
}

func (k seriesKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", cacheKeyPrefix, k.Symbol, k.AsOf, k.Days)
}

// seriesLoader loads price history through a cache. IC estimation
// revisits the same (symbol, as-of) windows once per reference point,
// so caching within a selector's lifetime removes most store traffic.
type seriesLoader struct {
	history      domrepo.PriceHistory
	cache        pkgcache.Service
	ttl          time.Duration
	lookbackDays int
	log          *applogger.Logger
}

func newSeriesLoader(history domrepo.PriceHistory, cache pkgcache.Service, lookbackDays int, ttl time.Duration, log *applogger.Logger) *seriesLoader {
	return &seriesLoader{
		history:      history,
		cache:        cache,
		ttl:          ttl,
		lookbackDays: lookbackDays,
		log:          log,
	}
}

// Load returns the series for symbol ending at asOf with the default
// lookback window.
func (l *seriesLoader) Load(ctx context.Context, symbol string, asOf time.Time) (models.PriceSeries, error) {
	return l.LoadWindow(ctx, symbol, asOf, l.lookbackDays)
}

// LoadWindow returns the series for symbol ending at asOf, looking
// back lookbackDays calendar days plus buffer. A nil series with nil
// error means no data exists for the window.
func (l *seriesLoader) LoadWindow(ctx context.Context, symbol string, asOf time.Time, lookbackDays int) (models.PriceSeries, error) {
	key := seriesKey{Symbol: symbol, AsOf: asOf.Format(dateLayout), Days: lookbackDays}.String()

	if l.cache != nil {
		var cached models.PriceSeries
		if err := l.cache.Get(ctx, key, &cached); err == nil {
			selmetrics.SeriesCache.WithLabelValues("hit").Inc()
			return cached, nil
		}
		selmetrics.SeriesCache.WithLabelValues("miss").Inc()
	}

	from := asOf.AddDate(0, 0, -(lookbackDays + lookbackBufferDays))
	series, err := l.history.LoadHistory(ctx, symbol, from, asOf)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", symbol, err)
	}

	if l.cache != nil && series.Len() > minCacheableBars {
		if cerr := l.cache.Set(ctx, key, series, l.ttl); cerr != nil && l.log != nil {
			l.log.Warn("series cache set failed",
				applogger.String("symbol", symbol),
				applogger.Error(cerr),
			)
		}
	}
	return series, nil
}

// Clear drops every cached series owned by this loader. Never called
// implicitly.
func (l *seriesLoader) Clear(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.DeleteByPattern(ctx, cacheKeyPrefix+":*")
}
