package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	RankDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stockrank",
			Subsystem: "selection",
			Name:      "rank_duration_seconds",
			Help:      "Wall time of one full ranking run",
			Buckets:   prometheus.DefBuckets,
		},
	)

	SymbolsRanked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stockrank",
			Subsystem: "selection",
			Name:      "symbols_ranked",
			Help:      "Symbols scored in the latest ranking run",
		},
	)

	SymbolsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockrank",
			Subsystem: "selection",
			Name:      "symbols_skipped_total",
			Help:      "Symbols excluded from ranking, by reason class",
		},
		[]string{"reason"},
	)

	FactorWeight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "stockrank",
			Subsystem: "selection",
			Name:      "factor_weight",
			Help:      "Current weight per factor",
		},
		[]string{"factor"},
	)

	ICDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stockrank",
			Subsystem: "selection",
			Name:      "ic_estimation_duration_seconds",
			Help:      "Wall time of one rolling IC estimation",
			Buckets:   prometheus.DefBuckets,
		},
	)

	SeriesCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockrank",
			Subsystem: "selection",
			Name:      "series_cache_total",
			Help:      "Price series cache lookups, by outcome",
		},
		[]string{"outcome"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(RankDuration, SymbolsRanked, SymbolsSkipped, FactorWeight, ICDuration, SeriesCache)
	})
}
