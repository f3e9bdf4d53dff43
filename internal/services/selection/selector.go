package selection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	domsvc "StockRank/internal/domain/service"
	selmetrics "StockRank/internal/service/metrics"
	pkgcache "StockRank/pkg/cache"
	applogger "StockRank/pkg/logger"
)

// Config holds selector tuning. Zero values fall back to the original
// system's defaults.
type Config struct {
	Universe          []string
	IndexSymbol       string
	TopN              int
	MinDataDays       int
	LookbackDays      int
	IndexLookbackDays int
	UseICWeights      bool
	RegimeWindow      int
	CacheTTL          time.Duration
	IC                ICConfig
}

func (c *Config) applyDefaults() {
	if c.IndexSymbol == "" {
		c.IndexSymbol = "SPY"
	}
	if c.TopN <= 0 {
		c.TopN = 5
	}
	if c.MinDataDays <= 0 {
		c.MinDataDays = 60
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = 120
	}
	if c.IndexLookbackDays <= 0 {
		// MA200 needs ~200 trading bars, so the index window is much
		// wider than the per-symbol factor window
		c.IndexLookbackDays = 400
	}
	if c.RegimeWindow <= 0 {
		c.RegimeWindow = 3
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 6 * time.Hour
	}
	c.IC.applyDefaults()
	if c.IC.MinBars < c.MinDataDays {
		c.IC.MinBars = c.MinDataDays
	}
}

// StockSelector ranks a fixed universe by weighted, cross-sectionally
// normalized technical factors. Weight state persists between calls
// and is updated at most once per RankStocks run, either from rolling
// IC estimation (default) or from regime classification.
type StockSelector struct {
	cfg     Config
	loader  *seriesLoader
	ic      *icEstimator
	tracker *RegimeTracker
	log     *applogger.Logger
	metrics domrepo.Metrics

	mu      sync.Mutex
	weights models.FactorWeights
}

// New builds a selector over the given universe. cache, log and
// metrics may be nil.
func New(cfg Config, history domrepo.PriceHistory, cache pkgcache.Service, log *applogger.Logger, metrics domrepo.Metrics) *StockSelector {
	cfg.applyDefaults()
	loader := newSeriesLoader(history, cache, cfg.LookbackDays, cfg.CacheTTL, log)
	return &StockSelector{
		cfg:     cfg,
		loader:  loader,
		ic:      newICEstimator(cfg.Universe, loader, cfg.IC, log),
		tracker: NewRegimeTracker(cfg.RegimeWindow),
		log:     log,
		metrics: metrics,
		weights: DefaultWeights(),
	}
}

// Weights returns a copy of the current factor weights.
func (s *StockSelector) Weights() models.FactorWeights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weights.Clone()
}

// SetWeights overrides the weight state, e.g. for backtests pinning a
// fixed configuration.
func (s *StockSelector) SetWeights(w models.FactorWeights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = w.Clone()
}

// ClearCache drops all cached price series. The cache is never
// invalidated implicitly.
func (s *StockSelector) ClearCache(ctx context.Context) error {
	return s.loader.Clear(ctx)
}

// RankStocks refreshes weights, scores every universe symbol with
// sufficient history as of asOf, and returns the cross-sectional
// ranking. Symbols without enough data are reported in Skipped, never
// silently dropped.
func (s *StockSelector) RankStocks(ctx context.Context, asOf time.Time) (*models.RankingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.updateWeights(ctx, asOf)

	result := &models.RankingResult{
		Date:    asOf,
		Weights: s.weights.Clone(),
	}

	for _, symbol := range s.cfg.Universe {
		series, err := s.loader.Load(ctx, symbol, asOf)
		if err != nil {
			s.skip(result, symbol, fmt.Sprintf("load failed: %v", err))
			continue
		}
		series = series.Truncate(asOf)
		if series.Len() < s.cfg.MinDataDays {
			s.skip(result, symbol, fmt.Sprintf("insufficient history: %d bars, need %d", series.Len(), s.cfg.MinDataDays))
			continue
		}

		fv, err := ComputeFactors(series)
		if err != nil {
			s.skip(result, symbol, err.Error())
			continue
		}

		result.Rows = append(result.Rows, models.RankingRow{
			Symbol:  symbol,
			Score:   compositeScore(s.weights, fv),
			Factors: fv,
		})
	}

	s.normalizeAndRank(result)

	if s.metrics != nil {
		s.metrics.RecordLatency("rank_stocks", time.Since(start).Seconds())
	}
	if s.log != nil {
		s.log.Info("ranking computed",
			applogger.String("date", asOf.Format(dateLayout)),
			applogger.Int("ranked", len(result.Rows)),
			applogger.Int("skipped", len(result.Skipped)),
		)
	}
	return result, nil
}

// SelectStocks returns the top-N symbols in rank order. An empty
// universe or fully insufficient data yields an empty list.
func (s *StockSelector) SelectStocks(ctx context.Context, asOf time.Time) ([]string, error) {
	result, err := s.RankStocks(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if result.Empty() {
		return []string{}, nil
	}
	return result.TopSymbols(s.cfg.TopN), nil
}

// updateWeights refreshes the weight state along the active path. Any
// total estimation failure falls back to the static defaults rather
// than propagating.
func (s *StockSelector) updateWeights(ctx context.Context, asOf time.Time) {
	if s.cfg.UseICWeights {
		icStart := time.Now()
		ics, err := s.ic.EstimateICs(ctx, asOf)
		selmetrics.ICDuration.Observe(time.Since(icStart).Seconds())
		if err != nil {
			s.warnWeights("ic estimation failed, using default weights", err)
			s.weights = DefaultWeights()
			return
		}
		target, ok := WeightsFromICs(ics)
		if !ok {
			s.weights = DefaultWeights()
			return
		}
		s.weights = SmoothWeights(s.weights, target, NewWeightShare)
		return
	}

	index, err := s.loader.LoadWindow(ctx, s.cfg.IndexSymbol, asOf, s.cfg.IndexLookbackDays)
	if err != nil {
		s.warnWeights("index load failed, using default weights", err)
		s.weights = DefaultWeights()
		return
	}
	regime := ClassifyRegime(index.Truncate(asOf))
	switch s.tracker.Observe(regime) {
	case ShiftDirect:
		s.weights = PresetForRegime(regime)
	case ShiftSmooth:
		s.weights = SmoothWeights(s.weights, PresetForRegime(regime), NewWeightShare)
	case ShiftHold:
		// recent classifications disagree, hold weights
	}
}

func (s *StockSelector) warnWeights(msg string, err error) {
	if s.metrics != nil {
		s.metrics.RecordError("weight_update")
	}
	if s.log != nil {
		s.log.Warn(msg, applogger.Error(err))
	}
}

func (s *StockSelector) skip(result *models.RankingResult, symbol, reason string) {
	result.Skipped = append(result.Skipped, models.SkippedSymbol{Symbol: symbol, Reason: reason})
	if s.metrics != nil {
		s.metrics.RecordError("symbol_skip")
	}
	if s.log != nil {
		s.log.Debug("symbol skipped",
			applogger.String("symbol", symbol),
			applogger.String("reason", reason),
		)
	}
}

// normalizeAndRank z-scores each factor column across the table,
// computes the weighted z composite, and orders rows best first. Ties
// keep universe order (the sort is stable), which makes the ranking
// deterministic for a fixed input and weight set.
func (s *StockSelector) normalizeAndRank(result *models.RankingResult) {
	rows := result.Rows
	if len(rows) == 0 {
		return
	}

	for i := range rows {
		rows[i].ZScores = make(models.FactorVector, len(models.AllFactors()))
	}
	col := make([]float64, len(rows))
	for _, f := range models.AllFactors() {
		for i, row := range rows {
			col[i] = row.Factors[f]
		}
		m := mean(col)
		sd := sampleStd(col)
		for i := range rows {
			if sd > 0 {
				rows[i].ZScores[f] = (col[i] - m) / sd
			} else {
				// degenerate column (single row or no dispersion)
				rows[i].ZScores[f] = 0
			}
		}
	}

	for i := range rows {
		rows[i].ZScore = compositeScore(result.Weights, rows[i].ZScores)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ZScore > rows[j].ZScore
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

func compositeScore(weights models.FactorWeights, values models.FactorVector) float64 {
	score := 0.0
	for f, w := range weights {
		score += w * values[f]
	}
	return score
}

// MonthlyRebalanceDates returns the first calendar day of each month
// within [start, end] formatted as YYYY-MM-DD, for callers driving
// periodic reselection.
func MonthlyRebalanceDates(start, end time.Time) []string {
	var out []string
	d := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if d.Before(time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)) {
		d = d.AddDate(0, 1, 0)
	}
	for !d.After(time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)) {
		out = append(out, d.Format(dateLayout))
		d = d.AddDate(0, 1, 0)
	}
	return out
}

var _ domsvc.Selector = (*StockSelector)(nil)
