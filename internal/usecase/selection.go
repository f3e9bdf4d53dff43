package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	domsvc "StockRank/internal/domain/service"
	selmetrics "StockRank/internal/service/metrics"
	"StockRank/internal/services/selection"
	"StockRank/pkg/util"
)

// SelectionUseCase exposes ranking and selection operations over the
// selector, with date parsing, top-N clamping, and optional event
// publishing.
type SelectionUseCase struct {
	selector domsvc.Selector
	pub      domrepo.Publisher // optional, nil disables publishing
	metrics  domrepo.Metrics
	topN     int
}

func NewSelectionUseCase(selector domsvc.Selector, pub domrepo.Publisher, metrics domrepo.Metrics, topN int) *SelectionUseCase {
	if topN <= 0 {
		topN = 5
	}
	return &SelectionUseCase{selector: selector, pub: pub, metrics: metrics, topN: topN}
}

func (uc *SelectionUseCase) parseDate(s string) (time.Time, error) {
	if s == "" {
		return util.DayOf(time.Now()), nil
	}
	d, ok := util.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// Rank returns the full cross-sectional ranking for a date. An empty
// date means today.
func (uc *SelectionUseCase) Rank(ctx context.Context, date string) (*models.RankingResult, error) {
	asOf, err := uc.parseDate(date)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := uc.selector.RankStocks(ctx, asOf)
	if err != nil {
		return nil, err
	}
	observeRanking(result, time.Since(start))
	return result, nil
}

func observeRanking(result *models.RankingResult, took time.Duration) {
	selmetrics.RankDuration.Observe(took.Seconds())
	selmetrics.SymbolsRanked.Set(float64(len(result.Rows)))
	for _, s := range result.Skipped {
		selmetrics.SymbolsSkipped.WithLabelValues(skipReasonClass(s.Reason)).Inc()
	}
	for f, w := range result.Weights {
		selmetrics.FactorWeight.WithLabelValues(string(f)).Set(w)
	}
}

func skipReasonClass(reason string) string {
	switch {
	case strings.HasPrefix(reason, "load failed"):
		return "load_failed"
	case strings.Contains(reason, "insufficient history"):
		return "insufficient_history"
	default:
		return "invalid_data"
	}
}

// Select returns the top-N picks for a date, optionally publishing the
// selection event downstream.
func (uc *SelectionUseCase) Select(ctx context.Context, date string, topN int, publish bool) (*models.SelectionEvent, error) {
	asOf, err := uc.parseDate(date)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = uc.topN
	}

	start := time.Now()
	result, err := uc.selector.RankStocks(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("select stocks: %w", err)
	}
	observeRanking(result, time.Since(start))

	event := &models.SelectionEvent{
		Date:    util.FormatDate(asOf),
		Symbols: result.TopSymbols(topN),
		Weights: result.Weights,
	}

	if publish && uc.pub != nil {
		if err := uc.pub.PublishSelection(ctx, event); err != nil {
			uc.metrics.RecordError("publish_selection")
			return nil, fmt.Errorf("publish selection: %w", err)
		}
	}
	return event, nil
}

// Weights returns the selector's current factor weights.
func (uc *SelectionUseCase) Weights() models.FactorWeights {
	return uc.selector.Weights()
}

// RebalanceDates lists the month-start rebalance dates in [start, end].
func (uc *SelectionUseCase) RebalanceDates(start, end string) ([]string, error) {
	from, ok := util.ParseDate(start)
	if !ok {
		return nil, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", start)
	}
	to, ok := util.ParseDate(end)
	if !ok {
		return nil, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", end)
	}
	if from.After(to) {
		return nil, fmt.Errorf("start must be <= end")
	}
	return selection.MonthlyRebalanceDates(from, to), nil
}

// ClearCache drops all cached price series.
func (uc *SelectionUseCase) ClearCache(ctx context.Context) error {
	return uc.selector.ClearCache(ctx)
}
