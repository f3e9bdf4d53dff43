package service

import (
	"context"
	"time"

	"StockRank/internal/domain/models"
)

// Selector ranks a fixed stock universe cross-sectionally and picks
// the top N. Implementations own mutable weight state between calls;
// RankStocks may update it at most once per call.
type Selector interface {
	RankStocks(ctx context.Context, asOf time.Time) (*models.RankingResult, error)
	SelectStocks(ctx context.Context, asOf time.Time) ([]string, error)
	Weights() models.FactorWeights
	ClearCache(ctx context.Context) error
}
