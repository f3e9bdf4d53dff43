package finnhub

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockRank/internal/domain/models"
	pkghttp "StockRank/pkg/http"
)

// Backfiller pulls historical daily candles over Finnhub's REST API to
// seed the bar store before the live stream has accumulated enough
// history for ranking.
type Backfiller struct {
	apiKey  string
	baseURL string
	client  *pkghttp.Client
}

// NewBackfiller creates a REST candle backfiller.
func NewBackfiller(apiKey, baseURL string, timeout time.Duration) *Backfiller {
	if baseURL == "" {
		baseURL = "https://finnhub.io/api/v1"
	}
	return &Backfiller{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

// candle response uses parallel arrays keyed by field initial.
type fhCandles struct {
	Status  string    `json:"s"`
	Times   []int64   `json:"t"`
	Opens   []float64 `json:"o"`
	Highs   []float64 `json:"h"`
	Lows    []float64 `json:"l"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
}

// DailyBars fetches daily candles for symbol in [from, to].
func (b *Backfiller) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]*models.Bar, error) {
	var resp fhCandles
	err := b.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    b.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix(), 10)},
			"token":      {b.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}
	if resp.Status == "no_data" {
		return nil, nil
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("finnhub candles %s: status %q", symbol, resp.Status)
	}

	n := len(resp.Times)
	if len(resp.Opens) != n || len(resp.Highs) != n || len(resp.Lows) != n ||
		len(resp.Closes) != n || len(resp.Volumes) != n {
		return nil, fmt.Errorf("finnhub candles %s: ragged response", symbol)
	}

	bars := make([]*models.Bar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, &models.Bar{
			Date:   time.Unix(resp.Times[i], 0).UTC().Truncate(24 * time.Hour),
			Symbol: symbol,
			Open:   resp.Opens[i],
			High:   resp.Highs[i],
			Low:    resp.Lows[i],
			Close:  resp.Closes[i],
			Volume: resp.Volumes[i],
		})
	}
	return bars, nil
}
