package repository

import (
	"context"
	"time"

	"StockRank/internal/domain/models"
)

// PriceHistory serves daily bars for ranking and IC estimation.
type PriceHistory interface {
	// LoadHistory returns bars for symbol with dates in [from, to],
	// ascending. An empty series with nil error means no data.
	LoadHistory(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error)
}

// BarStore persists daily bars produced by the ingest path.
type BarStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, bar *models.Bar) error
	StoreBatch(ctx context.Context, bars []*models.Bar) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits bars and selection events to downstream consumers.
type Publisher interface {
	PublishBar(ctx context.Context, bar *models.Bar) error
	PublishBarBatch(ctx context.Context, bars []*models.Bar) error
	PublishSelection(ctx context.Context, event *models.SelectionEvent) error
	Close() error
}

// MarketStream is a live tick feed (websocket or otherwise). The
// symbol set is fixed at construction.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics abstracts the operational counters so services don't bind to
// a concrete registry.
type Metrics interface {
	RecordBarStored(backend, symbol string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
