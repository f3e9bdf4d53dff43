package usecase

import (
	"context"
	"fmt"
	"time"

	"StockRank/internal/domain/models"
	drepo "StockRank/internal/domain/repository"
)

// BarProcessor routes completed daily bars to the configured backend.
type BarProcessor struct {
	pub     drepo.Publisher
	store   drepo.BarStore
	metrics drepo.Metrics
	backend string
}

// NewBarProcessor creates a new BarProcessor instance.
func NewBarProcessor(pub drepo.Publisher, store drepo.BarStore, metrics drepo.Metrics, backend string) *BarProcessor {
	return &BarProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single bar to the configured backend.
func (p *BarProcessor) Process(ctx context.Context, bar *models.Bar) error {
	if bar == nil {
		return fmt.Errorf("bar is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBar(ctx, bar)
	case "clickhouse":
		err = p.store.Store(ctx, bar)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_bar")
		return fmt.Errorf("process bar: %w", err)
	}

	p.metrics.RecordBarStored(p.backend, bar.Symbol)
	p.metrics.RecordLatency("process_bar", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple bars in one backend call.
func (p *BarProcessor) ProcessBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBarBatch(ctx, bars)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, bars)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_bar_batch")
		return fmt.Errorf("process bar batch: %w", err)
	}

	for _, b := range bars {
		p.metrics.RecordBarStored(p.backend, b.Symbol)
	}
	p.metrics.RecordLatency("process_bar_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *BarProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
