package usecase

import (
	"context"

	"StockRank/internal/domain/models"
	drepo "StockRank/internal/domain/repository"
	mid "StockRank/internal/middleware"
)

// BarCollector consumes the live market stream and feeds ticks through
// the ingest pipeline into the bar builder.
type BarCollector struct {
	stream  drepo.MarketStream
	builder *BarBuilder
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewBarCollector creates a new BarCollector instance.
func NewBarCollector(stream drepo.MarketStream, builder *BarBuilder, metrics drepo.Metrics, pipe *mid.IngestPipeline) *BarCollector {
	return &BarCollector{stream: stream, builder: builder, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *BarCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *BarCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *BarCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.builder.Process(ctx, t)
			}
			c.metrics.RecordLastClose(t.Symbol, t.Price)
		}
	}
}

// Builder returns the underlying BarBuilder for lifecycle management.
func (c *BarCollector) Builder() *BarBuilder { return c.builder }

// Shutdown stops the pipeline, flushes open bars, and closes the stream.
func (c *BarCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	if err := c.builder.Flush(ctx); err != nil {
		c.metrics.RecordError("flush")
	}
	return c.stream.Close()
}
