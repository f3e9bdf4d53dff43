package repository

import (
	"context"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	pkgkafka "StockRank/pkg/kafka"
	"StockRank/pkg/util"
)

// KafkaPublisher emits daily bars and selection events to Kafka.
type KafkaPublisher struct {
	producer        *pkgkafka.Producer
	barsTopic       string
	selectionsTopic string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, barsTopic, selectionsTopic string) domrepo.Publisher {
	return &KafkaPublisher{
		producer:        producer,
		barsTopic:       barsTopic,
		selectionsTopic: selectionsTopic,
	}
}

func barMessage(b *models.Bar) map[string]interface{} {
	return map[string]interface{}{
		"date":   util.FormatDate(b.Date),
		"symbol": b.Symbol,
		"o":      b.Open,
		"h":      b.High,
		"l":      b.Low,
		"c":      b.Close,
		"v":      b.Volume,
	}
}

func (p *KafkaPublisher) PublishBar(ctx context.Context, bar *models.Bar) error {
	return p.producer.Publish(ctx, p.barsTopic, []byte(bar.Symbol), barMessage(bar))
}

func (p *KafkaPublisher) PublishBarBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(bars))
	for i, b := range bars {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(b.Symbol),
			Value: barMessage(b),
		}
	}
	return p.producer.PublishBatch(ctx, p.barsTopic, msgs)
}

func (p *KafkaPublisher) PublishSelection(ctx context.Context, event *models.SelectionEvent) error {
	return p.producer.Publish(ctx, p.selectionsTopic, []byte(event.Date), event)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
