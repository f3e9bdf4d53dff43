package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockRank/internal/domain/models"
	domrepo "StockRank/internal/domain/repository"
	pkgkafka "StockRank/pkg/kafka"
	"StockRank/pkg/util"
)

// KafkaBarsHandler consumes daily bars from Kafka and writes them to
// the bar store.
type KafkaBarsHandler struct {
	topic   string
	store   domrepo.BarStore
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, store domrepo.BarStore, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {date, symbol, o, h, l, c, v}
func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Date   string  `json:"date"`
		Symbol string  `json:"symbol"`
		O      float64 `json:"o"`
		H      float64 `json:"h"`
		L      float64 `json:"l"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	date, ok := util.ParseDate(m.Date)
	if !ok {
		h.metrics.RecordError("consumer_bad_date")
		return fmt.Errorf("bad bar date %q", m.Date)
	}

	start := time.Now()
	err := h.store.Store(ctx, &models.Bar{
		Date:   date,
		Symbol: m.Symbol,
		Open:   m.O,
		High:   m.H,
		Low:    m.L,
		Close:  m.C,
		Volume: m.V,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordBarStored("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
