package di

import (
	"context"
	"fmt"
	"time"

	"StockRank/internal/domain/repository"
	domsvc "StockRank/internal/domain/service"
	"StockRank/internal/handler/api"
	mid "StockRank/internal/middleware"
	internalrepo "StockRank/internal/repository"
	"StockRank/internal/service/finnhub"
	"StockRank/internal/services/selection"
	"StockRank/internal/usecase"
	pkgcache "StockRank/pkg/cache"
	pkgch "StockRank/pkg/clickhouse"
	"StockRank/pkg/config"
	xhttp "StockRank/pkg/http"
	pkgkafka "StockRank/pkg/kafka"
	applogger "StockRank/pkg/logger"
	"StockRank/pkg/metrics"
	"StockRank/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarStore creates the daily bar store and initializes its schema.
func ProvideBarStore(chClient *pkgch.Client, l *applogger.Logger) (*internalrepo.CHBarStore, error) {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideBarStorage exposes the bar store under its write interface.
func ProvideBarStorage(store *internalrepo.CHBarStore) repository.BarStore {
	return store
}

// ProvidePriceHistory exposes the bar store under its read interface.
func ProvidePriceHistory(store *internalrepo.CHBarStore) repository.PriceHistory {
	return store
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the Kafka publisher for bars and selection events.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.BarsTopic, cfg.Kafka.SelectionsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(store repository.BarStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.BarsTopic, store, metrics)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the price series cache backend.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Type {
	case "redis":
		return pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	default:
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
		), nil
	}
}

// ProvideFinnhubStream creates the Finnhub WebSocket stream over the
// selection universe.
func ProvideFinnhubStream(cfg *config.Config) repository.MarketStream {
	return finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Selector.Universe,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
	)
}

// ProvideBackfiller creates the Finnhub REST candle client.
func ProvideBackfiller(cfg *config.Config) *finnhub.Backfiller {
	return finnhub.NewBackfiller(cfg.Finnhub.APIKey, cfg.Finnhub.RestURL, cfg.Finnhub.RestTimeout)
}

// ProvideHistoryBackfill creates the startup backfill job.
func ProvideHistoryBackfill(
	backfiller *finnhub.Backfiller,
	store repository.BarStore,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.HistoryBackfill {
	return usecase.NewHistoryBackfill(backfiller, store, metrics, l, cfg.Selector.Universe, cfg.Selector.BackfillDays)
}

// ProvideSelector creates the factor selector over the configured universe.
func ProvideSelector(
	cfg *config.Config,
	history repository.PriceHistory,
	cache pkgcache.Service,
	l *applogger.Logger,
	metrics repository.Metrics,
) domsvc.Selector {
	return selection.New(selection.Config{
		Universe:          cfg.Selector.Universe,
		IndexSymbol:       cfg.Selector.IndexSymbol,
		TopN:              cfg.Selector.TopN,
		MinDataDays:       cfg.Selector.MinDataDays,
		LookbackDays:      cfg.Selector.LookbackDays,
		IndexLookbackDays: cfg.Selector.IndexLookbackDays,
		UseICWeights:      cfg.Selector.UseICWeights,
		RegimeWindow:      cfg.Selector.RegimeWindow,
		CacheTTL:          cfg.Selector.CacheTTL,
	}, history, cache, l, metrics)
}

// ProvideSelectionUseCase creates the ranking/selection use case.
func ProvideSelectionUseCase(
	selector domsvc.Selector,
	pub repository.Publisher,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.SelectionUseCase {
	return usecase.NewSelectionUseCase(selector, pub, metrics, cfg.Selector.TopN)
}

// ProvideBarProcessor creates the bar processor use case.
func ProvideBarProcessor(
	pub repository.Publisher,
	store repository.BarStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.BarProcessor {
	return usecase.NewBarProcessor(pub, store, metrics, cfg.Backend.Type)
}

// ProvideBarBuilder creates the tick-to-daily-bar aggregator.
func ProvideBarBuilder(proc *usecase.BarProcessor, metrics repository.Metrics) *usecase.BarBuilder {
	return usecase.NewBarBuilder(proc, metrics)
}

// ProvideBarCollector creates the bar collector use case.
func ProvideBarCollector(
	stream repository.MarketStream,
	builder *usecase.BarBuilder,
	metrics repository.Metrics,
) *usecase.BarCollector {
	// Build middleware pipeline between WebSocket and the bar builder
	pipe := mid.NewIngestPipeline(builder, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewBarCollector(stream, builder, metrics, pipe)
}

// ProvideHTTPHandler creates the selection HTTP handler.
func ProvideHTTPHandler(l *applogger.Logger, sel *usecase.SelectionUseCase) xhttp.Handler {
	return api.NewSelectionEchoHandler(l, sel)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.BarCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	backfill *usecase.HistoryBackfill,
	proc *usecase.BarProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, collector, consumer, kh, backfill, proc, chClient, handler)
}
