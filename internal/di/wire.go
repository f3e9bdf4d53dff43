//go:build wireinject
// +build wireinject

package di

import (
	"StockRank/pkg/config"
	"StockRank/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideBarStore,
		ProvideBarStorage,
		ProvidePriceHistory,
		ProvidePublisher,
		ProvideFinnhubStream,
		ProvideBackfiller,

		// Use cases
		ProvideSelector,
		ProvideSelectionUseCase,
		ProvideBarProcessor,
		ProvideBarBuilder,
		ProvideBarCollector,
		ProvideKafkaBarsHandler,
		ProvideHistoryBackfill,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
