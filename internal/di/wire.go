//go:build wireinject
// +build wireinject

package di

import (
	"FolioPulse/pkg/config"
	"FolioPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream access
		ProvideRateLimiter,
		ProvideUpstreamClient,
		ProvideSpecDrivenAdapter,
		ProvideAdapters,

		// Pipeline state
		ProvideSnapshotCache,
		ProvideValidator,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideAllocationStore,
		ProvideKafkaProducer,
		ProvidePublisher,

		// Use cases
		ProvideAggregator,
		ProvidePortfolio,
		ProvideRefresher,

		// Delivery
		ProvideHub,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
