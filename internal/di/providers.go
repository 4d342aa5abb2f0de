package di

import (
	"context"
	"fmt"
	"time"

	"FolioPulse/internal/adapter/coingecko"
	"FolioPulse/internal/domain/repository"
	"FolioPulse/internal/handler/api"
	"FolioPulse/internal/handler/ws"
	mid "FolioPulse/internal/middleware"
	internalrepo "FolioPulse/internal/repository"
	icache "FolioPulse/internal/service/cache"
	"FolioPulse/internal/service/ratelimit"
	"FolioPulse/internal/services/allocation"
	"FolioPulse/internal/services/analytics"
	"FolioPulse/internal/services/reconcile"
	"FolioPulse/internal/usecase"
	pkgcache "FolioPulse/pkg/cache"
	pkgch "FolioPulse/pkg/clickhouse"
	"FolioPulse/pkg/config"
	xhttp "FolioPulse/pkg/http"
	pkgkafka "FolioPulse/pkg/kafka"
	applogger "FolioPulse/pkg/logger"
	"FolioPulse/pkg/metrics"
	"FolioPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRateLimiter creates the per-source rate limiter. Every source gets
// the same budget, tiered by credential presence.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(nil, ratelimit.SourceLimit{
		Limit:  cfg.RateLimit(),
		Window: cfg.Upstream.RateLimits.Window,
	})
}

// ProvideUpstreamClient creates the shared upstream REST client.
func ProvideUpstreamClient(cfg *config.Config, limiter *ratelimit.Limiter, m repository.Metrics) *coingecko.Client {
	return coingecko.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.RequestTimeout, limiter, m)
}

// ProvideSpecDrivenAdapter creates the description-driven adapter. It is
// provided separately because the docs endpoint needs it directly.
func ProvideSpecDrivenAdapter(client *coingecko.Client, cfg *config.Config, log *applogger.Logger) *coingecko.SpecDrivenAdapter {
	return coingecko.NewSpecDrivenAdapter(client, cfg.Upstream.SpecURL, log)
}

// ProvideAdapters assembles the adapter set the aggregator fans out to.
func ProvideAdapters(client *coingecko.Client, specDriven *coingecko.SpecDrivenAdapter, log *applogger.Logger) []repository.SourceAdapter {
	return []repository.SourceAdapter{
		coingecko.NewSimpleAdapter(client, log),
		coingecko.NewEnhancedAdapter(client, log),
		specDriven,
	}
}

// ProvideSnapshotCache creates the snapshot cache, with a Redis second layer
// when enabled. Redis being down degrades to memory-only.
func ProvideSnapshotCache(cfg *config.Config, log *applogger.Logger) *icache.SnapshotCache {
	var l2 pkgcache.Service
	if cfg.Cache.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			log.Warn("redis unavailable, snapshot cache is memory-only", applogger.Error(err))
		} else {
			l2 = pkgcache.NewLayeredCache(rc)
		}
	}
	return icache.NewSnapshotCache(l2)
}

// ProvideValidator creates the cross-source reconciler.
func ProvideValidator(cfg *config.Config) *reconcile.Validator {
	return reconcile.New(cfg.Allocation.TolerancePct)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when history
// storage is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
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

// ProvideAllocationStore creates the allocation history store and its
// schema, or nil when ClickHouse is disabled.
func ProvideAllocationStore(chClient *pkgch.Client) (repository.AllocationStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseAllocationStore(chClient.DB())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("allocation store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
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

// ProvidePublisher wraps the Kafka publisher with retry buffering, or
// returns nil when Kafka is disabled. When a log topic is configured,
// aggregated error logs are shipped through the same producer.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config, m repository.Metrics, log *applogger.Logger) *mid.BufferedPublisher {
	if producer == nil {
		return nil
	}
	next := internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.SnapshotTopic, cfg.Kafka.AllocationTopic)
	if cfg.Kafka.LogTopic != "" {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      next,
		})
	}
	return mid.NewBufferedPublisher(next, m, mid.WithBufferSize(2000))
}

// ProvideAggregator wires the fetch/reconcile pipeline.
func ProvideAggregator(
	adapters []repository.SourceAdapter,
	snapCache *icache.SnapshotCache,
	validator *reconcile.Validator,
	publisher *mid.BufferedPublisher,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Aggregator {
	var pub repository.Publisher
	if publisher != nil {
		pub = publisher
	}
	return usecase.NewAggregator(
		adapters, snapCache, validator, pub, m, log,
		cfg.Cache.SnapshotTTL,
		cfg.Upstream.RequestTimeout,
		cfg.Upstream.FetchDeadline,
	)
}

// ProvidePortfolio wires the allocation usecase.
func ProvidePortfolio(
	agg *usecase.Aggregator,
	store repository.AllocationStore,
	publisher *mid.BufferedPublisher,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Portfolio {
	var pub repository.Publisher
	if publisher != nil {
		pub = publisher
	}
	return usecase.NewPortfolio(
		agg,
		analytics.New(),
		allocation.New(),
		store,
		pub,
		log,
		cfg.Allocation.DefaultSectors,
	)
}

// ProvideRefresher wires the scheduled cache warmer.
func ProvideRefresher(agg *usecase.Aggregator, store repository.AllocationStore, log *applogger.Logger, cfg *config.Config) *usecase.Refresher {
	return usecase.NewRefresher(agg, store, log, cfg.Refresh.AssetIDs, cfg.Refresh.Currency)
}

// ProvideHub creates the WebSocket broadcast hub.
func ProvideHub(log *applogger.Logger) *ws.Hub {
	return ws.NewHub(log)
}

// ProvideHTTPHandler creates the API route registrar.
func ProvideHTTPHandler(log *applogger.Logger, portfolio *usecase.Portfolio, agg *usecase.Aggregator, specDriven *coingecko.SpecDrivenAdapter) xhttp.Handler {
	return api.NewPortfolioEchoHandler(log, portfolio, agg, specDriven)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpHandler xhttp.Handler,
	hub *ws.Hub,
	portfolio *usecase.Portfolio,
	refresher *usecase.Refresher,
	publisher *mid.BufferedPublisher,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, httpHandler, hub, portfolio, refresher, publisher, chClient)
}
