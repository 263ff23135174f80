// Package bootstrap assembles the infrastructure and application services
// shared by the apiserver and worker processes.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/application/glossary"
	"github.com/turtacn/LegalEase-Intelligence/internal/application/reporting"
	"github.com/turtacn/LegalEase-Intelligence/internal/config"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/extraction"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/handlers"
)

const lockPrefix = "legalease:lock:"

// Infrastructure holds the backend clients of one process.  Optional
// backends that are disabled in the configuration stay nil.
type Infrastructure struct {
	Config  *config.Config
	Logger  logging.Logger
	Service string

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Postgres  *postgres.Connection
	Documents document.Repository
	Glossary  document.GlossaryRepository

	Redis *redis.Client
	Cache redis.Cache
	Locks redis.LockFactory

	MinIO   *minio.Client
	Objects *minio.ObjectStore

	Producer   *kafka.Producer
	OpenSearch *opensearch.Client
	Indexer    *opensearch.Indexer
	Searcher   *opensearch.Searcher
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	out := cfg.Output
	if out == "" {
		out = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           cfg.Format,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
		EnableCaller:     cfg.EnableCaller,
	})
}

// NewMetrics registers the application metrics when metrics are enabled and
// returns no-op metrics otherwise.  The collector is nil when disabled.
func NewMetrics(cfg config.MetricsConfig, service string, logger logging.Logger) (prometheus.MetricsCollector, *prometheus.AppMetrics, error) {
	if !cfg.Enabled {
		return nil, prometheus.NewNoopAppMetrics(), nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfigFrom(cfg, service), logger)
	if err != nil {
		return nil, nil, err
	}
	return collector, prometheus.NewAppMetrics(collector), nil
}

// Open connects every configured backend.  PostgreSQL is required; Redis,
// MinIO, Kafka and OpenSearch are connected only when enabled.  On error
// everything opened so far is closed again.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger, service string) (*Infrastructure, error) {
	infra := &Infrastructure{Config: cfg, Logger: logger, Service: service}

	collector, metrics, err := NewMetrics(cfg.Metrics, service, logger)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	infra.Collector, infra.Metrics = collector, metrics

	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	infra.Postgres = conn
	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(conn.DB(), logger).Up(); err != nil {
			infra.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	infra.Documents = repositories.NewPostgresDocumentRepo(conn, logger)
	infra.Glossary = repositories.NewPostgresGlossaryRepo(conn, logger)

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = rc
	}

	if cfg.MinIO.Enabled {
		mc, err := minio.NewClient(cfg.MinIO, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.MinIO = mc
		if err := mc.EnsureBucket(ctx); err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio bucket: %w", err)
		}
	}

	if cfg.Kafka.Enabled {
		if cfg.Kafka.AutoCreateTopics {
			ensureTopics(ctx, cfg.Kafka.Brokers, logger)
		}
		p, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka), logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		infra.Producer = p
	}

	if cfg.OpenSearch.Enabled {
		oc, err := opensearch.NewClient(cfg.OpenSearch, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("opensearch: %w", err)
		}
		infra.OpenSearch = oc
	}

	infra.wire()
	if infra.Indexer != nil {
		if err := infra.Indexer.EnsureIndex(ctx); err != nil {
			logger.Warn("failed to ensure search index", logging.Err(err))
		}
	}

	logger.Info("infrastructure initialized",
		logging.String("service", service),
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("minio", infra.MinIO != nil),
		logging.Bool("kafka", infra.Producer != nil),
		logging.Bool("opensearch", infra.OpenSearch != nil))
	return infra, nil
}

// wire derives the helper objects that sit on top of the raw clients.  It
// leaves already derived objects alone.
func (i *Infrastructure) wire() {
	if i.Metrics == nil {
		i.Metrics = prometheus.NewNoopAppMetrics()
	}
	if i.Redis != nil && i.Cache == nil {
		i.Cache = redis.NewRedisCache(i.Redis, i.Logger,
			redis.WithPrefix(i.Config.Redis.KeyPrefix),
			redis.WithDefaultTTL(i.Config.Redis.DefaultTTL))
		i.Locks = redis.NewLockFactory(i.Redis, lockPrefix, i.Logger)
	}
	if i.MinIO != nil && i.Objects == nil {
		i.Objects = minio.NewObjectStore(i.MinIO, i.Logger)
	}
	if i.OpenSearch != nil && i.Indexer == nil {
		i.Indexer = opensearch.NewIndexer(i.OpenSearch, "", i.Logger)
		i.Searcher = opensearch.NewSearcher(i.OpenSearch, i.Logger)
	}
}

func ensureTopics(ctx context.Context, brokers []string, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(brokers, logger)
	if err != nil {
		logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics()); err != nil {
		logger.Warn("failed to create kafka topics", logging.Err(err))
	}
}

// AnalysisService builds the analysis service over every available backend.
func (i *Infrastructure) AnalysisService() analysis.Service {
	i.wire()
	opts := []analysis.Option{
		analysis.WithExtractor(extraction.NewService(i.Logger)),
		analysis.WithLimits(i.Config.Analysis.MaxUploadSize, i.Config.Analysis.BatchConcurrency),
		analysis.WithMetrics(i.Metrics),
	}
	if i.Documents != nil {
		opts = append(opts, analysis.WithRepository(i.Documents))
	}
	if i.Objects != nil {
		opts = append(opts, analysis.WithObjectStore(i.Objects))
	}
	if i.Cache != nil {
		opts = append(opts, analysis.WithCache(i.Cache, i.Config.Analysis.CacheTTL))
	}
	if i.Locks != nil {
		opts = append(opts, analysis.WithLocks(i.Locks))
	}
	if i.Producer != nil {
		opts = append(opts, analysis.WithPublisher(kafka.NewEventPublisher(i.Producer, i.Service)))
	}
	if i.Indexer != nil {
		opts = append(opts, analysis.WithIndexer(i.Indexer))
	}
	return analysis.NewService(i.Logger, opts...)
}

// ReportingService builds the report service.  Publishing needs MinIO.
func (i *Infrastructure) ReportingService() reporting.Service {
	var storage reporting.ObjectStorage
	if i.Objects != nil {
		storage = i.Objects
	}
	return reporting.NewService(i.Documents, storage, i.Config.MinIO.PresignExpiry, i.Logger)
}

// GlossaryService builds the glossary service over the stored glossary.
func (i *Infrastructure) GlossaryService() glossary.Service {
	return glossary.NewService(i.Glossary, i.Logger)
}

// HealthCheckers returns one readiness check per connected backend.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	var checks []handlers.HealthChecker
	if i.Postgres != nil {
		checks = append(checks, handlers.NewChecker("postgres", i.Postgres.HealthCheck))
	}
	if i.Redis != nil {
		checks = append(checks, handlers.NewChecker("redis", i.Redis.Ping))
	}
	if i.MinIO != nil {
		checks = append(checks, handlers.NewChecker("minio", i.MinIO.HealthCheck))
	}
	if i.OpenSearch != nil {
		checks = append(checks, handlers.NewChecker("opensearch", i.OpenSearch.Ping))
	}
	return checks
}

// Close releases every client in reverse order of opening.
func (i *Infrastructure) Close() {
	closeAll(i.Logger,
		namedCloser{"opensearch", i.OpenSearch != nil, func() error { return i.OpenSearch.Close() }},
		namedCloser{"kafka producer", i.Producer != nil, func() error { return i.Producer.Close() }},
		namedCloser{"minio", i.MinIO != nil, func() error { return i.MinIO.Close() }},
		namedCloser{"redis", i.Redis != nil, func() error { return i.Redis.Close() }},
		namedCloser{"postgres", i.Postgres != nil, func() error { return i.Postgres.Close() }},
	)
}

type namedCloser struct {
	name  string
	open  bool
	close func() error
}

func closeAll(logger logging.Logger, closers ...namedCloser) {
	start := time.Now()
	for _, c := range closers {
		if !c.open {
			continue
		}
		if err := c.close(); err != nil {
			logger.Warn("failed to close "+c.name, logging.Err(err))
		}
	}
	logger.Debug("infrastructure closed", logging.Duration("took", time.Since(start)))
}
