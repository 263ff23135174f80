// Command worker consumes analysis requests from Kafka and runs the
// simplification pipeline on the uploaded documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/bootstrap"
	"github.com/turtacn/LegalEase-Intelligence/internal/config"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

// Set via -ldflags at build time.
var version = "dev"

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Kafka.Enabled {
		return errors.New("kafka must be enabled for the worker")
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	logger.Info("starting LegalEase worker",
		logging.String("version", version),
		logging.Strings("brokers", cfg.Kafka.Brokers),
		logging.Int("concurrency", cfg.Worker.Concurrency))

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	infra, err := bootstrap.Open(startCtx, cfg, logger, "worker")
	cancel()
	if err != nil {
		return err
	}
	defer infra.Close()

	consumer, err := kafka.NewConsumer(
		kafka.ConsumerConfigFrom(cfg.Kafka, cfg.Worker, kafka.TopicAnalysisRequested),
		infra.Producer, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.Subscribe(kafka.TopicAnalysisRequested,
		analysisHandler(infra.AnalysisService(), infra.Metrics, cfg.Worker.ProcessTimeout, logger))

	healthSrv := startHealthServer(cfg, infra, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	logger.Info("worker started", logging.String("topic", kafka.TopicAnalysisRequested))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", logging.String("signal", sig.String()))

	stop()
	done := make(chan struct{})
	go func() {
		consumer.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.Warn("timed out waiting for in-flight messages")
	}
	if err := consumer.Close(); err != nil {
		logger.Warn("failed to close consumer", logging.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown failed", logging.Err(err))
	}

	m := consumer.Metrics()
	logger.Info("worker stopped",
		logging.Int64("processed", m.MessagesProcessed.Load()),
		logging.Int64("failed", m.MessagesFailed.Load()))
	return nil
}

// analysisHandler runs ProcessRequested under a per-message deadline and
// records the outcome.
func analysisHandler(svc analysis.Service, metrics *prometheus.AppMetrics, timeout time.Duration, logger logging.Logger) common.MessageHandler {
	return func(ctx context.Context, msg *common.Message) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		err := svc.ProcessRequested(ctx, msg)
		metrics.RecordQueueMessage(msg.Topic, err, time.Since(start))
		if err != nil {
			logger.Warn("analysis request failed",
				logging.String("key", string(msg.Key)),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		}
		return err
	}
}

// startHealthServer serves the probes and, when enabled, the metrics scrape.
func startHealthServer(cfg *config.Config, infra *bootstrap.Infrastructure, logger logging.Logger) *http.Server {
	health := handlers.NewHealthHandler(version, infra.HealthCheckers()...)
	r := chi.NewRouter()
	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	if infra.Collector != nil {
		r.Handle(cfg.Metrics.Path, infra.Collector.Handler())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.HealthPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", cfg.Worker.HealthPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}
