// Command apiserver serves the LegalEase HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/internal/bootstrap"
	"github.com/turtacn/LegalEase-Intelligence/internal/config"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/middleware"
)

// Set via -ldflags at build time.
var version = "dev"

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	logger.Info("starting LegalEase API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("mode", cfg.Server.Mode))

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	infra, err := bootstrap.Open(startCtx, cfg, logger, "apiserver")
	cancel()
	if err != nil {
		return err
	}
	defer infra.Close()

	glossarySvc := infra.GlossaryService()
	seedCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	if n, err := glossarySvc.Seed(seedCtx); err != nil {
		logger.Warn("failed to seed glossary", logging.Err(err))
	} else {
		logger.Info("glossary seeded", logging.Int("entries", n))
	}
	cancel()

	analysisSvc := infra.AnalysisService()
	routerCfg := httpserver.RouterConfig{
		AnalysisHandler:     handlers.NewAnalysisHandler(analysisSvc, logger),
		DocumentHandler:     handlers.NewDocumentHandler(analysisSvc, cfg.Server.MaxBodySize, logger),
		ReportHandler:       handlers.NewReportHandler(infra.ReportingService(), logger),
		GlossaryHandler:     handlers.NewGlossaryHandler(glossarySvc, logger),
		HealthHandler:       handlers.NewHealthHandler(version, infra.HealthCheckers()...),
		CORSOrigins:         cfg.Server.CORSOrigins,
		Logging:             middleware.DefaultLoggingConfig(),
		AllowGlossaryWrites: cfg.Server.Mode != "release",
		Logger:              logger,
		Metrics:             infra.Metrics,
		MetricsCollector:    infra.Collector,
		MetricsPath:         cfg.Metrics.Path,
	}
	if infra.Searcher != nil {
		routerCfg.SearchHandler = handlers.NewSearchHandler(infra.Searcher, logger)
	}
	rl := middleware.DefaultRateLimitConfig()
	limiter := middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.CleanupInterval)
	defer limiter.Stop()
	routerCfg.RateLimiter = limiter
	routerCfg.RateLimit = rl

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	if setter, ok := logger.(logging.LevelSetter); ok && configPath != "" {
		err := config.Watch(configPath, func(c *config.Config) {
			setter.SetLevel(c.Log.Level)
			logger.Info("log level updated", logging.String("level", c.Log.Level))
		}, func(err error) {
			logger.Warn("config reload failed", logging.Err(err))
		})
		if err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", logging.Err(err))
		return err
	}
	logger.Info("API server stopped")
	return nil
}
