// Package http wires the REST API: chi routes, middleware and the server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig carries the handlers and middleware settings.  Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	AnalysisHandler *handlers.AnalysisHandler
	DocumentHandler *handlers.DocumentHandler
	ReportHandler   *handlers.ReportHandler
	SearchHandler   *handlers.SearchHandler
	GlossaryHandler *handlers.GlossaryHandler
	HealthHandler   *handlers.HealthHandler

	// Middleware
	CORSOrigins []string
	Logging     middleware.LoggingConfig
	// RateLimiter, when set, limits the /api/v1 routes.
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	// AllowGlossaryWrites exposes POST /api/v1/glossary.
	AllowGlossaryWrites bool

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the API handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	}

	// --- Probes ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
		}

		registerAnalysisRoutes(api, cfg.AnalysisHandler)
		registerDocumentRoutes(api, cfg.DocumentHandler, cfg.ReportHandler)
		registerSearchRoutes(api, cfg.SearchHandler)
		registerGlossaryRoutes(api, cfg.GlossaryHandler, cfg.AllowGlossaryWrites)
	})

	return r
}

func registerAnalysisRoutes(r chi.Router, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	r.Post("/analyze", h.Analyze)
	r.Post("/analyze/batch", h.AnalyzeBatch)
}

func registerDocumentRoutes(r chi.Router, h *handlers.DocumentHandler, rh *handlers.ReportHandler) {
	if h == nil && rh == nil {
		return
	}
	r.Route("/documents", func(dr chi.Router) {
		if h != nil {
			dr.Get("/", h.List)
			dr.Post("/", h.Upload)
		}

		dr.Route("/{id}", func(item chi.Router) {
			if h != nil {
				item.Get("/", h.Get)
				item.Delete("/", h.Delete)
			}
			if rh != nil {
				item.Get("/report", rh.Download)
				item.Post("/report", rh.Publish)
				item.Get("/stats", rh.Stats)
			}
		})
	})
}

func registerSearchRoutes(r chi.Router, h *handlers.SearchHandler) {
	if h == nil {
		return
	}
	r.Get("/search", h.Search)
}

func registerGlossaryRoutes(r chi.Router, h *handlers.GlossaryHandler, allowWrites bool) {
	if h == nil {
		return
	}
	r.Route("/glossary", func(gr chi.Router) {
		gr.Get("/", h.List)
		gr.Get("/{term}", h.Lookup)
		if allowWrites {
			gr.Post("/", h.Define)
		}
	})
}
