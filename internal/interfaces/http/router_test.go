package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/application/glossary"
	"github.com/turtacn/LegalEase-Intelligence/internal/application/reporting"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/LegalEase-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/LegalEase-Intelligence/internal/testutil"
)

// newTestRouter wires real application services over in-process
// dependencies: the default pipeline, a mocked repository and the builtin
// glossary.
func newTestRouter(t *testing.T, mutate func(*RouterConfig)) (http.Handler, *testutil.MockDocumentRepository) {
	t.Helper()
	nop := logging.NewNopLogger()
	repo := new(testutil.MockDocumentRepository)

	svc := analysis.NewService(nop, analysis.WithRepository(repo))
	cfg := RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(svc, nop),
		DocumentHandler: handlers.NewDocumentHandler(svc, 0, nop),
		ReportHandler:   handlers.NewReportHandler(reporting.NewService(repo, nil, 0, nop), nop),
		GlossaryHandler: handlers.NewGlossaryHandler(glossary.NewService(nil, nop), nop),
		HealthHandler:   handlers.NewHealthHandler("test"),
		Logger:          nop,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg), repo
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Probes(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/readyz", "").Code)
}

func TestNewRouter_AnalyzeEndToEnd(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/v1/analyze",
		`{"text":"The lessee shall pay consideration. Notwithstanding the foregoing, the lessor may terminate."}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "despite")
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestNewRouter_DocumentAndReportRoutes(t *testing.T) {
	r, repo := newTestRouter(t, nil)
	doc := &document.Document{
		ID:             "doc-1",
		Filename:       "lease.pdf",
		SimplifiedText: "The tenant will pay.",
		Clauses:        []string{"The tenant shall pay"},
		Status:         document.StatusCompleted,
	}
	repo.On("FindByID", mock.Anything, "doc-1").Return(doc, nil)

	w := do(r, http.MethodGet, "/api/v1/documents/doc-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/documents/doc-1/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=simplified_lease.txt", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Original: lease.pdf\n"))

	w = do(r, http.MethodGet, "/api/v1/documents/doc-1/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/v1/documents/doc-1/report", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewRouter_Glossary(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/v1/glossary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Force Majeure")

	w = do(r, http.MethodGet, "/api/v1/glossary/indemnify", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/glossary/estoppel", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/v1/glossary", `{"term":"x","definition":"y"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "writes are disabled by default")
}

func TestNewRouter_NilHandlers(t *testing.T) {
	r := NewRouter(RouterConfig{})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/search?q=x", "").Code)
}

func TestNewRouter_RateLimitAppliesToAPIOnly(t *testing.T) {
	limiter := middleware.NewTokenBucketLimiter(1, 1, 0)
	r, _ := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = limiter
		cfg.RateLimit = middleware.DefaultRateLimitConfig()
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/glossary", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/api/v1/glossary", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "router"}, nil)
	require.NoError(t, err)
	r, _ := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.MetricsCollector = collector
		cfg.Metrics = prometheus.NewAppMetrics(collector)
	})

	do(r, http.MethodGet, "/api/v1/glossary/indemnify", "")
	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/api/v1/glossary/{term}"`)
}

func TestNewRouter_CORS(t *testing.T) {
	r, _ := newTestRouter(t, func(cfg *RouterConfig) { cfg.CORSOrigins = []string{"https://app.example.com"} })
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
