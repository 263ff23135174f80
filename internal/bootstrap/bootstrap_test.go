package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/config"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/testutil"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

func newInfra(t *testing.T) *Infrastructure {
	t.Helper()
	return &Infrastructure{Config: config.Default(), Logger: logging.NewNopLogger(), Service: "test"}
}

func withRedis(t *testing.T, infra *Infrastructure) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(config.RedisConfig{Enabled: true, Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	infra.Redis = client
	return mr
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = NewLogger(config.LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewMetrics(t *testing.T) {
	collector, metrics, err := NewMetrics(config.MetricsConfig{}, "test", logging.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, collector)
	assert.NotNil(t, metrics)

	collector, metrics, err = NewMetrics(config.MetricsConfig{Enabled: true, Namespace: "bootstrap_test"}, "test", logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, collector)
	assert.NotNil(t, collector.Handler())
	assert.NotNil(t, metrics)
}

func TestAnalysisService_CachesInRedis(t *testing.T) {
	infra := newInfra(t)
	mr := withRedis(t, infra)

	svc := infra.AnalysisService()
	require.NotNil(t, infra.Cache)
	require.NotNil(t, infra.Locks)

	first, err := svc.IngestAndAnalyze(context.Background(), "The tenant shall pay rent. Notwithstanding this, the landlord may terminate.")
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())

	second, err := svc.IngestAndAnalyze(context.Background(), "The tenant shall pay rent. Notwithstanding this, the landlord may terminate.")
	require.NoError(t, err)
	assert.Equal(t, first.SimplifiedText, second.SimplifiedText)
	assert.Equal(t, first.Clauses, second.Clauses)
}

func TestAnalysisService_WireIsIdempotent(t *testing.T) {
	infra := newInfra(t)
	withRedis(t, infra)

	infra.AnalysisService()
	cache := infra.Cache
	infra.AnalysisService()
	assert.Same(t, cache, infra.Cache)
}

func TestAnalysisService_WithoutRepository(t *testing.T) {
	svc := newInfra(t).AnalysisService()
	_, err := svc.GetDocument(context.Background(), "doc-1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestReportingService_PublishNeedsObjectStorage(t *testing.T) {
	infra := newInfra(t)
	infra.Documents = new(testutil.MockDocumentRepository)

	_, err := infra.ReportingService().Publish(context.Background(), "doc-1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestGlossaryService_UsesRepository(t *testing.T) {
	repo := new(testutil.MockGlossaryRepository)
	entry := &document.GlossaryEntry{Term: "escrow", Definition: "held by a third party", Source: document.GlossarySourceUser}
	repo.On("FindByTerm", mock.Anything, "escrow").Return(entry, nil)

	infra := newInfra(t)
	infra.Glossary = repo

	got, err := infra.GlossaryService().Lookup(context.Background(), "escrow")
	require.NoError(t, err)
	assert.Equal(t, entry, got)
	repo.AssertExpectations(t)
}

func TestHealthCheckers(t *testing.T) {
	infra := newInfra(t)
	assert.Empty(t, infra.HealthCheckers())

	mr := withRedis(t, infra)
	checks := infra.HealthCheckers()
	require.Len(t, checks, 1)
	assert.Equal(t, "redis", checks[0].Name())
	assert.NoError(t, checks[0].Check(context.Background()))

	mr.Close()
	assert.Error(t, checks[0].Check(context.Background()))
}

func TestClose_NoBackends(t *testing.T) {
	assert.NotPanics(t, func() { newInfra(t).Close() })
}
