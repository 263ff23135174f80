package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/application/reporting"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

// --- Mock Analysis Service ---

type mockAnalysisService struct {
	mock.Mock
}

func (m *mockAnalysisService) IngestAndAnalyze(ctx context.Context, rawText string) (*analysis.Analysis, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Analysis), args.Error(1)
}

func (m *mockAnalysisService) TraceAnalyze(ctx context.Context, rawText string) (*analysis.Analysis, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Analysis), args.Error(1)
}

func (m *mockAnalysisService) AnalyzeFile(ctx context.Context, path string) (*analysis.FileAnalysis, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.FileAnalysis), args.Error(1)
}

func (m *mockAnalysisService) AnalyzeUpload(ctx context.Context, input *analysis.UploadInput) (*document.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *mockAnalysisService) SubmitAsync(ctx context.Context, input *analysis.UploadInput) (*document.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *mockAnalysisService) ProcessRequested(ctx context.Context, msg *common.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockAnalysisService) BatchAnalyze(ctx context.Context, texts []string, concurrency int) ([]*analysis.Analysis, error) {
	args := m.Called(ctx, texts, concurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analysis.Analysis), args.Error(1)
}

func (m *mockAnalysisService) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *mockAnalysisService) ListDocuments(ctx context.Context, input *analysis.ListInput) (*analysis.ListResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.ListResult), args.Error(1)
}

func (m *mockAnalysisService) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock Reporting Service ---

type mockReportingService struct {
	mock.Mock
}

func (m *mockReportingService) Download(ctx context.Context, id string) (*reporting.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.Report), args.Error(1)
}

func (m *mockReportingService) Publish(ctx context.Context, id string) (*reporting.PublishedReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.PublishedReport), args.Error(1)
}

func (m *mockReportingService) Stats(ctx context.Context, id string) (*reporting.ChartStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ChartStats), args.Error(1)
}

// --- Mock Glossary Service ---

type mockGlossaryService struct {
	mock.Mock
}

func (m *mockGlossaryService) List(ctx context.Context) ([]*document.GlossaryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.GlossaryEntry), args.Error(1)
}

func (m *mockGlossaryService) Lookup(ctx context.Context, term string) (*document.GlossaryEntry, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.GlossaryEntry), args.Error(1)
}

func (m *mockGlossaryService) Define(ctx context.Context, term, definition string) (*document.GlossaryEntry, error) {
	args := m.Called(ctx, term, definition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.GlossaryEntry), args.Error(1)
}

func (m *mockGlossaryService) Seed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock Searcher ---

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, q opensearch.Query) (*opensearch.Result, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*opensearch.Result), args.Error(1)
}

// --- helpers ---

// serve routes req through a chi router so URL parameters resolve.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope is the decoded form of a common.APIResponse.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *common.ErrorDetail `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}
