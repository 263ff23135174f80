// Package analysis provides the application service that runs uploaded legal
// documents through the simplification pipeline.  It sits between the HTTP,
// CLI and worker entry points and the pipeline, storage, cache, search and
// messaging infrastructure.
package analysis

import (
	"context"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/clause"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/simplify"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/termrec"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

// Service defines the analysis application operations.
type Service interface {
	// IngestAndAnalyze runs the full pipeline over raw text.  It fails only
	// when ctx is cancelled.
	IngestAndAnalyze(ctx context.Context, rawText string) (*Analysis, error)
	// TraceAnalyze is IngestAndAnalyze without the result cache, so Steps
	// always holds the output of every stage.
	TraceAnalyze(ctx context.Context, rawText string) (*Analysis, error)
	// AnalyzeFile extracts a local PDF or DOCX file and analyzes its text.
	AnalyzeFile(ctx context.Context, path string) (*FileAnalysis, error)
	// AnalyzeUpload stores, extracts, analyzes and persists an upload.
	AnalyzeUpload(ctx context.Context, input *UploadInput) (*document.Document, error)
	// SubmitAsync stores an upload and queues it for a worker.
	SubmitAsync(ctx context.Context, input *UploadInput) (*document.Document, error)
	// ProcessRequested is the worker handler for analysis.requested events.
	ProcessRequested(ctx context.Context, msg *common.Message) error
	// BatchAnalyze analyzes texts in parallel.  Results keep input order.
	BatchAnalyze(ctx context.Context, texts []string, concurrency int) ([]*Analysis, error)

	GetDocument(ctx context.Context, id string) (*document.Document, error)
	ListDocuments(ctx context.Context, input *ListInput) (*ListResult, error)
	DeleteDocument(ctx context.Context, id string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────────────────────────────────────

// Analysis is the result of one pipeline run.
type Analysis struct {
	SimplifiedText    string             `json:"simplified_text" yaml:"simplified_text"`
	Clauses           []string           `json:"clauses" yaml:"clauses"`
	ClauseCandidates  []clause.Candidate `json:"clause_candidates" yaml:"clause_candidates"`
	Terms             termrec.Result     `json:"terms" yaml:"-"`
	ReadabilityBefore int                `json:"readability_before" yaml:"readability_before"`
	ReadabilityAfter  int                `json:"readability_after" yaml:"readability_after"`
	Keywords          []string           `json:"keywords" yaml:"keywords"`
	WordsBefore       int                `json:"words_before" yaml:"words_before"`
	WordsAfter        int                `json:"words_after" yaml:"words_after"`
	Steps             []simplify.Step    `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// ClauseCategories returns the category of each clause, by position.
func (a *Analysis) ClauseCategories() []string {
	out := make([]string, len(a.ClauseCandidates))
	for i, c := range a.ClauseCandidates {
		out[i] = string(c.Category)
	}
	return out
}

// Result converts the analysis into the form recorded on a document.
func (a *Analysis) Result(originalText string) document.Result {
	return document.Result{
		OriginalText:      originalText,
		SimplifiedText:    a.SimplifiedText,
		Clauses:           a.Clauses,
		Terms:             a.Terms.Map(),
		ReadabilityBefore: a.ReadabilityBefore,
		ReadabilityAfter:  a.ReadabilityAfter,
	}
}

// FileAnalysis pairs an analysis with the text extracted from a file.
type FileAnalysis struct {
	Path         string    `json:"path" yaml:"path"`
	OriginalText string    `json:"original_text" yaml:"original_text"`
	Analysis     *Analysis `json:"analysis" yaml:"analysis"`
}

// UploadInput is a file received from a client.
type UploadInput struct {
	Filename string
	Data     []byte
}

// ListInput contains input for listing documents.
type ListInput struct {
	Page     int
	PageSize int
	Status   string
	Filename string
}

// ListResult is one page of documents.
type ListResult struct {
	Documents []document.Summary `json:"documents"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────────────────────

// Extractor turns an uploaded file into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
	ExtractBytes(ctx context.Context, filename string, data []byte) (string, error)
	Supports(filename string) bool
}

// ObjectStore keeps uploaded originals.
type ObjectStore interface {
	PutOriginal(ctx context.Context, docID, filename string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes domain events to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ev common.DomainEvent) error
}

// SearchIndexer keeps the search index in step with the repository.
type SearchIndexer interface {
	IndexDocument(ctx context.Context, doc opensearch.SearchDocument) error
	DeleteDocument(ctx context.Context, id string) error
}

// Option configures the service.
type Option func(*serviceImpl)

// WithPipeline replaces the default simplification pipeline.
func WithPipeline(p *simplify.Pipeline) Option {
	return func(s *serviceImpl) { s.pipeline = p }
}

// WithExtractor sets the text extractor used for files and uploads.
func WithExtractor(e Extractor) Option {
	return func(s *serviceImpl) { s.extractor = e }
}

// WithRepository sets the document repository.
func WithRepository(r document.Repository) Option {
	return func(s *serviceImpl) { s.repo = r }
}

// WithObjectStore sets the store for uploaded originals.
func WithObjectStore(o ObjectStore) Option {
	return func(s *serviceImpl) { s.store = o }
}

// WithCache caches analyses for ttl, keyed by the SHA-256 of the raw text.
func WithCache(c redis.Cache, ttl time.Duration) Option {
	return func(s *serviceImpl) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLocks guards worker processing of a document with a distributed lock.
func WithLocks(f redis.LockFactory) Option {
	return func(s *serviceImpl) { s.locks = f }
}

// WithPublisher sets the event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

// WithIndexer sets the search indexer.
func WithIndexer(i SearchIndexer) Option {
	return func(s *serviceImpl) { s.indexer = i }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithLimits sets the upload size limit and the default batch concurrency.
func WithLimits(maxUploadSize int64, batchConcurrency int) Option {
	return func(s *serviceImpl) {
		s.maxUploadSize = maxUploadSize
		s.batchConcurrency = batchConcurrency
	}
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	pipeline  *simplify.Pipeline
	extractor Extractor
	repo      document.Repository
	store     ObjectStore
	cache     redis.Cache
	cacheTTL  time.Duration
	locks     redis.LockFactory
	publisher EventPublisher
	indexer   SearchIndexer
	metrics   *prometheus.AppMetrics
	logger    logging.Logger

	maxUploadSize    int64
	batchConcurrency int
}

const (
	defaultBatchConcurrency = 4
	defaultCacheTTL         = time.Hour
	lockTTL                 = 5 * time.Minute
)

// NewService creates a new analysis application service.  Only the pipeline
// is mandatory; it defaults to the four standard stages.  Operations that need
// a missing collaborator return a ServiceUnavailable error.
func NewService(logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{
		logger:           logger,
		batchConcurrency: defaultBatchConcurrency,
		cacheTTL:         defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = simplify.New()
	}
	if s.metrics == nil {
		s.metrics = prometheus.NewNoopAppMetrics()
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.batchConcurrency < 1 {
		s.batchConcurrency = defaultBatchConcurrency
	}
	return s
}
