package analysis

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/config"
	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/clause"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/readability"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/simplify"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/termrec"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/textnorm"
	"github.com/turtacn/LegalEase-Intelligence/internal/testutil"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

const sampleContract = "This Agreement is entered into by the parties hereinafter referred to as the Client and the Provider. " +
	"Notwithstanding any prior agreement, the Provider shall indemnify the Client against all liability arising from breach of contract. " +
	"Payment of the fee shall be made within thirty days of the date of invoice. " +
	"Either party may terminate this agreement upon written notice pursuant to section twelve."

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *mockExtractor) ExtractBytes(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}

func (m *mockExtractor) Supports(filename string) bool {
	switch fileType(filename) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

type mockStore struct{ mock.Mock }

func (m *mockStore) PutOriginal(ctx context.Context, docID, filename string, data []byte) (string, error) {
	args := m.Called(ctx, docID, filename, data)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, ev common.DomainEvent) error {
	return m.Called(ctx, topic, ev).Error(0)
}

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) IndexDocument(ctx context.Context, doc opensearch.SearchDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockIndexer) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(ev common.DomainEvent) bool { return ev.EventType() == eventType })
}

func newMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(config.RedisConfig{Enabled: true, Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ─────────────────────────────────────────────────────────────────────────────
// IngestAndAnalyze
// ─────────────────────────────────────────────────────────────────────────────

func TestIngestAndAnalyze_RunsWholePipeline(t *testing.T) {
	svc := NewService(logging.NewNopLogger())

	a, err := svc.IngestAndAnalyze(context.Background(), sampleContract)
	require.NoError(t, err)

	normalized := textnorm.Normalize(sampleContract)
	assert.Equal(t, simplify.Simplify(normalized), a.SimplifiedText)
	assert.Equal(t, clause.Detect(normalized), a.Clauses)
	assert.Equal(t, termrec.Recognize(normalized), a.Terms)
	assert.Equal(t, readability.Score(sampleContract), a.ReadabilityBefore)
	assert.Equal(t, readability.Score(a.SimplifiedText), a.ReadabilityAfter)
	assert.Contains(t, a.SimplifiedText, "despite")
	assert.Contains(t, a.Terms.Get("Legal Phrases"), "hereinafter")
	assert.Contains(t, a.Keywords, "agreement")

	require.Len(t, a.Steps, 4)
	assert.Equal(t, "term_substitution", a.Steps[0].Stage)
	assert.Equal(t, "readability", a.Steps[3].Stage)
	assert.Equal(t, a.SimplifiedText, a.Steps[3].Output)

	require.Len(t, a.ClauseCandidates, len(a.Clauses))
	assert.Equal(t, len(a.Clauses), len(a.ClauseCategories()))
}

func TestIngestAndAnalyze_EmptyText(t *testing.T) {
	svc := NewService(logging.NewNopLogger())

	a, err := svc.IngestAndAnalyze(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, a.SimplifiedText)
	assert.Empty(t, a.Clauses)
	assert.Equal(t, 0, a.ReadabilityBefore)
	assert.Equal(t, 0, a.ReadabilityAfter)
	assert.Equal(t, 0, a.Terms.Total())
	assert.Nil(t, a.Steps)
}

func TestIngestAndAnalyze_Cancelled(t *testing.T) {
	svc := NewService(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.IngestAndAnalyze(ctx, sampleContract)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisCancelled))
}

func TestIngestAndAnalyze_UsesCache(t *testing.T) {
	client := newMiniredis(t)
	cache := redis.NewRedisCache(client, nil, redis.WithPrefix("test:"), redis.WithJitter(0))

	var runs int32
	counting := simplify.NewStage("count", func(s string) string {
		atomic.AddInt32(&runs, 1)
		return s
	})
	svc := NewService(logging.NewNopLogger(),
		WithCache(cache, time.Minute),
		WithPipeline(simplify.New(append(simplify.DefaultStages(), counting)...)))

	first, err := svc.IngestAndAnalyze(context.Background(), sampleContract)
	require.NoError(t, err)
	second, err := svc.IngestAndAnalyze(context.Background(), sampleContract)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.Equal(t, first.SimplifiedText, second.SimplifiedText)
	assert.Equal(t, first.Clauses, second.Clauses)
	assert.Equal(t, first.ClauseCandidates, second.ClauseCandidates)
	assert.Equal(t, first.Terms.Map(), second.Terms.Map())
	assert.Equal(t, first.ReadabilityBefore, second.ReadabilityBefore)
	assert.Nil(t, second.Steps)

	exists, err := cache.Exists(context.Background(), CacheKey(sampleContract))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngestAndAnalyze_ConcurrentCallsShareOneRun(t *testing.T) {
	client := newMiniredis(t)
	cache := redis.NewRedisCache(client, nil, redis.WithPrefix("test:"), redis.WithJitter(0))

	var runs int32
	release := make(chan struct{})
	slow := simplify.NewStage("slow", func(s string) string {
		atomic.AddInt32(&runs, 1)
		<-release
		return s
	})
	svc := NewService(logging.NewNopLogger(),
		WithCache(cache, time.Minute),
		WithPipeline(simplify.New(append(simplify.DefaultStages(), slow)...)))

	const callers = 4
	results := make(chan *Analysis, callers)
	for i := 0; i < callers; i++ {
		go func() {
			a, err := svc.IngestAndAnalyze(context.Background(), sampleContract)
			assert.NoError(t, err)
			results <- a
		}()
	}
	// Callers arriving after the run finishes read the cache instead.
	time.Sleep(100 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		a := <-results
		require.NotNil(t, a)
		assert.NotEmpty(t, a.SimplifiedText)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestTraceAnalyze_BypassesCache(t *testing.T) {
	client := newMiniredis(t)
	cache := redis.NewRedisCache(client, nil, redis.WithPrefix("test:"), redis.WithJitter(0))
	svc := NewService(logging.NewNopLogger(), WithCache(cache, time.Minute))

	_, err := svc.IngestAndAnalyze(context.Background(), sampleContract)
	require.NoError(t, err)
	cached, err := svc.IngestAndAnalyze(context.Background(), sampleContract)
	require.NoError(t, err)
	require.Nil(t, cached.Steps)

	traced, err := svc.TraceAnalyze(context.Background(), sampleContract)
	require.NoError(t, err)
	require.Len(t, traced.Steps, len(simplify.DefaultStages()))
	assert.Equal(t, cached.SimplifiedText, traced.SimplifiedText)
	assert.Equal(t, traced.SimplifiedText, traced.Steps[len(traced.Steps)-1].Output)
}

func TestTraceAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService(logging.NewNopLogger()).TraceAnalyze(ctx, sampleContract)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisCancelled))
}

func TestAnalysisResult_EmptyTermCategoriesStayLists(t *testing.T) {
	a, err := NewService(logging.NewNopLogger()).IngestAndAnalyze(context.Background(), "bona fide")
	require.NoError(t, err)

	doc, err := document.NewDocument("note.txt", 9)
	require.NoError(t, err)
	require.NoError(t, doc.Complete(a.Result("bona fide")))

	data, err := json.Marshal(doc.Terms)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Latin Terms":["bona fide"],"Contract Terms":[],"Legal Phrases":[]}`, string(data))
}

func TestCacheKey_DependsOnRawText(t *testing.T) {
	assert.Equal(t, CacheKey("a"), CacheKey("a"))
	assert.NotEqual(t, CacheKey("a"), CacheKey("a "))
	assert.Len(t, CacheKey("a"), len("analysis:")+64)
}

func TestBatchAnalyze_KeepsInputOrder(t *testing.T) {
	svc := NewService(logging.NewNopLogger())
	texts := []string{
		sampleContract,
		"",
		"The party shall utilize the premises.",
		"Notwithstanding the above, payment is due.",
	}

	results, err := svc.BatchAnalyze(context.Background(), texts, 2)
	require.NoError(t, err)
	require.Len(t, results, len(texts))
	for i, text := range texts {
		assert.Equal(t, simplify.Simplify(textnorm.Normalize(text)), results[i].SimplifiedText, "text %d", i)
	}
}

func TestBatchAnalyze_Cancelled(t *testing.T) {
	svc := NewService(logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.BatchAnalyze(ctx, []string{"a", "b"}, 0)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnalysisCancelled))
}

// ─────────────────────────────────────────────────────────────────────────────
// Files and uploads
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyzeFile_ExtractionErrorSkipsPipeline(t *testing.T) {
	ext := new(mockExtractor)
	ext.On("Extract", mock.Anything, "contract.pdf").
		Return("", errors.Extraction(errors.ErrCodeExtractionFailed, "Error reading PDF"))

	var ran bool
	probe := simplify.NewStage("probe", func(s string) string { ran = true; return s })
	svc := NewService(logging.NewNopLogger(), WithExtractor(ext), WithPipeline(simplify.New(probe)))

	_, err := svc.AnalyzeFile(context.Background(), "contract.pdf")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
	assert.False(t, ran)
}

func TestAnalyzeFile_Success(t *testing.T) {
	ext := new(mockExtractor)
	ext.On("Extract", mock.Anything, "contract.docx").Return(sampleContract, nil)
	svc := NewService(logging.NewNopLogger(), WithExtractor(ext))

	res, err := svc.AnalyzeFile(context.Background(), "contract.docx")
	require.NoError(t, err)
	assert.Equal(t, sampleContract, res.OriginalText)
	assert.Equal(t, readability.Score(sampleContract), res.Analysis.ReadabilityBefore)
}

func TestAnalyzeFile_NoExtractor(t *testing.T) {
	svc := NewService(logging.NewNopLogger())
	_, err := svc.AnalyzeFile(context.Background(), "contract.pdf")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

type uploadFixture struct {
	repo      *testutil.MockDocumentRepository
	ext       *mockExtractor
	store     *mockStore
	publisher *mockPublisher
	indexer   *mockIndexer
	svc       Service
}

func newUploadFixture(opts ...Option) *uploadFixture {
	f := &uploadFixture{
		repo:      new(testutil.MockDocumentRepository),
		ext:       new(mockExtractor),
		store:     new(mockStore),
		publisher: new(mockPublisher),
		indexer:   new(mockIndexer),
	}
	base := []Option{
		WithRepository(f.repo),
		WithExtractor(f.ext),
		WithObjectStore(f.store),
		WithPublisher(f.publisher),
		WithIndexer(f.indexer),
	}
	f.svc = NewService(logging.NewNopLogger(), append(base, opts...)...)
	return f
}

var notFound = errors.New(errors.ErrCodeDocumentNotFound, "document not found")

func TestAnalyzeUpload_Success(t *testing.T) {
	f := newUploadFixture()
	data := []byte("%PDF-1.4 fake")

	f.repo.On("FindByContentHash", mock.Anything, ContentHash(data)).Return(nil, notFound)
	f.store.On("PutOriginal", mock.Anything, mock.AnythingOfType("string"), "contract.pdf", data).
		Return("originals/x/contract.pdf", nil)
	f.ext.On("ExtractBytes", mock.Anything, "contract.pdf", data).Return(sampleContract, nil)
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(d *document.Document) bool {
		return d.Status == document.StatusCompleted
	})).Return(nil)
	f.indexer.On("IndexDocument", mock.Anything, mock.MatchedBy(func(sd opensearch.SearchDocument) bool {
		return sd.Filename == "contract.pdf" && sd.SimplifiedText != ""
	})).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, kafka.TopicAnalysisCompleted, eventOfType(document.EventAnalysisCompleted)).Return(nil)

	doc, err := f.svc.AnalyzeUpload(context.Background(), &UploadInput{Filename: "contract.pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, document.StatusCompleted, doc.Status)
	assert.Equal(t, "originals/x/contract.pdf", doc.ObjectKey)
	assert.Equal(t, sampleContract, doc.OriginalText)
	assert.Equal(t, simplify.Simplify(textnorm.Normalize(sampleContract)), doc.SimplifiedText)
	assert.Equal(t, readability.Score(sampleContract), doc.ReadabilityBefore)
	assert.NotEmpty(t, doc.Terms)

	f.repo.AssertExpectations(t)
	f.store.AssertExpectations(t)
	f.indexer.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestAnalyzeUpload_IndexAndPublishFailuresAreNotFatal(t *testing.T) {
	f := newUploadFixture()
	data := []byte("docx bytes")

	f.repo.On("FindByContentHash", mock.Anything, mock.Anything).Return(nil, notFound)
	f.store.On("PutOriginal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("k", nil)
	f.ext.On("ExtractBytes", mock.Anything, mock.Anything, mock.Anything).Return(sampleContract, nil)
	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.indexer.On("IndexDocument", mock.Anything, mock.Anything).Return(errors.New(errors.ErrCodeSearchError, "down"))
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(errors.New(errors.ErrCodeMessageQueueError, "down"))

	doc, err := f.svc.AnalyzeUpload(context.Background(), &UploadInput{Filename: "a.docx", Data: data})
	require.NoError(t, err)
	assert.Equal(t, document.StatusCompleted, doc.Status)
}

func TestAnalyzeUpload_UnsupportedType(t *testing.T) {
	f := newUploadFixture()

	_, err := f.svc.AnalyzeUpload(context.Background(), &UploadInput{Filename: "notes.txt", Data: []byte("x")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedFileType))
	assert.Contains(t, err.Error(), "Unsupported file type: .txt")
	f.store.AssertNotCalled(t, "PutOriginal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeUpload_TooLarge(t *testing.T) {
	f := newUploadFixture(WithLimits(4, 2))

	_, err := f.svc.AnalyzeUpload(context.Background(), &UploadInput{Filename: "a.pdf", Data: []byte("12345")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentTooLarge))
}

func TestAnalyzeUpload_Duplicate(t *testing.T) {
	f := newUploadFixture()
	data := []byte("same bytes")
	existing := &document.Document{ID: "doc-1", Filename: "a.pdf", Status: document.StatusCompleted}
	f.repo.On("FindByContentHash", mock.Anything, ContentHash(data)).Return(existing, nil)

	doc, err := f.svc.AnalyzeUpload(context.Background(), &UploadInput{Filename: "b.pdf", Data: data})
	require.NoError(t, err)
	assert.Same(t, existing, doc)
	f.ext.AssertNotCalled(t, "ExtractBytes", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeUpload_ExtractionFailureRecorded(t *testing.T) {
	f := newUploadFixture()
	data := []byte("broken")

	f.repo.On("FindByContentHash", mock.Anything, mock.Anything).Return(nil, notFound)
	f.store.On("PutOriginal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("k", nil)
	f.ext.On("ExtractBytes", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.Extraction(errors.ErrCodeExtractionFailed, "Error reading DOCX"))
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(d *document.Document) bool {
		return d.Status == document.StatusFailed && d.FailureReason != ""
	})).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, kafka.TopicAnalysisCompleted, eventOfType(document.EventAnalysisFailed)).Return(nil)

	_, err := f.svc.AnalyzeUpload(context.Background(), &UploadInput{Filename: "a.docx", Data: data})
	assert.True(t, errors.IsCode(err, errors.ErrCodeExtractionFailed))
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.indexer.AssertNotCalled(t, "IndexDocument", mock.Anything, mock.Anything)
}

// ─────────────────────────────────────────────────────────────────────────────
// Asynchronous flow
// ─────────────────────────────────────────────────────────────────────────────

func TestSubmitAsync(t *testing.T) {
	f := newUploadFixture()
	data := []byte("pdf")

	f.store.On("PutOriginal", mock.Anything, mock.Anything, "a.pdf", data).Return("originals/id/a.pdf", nil)
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(d *document.Document) bool {
		return d.Status == document.StatusPending && d.ObjectKey == "originals/id/a.pdf"
	})).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, kafka.TopicAnalysisRequested, eventOfType(document.EventAnalysisRequested)).Return(nil)

	doc, err := f.svc.SubmitAsync(context.Background(), &UploadInput{Filename: "a.pdf", Data: data})
	require.NoError(t, err)
	assert.Equal(t, document.StatusPending, doc.Status)
	f.ext.AssertNotCalled(t, "ExtractBytes", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertExpectations(t)
}

func TestSubmitAsync_PublishFailureMarksFailed(t *testing.T) {
	f := newUploadFixture()

	f.store.On("PutOriginal", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("k", nil)
	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodeMessageQueueError, "broker down"))

	_, err := f.svc.SubmitAsync(context.Background(), &UploadInput{Filename: "a.pdf", Data: []byte("x")})
	require.Error(t, err)
	lastSaved := f.repo.Calls[len(f.repo.Calls)-1].Arguments.Get(1).(*document.Document)
	assert.Equal(t, document.StatusFailed, lastSaved.Status)
}

func requestMessage(t *testing.T, doc *document.Document) *common.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(document.NewAnalysisRequestedEvent(doc), "test")
	require.NoError(t, err)
	pm, err := env.ToMessage(kafka.TopicAnalysisRequested)
	require.NoError(t, err)
	return &common.Message{Topic: pm.Topic, Key: pm.Key, Value: pm.Value, Headers: pm.Headers}
}

func pendingDocument(t *testing.T) *document.Document {
	t.Helper()
	doc, err := document.NewDocument("lease.pdf", 10)
	require.NoError(t, err)
	doc.ObjectKey = "originals/" + doc.ID + "/lease.pdf"
	return doc
}

func TestProcessRequested_CompletesDocument(t *testing.T) {
	client := newMiniredis(t)
	f := newUploadFixture(WithLocks(redis.NewLockFactory(client, "test:", nil)))
	doc := pendingDocument(t)
	data := []byte("pdf bytes")

	f.repo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.repo.On("Save", mock.Anything, doc).Return(nil)
	f.store.On("Get", mock.Anything, doc.ObjectKey).Return(data, nil)
	f.ext.On("ExtractBytes", mock.Anything, "lease.pdf", data).Return(sampleContract, nil)
	f.indexer.On("IndexDocument", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishEvent", mock.Anything, kafka.TopicAnalysisCompleted, eventOfType(document.EventAnalysisCompleted)).Return(nil)

	err := f.svc.ProcessRequested(context.Background(), requestMessage(t, doc))
	require.NoError(t, err)
	assert.Equal(t, document.StatusCompleted, doc.Status)
	assert.Equal(t, simplify.Simplify(textnorm.Normalize(sampleContract)), doc.SimplifiedText)
	f.repo.AssertNumberOfCalls(t, "Save", 2)
	f.publisher.AssertExpectations(t)
}

func TestProcessRequested_SkipsLockedDocument(t *testing.T) {
	client := newMiniredis(t)
	locks := redis.NewLockFactory(client, "test:", nil)
	f := newUploadFixture(WithLocks(locks))
	doc := pendingDocument(t)

	holder := locks.NewMutex("analysis:"+doc.ID, redis.WithLockTTL(time.Minute))
	ok, err := holder.TryLock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	err = f.svc.ProcessRequested(context.Background(), requestMessage(t, doc))
	require.NoError(t, err)
	f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProcessRequested_AlreadyCompleted(t *testing.T) {
	f := newUploadFixture()
	doc := pendingDocument(t)
	doc.Status = document.StatusCompleted
	f.repo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)

	require.NoError(t, f.svc.ProcessRequested(context.Background(), requestMessage(t, doc)))
	f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestProcessRequested_ExtractionFailureIsNotRetried(t *testing.T) {
	f := newUploadFixture()
	doc := pendingDocument(t)

	f.repo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.repo.On("Save", mock.Anything, doc).Return(nil)
	f.store.On("Get", mock.Anything, doc.ObjectKey).Return([]byte("x"), nil)
	f.ext.On("ExtractBytes", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.Extraction(errors.ErrCodeExtractionEmpty, "no text could be extracted"))
	f.publisher.On("PublishEvent", mock.Anything, kafka.TopicAnalysisCompleted, eventOfType(document.EventAnalysisFailed)).Return(nil)

	require.NoError(t, f.svc.ProcessRequested(context.Background(), requestMessage(t, doc)))
	assert.Equal(t, document.StatusFailed, doc.Status)
}

func TestProcessRequested_StorageErrorIsRetried(t *testing.T) {
	f := newUploadFixture()
	doc := pendingDocument(t)

	f.repo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.repo.On("Save", mock.Anything, doc).Return(nil)
	f.store.On("Get", mock.Anything, doc.ObjectKey).Return(nil, errors.New(errors.ErrCodeStorageError, "unreachable"))

	err := f.svc.ProcessRequested(context.Background(), requestMessage(t, doc))
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
}

func TestProcessRequested_BadPayload(t *testing.T) {
	f := newUploadFixture()
	err := f.svc.ProcessRequested(context.Background(), &common.Message{Value: []byte("{not json")})
	require.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

func TestListDocuments(t *testing.T) {
	f := newUploadFixture()
	docs := []*document.Document{{ID: "1", Filename: "a.pdf", Status: document.StatusCompleted, Clauses: []string{"x"}}}
	f.repo.On("List", mock.Anything, document.QueryOptions{Offset: 10, Limit: 10, Status: document.StatusCompleted}).
		Return(docs, int64(11), nil)

	res, err := f.svc.ListDocuments(context.Background(), &ListInput{Page: 2, PageSize: 10, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.Total)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, 1, res.Documents[0].ClauseCount)
}

func TestListDocuments_InvalidStatus(t *testing.T) {
	f := newUploadFixture()
	_, err := f.svc.ListDocuments(context.Background(), &ListInput{Status: "archived"})
	assert.True(t, errors.IsValidation(err))
}

func TestDeleteDocument(t *testing.T) {
	f := newUploadFixture()
	doc := &document.Document{ID: "1", Filename: "a.pdf", ObjectKey: "originals/1/a.pdf", Status: document.StatusCompleted}
	f.repo.On("FindByID", mock.Anything, "1").Return(doc, nil)
	f.repo.On("Delete", mock.Anything, "1").Return(nil)
	f.store.On("Delete", mock.Anything, "originals/1/a.pdf").Return(nil)
	f.indexer.On("DeleteDocument", mock.Anything, "1").Return(nil)

	require.NoError(t, f.svc.DeleteDocument(context.Background(), "1"))
	f.store.AssertExpectations(t)
	f.indexer.AssertExpectations(t)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	f := newUploadFixture()
	f.repo.On("FindByID", mock.Anything, "missing").Return(nil, notFound)

	err := f.svc.DeleteDocument(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
