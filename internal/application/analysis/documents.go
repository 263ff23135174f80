package analysis

import (
	"context"
	"time"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

func (s *serviceImpl) AnalyzeUpload(ctx context.Context, input *UploadInput) (*document.Document, error) {
	if s.repo == nil {
		return nil, unavailable("document repository")
	}
	doc, err := s.newUpload(input)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByContentHash(ctx, doc.ContentHash); err == nil && existing != nil {
		s.logger.Info("upload matches an analyzed document",
			logging.String("document_id", existing.ID),
			logging.String("filename", doc.Filename))
		return existing, nil
	} else if err != nil && !errors.IsNotFound(err) {
		s.logger.Warn("content hash lookup failed", logging.Err(err))
	}

	if err := s.storeOriginal(ctx, doc, input.Data); err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := s.extractor.ExtractBytes(ctx, doc.Filename, input.Data)
	if err != nil {
		s.metrics.RecordExtractionFailure(doc.FileType, string(errors.GetCode(err)))
		s.metrics.RecordAnalysis(SourceUpload, false, time.Since(start), 0, 0, 0)
		doc.Fail(err.Error())
		_ = s.finish(ctx, doc, nil)
		return nil, err
	}

	a, err := s.ingest(ctx, SourceUpload, text)
	if err != nil {
		return nil, err
	}
	if err := doc.Complete(a.Result(text)); err != nil {
		return nil, err
	}
	if err := s.finish(ctx, doc, a); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *serviceImpl) SubmitAsync(ctx context.Context, input *UploadInput) (*document.Document, error) {
	if s.repo == nil {
		return nil, unavailable("document repository")
	}
	if s.store == nil {
		return nil, unavailable("object store")
	}
	if s.publisher == nil {
		return nil, unavailable("event publisher")
	}
	doc, err := s.newUpload(input)
	if err != nil {
		return nil, err
	}
	if err := s.storeOriginal(ctx, doc, input.Data); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		s.logger.Error("failed to save document", logging.String("document_id", doc.ID), logging.Err(err))
		return nil, err
	}

	if err := s.publisher.PublishEvent(ctx, kafka.TopicAnalysisRequested, document.NewAnalysisRequestedEvent(doc)); err != nil {
		doc.Fail("could not queue analysis: " + err.Error())
		if saveErr := s.repo.Save(ctx, doc); saveErr != nil {
			s.logger.Error("failed to record queue failure", logging.String("document_id", doc.ID), logging.Err(saveErr))
		}
		return nil, err
	}

	s.logger.Info("analysis queued",
		logging.String("document_id", doc.ID),
		logging.String("object_key", doc.ObjectKey))
	return doc, nil
}

// ProcessRequested handles one analysis.requested message.  Errors that a
// retry could fix are returned so the consumer retries or dead-letters the
// message.  Extraction failures are recorded on the document instead.
func (s *serviceImpl) ProcessRequested(ctx context.Context, msg *common.Message) error {
	if s.repo == nil {
		return unavailable("document repository")
	}
	if s.store == nil {
		return unavailable("object store")
	}

	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	var ev document.AnalysisRequestedEvent
	if err := env.DecodePayload(&ev); err != nil {
		return err
	}
	if ev.DocumentID == "" {
		return errors.New(errors.ErrCodeValidation, "analysis request without document id").WithDetail(env.EventID)
	}
	log := s.logger.With(logging.String("document_id", ev.DocumentID))

	if s.locks != nil {
		mu := s.locks.NewMutex("analysis:"+ev.DocumentID, redis.WithLockTTL(lockTTL))
		ok, err := mu.TryLock(ctx)
		if err != nil {
			return err
		}
		if !ok {
			log.Info("document is being processed elsewhere")
			return nil
		}
		defer func() {
			if err := mu.Unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release document lock", logging.Err(err))
			}
		}()
	}

	doc, err := s.repo.FindByID(ctx, ev.DocumentID)
	if err != nil {
		if errors.IsNotFound(err) {
			log.Warn("requested document no longer exists")
			return nil
		}
		return err
	}
	if doc.Status == document.StatusCompleted {
		log.Debug("document already analyzed")
		return nil
	}
	// A document left in processing by a crashed worker is picked up again.
	if doc.Status != document.StatusProcessing {
		if err := doc.MarkProcessing(); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, doc); err != nil {
			return err
		}
	}

	key := doc.ObjectKey
	if key == "" {
		key = ev.ObjectKey
	}
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}

	start := time.Now()
	text, err := s.extractor.ExtractBytes(ctx, doc.Filename, data)
	if err != nil {
		s.metrics.RecordExtractionFailure(doc.FileType, string(errors.GetCode(err)))
		s.metrics.RecordAnalysis(SourceWorker, false, time.Since(start), 0, 0, 0)
		if errors.IsCode(err, errors.ErrCodeAnalysisCancelled) {
			return err
		}
		doc.Fail(err.Error())
		log.Warn("extraction failed", logging.Err(err))
		return s.finish(ctx, doc, nil)
	}

	a, err := s.ingest(ctx, SourceWorker, text)
	if err != nil {
		return err
	}
	if err := doc.Complete(a.Result(text)); err != nil {
		return err
	}
	return s.finish(ctx, doc, a)
}

func (s *serviceImpl) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	if s.repo == nil {
		return nil, unavailable("document repository")
	}
	if id == "" {
		return nil, errors.InvalidParam("document id is required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *serviceImpl) ListDocuments(ctx context.Context, input *ListInput) (*ListResult, error) {
	if s.repo == nil {
		return nil, unavailable("document repository")
	}
	if input == nil {
		input = &ListInput{}
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 {
		input.PageSize = 20
	}
	if input.PageSize > 100 {
		input.PageSize = 100
	}

	opts := []document.QueryOption{document.WithPagination((input.Page-1)*input.PageSize, input.PageSize)}
	if input.Status != "" {
		st := document.Status(input.Status)
		if !st.IsValid() {
			return nil, errors.InvalidParam("unknown status").WithDetail(input.Status)
		}
		opts = append(opts, document.WithStatus(st))
	}
	if input.Filename != "" {
		opts = append(opts, document.WithFilenameFilter(input.Filename))
	}

	docs, total, err := s.repo.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]document.Summary, len(docs))
	for i, d := range docs {
		out[i] = d.Summarize()
	}
	return &ListResult{Documents: out, Total: total, Page: input.Page, PageSize: input.PageSize}, nil
}

// DeleteDocument removes the document row, then its stored original and
// search entry.  Cleanup failures after the row is gone are only logged.
func (s *serviceImpl) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.store != nil && doc.ObjectKey != "" {
		if err := s.store.Delete(ctx, doc.ObjectKey); err != nil {
			s.logger.Warn("failed to delete stored original", logging.String("key", doc.ObjectKey), logging.Err(err))
		}
	}
	if s.indexer != nil {
		if err := s.indexer.DeleteDocument(ctx, id); err != nil {
			s.logger.Warn("failed to remove document from search index", logging.String("document_id", id), logging.Err(err))
		}
	}
	s.logger.Info("document deleted", logging.String("document_id", id))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// newUpload validates input and builds a pending document for it.
func (s *serviceImpl) newUpload(input *UploadInput) (*document.Document, error) {
	if s.extractor == nil {
		return nil, unavailable("text extractor")
	}
	if input == nil {
		return nil, errors.InvalidParam("upload is required")
	}
	size := int64(len(input.Data))
	if s.maxUploadSize > 0 && size > s.maxUploadSize {
		return nil, errors.Newf(errors.ErrCodeDocumentTooLarge, "file exceeds %d bytes", s.maxUploadSize)
	}
	doc, err := document.NewDocument(input.Filename, size)
	if err != nil {
		return nil, err
	}
	if !s.extractor.Supports(doc.Filename) {
		return nil, errors.Extraction(errors.ErrCodeUnsupportedFileType, "Unsupported file type: "+doc.FileType)
	}
	doc.ContentHash = ContentHash(input.Data)
	return doc, nil
}

func (s *serviceImpl) storeOriginal(ctx context.Context, doc *document.Document, data []byte) error {
	if s.store == nil {
		return nil
	}
	key, err := s.store.PutOriginal(ctx, doc.ID, doc.Filename, data)
	if err != nil {
		s.logger.Error("failed to store original", logging.String("document_id", doc.ID), logging.Err(err))
		return err
	}
	doc.ObjectKey = key
	return nil
}

// finish persists doc, then indexes it and announces the outcome.  Only the
// save can fail the operation; index and publish failures are logged.
func (s *serviceImpl) finish(ctx context.Context, doc *document.Document, a *Analysis) error {
	if err := s.repo.Save(ctx, doc); err != nil {
		s.logger.Error("failed to save document", logging.String("document_id", doc.ID), logging.Err(err))
		return err
	}

	if s.indexer != nil && a != nil {
		if err := s.indexer.IndexDocument(ctx, opensearch.NewSearchDocument(doc, a.ClauseCategories())); err != nil {
			s.logger.Warn("failed to index document", logging.String("document_id", doc.ID), logging.Err(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, kafka.TopicAnalysisCompleted, document.NewAnalysisCompletedEvent(doc)); err != nil {
			s.logger.Warn("failed to publish analysis outcome", logging.String("document_id", doc.ID), logging.Err(err))
		}
	}

	s.logger.Info("document analyzed",
		logging.String("document_id", doc.ID),
		logging.String("status", string(doc.Status)),
		logging.Int("clauses", len(doc.Clauses)))
	return nil
}
