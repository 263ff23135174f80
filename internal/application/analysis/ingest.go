package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/clause"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/readability"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/termrec"
	"github.com/turtacn/LegalEase-Intelligence/internal/intelligence/textnorm"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// Metric source labels.
const (
	SourceText   = "text"
	SourceFile   = "file"
	SourceUpload = "upload"
	SourceWorker = "worker"
	SourceBatch  = "batch"
)

const analysisCacheName = "analysis"

func (s *serviceImpl) IngestAndAnalyze(ctx context.Context, rawText string) (*Analysis, error) {
	return s.ingest(ctx, SourceText, rawText)
}

func (s *serviceImpl) TraceAnalyze(ctx context.Context, rawText string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	return s.analyze(ctx, SourceText, rawText)
}

func (s *serviceImpl) AnalyzeFile(ctx context.Context, path string) (*FileAnalysis, error) {
	if s.extractor == nil {
		return nil, unavailable("text extractor")
	}
	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		s.metrics.RecordExtractionFailure(fileType(path), string(errors.GetCode(err)))
		return nil, err
	}
	a, err := s.ingest(ctx, SourceFile, text)
	if err != nil {
		return nil, err
	}
	return &FileAnalysis{Path: path, OriginalText: text, Analysis: a}, nil
}

func (s *serviceImpl) BatchAnalyze(ctx context.Context, texts []string, concurrency int) ([]*Analysis, error) {
	if concurrency < 1 {
		concurrency = s.batchConcurrency
	}
	results := make([]*Analysis, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			a, err := s.ingest(gctx, SourceBatch, text)
			if err != nil {
				return err
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ingest serves rawText from the cache when possible and runs the pipeline
// otherwise.  Concurrent calls for the same text share one pipeline run.
// Cache failures are logged and never fail the analysis.
func (s *serviceImpl) ingest(ctx context.Context, source, rawText string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	if s.cache == nil {
		return s.analyze(ctx, source, rawText)
	}

	key := CacheKey(rawText)
	var (
		cached Analysis
		fresh  *Analysis
	)
	err := s.cache.GetOrSet(ctx, key, &cached, s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		a, err := s.analyze(ctx, source, rawText)
		if err != nil {
			return nil, err
		}
		fresh = a
		// Stage timings describe this run only.
		stored := *a
		stored.Steps = nil
		return &stored, nil
	})
	switch {
	case err == nil && fresh != nil:
		s.metrics.RecordCacheAccess(analysisCacheName, false)
		return fresh, nil
	case err == nil:
		s.metrics.RecordCacheAccess(analysisCacheName, true)
		return &cached, nil
	case ctx.Err() != nil:
		return nil, cancelled(ctx.Err())
	case errors.IsCode(err, errors.ErrCodeAnalysisCancelled):
		// Another caller's run was cancelled; this one was not.
		return s.analyze(ctx, source, rawText)
	}

	if !errors.Is(err, redis.ErrCacheMiss) {
		s.logger.Warn("analysis cache read failed", logging.String("key", key), logging.Err(err))
	}
	s.metrics.RecordCacheAccess(analysisCacheName, false)
	return s.analyze(ctx, source, rawText)
}

// analyze runs normalization, recognition, clause detection and the
// simplification stages, then scores the raw and simplified text.
func (s *serviceImpl) analyze(ctx context.Context, source, rawText string) (*Analysis, error) {
	start := time.Now()

	text := textnorm.Normalize(rawText)
	terms := termrec.Recognize(text)
	candidates := clause.DetectClassified(text)
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	steps := s.pipeline.Trace(text)
	simplified := ""
	if n := len(steps); n > 0 {
		simplified = steps[n-1].Output
	}
	for _, st := range steps {
		s.metrics.RecordStage(st.Stage, st.Duration)
	}

	clauses := make([]string, len(candidates))
	for i, c := range candidates {
		clauses[i] = c.Text
	}

	a := &Analysis{
		SimplifiedText:    simplified,
		Clauses:           clauses,
		ClauseCandidates:  candidates,
		Terms:             terms,
		ReadabilityBefore: readability.Score(rawText),
		ReadabilityAfter:  readability.Score(simplified),
		Keywords:          textnorm.ExtractKeywords(text),
		WordsBefore:       textnorm.WordCount(rawText),
		WordsAfter:        textnorm.WordCount(simplified),
		Steps:             steps,
	}

	elapsed := time.Since(start)
	s.metrics.RecordAnalysis(source, true, elapsed, a.ReadabilityBefore, a.ReadabilityAfter, len(clauses))
	s.logger.Debug("analysis finished",
		logging.String("source", source),
		logging.Int("clauses", len(clauses)),
		logging.Int("terms", terms.Total()),
		logging.Int("readability_before", a.ReadabilityBefore),
		logging.Int("readability_after", a.ReadabilityAfter),
		logging.Duration("elapsed", elapsed))
	return a, nil
}

// CacheKey is the cache key of the analysis of rawText.
func CacheKey(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return "analysis:" + hex.EncodeToString(sum[:])
}

// ContentHash is the hex SHA-256 of an uploaded file.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileType(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

func cancelled(err error) error {
	return errors.Wrap(err, errors.ErrCodeAnalysisCancelled, "analysis cancelled")
}

func unavailable(what string) error {
	return errors.New(errors.ErrCodeServiceUnavailable, what+" is not configured")
}
