package handlers

import (
	"net/http"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// maxBatchTexts bounds one batch request.
const maxBatchTexts = 50

// AnalysisHandler serves text analysis requests.
type AnalysisHandler struct {
	svc    analysis.Service
	logger logging.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(svc analysis.Service, logger logging.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, logger: logger}
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
	// Trace keeps the per-stage outputs in the response.
	Trace bool `json:"trace,omitempty"`
}

// BatchAnalyzeRequest is the body of POST /api/v1/analyze/batch.
type BatchAnalyzeRequest struct {
	Texts []string `json:"texts"`
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	var (
		result *analysis.Analysis
		err    error
	)
	if req.Trace {
		result, err = h.svc.TraceAnalyze(r.Context(), req.Text)
	} else {
		result, err = h.svc.IngestAndAnalyze(r.Context(), req.Text)
	}
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if !req.Trace && result.Steps != nil {
		trimmed := *result
		trimmed.Steps = nil
		result = &trimmed
	}
	writeData(w, r, http.StatusOK, result)
}

// AnalyzeBatch handles POST /api/v1/analyze/batch.
func (h *AnalysisHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchAnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if len(req.Texts) == 0 {
		writeData(w, r, http.StatusOK, []*analysis.Analysis{})
		return
	}
	if len(req.Texts) > maxBatchTexts {
		writeAppError(w, r, h.logger, errors.Newf(errors.ErrCodeBadRequest, "at most %d texts per batch", maxBatchTexts))
		return
	}

	results, err := h.svc.BatchAnalyze(r.Context(), req.Texts, 0)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	for i, a := range results {
		if a != nil && a.Steps != nil {
			trimmed := *a
			trimmed.Steps = nil
			results[i] = &trimmed
		}
	}
	writeData(w, r, http.StatusOK, results)
}
