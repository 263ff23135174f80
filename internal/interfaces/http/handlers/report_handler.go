package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/reporting"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
)

// ReportHandler serves report downloads and chart figures.
type ReportHandler struct {
	svc    reporting.Service
	logger logging.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc reporting.Service, logger logging.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// Download handles GET /api/v1/documents/{id}/report.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Content)
}

// Publish handles POST /api/v1/documents/{id}/report.  It stores the report
// and returns a time-limited link.
func (h *ReportHandler) Publish(w http.ResponseWriter, r *http.Request) {
	published, err := h.svc.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusCreated, published)
}

// Stats handles GET /api/v1/documents/{id}/stats.
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, stats)
}
