package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// uploadField is the multipart form field carrying the file.
const uploadField = "file"

// DocumentHandler serves document upload and retrieval.
type DocumentHandler struct {
	svc         analysis.Service
	maxBodySize int64
	logger      logging.Logger
}

// NewDocumentHandler creates a new DocumentHandler.  maxBodySize bounds the
// multipart request; zero means 32 MiB.
func NewDocumentHandler(svc analysis.Service, maxBodySize int64, logger logging.Logger) *DocumentHandler {
	if maxBodySize <= 0 {
		maxBodySize = 32 << 20
	}
	return &DocumentHandler{svc: svc, maxBodySize: maxBodySize, logger: logger}
}

// Upload handles POST /api/v1/documents.  With ?async=true the document is
// queued and 202 is returned with its pending state.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	input, err := h.readUpload(w, r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	if async {
		doc, err := h.svc.SubmitAsync(r.Context(), input)
		if err != nil {
			writeAppError(w, r, h.logger, err)
			return
		}
		w.Header().Set("Location", "/api/v1/documents/"+doc.ID)
		writeData(w, r, http.StatusAccepted, doc)
		return
	}

	doc, err := h.svc.AnalyzeUpload(r.Context(), input)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusCreated, doc)
}

// List handles GET /api/v1/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	result, err := h.svc.ListDocuments(r.Context(), &analysis.ListInput{
		Page:     page,
		PageSize: pageSize,
		Status:   r.URL.Query().Get("status"),
		Filename: r.URL.Query().Get("filename"),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, result)
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) (*analysis.UploadInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errors.Newf(errors.ErrCodeDocumentTooLarge, "request exceeds %d bytes", h.maxBodySize)
		}
		return nil, errors.InvalidParam("multipart form expected").WithDetail(err.Error())
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.InvalidParam("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "could not read upload")
	}
	return &analysis.UploadInput{Filename: header.Filename, Data: data}, nil
}
