package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/glossary"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// GlossaryHandler serves the plain-English glossary.
type GlossaryHandler struct {
	svc    glossary.Service
	logger logging.Logger
}

// NewGlossaryHandler creates a new GlossaryHandler.
func NewGlossaryHandler(svc glossary.Service, logger logging.Logger) *GlossaryHandler {
	return &GlossaryHandler{svc: svc, logger: logger}
}

// DefineRequest is the body of POST /api/v1/glossary.
type DefineRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// List handles GET /api/v1/glossary.
func (h *GlossaryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, entries)
}

// Lookup handles GET /api/v1/glossary/{term}.
func (h *GlossaryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	term, err := url.PathUnescape(chi.URLParam(r, "term"))
	if err != nil {
		writeAppError(w, r, h.logger, errors.InvalidParam("malformed term"))
		return
	}
	entry, err := h.svc.Lookup(r.Context(), term)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, entry)
}

// Define handles POST /api/v1/glossary.
func (h *GlossaryHandler) Define(w http.ResponseWriter, r *http.Request) {
	var req DefineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	entry, err := h.svc.Define(r.Context(), req.Term, req.Definition)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusCreated, entry)
}
