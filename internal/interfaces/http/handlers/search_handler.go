package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// Searcher runs document searches.
type Searcher interface {
	Search(ctx context.Context, q opensearch.Query) (*opensearch.Result, error)
}

// SearchHandler serves full-text search over analyzed documents.
type SearchHandler struct {
	searcher Searcher
	logger   logging.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searcher Searcher, logger logging.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// Search handles GET /api/v1/search?q=&category=.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	category := r.URL.Query().Get("category")
	if text == "" && category == "" {
		writeAppError(w, r, h.logger, errors.InvalidParam("q or category is required"))
		return
	}

	page, pageSize := parsePagination(r)
	result, err := h.searcher.Search(r.Context(), opensearch.Query{
		Text:     text,
		Category: category,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, result)
}
