package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
	"github.com/turtacn/LegalEase-Intelligence/pkg/types/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination extracts page and page_size from query parameters.
func parsePagination(r *http.Request) (int, int) {
	page := 1
	pageSize := defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= maxPageSize {
			pageSize = ps
		}
	}
	return page, pageSize
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps data in the success envelope.
func writeData[T any](w http.ResponseWriter, r *http.Request, statusCode int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, statusCode, resp)
}

// writeAppError maps err onto its HTTP status and the error envelope.  Server
// side failures are logged and replaced with a generic message.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	message := err.Error()
	detail := ""

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		detail = appErr.Detail
	} else {
		code = errors.ErrCodeInternal
		status = http.StatusInternalServerError
	}

	log := logging.FromContext(r.Context(), logger)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logging.String("code", string(code)), logging.Err(err))
		if status == http.StatusInternalServerError {
			message = "internal server error"
			detail = ""
		}
	} else {
		log.Debug("request rejected", logging.String("code", string(code)), logging.String("message", message))
	}

	resp := common.NewErrorResponse(string(code), message)
	resp.Error.Detail = detail
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, status, resp)
}

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 8 << 20

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.Newf(errors.ErrCodeDocumentTooLarge, "request exceeds %d bytes", int64(maxJSONBody))
		}
		return errors.InvalidParam("invalid request body").WithDetail(err.Error())
	}
	return nil
}
