package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes carry a module prefix ("DOC_001", "EXT_002") so that logs and API
// responses can be grouped by the subsystem that produced them.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Short aliases used at call sites.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")
)

// Document Module Error Codes
const (
	ErrCodeDocumentNotFound      ErrorCode = "DOC_001"
	ErrCodeDocumentAlreadyExists ErrorCode = "DOC_002"
	ErrCodeDocumentInvalid       ErrorCode = "DOC_003"
	ErrCodeDocumentTooLarge      ErrorCode = "DOC_004"
	ErrCodeGlossaryTermNotFound  ErrorCode = "DOC_005"
)

// Extraction Module Error Codes. These form the ExtractionError taxonomy:
// a failed extraction is fatal to a single request and the analysis
// pipeline is never invoked on it.
const (
	ErrCodeUnsupportedFileType ErrorCode = "EXT_001"
	ErrCodeExtractionFailed    ErrorCode = "EXT_002"
	ErrCodeExtractionEmpty     ErrorCode = "EXT_003"
)

// Analysis Module Error Codes
const (
	ErrCodeAnalysisFailed    ErrorCode = "ANL_001"
	ErrCodeAnalysisCancelled ErrorCode = "ANL_002"
	ErrCodeReportFailed      ErrorCode = "ANL_003"
)

// Infrastructure Error Codes
const (
	ErrCodeStorageError      ErrorCode = "STO_001"
	ErrCodeObjectNotFound    ErrorCode = "STO_002"
	ErrCodeMessageQueueError ErrorCode = "MSG_001"
	ErrCodeSearchError       ErrorCode = "SRC_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDocumentNotFound:      http.StatusNotFound,
	ErrCodeDocumentAlreadyExists: http.StatusConflict,
	ErrCodeDocumentInvalid:       http.StatusBadRequest,
	ErrCodeDocumentTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeGlossaryTermNotFound:  http.StatusNotFound,

	ErrCodeUnsupportedFileType: http.StatusUnsupportedMediaType,
	ErrCodeExtractionFailed:    http.StatusUnprocessableEntity,
	ErrCodeExtractionEmpty:     http.StatusUnprocessableEntity,

	ErrCodeAnalysisFailed:    http.StatusInternalServerError,
	ErrCodeAnalysisCancelled: http.StatusServiceUnavailable,
	ErrCodeReportFailed:      http.StatusInternalServerError,

	ErrCodeStorageError:      http.StatusInternalServerError,
	ErrCodeObjectNotFound:    http.StatusNotFound,
	ErrCodeMessageQueueError: http.StatusServiceUnavailable,
	ErrCodeSearchError:       http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDocumentNotFound:      "document not found",
	ErrCodeDocumentAlreadyExists: "document already exists",
	ErrCodeDocumentInvalid:       "invalid document",
	ErrCodeDocumentTooLarge:      "document too large",
	ErrCodeGlossaryTermNotFound:  "glossary term not found",

	ErrCodeUnsupportedFileType: "unsupported file type",
	ErrCodeExtractionFailed:    "failed to extract document text",
	ErrCodeExtractionEmpty:     "document contains no extractable text",

	ErrCodeAnalysisFailed:    "analysis failed",
	ErrCodeAnalysisCancelled: "analysis cancelled",
	ErrCodeReportFailed:      "failed to build report",

	ErrCodeStorageError:      "object storage error",
	ErrCodeObjectNotFound:    "object not found",
	ErrCodeMessageQueueError: "message queue error",
	ErrCodeSearchError:       "search backend error",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
