package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"document not found", errors.ErrCodeDocumentNotFound, "document 42 not found"},
		{"unsupported type", errors.ErrCodeUnsupportedFileType, "Unsupported file type: .txt"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	ae := errors.New(errors.ErrCodeExtractionFailed, "Error reading PDF")
	assert.Equal(t, "[EXT_002] Error reading PDF", ae.Error())

	withDetail := ae.WithDetail("contract.pdf")
	assert.Equal(t, "[EXT_002] Error reading PDF: contract.pdf", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := errors.New(errors.ErrCodeDocumentNotFound, "missing")
	outer := errors.Wrap(inner, errors.CodeUnknown, "loading document")

	assert.Equal(t, errors.ErrCodeDocumentNotFound, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWrap_StdlibCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	ae := errors.Wrap(cause, errors.ErrCodeDatabaseError, "save failed")

	assert.Equal(t, cause, stderrors.Unwrap(ae))
	assert.Equal(t, errors.ErrCodeDatabaseError, errors.GetCode(ae))
}

// ─────────────────────────────────────────────────────────────────────────────
// Inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_ThroughFmtWrapping(t *testing.T) {
	ae := errors.New(errors.ErrCodeObjectNotFound, "no such object")
	wrapped := fmt.Errorf("download: %w", ae)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeObjectNotFound))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeInternal))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.ErrCodeSearchError, errors.GetCode(errors.New(errors.ErrCodeSearchError, "x")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeDocumentNotFound, "x")))
	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeGlossaryTermNotFound, "x")))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, errors.IsValidation(errors.InvalidParam("text is required")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeValidation, "x")))
	assert.False(t, errors.IsValidation(errors.Internal("x")))
}

func TestIsExtraction(t *testing.T) {
	for _, code := range []errors.ErrorCode{
		errors.ErrCodeUnsupportedFileType,
		errors.ErrCodeExtractionFailed,
		errors.ErrCodeExtractionEmpty,
	} {
		assert.True(t, errors.IsExtraction(errors.Extraction(code, "x")), code)
	}
	assert.False(t, errors.IsExtraction(errors.Internal("x")))
	assert.False(t, errors.IsExtraction(fmt.Errorf("plain")))
}

func TestAppError_HTTPStatus(t *testing.T) {
	assert.Equal(t, 415, errors.Extraction(errors.ErrCodeUnsupportedFileType, "x").HTTPStatus())
	assert.Equal(t, 404, errors.NotFound("x").HTTPStatus())
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("root")
	ae := errors.Internal("outer").WithCause(cause)
	assert.True(t, stderrors.Is(ae, cause))

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithCause(cause))
	assert.Nil(t, nilErr.WithDetail("x"))
}
