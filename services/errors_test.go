package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("error string includes type and message", func(t *testing.T) {
		err := NewDomainError(ErrorTypeNotFound, "", "article not found", nil)
		assert.Equal(t, "not_found: article not found", err.Error())
	})

	t.Run("wrapped cause is included and unwrappable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewDomainError(ErrorTypeInternal, "", "database error", cause)

		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("errors.Is matches on type and code", func(t *testing.T) {
		wrapped := fmt.Errorf("upload rejected: %w", ErrFileTooLarge)

		assert.True(t, errors.Is(wrapped, ErrFileTooLarge))
		assert.False(t, errors.Is(wrapped, ErrTooManyFiles))
		assert.False(t, errors.Is(wrapped, errors.New("file is too large")))
	})

	t.Run("WithDetail accumulates details", func(t *testing.T) {
		err := NewDomainError(ErrorTypeUpload, "INVALID_FILE_TYPE", "bad type", nil).
			WithDetail("mimeType", "text/plain")

		assert.Equal(t, "text/plain", GetErrorDetails(err)["mimeType"])
	})

	t.Run("WithDetail leaves the receiver untouched", func(t *testing.T) {
		detailed := ErrUnsupportedMimeType.WithDetail("mimeType", "text/plain")

		assert.Equal(t, "text/plain", GetErrorDetails(detailed)["mimeType"])
		assert.Nil(t, ErrUnsupportedMimeType.Details)
		assert.True(t, errors.Is(detailed, ErrUnsupportedMimeType))
	})

	t.Run("WithDetail copies do not share the map", func(t *testing.T) {
		base := NewDomainError(ErrorTypeUpload, "INVALID_FILE_TYPE", "bad type", nil).
			WithDetail("mimeType", "text/plain")
		other := base.WithDetail("field", "image")

		assert.NotContains(t, base.Details, "field")
		assert.Equal(t, "text/plain", other.Details["mimeType"])
	})
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", ErrArticleNotFound, IsNotFoundError},
		{"validation", ErrInvalidID, IsValidationError},
		{"unauthorized", ErrMissingToken, IsUnauthorizedError},
		{"forbidden", ErrExpiredToken, IsForbiddenError},
		{"conflict", ErrDuplicateUsername, IsConflictError},
		{"upload", ErrFileTooLarge, IsUploadError},
		{"storage", ErrStorageFault, IsStorageError},
		{"internal", ErrInternal, IsInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}

	t.Run("wrapping preserves the classification", func(t *testing.T) {
		wrapped := fmt.Errorf("repository: %w", ErrArticleNotFound)
		assert.True(t, IsNotFoundError(wrapped))
	})

	t.Run("plain errors are unclassified", func(t *testing.T) {
		plain := errors.New("boom")
		assert.False(t, IsNotFoundError(plain))
		assert.Equal(t, ErrorType(""), GetErrorType(plain))
	})
}

func TestUploadErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrFileTooLarge, "FILE_TOO_LARGE"},
		{ErrTooManyFiles, "TOO_MANY_FILES"},
		{ErrUnexpectedField, "UNEXPECTED_FILE"},
		{ErrUnsupportedMimeType, "INVALID_FILE_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, GetErrorCode(tt.err))
		})
	}
}
