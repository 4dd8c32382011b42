package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUpload       ErrorType = "upload"
	ErrorTypeStorage      ErrorType = "storage"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with an explicit discriminant.
// Callers branch on Type (and Code for upload errors) rather than on the
// message text.
type DomainError struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is; two domain errors match when type and code agree
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithDetail returns a copy of the error with the detail attached. The
// receiver is never mutated, so details can be added to the package-level
// sentinels from concurrent requests.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value

	return &DomainError{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, code, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Domain error variables

var (
	// Authentication errors
	ErrMissingToken      = NewDomainError(ErrorTypeUnauthorized, "MISSING_TOKEN", "no authorization - missing token", nil)
	ErrInvalidToken      = NewDomainError(ErrorTypeForbidden, "INVALID_TOKEN", "incorrect token", nil)
	ErrExpiredToken      = NewDomainError(ErrorTypeForbidden, "EXPIRED_TOKEN", "expired token", nil)
	ErrPrincipalNotFound = NewDomainError(ErrorTypeUnauthorized, "PRINCIPAL_NOT_FOUND", "user not found", nil)
	ErrInsufficientRole  = NewDomainError(ErrorTypeForbidden, "INSUFFICIENT_ROLE", "admin privileges required", nil)
	ErrBadCredentials    = NewDomainError(ErrorTypeUnauthorized, "BAD_CREDENTIALS", "incorrect username or password", nil)

	// Upload errors
	ErrFileTooLarge        = NewDomainError(ErrorTypeUpload, "FILE_TOO_LARGE", "file is too large, the maximum size is 5MB", nil)
	ErrTooManyFiles        = NewDomainError(ErrorTypeUpload, "TOO_MANY_FILES", "too many files, only one file can be uploaded at a time", nil)
	ErrUnexpectedField     = NewDomainError(ErrorTypeUpload, "UNEXPECTED_FILE", `unexpected file field, use the "image" field`, nil)
	ErrUnsupportedMimeType = NewDomainError(ErrorTypeUpload, "INVALID_FILE_TYPE", "unsupported file type, upload a JPEG, JPG, PNG, GIF or WebP image", nil)
	ErrStorageFault        = NewDomainError(ErrorTypeStorage, "STORAGE_FAULT", "failed to store uploaded file", nil)

	// Resource errors
	ErrUserNotFound        = NewDomainError(ErrorTypeNotFound, "", "user not found", nil)
	ErrArticleNotFound     = NewDomainError(ErrorTypeNotFound, "", "article not found", nil)
	ErrImageNotFound       = NewDomainError(ErrorTypeNotFound, "", "image not found", nil)
	ErrServiceNotFound     = NewDomainError(ErrorTypeNotFound, "", "service not found", nil)
	ErrDeclarationNotFound = NewDomainError(ErrorTypeNotFound, "", "declaration not found", nil)

	// Validation errors
	ErrInvalidInput = NewDomainError(ErrorTypeValidation, "", "invalid input", nil)
	ErrInvalidID    = NewDomainError(ErrorTypeValidation, "", "invalid record ID", nil)

	// Conflict errors
	ErrDuplicateUsername = NewDomainError(ErrorTypeConflict, "", "username exists already", nil)

	// Internal errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "", "internal server error", nil)
	ErrDatabase = NewDomainError(ErrorTypeInternal, "", "database error", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsUploadError checks if an error is an upload validation error
func IsUploadError(err error) bool {
	return GetErrorType(err) == ErrorTypeUpload
}

// IsStorageError checks if an error is a storage fault
func IsStorageError(err error) bool {
	return GetErrorType(err) == ErrorTypeStorage
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorCode returns the machine-readable code of a domain error
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, "", message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, "", message, err)
}

// WrapStorage wraps an error as a storage fault
func WrapStorage(message string, err error) error {
	return NewDomainError(ErrorTypeStorage, "STORAGE_FAULT", message, err)
}
