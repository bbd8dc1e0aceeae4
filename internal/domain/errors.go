package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the handler layer free of
// per-error-type switches.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (bad blueprint item,
	// malformed mutation request). Always raised before any external call.
	ValidationError struct {
		Message string
	}

	// QuotaError indicates an exhausted plan allowance: credits depleted,
	// regeneration limit reached, or download allowance spent. Never
	// retried, never escalated.
	QuotaError struct {
		Message string
	}

	// GenerationError indicates the content collaborator returned no
	// usable payload or the payload failed to decode. The enclosing
	// batch or operation is rolled back without partial commit.
	GenerationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure (role/plan check)
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *QuotaError) Error() string        { return e.Message }
func (e *GenerationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *QuotaError) StatusCode() int        { return http.StatusPaymentRequired }
func (e *GenerationError) StatusCode() int   { return http.StatusBadGateway }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrQuota        = errors.New("quota exceeded")
	ErrGeneration   = errors.New("generation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Is allows errors.Is() matching against the sentinels for the typed errors.
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *QuotaError) Is(target error) bool        { return target == ErrQuota }
func (e *GenerationError) Is(target error) bool   { return target == ErrGeneration }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// ConflictError represents a resource conflict, including a regeneration
// already in flight for the same question.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
