package dto

import (
	"net/http"
	"strings"
)

// Error codes produced outside the application services
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body is not a JSON object
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeNotImplemented is used for operations the API refuses by design
	ErrCodeNotImplemented = "NOT_IMPLEMENTED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Entry creation: validation, resolution and stock failures are client errors
	"VALIDATION_FAILED":  http.StatusBadRequest,
	"DUPLICATE_DOCUMENT": http.StatusBadRequest,
	"COMPANY_NOT_FOUND":  http.StatusBadRequest,
	"PRODUCT_NOT_FOUND":  http.StatusBadRequest,
	"INSUFFICIENT_STOCK": http.StatusBadRequest,
	"LOOKUP_FAILED":      http.StatusInternalServerError,
	"ENTRY_SAVE_FAILED":  http.StatusInternalServerError,
	"ENTRY_NOT_FOUND":    http.StatusNotFound,

	// Companies and products
	"NOT_FOUND":        http.StatusNotFound,
	"DUPLICATE_NAME":   http.StatusBadRequest,
	"INVALID_FIELDS":   http.StatusBadRequest,
	"IN_USE":           http.StatusBadRequest,
	"INVALID_IMAGE":    http.StatusBadRequest,
	"STORAGE_FAILED":   http.StatusInternalServerError,
	"STORAGE_DISABLED": http.StatusServiceUnavailable,

	// Identity
	"ALREADY_EXISTS":      http.StatusConflict,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"USER_NOT_FOUND":      http.StatusUnauthorized,

	// Generic
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_STATE":        http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeNotImplemented:  http.StatusNotImplemented,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Domain invariant codes (INVALID_*) are client errors; anything else
// unknown is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
