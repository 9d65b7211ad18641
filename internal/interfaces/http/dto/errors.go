package dto

import (
	"net/http"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
)

// Transport error codes. Business outcomes reuse the domain codes from the
// shared package so clients see the same code the service returned.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Rejected lifecycle actions -> 422
	shared.CodeInvalidStateTransition: http.StatusUnprocessableEntity,
	shared.CodeAlreadyFinalized:       http.StatusUnprocessableEntity,
	shared.CodeOverDeduction:          http.StatusUnprocessableEntity,

	// Conflicts with concurrent or earlier work -> 409
	shared.CodeDuplicateDistribution:  http.StatusConflict,
	shared.CodeConcurrentModification: http.StatusConflict,
	shared.CodeAlreadyExists:          http.StatusConflict,

	shared.CodeValidation:         http.StatusBadRequest,
	shared.CodeNotFound:           http.StatusNotFound,
	shared.CodePersistenceFailure: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
