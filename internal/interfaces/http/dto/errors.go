package dto

import "net/http"

// Transport-level error codes
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes (transport and domain) to HTTP
// status codes. Domain codes not listed here fall through to 422: the
// request was well-formed but the operation is not allowed in the
// current state.
var ErrorCodeHTTPStatus = map[string]int{
	// Transport
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusForbidden,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeInternal:     http.StatusInternalServerError,

	// Input validation from domain constructors
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_NAME":         http.StatusBadRequest,
	"INVALID_GOAL":         http.StatusBadRequest,
	"INVALID_RATE":         http.StatusBadRequest,
	"INVALID_DURATION":     http.StatusBadRequest,
	"INVALID_WALLET":       http.StatusBadRequest,
	"INVALID_TOKEN_PRICE":  http.StatusBadRequest,
	"INVALID_MANAGER":      http.StatusBadRequest,
	"INVALID_INVESTOR":     http.StatusBadRequest,
	"INVALID_HOLDER":       http.StatusBadRequest,
	"INVALID_IDENTITY":     http.StatusBadRequest,
	"INVALID_PROJECT":      http.StatusBadRequest,
	"INVALID_VERIFIER":     http.StatusBadRequest,
	"INVALID_AMOUNT":       http.StatusBadRequest,
	"INVALID_REASON":       http.StatusBadRequest,
	"INVALID_CAPABILITY":   http.StatusBadRequest,
	"INVALID_MILESTONE_ID": http.StatusBadRequest,
	"TARGET_DATE_IN_PAST":  http.StatusBadRequest,
	"ZERO_RELEASE_AMOUNT":  http.StatusBadRequest,

	// State conflicts
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,

	// Business rule violations
	"INVALID_STATE":               http.StatusUnprocessableEntity,
	"PROJECT_INACTIVE":            http.StatusUnprocessableEntity,
	"EXCEEDS_FUNDING_GOAL":        http.StatusUnprocessableEntity,
	"EXCEEDS_RAISED":              http.StatusUnprocessableEntity,
	"HAS_INVESTMENTS":             http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE":        http.StatusUnprocessableEntity,
	"INSUFFICIENT_ESCROW_BALANCE": http.StatusUnprocessableEntity,
	"TRANSFERS_PAUSED":            http.StatusUnprocessableEntity,
	"ALREADY_COMPLETED":           http.StatusUnprocessableEntity,
	"NOTHING_TO_CLAIM":            http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
