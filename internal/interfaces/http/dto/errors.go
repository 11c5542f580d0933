package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when a form or body fails field validation
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidRoute is used when a route cannot be adapted for the map
	ErrCodeInvalidRoute    = "ERR_INVALID_ROUTE"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Map token error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// State error codes
const (
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeSubmissionInFlight is used when the same form is submitted twice
	ErrCodeSubmissionInFlight = "ERR_SUBMISSION_IN_FLIGHT"
)

// Upstream error codes
const (
	ErrCodeBackendUnavailable  = "ERR_BACKEND_UNAVAILABLE"
	ErrCodeProviderUnavailable = "ERR_PROVIDER_UNAVAILABLE"
	ErrCodeMapsDisabled        = "ERR_MAPS_DISABLED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidRoute:    http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInvalidState:       http.StatusConflict,
	ErrCodeSubmissionInFlight: http.StatusConflict,

	// Upstream failures are never reported with the upstream status
	ErrCodeBackendUnavailable:  http.StatusBadGateway,
	ErrCodeProviderUnavailable: http.StatusBadGateway,
	ErrCodeMapsDisabled:        http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_INPUT":        ErrCodeValidation,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"REQUEST_FAILED":       ErrCodeBackendUnavailable,
	"PROVIDER_FAILED":      ErrCodeProviderUnavailable,
	"MAPS_DISABLED":        ErrCodeMapsDisabled,
	"SUBMISSION_IN_FLIGHT": ErrCodeSubmissionInFlight,
	"EMPTY_ROUTE":          ErrCodeInvalidRoute,
	"INVALID_ROUTE":        ErrCodeInvalidRoute,

	// Form and item validation
	"NO_ITEMS":               ErrCodeValidation,
	"NO_DELIVERY_POINTS":     ErrCodeValidation,
	"INVALID_ITEM_ID":        ErrCodeValidation,
	"INVALID_ITEM_NAME":      ErrCodeValidation,
	"INVALID_QUANTITY":       ErrCodeValidation,
	"INVALID_DELIVERY_POINT": ErrCodeValidation,
	"INVALID_STOCK":          ErrCodeValidation,
	"INVALID_REORDER_LEVEL":  ErrCodeValidation,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
