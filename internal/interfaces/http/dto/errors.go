package dto

import "net/http"

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeExpired           = "ERR_EXPIRED"
	ErrCodeLockedOut         = "ERR_LOCKED_OUT"
	ErrCodeSignatureInvalid  = "ERR_SIGNATURE_INVALID"
	ErrCodeUpstreamFailure   = "ERR_UPSTREAM_FAILURE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeExpired:           http.StatusGone,
	ErrCodeLockedOut:         http.StatusTooManyRequests,
	ErrCodeSignatureInvalid:  http.StatusBadRequest,
	ErrCodeUpstreamFailure:   http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the transport codes
// above. Domain codes without an entry pass through unchanged and are
// classified by DomainErrorHTTPStatus instead.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"ALREADY_EXISTS":     ErrCodeAlreadyExists,
	"INVALID_INPUT":      ErrCodeInvalidInput,
	"INVALID_STATE":      ErrCodeInvalidState,
	"UNAUTHORIZED":       ErrCodeUnauthorized,
	"FORBIDDEN":          ErrCodeForbidden,
	"EXPIRED":            ErrCodeExpired,
	"LOCKED_OUT":         ErrCodeLockedOut,
	"SIGNATURE_INVALID":  ErrCodeSignatureInvalid,
	"INSUFFICIENT_STOCK": ErrCodeInsufficientStock,
	"UPSTREAM_FAILURE":   ErrCodeUpstreamFailure,
}

// DomainErrorHTTPStatus classifies the domain codes that have no
// transport alias and travel to the client verbatim
var DomainErrorHTTPStatus = map[string]int{
	"INVALID_CREDENTIALS":  http.StatusUnauthorized,
	"EMAIL_NOT_VERIFIED":   http.StatusForbidden,
	"ALREADY_VERIFIED":     http.StatusConflict,
	"USERNAME_TAKEN":       http.StatusConflict,
	"EMAIL_TAKEN":          http.StatusConflict,
	"CATEGORY_EXISTS":      http.StatusConflict,
	"CATEGORY_IN_USE":      http.StatusConflict,
	"CART_EMPTY":           http.StatusUnprocessableEntity,
	"EMPTY_ORDER":          http.StatusUnprocessableEntity,
	"PRODUCT_UNAVAILABLE":  http.StatusUnprocessableEntity,
	"INVALID_QUANTITY":     http.StatusBadRequest,
	"ALREADY_PAID":         http.StatusConflict,
	"WRONG_PAYMENT_METHOD": http.StatusUnprocessableEntity,
	"GATEWAY_ERROR":        http.StatusBadGateway,
	"MALFORMED_EVENT":      http.StatusBadRequest,
	"TRANSITION_REJECTED":  http.StatusUnprocessableEntity,
}

// NormalizeErrorCode converts a domain error code to its transport
// alias, or returns it unchanged when it has none
func NormalizeErrorCode(code string) string {
	if alias, ok := DomainErrorCodeMapping[code]; ok {
		return alias
	}
	return code
}

// StatusForDomainCode resolves the HTTP status for a domain error code,
// checking aliased codes first and the verbatim table second
func StatusForDomainCode(code string) int {
	normalized := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[normalized]; ok {
		return status
	}
	if status, ok := DomainErrorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
