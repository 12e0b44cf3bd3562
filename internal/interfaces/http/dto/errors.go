package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidQuantity is used when a quantity fails domain validation
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
	// ErrCodeInvalidLocation is used when a location reference is malformed
	ErrCodeInvalidLocation = "ERR_INVALID_LOCATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeDuplicateLedgerEntry is used when a ledger row already exists for a key
	ErrCodeDuplicateLedgerEntry = "ERR_DUPLICATE_LEDGER_ENTRY"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeBusy is used when a row lock could not be acquired in time
	ErrCodeBusy = "ERR_BUSY"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientStock is used when stock is insufficient
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
)

// Auth error codes
const (
	// ErrCodeUnauthorized is used when required identity headers are missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,
	ErrCodeInvalidLocation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeDuplicateLedgerEntry: http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeBusy:                 http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to transport error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_QUANTITY":        ErrCodeInvalidQuantity,
	"INVALID_LOCATION":        ErrCodeInvalidLocation,
	"INVALID_PRODUCT":         ErrCodeInvalidInput,
	"INVALID_SOURCE_ID":       ErrCodeInvalidInput,
	"INVALID_SOURCE_TYPE":     ErrCodeInvalidInput,
	"INVALID_MOVEMENT_TYPE":   ErrCodeInvalidInput,
	"INVALID_LEDGER_ENTRY":    ErrCodeInvalidInput,
	"INVALID_TRANSFER":        ErrCodeInvalidInput,
	"INVALID_ACTOR":           ErrCodeInvalidInput,
	"INVALID_COST":            ErrCodeInvalidInput,
	"EMPTY_DOCUMENT":          ErrCodeInvalidInput,
	"EMPTY_TRANSFER":          ErrCodeInvalidInput,
	"DUPLICATE_LINE":          ErrCodeInvalidInput,
	"DUPLICATE_TRANSFER_ITEM": ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"INSUFFICIENT_STOCK":      ErrCodeInsufficientStock,
	"DUPLICATE_LEDGER_ENTRY":  ErrCodeDuplicateLedgerEntry,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"BUSY":                    ErrCodeBusy,
}

// NormalizeErrorCode converts a domain error code to the transport format
// If the code is already in the transport format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
