package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidQuantity     = NewDomainError("INVALID_QUANTITY", "Quantity is invalid")
	ErrInvalidLocation     = NewDomainError("INVALID_LOCATION", "Location must be exactly one of branch or warehouse")
	ErrDuplicateLedger     = NewDomainError("DUPLICATE_LEDGER_ENTRY", "A ledger entry already exists for this product and location")
	ErrBusy                = NewDomainError("BUSY", "Could not acquire lock within the allowed time, retry the operation")
)
