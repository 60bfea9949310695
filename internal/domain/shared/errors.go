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
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrNetwork         = NewDomainError("NETWORK_ERROR", "Backend store unreachable")
	ErrInvalidQuantity = NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	ErrMergeConflict   = NewDomainError("MERGE_CONFLICT", "Cart lines could not be reconciled")
	ErrSyncBusy        = NewDomainError("SYNC_BUSY", "Another cart mutation is in flight")
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
