package shared

import "errors"

// ErrorKind classifies a DomainError so the transport layer can pick a status code
// without inspecting codes or messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindState      ErrorKind = "state"
	KindAuth       ErrorKind = "unauthorized"
	KindInternal   ErrorKind = "internal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so sentinel errors keep
// working after WithMessage or WithDetails produced a copy.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a different message
func (e *DomainError) WithMessage(message string) *DomainError {
	cp := *e
	cp.Message = message
	cp.Details = append([]string(nil), e.Details...)
	return &cp
}

// WithDetails returns a copy of the error carrying the given detail messages
func (e *DomainError) WithDetails(details ...string) *DomainError {
	cp := *e
	cp.Details = append(append([]string(nil), e.Details...), details...)
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string, details ...string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Details: details,
	}
}

// NewValidationError creates an error for malformed or missing input
func NewValidationError(code, message string, details ...string) *DomainError {
	return NewDomainError(KindValidation, code, message, details...)
}

// NewNotFoundError creates an error for an absent resource
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewConflictError creates an error for a request that collides with current data
func NewConflictError(code, message string, details ...string) *DomainError {
	return NewDomainError(KindConflict, code, message, details...)
}

// NewStateError creates an error for an operation the current state does not allow
func NewStateError(code, message string, details ...string) *DomainError {
	return NewDomainError(KindState, code, message, details...)
}

// NewAuthError creates an error for missing or rejected credentials
func NewAuthError(code, message string) *DomainError {
	return NewDomainError(KindAuth, code, message)
}

// KindOf returns the kind of a (possibly wrapped) DomainError, or KindInternal
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrNotFound      = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewValidationError("INVALID_INPUT", "Validation failed")
	ErrInvalidState  = NewStateError("INVALID_STATE", "Operation not allowed in current state")
	ErrIDExhausted   = NewDomainError(KindInternal, "ID_GENERATION_FAILED", "Could not generate a unique identifier")
)

// ValidationErrors collects field-level messages before failing as one error
type ValidationErrors struct {
	messages []string
}

// Add records a message
func (v *ValidationErrors) Add(message string) {
	v.messages = append(v.messages, message)
}

// Check records message when cond is true
func (v *ValidationErrors) Check(cond bool, message string) {
	if cond {
		v.Add(message)
	}
}

// Empty reports whether nothing has been recorded
func (v *ValidationErrors) Empty() bool {
	return len(v.messages) == 0
}

// Err returns nil when empty, otherwise ErrInvalidInput with the collected details
func (v *ValidationErrors) Err() error {
	if v.Empty() {
		return nil
	}
	return ErrInvalidInput.WithDetails(v.messages...)
}
