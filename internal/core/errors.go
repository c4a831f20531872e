package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeValidation = "validation_failed"
	ErrCodeNotFound   = "not_found"
	ErrCodeTransport  = "transport_failed"
)

// ErrNotFound is the sentinel behind not-found domain errors.
var ErrNotFound = errors.New("not found")

// DomainError wraps a code and human-readable message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing or malformed required field.
func ValidationError(msg string) *DomainError {
	return &DomainError{Code: ErrCodeValidation, Message: msg}
}

// NotFoundError reports an unknown id.
func NotFoundError(msg string) *DomainError {
	return &DomainError{Code: ErrCodeNotFound, Message: msg, Err: ErrNotFound}
}

// TransportError wraps a storage or network boundary failure. The cause is
// kept for logs; callers see a single undifferentiated code.
func TransportError(msg string, err error) *DomainError {
	return &DomainError{Code: ErrCodeTransport, Message: msg, Err: err}
}

// CodeOf extracts the domain error code. Plain errors count as transport
// failures.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeTransport
}

// IsValidation reports whether err carries the validation code.
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
