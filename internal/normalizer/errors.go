package normalizer

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrorKind classifies a validation failure.
type ErrorKind string

// Validation error kinds.
const (
	KindMissingField     ErrorKind = "missing_field"
	KindInvalidField     ErrorKind = "invalid_field"
	KindInvalidTimestamp ErrorKind = "invalid_timestamp"
)

// ValidationError reports a single raw entry that cannot be converted.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Entry   Entry
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if e.Entry != nil {
		return fmt.Sprintf("%s in entry: %v", msg, map[string]any(e.Entry))
	}

	return msg
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the underlying parse error, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missing(entry Entry, field, what string) *ValidationError {
	return &ValidationError{
		Kind:    KindMissingField,
		Field:   field,
		Message: "missing " + what,
		Entry:   entry,
	}
}

func invalid(entry Entry, field, msg string) *ValidationError {
	return &ValidationError{
		Kind:    KindInvalidField,
		Field:   field,
		Message: msg,
		Entry:   entry,
	}
}
