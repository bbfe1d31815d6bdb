package report

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingResult is returned when an export is requested before any
	// analysis has completed. It is a caller precondition violation.
	ErrMissingResult = errors.New("no completed analysis result")

	// ErrMalformedInput is matched by every *FieldError.
	ErrMalformedInput = errors.New("malformed analysis result")
)

// FieldError reports which field of the analysis result broke the input
// contract (non-finite number, empty required string, unknown enum value).
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrMalformedInput, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedInput) match.
func (e *FieldError) Is(target error) bool {
	return target == ErrMalformedInput
}

// ExportError wraps a failure while serializing or writing an artifact. It is
// kept distinct from input errors so callers can tell the user which export
// failed.
type ExportError struct {
	Err    error
	Format Format
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format.Label(), e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func exportError(format Format, err error) error {
	return &ExportError{Format: format, Err: err}
}
