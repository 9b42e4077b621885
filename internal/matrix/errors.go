package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors for input handling.
var (
	// ErrParse indicates a missing or malformed input file.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates input that parsed but violates an invariant.
	ErrValidation = errors.New("validation error")
)

// ParseError describes why an input file could not be read as a numeric table.
type ParseError struct {
	Path string
	Line int // 1-based; 0 when the failure is not tied to a line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse so callers can match on the sentinel.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ValidationError reports a count mismatch between two related inputs.
type ValidationError struct {
	Field string
	Got   int
	Want  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d", e.Field, e.Got, e.Want)
}

// Is reports ErrValidation so callers can match on the sentinel.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IsParseError returns true if err is or wraps a parse failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsValidationError returns true if err is or wraps a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
