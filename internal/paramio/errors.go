package paramio

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports a date or numeric field outside its declared
	// bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrMissingField reports a required field absent from a record.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownField reports an unexpected field in a record.
	ErrUnknownField = errors.New("unknown field")
)

// pathError prefixes an error with the record path it occurred at.
func pathError(path string, err error) error {
	return fmt.Errorf("%s: %w", path, err)
}

// fileError wraps an OS error with the file path for context.
func fileError(path string, err error) error {
	return fmt.Errorf("file %s: %w", path, err)
}
