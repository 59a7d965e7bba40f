package ir

import (
	"errors"
	"fmt"
)

// ErrDuplicateTable is returned when a schema declares a table name twice.
var ErrDuplicateTable = errors.New("duplicate table")

// ValidationError reports a static problem with one table of a schema.
type ValidationError struct {
	Table   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("table %s: %s", e.Table, e.Message)
}

// IsValidationError reports whether err contains a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
