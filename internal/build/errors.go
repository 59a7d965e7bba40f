package build

import (
	"errors"
	"fmt"
)

// ErrStatementExecution is wrapped by every error the engine returns for a
// build statement.
var ErrStatementExecution = errors.New("statement execution failed")

// ErrUnknownTarget is returned when a run targets a table the schema does
// not define.
var ErrUnknownTarget = errors.New("unknown target table")

// StatementError reports a statement the engine rejected.
type StatementError struct {
	// Table is the table being built, empty for namespace and extension
	// setup.
	Table string

	// Statement is the SQL that failed.
	Statement string

	// Err is the engine error.
	Err error
}

func (e *StatementError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("setup: %v", e.Err)
	}
	return fmt.Sprintf("table %s: %v", e.Table, e.Err)
}

func (e *StatementError) Unwrap() []error {
	return []error{ErrStatementExecution, e.Err}
}

// IsStatementError reports whether err is or wraps a *StatementError.
func IsStatementError(err error) bool {
	var se *StatementError
	return errors.As(err, &se)
}
