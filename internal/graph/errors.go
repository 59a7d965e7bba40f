package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicDependency is returned when tables reference each other in a loop.
var ErrCyclicDependency = errors.New("cyclic dependency")

// CycleError reports one dependency cycle. Path starts and ends with the
// same table, e.g. ["a", "b", "a"].
type CycleError struct {
	Path []string
	// Others holds any further cycles found in the same schema.
	Others [][]string
}

func (e *CycleError) Error() string {
	msg := "cyclic dependency: " + strings.Join(e.Path, " -> ")
	if len(e.Others) > 0 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Others))
	}
	return msg
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// IsCycleError reports whether err is or wraps a *CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
