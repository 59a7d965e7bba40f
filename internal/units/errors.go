package units

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingUnit is returned when a conversion is requested for a value
	// that carries no unit.
	ErrMissingUnit = errors.New("missing unit")

	// ErrIncompatibleUnits is returned when no conversion path exists
	// between two units (their dimensions differ).
	ErrIncompatibleUnits = errors.New("incompatible units")

	// ErrUnknownUnit is returned for symbols that are not registered.
	ErrUnknownUnit = errors.New("unknown unit")
)

// ConversionError records the units involved in a failed conversion.
type ConversionError struct {
	From Unit
	To   Unit
	Err  error
}

func (e *ConversionError) Error() string {
	from, to := string(e.From), string(e.To)
	if from == "" {
		from = "<none>"
	}
	if to == "" {
		to = "<none>"
	}
	return fmt.Sprintf("convert %s to %s: %v", from, to, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
